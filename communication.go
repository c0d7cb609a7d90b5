// go-pn532
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-pn532.
//
// go-pn532 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-pn532 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-pn532; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package pn532

import (
	"context"
	"fmt"
)

// SendRawCommand sends any PN532 command code with its arguments and
// returns the response parameters after the response code. It exists for
// commands this package has no wrapper for, such as ReadRegister (0x06).
func (d *Device) SendRawCommand(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	if cmd == 0xFF {
		return nil, fmt.Errorf("%w: command code 0x%02X has no response code", ErrInvalidParameter, cmd)
	}

	resp, err := d.sendCommand(ctx, cmd, args)
	if err != nil {
		return nil, err
	}
	if len(resp) == 0 || resp[0] != responseCode(cmd) {
		return nil, fmt.Errorf("%w: command 0x%02X answered with % X", ErrInvalidResponse, cmd, resp)
	}
	return resp[1:], nil
}
