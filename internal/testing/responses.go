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

package testing

// Command bytes for reference
const (
	CmdDiagnose           = 0x00
	CmdGetFirmwareVersion = 0x02
	CmdGetGeneralStatus   = 0x04
	CmdSAMConfiguration   = 0x14
)

// BuildFirmwareVersionResponse creates a GetFirmwareVersion response
func BuildFirmwareVersionResponse() []byte {
	// PN532 version 1.6, supports ISO14443A/B and ISO18092
	return []byte{0x03, 0x32, 0x01, 0x06, 0x07}
}

// BuildSAMConfigurationResponse creates a SAMConfiguration response
func BuildSAMConfigurationResponse() []byte {
	return []byte{0x15}
}

// BuildGeneralStatusResponse creates a GetGeneralStatus response with no
// targets in the field
func BuildGeneralStatusResponse(lastErr byte, field bool) []byte {
	var f byte
	if field {
		f = 0x01
	}
	return []byte{0x05, lastErr, f, 0x00, 0x80}
}

// BuildDiagnoseResponse creates a Diagnose response carrying result
func BuildDiagnoseResponse(result ...byte) []byte {
	return append([]byte{0x01}, result...)
}

// BuildErrorResponse creates an error response for any command
func BuildErrorResponse(cmd, errorCode byte) []byte {
	return []byte{cmd + 1, errorCode}
}

// FirmwareRawResponse is the 12-byte read whose first four bytes pack to
// 0x00000100
var FirmwareRawResponse = []byte{0x00, 0x00, 0x01, 0x00, 0, 0, 0, 0, 0, 0, 0, 0}
