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

// Package tinygo adapts a TinyGo SPI peripheral and chip-select pin to the
// PN532 SPI transport.
package tinygo

import (
	"fmt"

	"tinygo.org/x/drivers"
)

// Pin is an output pin such as machine.Pin
type Pin interface {
	High()
	Low()
}

// Bus wraps a drivers.SPI and an active-low chip-select pin. Configure the
// peripheral for mode 0 before use; machine.SPI shifts MSB first, so the
// transport keeps reversing bits.
type Bus struct {
	spi drivers.SPI
	cs  Pin
}

// New returns a bus and deasserts chip-select
func New(spi drivers.SPI, cs Pin) (*Bus, error) {
	if spi == nil || cs == nil {
		return nil, fmt.Errorf("tinygo: SPI and chip-select pin are required")
	}
	cs.High()
	return &Bus{spi: spi, cs: cs}, nil
}

// Exchange shifts one byte in each direction
func (b *Bus) Exchange(v byte) (byte, error) {
	r, err := b.spi.Transfer(v)
	if err != nil {
		return 0, fmt.Errorf("tinygo: SPI transfer: %w", err)
	}
	return r, nil
}

// Select drives chip-select low when active
func (b *Bus) Select(active bool) error {
	if active {
		b.cs.Low()
	} else {
		b.cs.High()
	}
	return nil
}
