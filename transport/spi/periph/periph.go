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

// Package periph drives a PN532 on a Linux spidev controller through
// periph.io, with chip-select on a GPIO line.
package periph

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	// DefaultFrequency is a safe clock for PN532 breakouts (max 5MHz)
	DefaultFrequency = 1 * physic.MegaHertz
	// DefaultChipSelect is BCM GPIO8 (CE0) on a Raspberry Pi header
	DefaultChipSelect = "GPIO8"
)

// ErrNoChipSelect is returned when the chip-select GPIO cannot be found
var ErrNoChipSelect = errors.New("chip-select GPIO not found")

// Config describes how to reach the PN532
type Config struct {
	// Port is the spireg name, e.g. "/dev/spidev0.0" or "SPI0.0". Empty
	// selects the first registered port.
	Port string
	// ChipSelect is the gpioreg name of the line wired to the PN532 SS pin.
	// The controller's own CS toggles between transfers, which resets the
	// PN532 mid-frame, so a GPIO is always used.
	ChipSelect string
	// Frequency is the SPI clock
	Frequency physic.Frequency
	// LSBFirst asks the controller to shift LSB first. Pair it with
	// spi.WithNativeLSBFirst on the transport.
	LSBFirst bool
}

// DefaultConfig returns the configuration for a PN532 on SPI0.0 with CS on
// GPIO8.
func DefaultConfig() Config {
	return Config{
		Port:       "",
		ChipSelect: DefaultChipSelect,
		Frequency:  DefaultFrequency,
	}
}

type txer interface {
	Tx(w, r []byte) error
}

type outPin interface {
	Out(l gpio.Level) error
}

// Bus is a byte-at-a-time SPI bus with GPIO chip-select
type Bus struct {
	conn     txer
	cs       outPin
	closer   spi.PortCloser
	name     string
	w        [1]byte
	r        [1]byte
	lsbFirst bool
}

// Open initializes periph, opens the SPI port and claims the chip-select
// GPIO, leaving it deasserted (high).
func Open(cfg Config) (*Bus, error) {
	if cfg.Frequency == 0 {
		cfg.Frequency = DefaultFrequency
	}
	if cfg.ChipSelect == "" {
		cfg.ChipSelect = DefaultChipSelect
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %q: %w", cfg.Port, err)
	}

	mode := spi.Mode0 | spi.NoCS
	if cfg.LSBFirst {
		mode |= spi.LSBFirst
	}
	conn, err := port.Connect(cfg.Frequency, mode, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to configure SPI port %q: %w", cfg.Port, err)
	}

	pin := gpioreg.ByName(cfg.ChipSelect)
	if pin == nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoChipSelect, cfg.ChipSelect)
	}

	name := cfg.Port
	if name == "" {
		name = port.String()
	}

	b, err := newBus(conn, pin, name, cfg.LSBFirst)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	b.closer = port
	return b, nil
}

func newBus(conn txer, cs outPin, name string, lsbFirst bool) (*Bus, error) {
	if err := cs.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("failed to drive chip-select high: %w", err)
	}
	return &Bus{conn: conn, cs: cs, name: name, lsbFirst: lsbFirst}, nil
}

// Exchange shifts one byte out and returns the byte shifted in
func (b *Bus) Exchange(v byte) (byte, error) {
	b.w[0] = v
	if err := b.conn.Tx(b.w[:], b.r[:]); err != nil {
		return 0, fmt.Errorf("SPI transfer on %s: %w", b.name, err)
	}
	return b.r[0], nil
}

// Select drives the active-low chip-select line
func (b *Bus) Select(active bool) error {
	level := gpio.High
	if active {
		level = gpio.Low
	}
	if err := b.cs.Out(level); err != nil {
		return fmt.Errorf("chip-select on %s: %w", b.name, err)
	}
	return nil
}

// Name returns the port name
func (b *Bus) Name() string {
	return b.name
}

// LSBFirst reports whether the controller shifts LSB first
func (b *Bus) LSBFirst() bool {
	return b.lsbFirst
}

// Close releases chip-select and the SPI port
func (b *Bus) Close() error {
	csErr := b.cs.Out(gpio.High)
	if b.closer != nil {
		if err := b.closer.Close(); err != nil {
			return fmt.Errorf("failed to close SPI port %s: %w", b.name, err)
		}
	}
	if csErr != nil {
		return fmt.Errorf("failed to release chip-select: %w", csErr)
	}
	return nil
}
