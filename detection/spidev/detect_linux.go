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

//go:build linux

package spidev

import (
	"context"
	"errors"
	"fmt"

	pn532 "github.com/ZaparooProject/go-pn532-spi"
	"github.com/ZaparooProject/go-pn532-spi/transport/spi"
	"github.com/ZaparooProject/go-pn532-spi/transport/spi/periph"
	"golang.org/x/sys/unix"
)

func checkAccess(path string) error {
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return fmt.Errorf("no read-write access to %s: %w", path, err)
	}
	return nil
}

// probeFirmware opens path with the default chip-select line and runs
// GetFirmwareVersion through the full command path
func probeFirmware(ctx context.Context, path string) (string, error) {
	cfg := periph.DefaultConfig()
	cfg.Port = path

	bus, err := periph.Open(cfg)
	if err != nil {
		return "", err
	}

	transport, err := spi.New(bus, spi.WithName(path))
	if err != nil {
		return "", errors.Join(err, bus.Close())
	}

	device, err := pn532.New(transport)
	if err != nil {
		return "", errors.Join(err, transport.Close())
	}
	defer func() { _ = device.Close() }()

	fw, err := device.GetFirmwareVersion(ctx)
	if err != nil {
		return "", err
	}
	return fw.String(), nil
}
