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

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pn532 "github.com/ZaparooProject/go-pn532-spi"
	"github.com/ZaparooProject/go-pn532-spi/detection"
	// Import all detectors to register them
	_ "github.com/ZaparooProject/go-pn532-spi/detection/buspirate"
	_ "github.com/ZaparooProject/go-pn532-spi/detection/spidev"
	"github.com/ZaparooProject/go-pn532-spi/transport/spi"
	"github.com/ZaparooProject/go-pn532-spi/transport/spi/buspirate"
	"github.com/ZaparooProject/go-pn532-spi/transport/spi/periph"
)

var errUnknownBus = errors.New("unknown bus")

var bpSpeeds = map[string]buspirate.Speed{
	"30k":  buspirate.Speed30kHz,
	"125k": buspirate.Speed125kHz,
	"250k": buspirate.Speed250kHz,
	"1m":   buspirate.Speed1MHz,
	"2m":   buspirate.Speed2MHz,
	"2.6m": buspirate.Speed2600kHz,
	"4m":   buspirate.Speed4MHz,
	"8m":   buspirate.Speed8MHz,
}

func parseBusPirateSpeed(s string) (buspirate.Speed, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimSuffix(key, "hz")
	speed, ok := bpSpeeds[key]
	if !ok {
		return 0, fmt.Errorf("%w: bus pirate speed %q", pn532.ErrInvalidParameter, s)
	}
	return speed, nil
}

// openTransport opens the configured backend. With -bus auto the best
// detected candidate is used, restricted to -port when one is given.
func openTransport(ctx context.Context, cfg *config) (pn532.Transport, error) {
	kind := strings.ToLower(*cfg.bus)
	port := *cfg.port

	if kind == "auto" {
		device, err := autoDetect(ctx, port)
		if err != nil {
			return nil, err
		}
		kind, port = device.Transport, device.Path
		_, _ = fmt.Printf("Using %s\n", device)
	}

	switch kind {
	case "periph", "spi":
		return openPeriph(port, cfg)
	case "buspirate":
		return openBusPirate(ctx, port, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownBus, *cfg.bus)
	}
}

func autoDetect(ctx context.Context, port string) (detection.DeviceInfo, error) {
	opts := detection.DefaultOptions()
	devices, err := detection.DetectAll(ctx, &opts)
	if err != nil {
		return detection.DeviceInfo{}, fmt.Errorf("auto-detection failed: %w", err)
	}
	return pickDevice(devices, port)
}

func pickDevice(devices []detection.DeviceInfo, port string) (detection.DeviceInfo, error) {
	for _, d := range devices {
		if port == "" || d.Path == port {
			return d, nil
		}
	}
	return detection.DeviceInfo{}, fmt.Errorf("%w: %s", detection.ErrNoDevicesFound, port)
}

func openPeriph(port string, cfg *config) (pn532.Transport, error) {
	bus, err := periph.Open(periph.Config{
		Port:       port,
		ChipSelect: *cfg.chipSelect,
		Frequency:  cfg.frequency,
		LSBFirst:   *cfg.lsbFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI bus: %w", err)
	}

	opts := []spi.Option{spi.WithName(bus.Name())}
	if bus.LSBFirst() {
		opts = append(opts, spi.WithNativeLSBFirst())
	}
	transport, err := spi.New(bus, opts...)
	if err != nil {
		return nil, errors.Join(err, bus.Close())
	}
	return transport, nil
}

func openBusPirate(ctx context.Context, port string, cfg *config) (pn532.Transport, error) {
	if port == "" {
		return nil, fmt.Errorf("%w: bus pirate needs -port", pn532.ErrInvalidParameter)
	}
	speed, err := parseBusPirateSpeed(*cfg.bpSpeed)
	if err != nil {
		return nil, err
	}

	bpCfg := buspirate.DefaultConfig()
	bpCfg.Speed = speed
	bus, err := buspirate.Open(ctx, port, bpCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open bus pirate: %w", err)
	}

	transport, err := spi.New(bus, spi.WithName(port))
	if err != nil {
		return nil, errors.Join(err, bus.Close())
	}
	return transport, nil
}
