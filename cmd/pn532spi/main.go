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

// Command pn532spi talks to a PN532 over SPI: it brings the chip up, prints
// its firmware and status, and can run diagnostics or encode NDEF payloads
// from an interactive shell.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	pn532 "github.com/ZaparooProject/go-pn532-spi"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"
)

type config struct {
	bus         *string
	port        *string
	chipSelect  *string
	bpSpeed     *string
	timeout     *time.Duration
	retries     *int
	debug       *bool
	interactive *bool
	lsbFirst    *bool
	frequency   physic.Frequency
}

func parseFlags() *config {
	cfg := &config{
		bus: flag.String("bus", "auto",
			"SPI backend: periph, buspirate or auto (detect)"),
		port: flag.String("port", "",
			"SPI port (e.g. /dev/spidev0.0) or Bus Pirate serial port (e.g. /dev/ttyUSB0)"),
		chipSelect: flag.String("cs", "GPIO8", "GPIO used as PN532 chip-select (periph only)"),
		bpSpeed:    flag.String("bp-speed", "1M", "Bus Pirate SPI speed: 30k, 125k, 250k, 1M, 2M, 2.6M, 4M, 8M"),
		timeout:    flag.Duration("timeout", time.Second, "Per-command timeout"),
		retries:    flag.Int("retries", 3, "Attempts per command on transient errors"),
		debug:      flag.Bool("debug", false, "Enable debug output"),
		interactive: flag.Bool("interactive", false,
			"Start an interactive shell after initialization"),
		lsbFirst:  flag.Bool("lsb-first", false, "Let the SPI controller shift LSB first (periph only)"),
		frequency: physic.MegaHertz,
	}
	flag.Var(&cfg.frequency, "speed", "SPI clock for periph (e.g. 1MHz)")
	flag.Parse()

	if *cfg.debug {
		pn532.SetLogger(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().Timestamp().Str("cmd", "pn532spi").Logger().Level(zerolog.DebugLevel))
		pn532.SetDebugEnabled(true)
	}
	return cfg
}

func newDevice(transport pn532.Transport, cfg *config) (*pn532.Device, error) {
	device, err := pn532.New(transport,
		pn532.WithTimeout(*cfg.timeout),
		pn532.WithMaxRetries(*cfg.retries),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}
	return device, nil
}

func printReport(ctx context.Context, device *pn532.Device) error {
	fw, err := device.FirmwareVersion()
	if err != nil {
		return err
	}
	_, _ = fmt.Printf("Firmware:  %s (0x%08X)\n", fw, fw.Packed())
	_, _ = fmt.Printf("Protocols: ISO14443A=%t ISO14443B=%t ISO18092=%t\n",
		fw.SupportIso14443a, fw.SupportIso14443b, fw.SupportIso18092)

	status, err := device.GetGeneralStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to read general status: %w", err)
	}
	_, _ = fmt.Printf("Status:    last error 0x%02X, field present %t, targets %d\n",
		status.LastError, status.FieldPresent, status.Targets)

	result, err := device.Diagnose(ctx, pn532.DiagnoseCommunicationTest, []byte("pn532"))
	if err != nil {
		return fmt.Errorf("communication test failed: %w", err)
	}
	_, _ = fmt.Printf("Line test: %s\n", passFail(result.Success))
	return nil
}

func passFail(ok bool) string {
	if ok {
		return "pass"
	}
	return "FAIL"
}

func run(cfg *config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	transport, err := openTransport(ctx, cfg)
	if err != nil {
		return err
	}

	device, err := newDevice(transport, cfg)
	if err != nil {
		return errors.Join(err, transport.Close())
	}
	defer func() { _ = device.Close() }()

	if err := device.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize PN532: %w", err)
	}

	if err := printReport(ctx, device); err != nil {
		return err
	}

	if *cfg.interactive {
		newShell(device).Run()
	}
	return nil
}

func main() {
	cfg := parseFlags()
	if err := run(cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
