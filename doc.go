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

/*
Package pn532 drives a PN532 NFC controller over its SPI host interface.

The root package holds the chip-level API: a Device wraps any Transport and
exposes firmware, status, SAM configuration and self tests. The SPI protocol
itself lives in transport/spi, which talks to the chip through a byte-wide
Bus. Bus implementations exist for Linux spidev (transport/spi/periph),
TinyGo microcontrollers (transport/spi/tinygo) and the Bus Pirate USB adapter
(transport/spi/buspirate).

Basic usage on a Raspberry Pi with the PN532 on SPI0 and chip-select on GPIO8:

	bus, err := periph.Open(periph.DefaultConfig())
	if err != nil {
	    log.Fatal(err)
	}

	transport, err := spi.New(bus)
	if err != nil {
	    log.Fatal(err)
	}

	device, err := pn532.New(transport,
	    pn532.WithTimeout(2*time.Second),
	    pn532.WithMaxRetries(5),
	)
	if err != nil {
	    log.Fatal(err)
	}
	defer device.Close()

	if err := device.Init(ctx); err != nil {
	    log.Fatal(err)
	}

	fw, _ := device.FirmwareVersion()
	fmt.Println(fw)

Readers can also be discovered. Import the detectors to register them:

	import (
	    "github.com/ZaparooProject/go-pn532-spi/detection"
	    _ "github.com/ZaparooProject/go-pn532-spi/detection/buspirate"
	    _ "github.com/ZaparooProject/go-pn532-spi/detection/spidev"
	)

	devices, err := detection.DetectAll(ctx, nil)

NDEF messages for tag payloads are built and parsed by the ndef package.

A Device is not safe for concurrent use. The SPI transport serializes whole
command exchanges internally, so several devices sharing one transport do
not interleave frames.

Debug output of every exchange step is written through zerolog once
SetDebugEnabled(true) is called; SetLogger redirects it.
*/
package pn532
