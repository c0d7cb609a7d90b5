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

// Package buspirate finds Bus Pirate adapters on USB serial ports. A PN532
// is assumed to hang off the adapter's SPI pins.
package buspirate

import (
	"context"
	"fmt"
	"strings"

	pn532 "github.com/ZaparooProject/go-pn532-spi"
	"github.com/ZaparooProject/go-pn532-spi/detection"
	"github.com/ZaparooProject/go-pn532-spi/transport/spi"
	bp "github.com/ZaparooProject/go-pn532-spi/transport/spi/buspirate"
	"go.bug.st/serial/enumerator"
)

// knownAdapter is a USB identity a Bus Pirate ships with
type knownAdapter struct {
	vidpid     string
	name       string
	confidence detection.Confidence
}

// FTDI's FT232R is shared with countless adapters, so only the product
// string can lift it above Low.
var knownAdapters = []knownAdapter{
	{vidpid: "0403:6001", name: "Bus Pirate v3 (FT232R)", confidence: detection.Low},
	{vidpid: "04D8:FB00", name: "Bus Pirate v4", confidence: detection.Medium},
	{vidpid: "1209:7331", name: "Bus Pirate 5", confidence: detection.Medium},
}

type portLister func() ([]*enumerator.PortDetails, error)

// detector implements the Detector interface for Bus Pirate adapters
type detector struct {
	ports portLister
	probe func(ctx context.Context, path string) (string, error)
}

// New creates a new Bus Pirate detector
func New() detection.Detector {
	return &detector{
		ports: enumerator.GetDetailedPortsList,
		probe: probeFirmware,
	}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "buspirate"
}

// Detect matches USB serial ports against known Bus Pirate identities.
// Full mode enters binary SPI mode and queries the PN532 firmware.
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if opts == nil {
		defaults := detection.DefaultOptions()
		opts = &defaults
	}

	ports, err := d.ports()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	var devices []detection.DeviceInfo
	for _, port := range ports {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		device, ok := match(port, opts)
		if !ok {
			continue
		}

		if opts.Mode == detection.Full {
			firmware, err := d.probe(ctx, port.Name)
			if err != nil {
				continue
			}
			device.Metadata["firmware"] = firmware
			device.Confidence = detection.High
		}
		devices = append(devices, device)
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

// match reports whether port looks like a Bus Pirate that options allow
func match(port *enumerator.PortDetails, opts *detection.Options) (detection.DeviceInfo, bool) {
	if port == nil || !port.IsUSB {
		return detection.DeviceInfo{}, false
	}
	if detection.IsPathIgnored(port.Name, opts.IgnorePaths) {
		return detection.DeviceInfo{}, false
	}

	vidpid := detection.VIDPID(port.VID, port.PID)
	if detection.IsBlocked(vidpid, opts.Blocklist) {
		return detection.DeviceInfo{}, false
	}

	for _, known := range knownAdapters {
		if known.vidpid != vidpid {
			continue
		}
		confidence := known.confidence
		if strings.Contains(strings.ToLower(port.Product), "bus pirate") {
			confidence = detection.Medium
		}
		return detection.DeviceInfo{
			Transport:  "buspirate",
			Path:       port.Name,
			Name:       known.name,
			Confidence: confidence,
			Metadata: map[string]string{
				"vid_pid":       vidpid,
				"serial_number": port.SerialNumber,
				"product":       port.Product,
			},
		}, true
	}
	return detection.DeviceInfo{}, false
}

func probeFirmware(ctx context.Context, path string) (string, error) {
	bus, err := bp.Open(ctx, path, bp.DefaultConfig())
	if err != nil {
		return "", err
	}

	transport, err := spi.New(bus, spi.WithName(path))
	if err != nil {
		_ = bus.Close()
		return "", err
	}

	device, err := pn532.New(transport)
	if err != nil {
		_ = transport.Close()
		return "", err
	}
	defer func() { _ = device.Close() }()

	fw, err := device.GetFirmwareVersion(ctx)
	if err != nil {
		return "", err
	}
	return fw.String(), nil
}
