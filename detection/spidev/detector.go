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

// Package spidev finds PN532 readers wired to Linux spidev nodes.
package spidev

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/ZaparooProject/go-pn532-spi/detection"
)

const devicePattern = "/dev/spidev*"

// probeFunc talks to the device behind path and returns its firmware
// description
type probeFunc func(ctx context.Context, path string) (string, error)

// detector implements the Detector interface for spidev nodes
type detector struct {
	glob   func(pattern string) ([]string, error)
	access func(path string) error
	probe  probeFunc
	goos   string
}

// New creates a new spidev detector
func New() detection.Detector {
	return &detector{
		glob:   filepath.Glob,
		access: checkAccess,
		probe:  probeFirmware,
		goos:   runtime.GOOS,
	}
}

func init() {
	detection.RegisterDetector(New())
}

// Transport returns the transport type
func (*detector) Transport() string {
	return "spi"
}

// Detect lists spidev nodes. Safe mode drops nodes this process cannot open
// read-write; Full mode also asks each node for a firmware version.
func (d *detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	if d.goos != "linux" {
		return nil, detection.ErrUnsupportedPlatform
	}
	if opts == nil {
		defaults := detection.DefaultOptions()
		opts = &defaults
	}

	paths, err := d.glob(devicePattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list spidev nodes: %w", err)
	}

	devices := make([]detection.DeviceInfo, 0, len(paths))
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return devices, detection.ErrDetectionTimeout
		default:
		}

		if detection.IsPathIgnored(path, opts.IgnorePaths) {
			continue
		}

		device, ok := d.inspect(ctx, path, opts.Mode)
		if ok {
			devices = append(devices, device)
		}
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

func (d *detector) inspect(ctx context.Context, path string, mode detection.Mode) (detection.DeviceInfo, bool) {
	device := detection.DeviceInfo{
		Transport:  "spi",
		Path:       path,
		Name:       "spidev " + filepath.Base(path),
		Confidence: detection.Low,
		Metadata:   map[string]string{},
	}
	if mode == detection.Passive {
		return device, true
	}

	if err := d.access(path); err != nil {
		return device, false
	}
	device.Confidence = detection.Medium
	if mode == detection.Safe {
		return device, true
	}

	firmware, err := d.probe(ctx, path)
	if err != nil {
		device.Metadata["probe_error"] = err.Error()
		return device, false
	}
	device.Name = "PN532 on " + filepath.Base(path)
	device.Metadata["firmware"] = firmware
	device.Confidence = detection.High
	return device, true
}
