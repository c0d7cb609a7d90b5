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

// Package detection discovers PN532 readers reachable over SPI. Detectors
// register themselves on import; DetectAll runs every registered detector.
package detection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Detection errors
var (
	ErrNoDevicesFound      = errors.New("no PN532 devices found")
	ErrDetectionTimeout    = errors.New("detection timed out")
	ErrUnsupportedPlatform = errors.New("detection not supported on this platform")
)

// Mode controls how intrusive detection is
type Mode int

const (
	// Passive only enumerates device nodes; nothing is opened.
	Passive Mode = iota
	// Safe opens nothing but checks the node is usable by this process.
	Safe
	// Full talks to the device and confirms a PN532 answers.
	Full
)

// String implements fmt.Stringer
func (m Mode) String() string {
	switch m {
	case Passive:
		return "passive"
	case Safe:
		return "safe"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Confidence is how sure a detector is that a PN532 sits behind a path
type Confidence int

const (
	Low Confidence = iota
	Medium
	High
)

// Options configures detection
type Options struct {
	// IgnorePaths lists device paths never returned or probed
	IgnorePaths []string
	// Blocklist lists USB VID:PID pairs never probed
	Blocklist []string
	// Mode selects how intrusive detection is
	Mode Mode
	// Timeout bounds the whole detection run
	Timeout time.Duration
}

// DefaultOptions returns safe-mode options with a 5 second timeout
func DefaultOptions() Options {
	return Options{
		Mode:      Safe,
		Timeout:   5 * time.Second,
		Blocklist: DefaultBlocklist(),
	}
}

// DeviceInfo describes a candidate reader
type DeviceInfo struct {
	Metadata   map[string]string
	Transport  string
	Path       string
	Name       string
	Confidence Confidence
}

// String implements fmt.Stringer
func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s:%s (%s)", d.Transport, d.Path, d.Name)
}

// Detector finds devices on one kind of transport
type Detector interface {
	Transport() string
	Detect(ctx context.Context, opts *Options) ([]DeviceInfo, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Detector)
)

// RegisterDetector makes a detector available to DetectAll. Registering a
// second detector for the same transport replaces the first.
func RegisterDetector(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Transport()] = d
}

// Detectors returns the registered detectors sorted by transport name
func Detectors() []Detector {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Detector, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Transport() < out[j].Transport() })
	return out
}

// DetectAll runs every registered detector. Platform and empty results are
// skipped; ErrNoDevicesFound is returned when nothing was found at all.
func DetectAll(ctx context.Context, opts *Options) ([]DeviceInfo, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var (
		devices []DeviceInfo
		errs    []error
	)
	for _, d := range Detectors() {
		if ctx.Err() != nil {
			return devices, fmt.Errorf("%w: %w", ErrDetectionTimeout, ctx.Err())
		}

		found, err := d.Detect(ctx, opts)
		switch {
		case err == nil:
		case errors.Is(err, ErrNoDevicesFound), errors.Is(err, ErrUnsupportedPlatform):
			continue
		default:
			errs = append(errs, fmt.Errorf("%s: %w", d.Transport(), err))
			continue
		}

		for _, dev := range found {
			if !IsPathIgnored(dev.Path, opts.IgnorePaths) {
				devices = append(devices, dev)
			}
		}
	}

	if len(devices) == 0 {
		if len(errs) > 0 {
			return nil, errors.Join(append([]error{ErrNoDevicesFound}, errs...)...)
		}
		return nil, ErrNoDevicesFound
	}

	sort.SliceStable(devices, func(i, j int) bool {
		return devices[i].Confidence > devices[j].Confidence
	})
	return devices, nil
}
