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

package pn532

import (
	"fmt"
	"time"
)

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithRetryConfig sets the retry configuration for the device
func WithRetryConfig(config *RetryConfig) Option {
	return func(d *Device) error {
		if config == nil {
			return fmt.Errorf("%w: nil retry config", ErrInvalidParameter)
		}
		d.SetRetryConfig(config)
		return nil
	}
}

// WithTimeout sets the default timeout for device operations
func WithTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		return d.SetTimeout(timeout)
	}
}

// WithSAMMode sets the SAM mode applied by Init
func WithSAMMode(mode SAMMode) Option {
	return func(d *Device) error {
		if mode < SAMModeNormal || mode > SAMModeDualCard {
			return fmt.Errorf("%w: SAM mode 0x%02X", ErrInvalidParameter, byte(mode))
		}
		d.config.SAMMode = mode
		return nil
	}
}

// WithMaxRetries sets the maximum number of attempts for device operations
func WithMaxRetries(maxAttempts int) Option {
	return func(d *Device) error {
		if maxAttempts < 1 {
			return fmt.Errorf("%w: max attempts %d", ErrInvalidParameter, maxAttempts)
		}
		cfg := d.retryConfigCopy()
		cfg.MaxAttempts = maxAttempts
		d.SetRetryConfig(cfg)
		return nil
	}
}

// WithRetryBackoff sets the initial backoff duration for retries
func WithRetryBackoff(initialBackoff time.Duration) Option {
	return func(d *Device) error {
		if initialBackoff < 0 {
			return fmt.Errorf("%w: backoff %v", ErrInvalidParameter, initialBackoff)
		}
		cfg := d.retryConfigCopy()
		cfg.InitialBackoff = initialBackoff
		d.SetRetryConfig(cfg)
		return nil
	}
}

func (d *Device) retryConfigCopy() *RetryConfig {
	if d.config.RetryConfig == nil {
		return DefaultRetryConfig()
	}
	cfg := *d.config.RetryConfig
	return &cfg
}
