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

// Package transport provides internal transport utilities
package transport

import (
	"context"
	"fmt"
	"time"

	pn532 "github.com/ZaparooProject/go-pn532-spi"
)

// RetryOperation represents a function that can be retried
// Returns: data, shouldRetry, error
// - data: the result if successful
// - shouldRetry: true if the operation should be retried
// - error: with shouldRetry false, a permanent error that stops retries;
//   with shouldRetry true, the cause reported if the retries run out
type RetryOperation[T any] func() (T, bool, error)

// RetryConfig configures retry behavior
type RetryConfig struct {
	OnRetry     func() error
	Sleep       func(time.Duration)
	Description string
	Port        string
	MaxRetries  int
	RetryDelay  time.Duration
}

// WithRetry executes an operation until it stops asking for a retry, fails,
// or MaxRetries additional attempts have been made.
func WithRetry[T any](ctx context.Context, config RetryConfig, operation RetryOperation[T]) (T, error) {
	var zero T
	var last error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := ctx.Err(); err != nil {
				return zero, fmt.Errorf("%s: %w", config.Description, err)
			}
		}

		result, shouldRetry, err := operation()
		if !shouldRetry {
			if err != nil {
				return zero, err
			}
			return result, nil
		}
		last = err
		if attempt >= config.MaxRetries {
			break
		}

		if config.OnRetry != nil {
			if err := config.OnRetry(); err != nil {
				return zero, err
			}
		}
		sleep(config.Sleep, config.RetryDelay)
	}

	cause := pn532.ErrCommunicationFailed
	if last != nil {
		cause = fmt.Errorf("%w: %w", pn532.ErrCommunicationFailed, last)
	}
	return zero, pn532.NewTransportError(config.Description, config.Port,
		cause, pn532.ErrorTypeTransient)
}

// PollConfig configures a budgeted readiness poll
type PollConfig struct {
	Sleep    func(time.Duration)
	Budget   int
	Interval time.Duration
}

// Poll calls probe until it reports ready or Budget probes have failed.
// Exactly Budget probes are made when the device never becomes ready, and
// Interval is slept after every failed probe. ctx is only consulted between
// probes so a probe in progress always completes.
func Poll(ctx context.Context, config PollConfig, probe func() (bool, error)) (bool, error) {
	if config.Budget < 1 {
		return false, fmt.Errorf("%w: poll budget %d", pn532.ErrInvalidParameter, config.Budget)
	}

	for budget := config.Budget; ; {
		ready, err := probe()
		if err != nil {
			return false, err
		}
		if ready {
			return true, nil
		}

		sleep(config.Sleep, config.Interval)
		budget--
		if budget == 0 {
			return false, nil
		}
		if err := ctx.Err(); err != nil {
			return false, err
		}
	}
}

func sleep(fn func(time.Duration), d time.Duration) {
	if d <= 0 {
		return
	}
	if fn == nil {
		fn = time.Sleep
	}
	fn(d)
}
