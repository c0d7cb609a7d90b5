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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        2 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func TestRetryWithConfig(t *testing.T) {
	t.Parallel()

	errPermanent := errors.New("permanent")

	tests := []struct {
		errs      []error
		wantErr   error
		name      string
		attempts  int
		wantCalls int
	}{
		{name: "first attempt succeeds", attempts: 3, wantCalls: 1},
		{
			name:      "retryable then success",
			attempts:  3,
			errs:      []error{ErrTransportTimeout, ErrNoACK},
			wantCalls: 3,
		},
		{
			name:      "attempts exhausted",
			attempts:  2,
			errs:      []error{ErrTransportTimeout, ErrTransportTimeout, ErrTransportTimeout},
			wantErr:   ErrTransportTimeout,
			wantCalls: 2,
		},
		{
			name:      "permanent error stops",
			attempts:  5,
			errs:      []error{errPermanent},
			wantErr:   errPermanent,
			wantCalls: 1,
		},
		{
			name:      "zero attempts still runs once",
			attempts:  0,
			errs:      []error{ErrTransportTimeout},
			wantErr:   ErrTransportTimeout,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls := 0
			err := RetryWithConfig(context.Background(), fastRetryConfig(tt.attempts), func() error {
				calls++
				if calls <= len(tt.errs) {
					return tt.errs[calls-1]
				}
				return nil
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestRetryWithConfig_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithConfig(ctx, fastRetryConfig(3), func() error {
		calls++
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRetryWithConfig_RetryTimeout(t *testing.T) {
	t.Parallel()

	cfg := &RetryConfig{
		MaxAttempts:       1000,
		InitialBackoff:    10 * time.Millisecond,
		BackoffMultiplier: 1,
		RetryTimeout:      50 * time.Millisecond,
	}

	start := time.Now()
	err := RetryWithConfig(context.Background(), cfg, func() error {
		return ErrTransportTimeout
	})

	require.ErrorIs(t, err, ErrTransportTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNextBackoff(t *testing.T) {
	t.Parallel()

	cfg := &RetryConfig{BackoffMultiplier: 2, MaxBackoff: 300 * time.Millisecond}

	assert.Equal(t, 200*time.Millisecond, nextBackoff(100*time.Millisecond, cfg))
	assert.Equal(t, 300*time.Millisecond, nextBackoff(200*time.Millisecond, cfg))
}

func TestWithJitter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 100*time.Millisecond, withJitter(100*time.Millisecond, 0))

	for i := 0; i < 100; i++ {
		d := withJitter(100*time.Millisecond, 0.1)
		assert.GreaterOrEqual(t, d, 90*time.Millisecond)
		assert.LessOrEqual(t, d, 110*time.Millisecond)
	}
}
