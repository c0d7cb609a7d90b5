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

// Package spi provides SPI transport implementation for PN532
package spi

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	pn532 "github.com/ZaparooProject/go-pn532-spi"
	"github.com/ZaparooProject/go-pn532-spi/internal/frame"
)

const (
	// DefaultBudget is the number of status polls allowed per wait
	DefaultBudget = 100
	// DefaultFirmwareBudget is the poll budget of GetFirmwareVersion
	DefaultFirmwareBudget = 100
	// DefaultTick is the setup delay around chip-select edges and between polls
	DefaultTick = time.Millisecond

	// readPlaceholder is shifted out while clocking in a byte
	readPlaceholder = 0x00

	// maxFrameRetries is the number of NACKs sent for a corrupted response
	maxFrameRetries = 2

	// maxStartCodeSearch bounds the bytes skipped while looking for 00 FF
	maxStartCodeSearch = 16
)

// Bus is the synchronous byte exchange a PN532 SPI link needs. Exchange
// shifts b out while shifting one byte in and blocks until the controller
// is idle. Select drives chip-select (true asserts it).
type Bus interface {
	Exchange(b byte) (byte, error)
	Select(active bool) error
}

// Sleeper blocks for d
type Sleeper func(d time.Duration)

// Option configures a Transport
type Option func(*Transport)

// WithSleeper replaces time.Sleep for the setup and poll delays
func WithSleeper(sleep Sleeper) Option {
	return func(t *Transport) {
		if sleep != nil {
			t.sleep = sleep
		}
	}
}

// WithTick sets the delay inserted around chip-select edges and between polls
func WithTick(tick time.Duration) Option {
	return func(t *Transport) {
		t.tick = tick
	}
}

// WithNativeLSBFirst is for controllers configured to shift LSB first,
// which makes the per-byte bit reversal unnecessary.
func WithNativeLSBFirst() Option {
	return func(t *Transport) {
		t.lsbFirst = true
	}
}

// WithBudget sets the status-poll budget used by SendCommand
func WithBudget(budget int) Option {
	return func(t *Transport) {
		t.budget = budget
	}
}

// WithName sets the port name reported in errors
func WithName(name string) Option {
	return func(t *Transport) {
		t.name = name
	}
}

// Transport implements the pn532.Transport interface over an SPI bus.
//
// SendCommand and GetFirmwareVersion hold an internal mutex for the whole
// exchange. The lower level steps (WriteCommand, WaitReady, CheckACK,
// Execute, ReadData, ReadFrame) do not lock and must not be mixed with
// concurrent exchanges.
type Transport struct {
	bus      Bus
	sleep    Sleeper
	name     string
	tick     time.Duration
	budget   int
	mu       sync.Mutex
	lsbFirst bool
	closed   bool
}

// New creates a PN532 transport on bus
func New(bus Bus, opts ...Option) (*Transport, error) {
	if bus == nil {
		return nil, fmt.Errorf("%w: nil SPI bus", pn532.ErrInvalidParameter)
	}

	t := &Transport{
		bus:    bus,
		sleep:  time.Sleep,
		name:   "spi",
		tick:   DefaultTick,
		budget: DefaultBudget,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.budget < 1 {
		return nil, fmt.Errorf("%w: poll budget %d", pn532.ErrInvalidParameter, t.budget)
	}

	return t, nil
}

// SetTimeout converts timeout into a status-poll budget. One poll takes
// roughly three ticks; a transport without a tick is budgeted as if it
// used DefaultTick.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: timeout %v", pn532.ErrInvalidParameter, timeout)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	tick := t.tick
	if tick <= 0 {
		tick = DefaultTick
	}
	budget := int(timeout / (3 * tick))
	if budget < 1 {
		budget = 1
	}
	t.budget = budget
	return nil
}

// Budget returns the status-poll budget used by SendCommand
func (t *Transport) Budget() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.budget
}

// Close releases the bus if it implements io.Closer
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	if c, ok := t.bus.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close SPI bus %s: %w", t.name, err)
		}
	}
	return nil
}

// IsConnected returns true until the transport is closed
func (t *Transport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.closed
}

// Type returns the transport type
func (*Transport) Type() pn532.TransportType {
	return pn532.TransportSPI
}

func (t *Transport) delay() {
	if t.tick > 0 {
		t.sleep(t.tick)
	}
}

// writeByte shifts v out, discarding whatever the chip clocks back
func (t *Transport) writeByte(v byte) error {
	if !t.lsbFirst {
		v = frame.ReverseBits(v)
	}
	if _, err := t.bus.Exchange(v); err != nil {
		return pn532.NewTransportError("writeByte", t.name, fmt.Errorf("%w: %w", pn532.ErrTransportWrite, err),
			pn532.ErrorTypeTransient)
	}
	return nil
}

// readByte clocks one byte in by shifting out the placeholder
func (t *Transport) readByte() (byte, error) {
	v, err := t.bus.Exchange(readPlaceholder)
	if err != nil {
		return 0, pn532.NewTransportError("readByte", t.name, fmt.Errorf("%w: %w", pn532.ErrTransportRead, err),
			pn532.ErrorTypeTransient)
	}
	if !t.lsbFirst {
		v = frame.ReverseBits(v)
	}
	return v, nil
}

// window runs fn inside one chip-select window opened with indicator.
// Chip-select is deasserted on every path.
func (t *Transport) window(indicator byte, fn func() error) (err error) {
	if err := t.bus.Select(true); err != nil {
		return pn532.NewTransportError("select", t.name, err, pn532.ErrorTypeTransient)
	}
	defer func() {
		if derr := t.bus.Select(false); derr != nil && err == nil {
			err = pn532.NewTransportError("deselect", t.name, derr, pn532.ErrorTypeTransient)
		}
	}()

	t.delay()
	if err := t.writeByte(indicator); err != nil {
		return err
	}
	if fn != nil {
		if err := fn(); err != nil {
			return err
		}
	}
	t.delay()
	return nil
}

func (t *Transport) checkOpen(op string) error {
	if t.closed {
		return pn532.NewTransportError(op, t.name, pn532.ErrTransportClosed, pn532.ErrorTypePermanent)
	}
	return nil
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	return nil
}

// Ensure Transport implements pn532.Transport
var _ pn532.Transport = (*Transport)(nil)
