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

package buspirate

import (
	"context"
	"errors"
	"testing"

	pn532 "github.com/ZaparooProject/go-pn532-spi"
	testutil "github.com/ZaparooProject/go-pn532-spi/internal/testing"
	"github.com/ZaparooProject/go-pn532-spi/transport/spi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pirateMode int

const (
	modeTerminal pirateMode = iota
	modeBBIO
	modeSPI
)

// fakePirate emulates the binary SPI protocol and forwards chip-select and
// bulk bytes to a simulated PN532.
type fakePirate struct {
	chip        *testutil.FakeChip
	out         []byte
	configs     []byte
	mode        pirateMode
	ignoreReset int
	resets      int
	bulkPending bool
	closed      bool
	exited      bool
}

func newFakePirate(chip *testutil.FakeChip) *fakePirate {
	return &fakePirate{chip: chip}
}

func (p *fakePirate) Write(b []byte) (int, error) {
	for _, c := range b {
		p.handle(c)
	}
	return len(b), nil
}

func (p *fakePirate) handle(c byte) {
	if p.bulkPending {
		p.bulkPending = false
		r, _ := p.chip.Exchange(c)
		p.out = append(p.out, replyOK, r)
		return
	}

	switch {
	case c == cmdReset:
		p.resets++
		if p.resets <= p.ignoreReset {
			return
		}
		p.mode = modeBBIO
		p.out = append(p.out, bbioBanner...)
	case p.mode == modeBBIO && c == cmdEnterSPI:
		p.mode = modeSPI
		p.out = append(p.out, spiBanner...)
	case p.mode == modeBBIO && c == cmdExit:
		p.mode = modeTerminal
		p.exited = true
		p.out = append(p.out, replyOK)
	case p.mode == modeSPI && (c == cmdCSLow || c == cmdCSHigh):
		_ = p.chip.Select(c == cmdCSLow)
		p.out = append(p.out, replyOK)
	case p.mode == modeSPI && c == cmdBulk:
		p.bulkPending = true
	case p.mode == modeSPI && c&0xF0 >= cmdPeripheral:
		p.configs = append(p.configs, c)
		p.out = append(p.out, replyOK)
	}
}

func (p *fakePirate) Read(b []byte) (int, error) {
	n := copy(b, p.out)
	p.out = p.out[n:]
	return n, nil
}

func (p *fakePirate) Close() error {
	p.closed = true
	return nil
}

func TestNew_EntersSPIMode(t *testing.T) {
	t.Parallel()

	pirate := newFakePirate(testutil.NewFakeChip())
	pirate.ignoreReset = 5

	bus, err := New(context.Background(), pirate, "/dev/ttyUSB0", DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, bus)

	assert.Equal(t, 6, pirate.resets)
	assert.Equal(t, modeSPI, pirate.mode)
	assert.Equal(t, []byte{0x63, 0x8A, 0x49}, pirate.configs)
}

func TestNew_Config(t *testing.T) {
	t.Parallel()

	pirate := newFakePirate(testutil.NewFakeChip())
	cfg := Config{Speed: Speed4MHz, PullUps: true}

	_, err := New(context.Background(), pirate, "bp", cfg)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x66, 0x8A, 0x45}, pirate.configs)

	_, err = New(context.Background(), newFakePirate(testutil.NewFakeChip()), "bp", Config{Speed: 0x08})
	require.Error(t, err)
}

func TestNew_NoBinaryMode(t *testing.T) {
	t.Parallel()

	pirate := newFakePirate(testutil.NewFakeChip())
	pirate.ignoreReset = maxResetAttempts

	_, err := New(context.Background(), pirate, "/dev/ttyUSB0", DefaultConfig())
	require.ErrorIs(t, err, ErrNoBinaryMode)
	assert.True(t, errors.Is(err, ErrReadTimeout) || errors.Is(err, ErrBadReply), "last cause lost: %v", err)
	assert.Equal(t, maxResetAttempts, pirate.resets)
}

func TestBus_Close(t *testing.T) {
	t.Parallel()

	pirate := newFakePirate(testutil.NewFakeChip())
	bus, err := New(context.Background(), pirate, "bp", DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	assert.True(t, pirate.exited)
	assert.True(t, pirate.closed)
	assert.Equal(t, modeTerminal, pirate.mode)
}

func TestBus_BadBulkReply(t *testing.T) {
	t.Parallel()

	pirate := newFakePirate(testutil.NewFakeChip())
	bus, err := New(context.Background(), pirate, "bp", DefaultConfig())
	require.NoError(t, err)

	pirate.mode = modeTerminal
	_, err = bus.Exchange(0x01)
	require.True(t, errors.Is(err, ErrReadTimeout) || errors.Is(err, ErrBadReply), "got %v", err)
}

func TestBus_FirmwareOverSPI(t *testing.T) {
	t.Parallel()

	chip := testutil.NewFakeChip()
	chip.Respond(testutil.CmdGetFirmwareVersion, testutil.BuildFirmwareVersionResponse())

	bus, err := New(context.Background(), newFakePirate(chip), "bp", DefaultConfig())
	require.NoError(t, err)

	tr, err := spi.New(bus, spi.WithTick(0), spi.WithName("bp"))
	require.NoError(t, err)

	device, err := pn532.New(tr)
	require.NoError(t, err)

	fw, err := device.GetFirmwareVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.6", fw.Version)
	assert.False(t, chip.Selected())
}
