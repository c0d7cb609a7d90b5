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

package tinygo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tinygo.org/x/drivers"
)

type fakeSPI struct {
	err  error
	sent []byte
	echo byte
}

func (s *fakeSPI) Tx(w, r []byte) error {
	s.sent = append(s.sent, w...)
	for i := range r {
		r[i] = s.echo
	}
	return s.err
}

func (s *fakeSPI) Transfer(b byte) (byte, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.sent = append(s.sent, b)
	return s.echo, nil
}

type fakePin struct {
	history []bool
}

func (p *fakePin) High() { p.history = append(p.history, true) }
func (p *fakePin) Low()  { p.history = append(p.history, false) }

var _ drivers.SPI = (*fakeSPI)(nil)

func TestBus(t *testing.T) {
	t.Parallel()

	spi := &fakeSPI{echo: 0x80}
	pin := &fakePin{}

	bus, err := New(spi, pin)
	require.NoError(t, err)

	require.NoError(t, bus.Select(true))
	got, err := bus.Exchange(0x40)
	require.NoError(t, err)
	require.NoError(t, bus.Select(false))

	assert.Equal(t, byte(0x80), got)
	assert.Equal(t, []byte{0x40}, spi.sent)
	assert.Equal(t, []bool{true, false, true}, pin.history)
}

func TestBus_Errors(t *testing.T) {
	t.Parallel()

	_, err := New(nil, &fakePin{})
	require.Error(t, err)

	errSPI := errors.New("spi timeout")
	bus, err := New(&fakeSPI{err: errSPI}, &fakePin{})
	require.NoError(t, err)

	_, err = bus.Exchange(0x01)
	require.ErrorIs(t, err, errSPI)
}
