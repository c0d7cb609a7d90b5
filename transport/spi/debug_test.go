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


package spi

import (
	"bytes"
	"context"
	"testing"

	pn532 "github.com/ZaparooProject/go-pn532-spi"
	"github.com/ZaparooProject/go-pn532-spi/internal/frame"
	testutil "github.com/ZaparooProject/go-pn532-spi/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureDebug routes library debug output into a buffer for the duration
// of the test. It swaps global state, so callers must not run in parallel.
func captureDebug(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	pn532.SetLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))
	pn532.SetDebugEnabled(true)
	t.Cleanup(func() {
		pn532.SetDebugEnabled(false)
		pn532.SetLogger(zerolog.Nop())
	})
	return &buf
}

func TestDebugLogging_Exchange(t *testing.T) {
	buf := captureDebug(t)

	chip := testutil.NewFakeChip()
	chip.CorruptResponses = 1
	chip.Respond(testutil.CmdGetFirmwareVersion, testutil.BuildFirmwareVersionResponse())
	tr := newTestTransport(t, chip)

	_, err := tr.SendCommand(context.Background(), testutil.CmdGetFirmwareVersion, nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"SPI send"`)
	assert.Contains(t, out, `"message":"SPI recv"`)
	assert.Contains(t, out, `"message":"corrupted response, sending NACK"`)
	assert.Contains(t, out, `"port":"fake"`)
}

func TestDebugLogging_ACKMismatch(t *testing.T) {
	buf := captureDebug(t)

	chip := testutil.NewFakeChip()
	chip.SetAck(frame.NackFrame)
	tr := newTestTransport(t, chip)
	require.NoError(t, tr.WriteCommand(context.Background(), []byte{0x02}))

	acked, err := tr.CheckACK(context.Background())
	require.NoError(t, err)
	assert.False(t, acked)
	assert.Contains(t, buf.String(), `"message":"ACK mismatch"`)
}

func TestDebugLogging_DisabledIsSilent(t *testing.T) {
	var buf bytes.Buffer
	pn532.SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { pn532.SetLogger(zerolog.Nop()) })

	chip := testutil.NewFakeChip()
	chip.Respond(testutil.CmdGetFirmwareVersion, testutil.BuildFirmwareVersionResponse())
	tr := newTestTransport(t, chip)

	_, err := tr.SendCommand(context.Background(), testutil.CmdGetFirmwareVersion, nil)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}
