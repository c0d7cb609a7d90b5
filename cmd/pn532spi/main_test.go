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

package main

import (
	"encoding/hex"
	"testing"

	pn532 "github.com/ZaparooProject/go-pn532-spi"
	"github.com/ZaparooProject/go-pn532-spi/detection"
	"github.com/ZaparooProject/go-pn532-spi/transport/spi/buspirate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNDEF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    string
		value   string
		want    string
		wantErr bool
	}{
		{
			name:  "uri with https prefix",
			kind:  "uri",
			value: "https://example.com",
			want:  "0310d1010c5504" + "6578616d706c652e636f6d" + "fe",
		},
		{
			name:  "text",
			kind:  "text",
			value: "hi",
			want:  "0309d10105540265" + "6e6869" + "fe",
		},
		{
			name:    "unknown kind",
			kind:    "vcard",
			value:   "x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := encodeNDEF(tt.kind, tt.value)
			if tt.wantErr {
				require.ErrorIs(t, err, errUsage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, hex.EncodeToString(got))
		})
	}
}

func TestDecodeNDEF(t *testing.T) {
	t.Parallel()

	tlv, err := encodeNDEF("uri", "https://example.com")
	require.NoError(t, err)

	lines, err := decodeNDEF(hex.EncodeToString(tlv))
	require.NoError(t, err)
	assert.Equal(t, []string{"uri: https://example.com"}, lines)

	// bare message without the TLV wrapper
	lines, err = decodeNDEF(hex.EncodeToString(tlv[2 : len(tlv)-1]))
	require.NoError(t, err)
	assert.Equal(t, []string{"uri: https://example.com"}, lines)

	text, err := encodeNDEF("text", "hello")
	require.NoError(t, err)
	lines, err = decodeNDEF(hex.EncodeToString(text))
	require.NoError(t, err)
	assert.Equal(t, []string{"text (en): hello"}, lines)

	_, err = decodeNDEF("zz")
	require.Error(t, err)

	_, err = decodeNDEF("")
	require.Error(t, err)
}

func TestParseDiagnoseArgs(t *testing.T) {
	t.Parallel()

	test, data, err := parseDiagnoseArgs([]string{"0", "cafe"})
	require.NoError(t, err)
	assert.Equal(t, byte(pn532.DiagnoseCommunicationTest), test)
	assert.Equal(t, []byte{0xCA, 0xFE}, data)

	test, data, err = parseDiagnoseArgs([]string{"0x07"})
	require.NoError(t, err)
	assert.Equal(t, byte(pn532.DiagnoseSelfAntennaTest), test)
	assert.Nil(t, data)

	_, _, err = parseDiagnoseArgs(nil)
	require.ErrorIs(t, err, errUsage)

	_, _, err = parseDiagnoseArgs([]string{"256"})
	require.Error(t, err)

	_, _, err = parseDiagnoseArgs([]string{"1", "xyz"})
	require.Error(t, err)
}

func TestParseBusPirateSpeed(t *testing.T) {
	t.Parallel()

	tests := map[string]buspirate.Speed{
		"30k":    buspirate.Speed30kHz,
		"1M":     buspirate.Speed1MHz,
		"2.6MHz": buspirate.Speed2600kHz,
		" 8m ":   buspirate.Speed8MHz,
	}
	for in, want := range tests {
		got, err := parseBusPirateSpeed(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseBusPirateSpeed("3M")
	require.ErrorIs(t, err, pn532.ErrInvalidParameter)
}

func TestPickDevice(t *testing.T) {
	t.Parallel()

	devices := []detection.DeviceInfo{
		{Transport: "buspirate", Path: "/dev/ttyACM0"},
		{Transport: "spi", Path: "/dev/spidev0.0"},
	}

	got, err := pickDevice(devices, "")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", got.Path)

	got, err = pickDevice(devices, "/dev/spidev0.0")
	require.NoError(t, err)
	assert.Equal(t, "spi", got.Transport)

	_, err = pickDevice(devices, "/dev/spidev1.0")
	require.ErrorIs(t, err, detection.ErrNoDevicesFound)
}
