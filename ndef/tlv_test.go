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

package ndef

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTLV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr error
		name    string
		data    []byte
		want    []byte
	}{
		{name: "empty data", data: []byte{}, wantErr: ErrNoNDEFTLV},
		{name: "only null padding", data: []byte{0x00, 0x00, 0x00}, wantErr: ErrNoNDEFTLV},
		{name: "simple NDEF TLV", data: []byte{0x03, 0x05, 0x01, 0x02, 0x03, 0x04, 0x05}, want: []byte{0x01, 0x02, 0x03, 0x04, 0x05}},
		{name: "NDEF TLV after padding", data: []byte{0x00, 0x00, 0x03, 0x03, 0xAA, 0xBB, 0xCC}, want: []byte{0xAA, 0xBB, 0xCC}},
		{name: "after lock control TLV", data: []byte{0x01, 0x03, 0xA0, 0x0C, 0x34, 0x03, 0x02, 0x11, 0x22, 0xFE}, want: []byte{0x11, 0x22}},
		{name: "zero length", data: []byte{0x03, 0x00, 0xFE}, want: []byte{}},
		{name: "terminator first", data: []byte{0xFE, 0x03, 0x01, 0xAA}, wantErr: ErrNoNDEFTLV},
		{name: "long form", data: append([]byte{0x03, 0xFF, 0x00, 0x02}, 0xAA, 0xBB), want: []byte{0xAA, 0xBB}},
		{name: "truncated value", data: []byte{0x03, 0x10, 0x01, 0x02}, wantErr: ErrTLVTruncated},
		{name: "truncated length", data: []byte{0x03}, wantErr: ErrTLVTruncated},
		{name: "truncated long length", data: []byte{0x03, 0xFF, 0x01}, wantErr: ErrTLVTruncated},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ExtractTLV(tt.data)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractTLV() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTLVLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		data       []byte
		i          int
		wantLength int
		wantStart  int
		wantErr    bool
	}{
		{name: "short form", data: []byte{0x03, 0x05, 0x01}, wantLength: 5, wantStart: 2},
		{name: "zero length", data: []byte{0x03, 0x00}, wantLength: 0, wantStart: 2},
		{name: "long form", data: []byte{0x03, 0xFF, 0x01, 0x00}, wantLength: 256, wantStart: 4},
		{name: "at offset", data: []byte{0x03, 0x05, 0x02}, i: 1, wantLength: 2, wantStart: 3},
		{name: "long form without length bytes", data: []byte{0x03, 0xFF}, wantErr: true},
		{name: "incomplete long form", data: []byte{0x03, 0xFF, 0x01}, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			length, start, err := parseTLVLength(tt.data, tt.i)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrTLVTruncated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLength, length)
			assert.Equal(t, tt.wantStart, start)
		})
	}
}

func TestWrapTLV(t *testing.T) {
	t.Parallel()

	short, err := WrapTLV([]byte{0xD1, 0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0x02, 0xD1, 0x01, 0xFE}, short)

	msg := bytes.Repeat([]byte{0x42}, 300)
	long, err := WrapTLV(msg)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03, 0xFF, 0x01, 0x2C}, long[:4])
	assert.Equal(t, byte(0xFE), long[len(long)-1])

	value, err := ExtractTLV(long)
	require.NoError(t, err)
	assert.Equal(t, msg, value)

	_, err = WrapTLV(make([]byte, 0x10000))
	require.ErrorIs(t, err, ErrInvalidRecord)
}

func TestReadMessage(t *testing.T) {
	t.Parallel()

	encoded, err := NewMessage(NewURIRecord("https://zaparoo.org")).Encode()
	require.NoError(t, err)
	wrapped, err := WrapTLV(encoded)
	require.NoError(t, err)

	// tag memory: lock control TLV, the NDEF TLV, then zero fill
	memory := append([]byte{0x01, 0x03, 0xA0, 0x0C, 0x34}, wrapped...)
	memory = append(memory, make([]byte, 16)...)

	msg, err := ReadMessage(memory)
	require.NoError(t, err)
	require.Len(t, msg.Records, 1)

	uri, err := msg.Records[0].URI()
	require.NoError(t, err)
	assert.Equal(t, "https://zaparoo.org", uri)
}
