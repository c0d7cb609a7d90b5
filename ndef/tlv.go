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
	"errors"
	"fmt"
)

// TLV block types on Type 2 tags
const (
	TLVNull       = 0x00
	TLVLockCtrl   = 0x01
	TLVMemoryCtrl = 0x02
	TLVNDEF       = 0x03
	TLVTerminator = 0xFE

	tlvLongForm = 0xFF
)

// TLV errors
var (
	ErrNoNDEFTLV    = errors.New("ndef: no NDEF TLV found")
	ErrTLVTruncated = errors.New("ndef: TLV truncated")
)

// WrapTLV wraps an encoded message in an NDEF TLV followed by a terminator
func WrapTLV(msg []byte) ([]byte, error) {
	if len(msg) > 0xFFFE {
		return nil, fmt.Errorf("%w: message of %d bytes does not fit a TLV", ErrInvalidRecord, len(msg))
	}

	out := make([]byte, 0, len(msg)+5)
	out = append(out, TLVNDEF)
	if len(msg) < tlvLongForm {
		out = append(out, byte(len(msg)))
	} else {
		out = append(out, tlvLongForm, byte(len(msg)>>8), byte(len(msg)))
	}
	out = append(out, msg...)
	return append(out, TLVTerminator), nil
}

// ExtractTLV returns the value of the first NDEF TLV in data, skipping
// NULL and other TLV blocks. The result aliases data.
func ExtractTLV(data []byte) ([]byte, error) {
	value, found, err := findNDEFTLV(data)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoNDEFTLV
	}
	return value, nil
}

// ReadMessage extracts the NDEF TLV from tag memory and parses it
func ReadMessage(data []byte) (*Message, error) {
	value, err := ExtractTLV(data)
	if err != nil {
		return nil, err
	}
	return ParseMessage(value)
}

func findNDEFTLV(data []byte) (value []byte, found bool, err error) {
	for i := 0; i < len(data); {
		switch data[i] {
		case TLVNull:
			i++
			continue
		case TLVTerminator:
			return nil, false, nil
		}

		length, start, err := parseTLVLength(data, i)
		if err != nil {
			return nil, false, err
		}
		if start+length > len(data) {
			return nil, false, fmt.Errorf("%w: TLV 0x%02X claims %d bytes, %d left",
				ErrTLVTruncated, data[i], length, len(data)-start)
		}
		if data[i] == TLVNDEF {
			return data[start : start+length], true, nil
		}
		i = start + length
	}
	return nil, false, nil
}

// parseTLVLength decodes the length of the TLV whose tag is at data[i] and
// returns it together with the offset of the value.
func parseTLVLength(data []byte, i int) (length, start int, err error) {
	if i+1 >= len(data) {
		return 0, 0, fmt.Errorf("%w: missing length at offset %d", ErrTLVTruncated, i+1)
	}
	if data[i+1] != tlvLongForm {
		return int(data[i+1]), i + 2, nil
	}
	if i+3 >= len(data) {
		return 0, 0, fmt.Errorf("%w: missing 3-byte length at offset %d", ErrTLVTruncated, i+1)
	}
	return int(data[i+2])<<8 | int(data[i+3]), i + 4, nil
}
