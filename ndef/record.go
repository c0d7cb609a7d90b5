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

// Package ndef encodes NFC Data Exchange Format records and messages and
// handles the TLV container used on Type 2 tags.
package ndef

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// TNF is the 3-bit Type Name Format of a record
type TNF byte

// Type Name Formats
const (
	TNFEmpty        TNF = 0x00
	TNFWellKnown    TNF = 0x01
	TNFMIMEMedia    TNF = 0x02
	TNFAbsoluteURI  TNF = 0x03
	TNFExternalType TNF = 0x04
	TNFUnknown      TNF = 0x05
	TNFUnchanged    TNF = 0x06
	TNFReserved     TNF = 0x07
)

// Record header flags
const (
	FlagMB  = 0x80 // Message Begin
	FlagME  = 0x40 // Message End
	FlagCF  = 0x20 // Chunk Flag, never set by this encoder
	FlagSR  = 0x10 // Short Record
	FlagIL  = 0x08 // ID Length present
	tnfMask = 0x07
)

const (
	maxFieldLength  = 255
	shortRecordSize = 256
)

// Encoding errors
var (
	ErrBufferTooSmall = errors.New("ndef: buffer too small")
	ErrInvalidRecord  = errors.New("ndef: invalid record")
	ErrEmptyMessage   = errors.New("ndef: message has no records")
)

// Record is one NDEF record. Lengths are derived from the slices.
type Record struct {
	Type    []byte
	Payload []byte
	ID      []byte
	TNF     TNF
}

// String implements fmt.Stringer
func (tnf TNF) String() string {
	switch tnf {
	case TNFEmpty:
		return "empty"
	case TNFWellKnown:
		return "well-known"
	case TNFMIMEMedia:
		return "mime-media"
	case TNFAbsoluteURI:
		return "absolute-uri"
	case TNFExternalType:
		return "external"
	case TNFUnknown:
		return "unknown"
	case TNFUnchanged:
		return "unchanged"
	case TNFReserved:
		return "reserved"
	default:
		return fmt.Sprintf("TNF(0x%02X)", byte(tnf))
	}
}

// Validate checks the record can be encoded
func (r *Record) Validate() error {
	switch {
	case r.TNF > TNFReserved:
		return fmt.Errorf("%w: TNF 0x%02X", ErrInvalidRecord, byte(r.TNF))
	case len(r.Type) > maxFieldLength:
		return fmt.Errorf("%w: type length %d", ErrInvalidRecord, len(r.Type))
	case len(r.ID) > maxFieldLength:
		return fmt.Errorf("%w: ID length %d", ErrInvalidRecord, len(r.ID))
	case uint64(len(r.Payload)) > 0xFFFFFFFF:
		return fmt.Errorf("%w: payload length %d", ErrInvalidRecord, len(r.Payload))
	}

	switch r.TNF {
	case TNFEmpty:
		if len(r.Type) != 0 || len(r.ID) != 0 || len(r.Payload) != 0 {
			return fmt.Errorf("%w: empty record carries data", ErrInvalidRecord)
		}
	case TNFWellKnown, TNFMIMEMedia, TNFAbsoluteURI, TNFExternalType:
		if len(r.Type) == 0 {
			return fmt.Errorf("%w: %s record without type", ErrInvalidRecord, r.TNF)
		}
	case TNFUnknown, TNFUnchanged:
		if len(r.Type) != 0 {
			return fmt.Errorf("%w: %s record with type", ErrInvalidRecord, r.TNF)
		}
	}
	return nil
}

// Header returns the flags-and-TNF byte for the record at the given
// position in its message.
func (r *Record) Header(first, last bool) byte {
	h := byte(r.TNF) & tnfMask
	if first {
		h |= FlagMB
	}
	if last {
		h |= FlagME
	}
	if r.short() {
		h |= FlagSR
	}
	if len(r.ID) > 0 {
		h |= FlagIL
	}
	return h
}

func (r *Record) short() bool {
	return len(r.Payload) < shortRecordSize
}

// EncodedSize returns the number of bytes Encode writes
func (r *Record) EncodedSize() int {
	size := 2 // header + type length
	if r.short() {
		size++
	} else {
		size += 4
	}
	if len(r.ID) > 0 {
		size++
	}
	return size + len(r.Type) + len(r.ID) + len(r.Payload)
}

// Encode writes the record into buf and returns the number of bytes used
func (r *Record) Encode(buf []byte, first, last bool) (int, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	size := r.EncodedSize()
	if len(buf) < size {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, size, len(buf))
	}

	buf[0] = r.Header(first, last)
	buf[1] = byte(len(r.Type))
	n := 2
	if r.short() {
		buf[n] = byte(len(r.Payload))
		n++
	} else {
		binary.BigEndian.PutUint32(buf[n:], uint32(len(r.Payload)))
		n += 4
	}
	if len(r.ID) > 0 {
		buf[n] = byte(len(r.ID))
		n++
	}
	n += copy(buf[n:], r.Type)
	n += copy(buf[n:], r.ID)
	n += copy(buf[n:], r.Payload)
	return n, nil
}

// AppendEncoded appends the encoded record to dst
func (r *Record) AppendEncoded(dst []byte, first, last bool) ([]byte, error) {
	start := len(dst)
	size := r.EncodedSize()
	if cap(dst)-start < size {
		grown := make([]byte, start, start+size)
		copy(grown, dst)
		dst = grown
	}
	dst = dst[:start+size]
	if _, err := r.Encode(dst[start:], first, last); err != nil {
		return dst[:start], err
	}
	return dst, nil
}
