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

package frame

import (
	"bytes"
	"errors"
)

// Frame parsing errors
var (
	ErrNoStartCode      = errors.New("frame start code not found")
	ErrShortFrame       = errors.New("frame truncated")
	ErrLengthChecksum   = errors.New("frame length checksum mismatch")
	ErrDataChecksum     = errors.New("frame data checksum mismatch")
	ErrFrameTooLarge    = errors.New("frame data exceeds normal frame length")
	ErrApplicationError = errors.New("PN532 application error frame")
	ErrUnexpectedAck    = errors.New("unexpected ACK frame")
	ErrUnexpectedNack   = errors.New("unexpected NACK frame")
)

// BuildFrame assembles a normal information frame around data:
// PREAMBLE 00 FF LEN LCS TFI DATA... DCS POSTAMBLE.
func BuildFrame(tfi byte, data []byte) ([]byte, error) {
	if len(data)+1 > MaxFrameDataLength {
		return nil, ErrFrameTooLarge
	}

	length := byte(len(data) + 1)
	out := make([]byte, 0, len(data)+8)
	out = append(out, Preamble, StartCode1, StartCode2, length, CalculateLengthChecksum(length), tfi)
	out = append(out, data...)
	out = append(out, CalculateDataChecksum(tfi, data), Postamble)
	return out, nil
}

// FindStartCode returns the offset of the LEN byte following the first
// 00 FF start code in buf, or -1 if none is present.
func FindStartCode(buf []byte) int {
	idx := bytes.Index(buf, []byte{StartCode1, StartCode2})
	if idx < 0 {
		return -1
	}
	return idx + 2
}

// ParseFrame validates a normal information frame and returns its TFI and
// data. Leading bytes before the start code are skipped. The returned data
// aliases raw.
func ParseFrame(raw []byte) (tfi byte, data []byte, err error) {
	off := FindStartCode(raw)
	if off < 0 {
		return 0, nil, ErrNoStartCode
	}
	if off+1 >= len(raw) {
		return 0, nil, ErrShortFrame
	}

	length, lcs := raw[off], raw[off+1]
	switch {
	case length == 0x00 && lcs == 0xFF:
		return 0, nil, ErrUnexpectedAck
	case length == 0xFF && lcs == 0x00:
		return 0, nil, ErrUnexpectedNack
	case length+lcs != 0:
		return 0, nil, ErrLengthChecksum
	case length == 0:
		return 0, nil, ErrShortFrame
	}

	start := off + 2
	end := start + int(length)
	if end >= len(raw) {
		return 0, nil, ErrShortFrame
	}

	// TFI + data + DCS must sum to zero
	if ValidateChecksum(raw[start : end+1]) {
		return 0, nil, ErrDataChecksum
	}

	tfi = raw[start]
	if tfi == ErrorFrameTFI {
		return tfi, raw[start+1 : end], ErrApplicationError
	}
	return tfi, raw[start+1 : end], nil
}

// IsAck reports whether buf is exactly the ACK frame.
func IsAck(buf []byte) bool {
	return bytes.Equal(buf, AckFrame)
}

// IsNack reports whether buf is exactly the NACK frame
func IsNack(buf []byte) bool {
	return bytes.Equal(buf, NackFrame)
}
