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
	"fmt"

	gondef "github.com/hsanjuan/go-ndef"
)

// Message is an ordered list of records
type Message struct {
	Records []Record
}

// NewMessage returns a message holding records
func NewMessage(records ...Record) *Message {
	return &Message{Records: records}
}

// EncodedSize returns the number of bytes Encode produces
func (m *Message) EncodedSize() int {
	size := 0
	for i := range m.Records {
		size += m.Records[i].EncodedSize()
	}
	return size
}

// Encode serializes the message. The first record gets MB and the last ME.
func (m *Message) Encode() ([]byte, error) {
	if len(m.Records) == 0 {
		return nil, ErrEmptyMessage
	}

	out := make([]byte, 0, m.EncodedSize())
	last := len(m.Records) - 1
	for i := range m.Records {
		var err error
		out, err = m.Records[i].AppendEncoded(out, i == 0, i == last)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return out, nil
}

// ParseMessage decodes an NDEF message
func ParseMessage(data []byte) (*Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}

	var parsed gondef.Message
	if _, err := parsed.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("ndef: parse message: %w", err)
	}

	msg := &Message{Records: make([]Record, 0, len(parsed.Records))}
	for i, rec := range parsed.Records {
		payload, err := rec.Payload()
		if err != nil {
			return nil, fmt.Errorf("ndef: record %d payload: %w", i, err)
		}

		r := Record{TNF: TNF(rec.TNF())}
		if typ := rec.Type(); typ != "" {
			r.Type = []byte(typ)
		}
		if id := rec.ID(); id != "" {
			r.ID = []byte(id)
		}
		if payload != nil {
			if raw := payload.Marshal(); len(raw) > 0 {
				r.Payload = raw
			}
		}
		msg.Records = append(msg.Records, r)
	}
	return msg, nil
}
