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
	"strings"
	"unicode/utf8"

	"github.com/hsanjuan/go-ndef/types/wkt/text"
	"github.com/hsanjuan/go-ndef/types/wkt/uri"
)

// Well-known record types
var (
	TypeURI  = []byte("U")
	TypeText = []byte("T")
)

const (
	maxLanguageCodeLength = 0x3F
	textStatusUTF16       = 0x80
)

// NewURIRecord returns a well-known URI record. The first scheme prefix in
// identifier code order is abbreviated, so "urn:epc:id:x" is stored as
// code 0x13 ("urn:") followed by "epc:id:x".
func NewURIRecord(u string) Record {
	return Record{TNF: TNFWellKnown, Type: TypeURI, Payload: uri.New(u).Marshal()}
}

// NewTextRecord returns a UTF-8 well-known text record
func NewTextRecord(s, lang string) (Record, error) {
	if lang == "" {
		lang = "en"
	}
	if len(lang) > maxLanguageCodeLength {
		return Record{}, fmt.Errorf("%w: language code %q too long", ErrInvalidRecord, lang)
	}
	if !utf8.ValidString(s) {
		return Record{}, fmt.Errorf("%w: text is not valid UTF-8", ErrInvalidRecord)
	}
	return Record{TNF: TNFWellKnown, Type: TypeText, Payload: text.New(s, lang).Marshal()}, nil
}

// NewMIMERecord returns a MIME media record
func NewMIMERecord(mimeType string, data []byte) Record {
	return Record{TNF: TNFMIMEMedia, Type: []byte(mimeType), Payload: data}
}

// NewExternalRecord returns an NFC Forum external type record
// (domain:type, lower-cased).
func NewExternalRecord(domain, typ string, data []byte) Record {
	name := strings.ToLower(domain + ":" + typ)
	return Record{TNF: TNFExternalType, Type: []byte(name), Payload: data}
}

// URI decodes a well-known URI record
func (r *Record) URI() (string, error) {
	if r.TNF != TNFWellKnown || string(r.Type) != string(TypeURI) {
		return "", fmt.Errorf("%w: not a URI record", ErrInvalidRecord)
	}
	if len(r.Payload) == 0 {
		return "", fmt.Errorf("%w: empty URI payload", ErrInvalidRecord)
	}

	var p uri.Payload
	p.Unmarshal(r.Payload)
	if _, ok := uri.URIProtocols[p.IdentCode]; !ok {
		return "", fmt.Errorf("%w: URI identifier code 0x%02X", ErrInvalidRecord, p.IdentCode)
	}
	return p.String(), nil
}

// Text decodes a well-known text record into its text and language code.
// Only UTF-8 text is accepted.
func (r *Record) Text() (s, lang string, err error) {
	if r.TNF != TNFWellKnown || string(r.Type) != string(TypeText) {
		return "", "", fmt.Errorf("%w: not a text record", ErrInvalidRecord)
	}
	if len(r.Payload) == 0 {
		return "", "", fmt.Errorf("%w: empty text payload", ErrInvalidRecord)
	}

	status := r.Payload[0]
	if status&textStatusUTF16 != 0 {
		return "", "", fmt.Errorf("%w: UTF-16 text is not supported", ErrInvalidRecord)
	}
	if 1+int(status&maxLanguageCodeLength) > len(r.Payload) {
		return "", "", fmt.Errorf("%w: language code overruns payload", ErrInvalidRecord)
	}

	var p text.Payload
	p.Unmarshal(r.Payload)
	return p.Text, p.Language, nil
}
