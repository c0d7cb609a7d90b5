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
	"context"
	"errors"
	"fmt"

	pn532 "github.com/ZaparooProject/go-pn532-spi"
	"github.com/ZaparooProject/go-pn532-spi/internal/frame"
)

// WriteCommand frames cmd and writes it in one chip-select window:
// DATAWRITE 00 00 FF LEN LCS D4 cmd... DCS 00. cmd is only read.
func (t *Transport) WriteCommand(ctx context.Context, cmd []byte) error {
	if len(cmd) == 0 {
		return fmt.Errorf("%w: empty command", pn532.ErrInvalidParameter)
	}
	if len(cmd)+1 > frame.MaxFrameDataLength {
		return pn532.NewDataTooLargeError("writeCommand", t.name)
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	length := byte(len(cmd) + 1)
	return t.window(frame.SPIDataWrite, func() error {
		header := [...]byte{
			frame.Preamble, frame.StartCode1, frame.StartCode2,
			length, frame.CalculateLengthChecksum(length), frame.HostToPn532,
		}
		for _, b := range header {
			if err := t.writeByte(b); err != nil {
				return err
			}
		}

		sum := byte(frame.HostToPn532)
		for _, b := range cmd {
			sum += b
			if err := t.writeByte(b); err != nil {
				return err
			}
		}

		if err := t.writeByte(^sum + 1); err != nil {
			return err
		}
		return t.writeByte(frame.Postamble)
	})
}

// writeRaw writes pre-built bytes (ACK/NACK) in a data-write window
func (t *Transport) writeRaw(raw []byte) error {
	return t.window(frame.SPIDataWrite, func() error {
		for _, b := range raw {
			if err := t.writeByte(b); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadData fills buf with raw bytes from one data-read window. Nothing
// is validated.
func (t *Transport) ReadData(ctx context.Context, buf []byte) error {
	if len(buf) == 0 {
		return fmt.Errorf("%w: empty read buffer", pn532.ErrInvalidParameter)
	}
	if err := checkContext(ctx); err != nil {
		return err
	}

	return t.window(frame.SPIDataRead, func() error {
		for i := range buf {
			b, err := t.readByte()
			if err != nil {
				return err
			}
			buf[i] = b
		}
		return nil
	})
}

// ReadFrame reads one response frame and returns the data following the
// TFI. Start code, both checksums and the direction byte are validated.
func (t *Transport) ReadFrame(ctx context.Context) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	var raw []byte
	err := t.window(frame.SPIDataRead, func() error {
		var err error
		raw, err = t.readRawFrame()
		return err
	})
	if err != nil {
		return nil, err
	}

	tfi, data, err := frame.ParseFrame(raw)
	if err != nil {
		return nil, t.frameError(err)
	}
	if tfi != frame.Pn532ToHost {
		return nil, pn532.NewTransportError("readFrame", t.name,
			fmt.Errorf("%w: TFI 0x%02X", pn532.ErrFrameCorrupted, tfi), pn532.ErrorTypeTransient)
	}
	return data, nil
}

// readRawFrame clocks in bytes from the start code through the postamble
func (t *Transport) readRawFrame() ([]byte, error) {
	prev := byte(0xFF)
	found := false
	for i := 0; i < maxStartCodeSearch; i++ {
		b, err := t.readByte()
		if err != nil {
			return nil, err
		}
		if prev == frame.StartCode1 && b == frame.StartCode2 {
			found = true
			break
		}
		prev = b
	}
	if !found {
		return nil, pn532.NewTransportError("readFrame", t.name,
			fmt.Errorf("%w: %w", pn532.ErrFrameCorrupted, frame.ErrNoStartCode), pn532.ErrorTypeTransient)
	}

	raw := make([]byte, 0, 2+2+frame.MaxFrameDataLength+2)
	raw = append(raw, frame.StartCode1, frame.StartCode2)

	lenBytes := [2]byte{}
	for i := range lenBytes {
		b, err := t.readByte()
		if err != nil {
			return nil, err
		}
		lenBytes[i] = b
	}
	raw = append(raw, lenBytes[:]...)

	length, lcs := lenBytes[0], lenBytes[1]
	if length+lcs != 0 || length == 0 {
		// ACK, NACK or a broken length: ParseFrame classifies it
		return raw, nil
	}

	// TFI + data, DCS, postamble
	for i := 0; i < int(length)+2; i++ {
		b, err := t.readByte()
		if err != nil {
			return nil, err
		}
		raw = append(raw, b)
	}
	return raw, nil
}

func (t *Transport) frameError(err error) error {
	switch {
	case errors.Is(err, frame.ErrApplicationError):
		return pn532.NewTransportError("readFrame", t.name,
			fmt.Errorf("%w: %w", pn532.ErrInvalidResponse, err), pn532.ErrorTypePermanent)
	case errors.Is(err, frame.ErrLengthChecksum), errors.Is(err, frame.ErrDataChecksum):
		return pn532.NewTransportError("readFrame", t.name,
			fmt.Errorf("%w: %w", pn532.ErrChecksumMismatch, err), pn532.ErrorTypeTransient)
	default:
		return pn532.NewTransportError("readFrame", t.name,
			fmt.Errorf("%w: %w", pn532.ErrFrameCorrupted, err), pn532.ErrorTypeTransient)
	}
}
