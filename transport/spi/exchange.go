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
	"encoding/binary"
	"errors"
	"fmt"

	pn532 "github.com/ZaparooProject/go-pn532-spi"
	"github.com/ZaparooProject/go-pn532-spi/internal/frame"
	"github.com/ZaparooProject/go-pn532-spi/internal/transport"
)

// firmwareResponseLength is the number of raw bytes read back by
// GetFirmwareVersion
const firmwareResponseLength = 12

// WaitReady polls the status byte until the chip reports a pending frame.
// It returns false without error after budget unsuccessful polls.
func (t *Transport) WaitReady(ctx context.Context, budget int) (bool, error) {
	cfg := transport.PollConfig{
		Budget:   budget,
		Interval: t.tick,
		Sleep:    t.sleep,
	}

	return transport.Poll(ctx, cfg, func() (bool, error) {
		var status byte
		err := t.window(frame.SPIStatusRead, func() error {
			var err error
			status, err = t.readByte()
			return err
		})
		if err != nil {
			return false, err
		}
		return status == frame.SPIReady, nil
	})
}

// CheckACK reads six bytes and reports whether they are exactly the ACK
// frame. It does not retry.
func (t *Transport) CheckACK(ctx context.Context) (bool, error) {
	var buf [frame.AckFrameLength]byte
	if err := t.ReadData(ctx, buf[:]); err != nil {
		return false, err
	}
	if !frame.IsAck(buf[:]) {
		logger := pn532.Logger()
		logger.Debug().Str("port", t.name).Hex("got", buf[:]).Msg("ACK mismatch")
		return false, nil
	}
	return true, nil
}

// Execute writes cmd, waits for the chip, validates the ACK and waits for
// the response. Each step must succeed before the next runs. On success
// the response is waiting to be read with ReadData or ReadFrame.
func (t *Transport) Execute(ctx context.Context, cmd []byte, budget int) error {
	if budget < 1 {
		return fmt.Errorf("%w: poll budget %d", pn532.ErrInvalidParameter, budget)
	}

	if err := t.WriteCommand(ctx, cmd); err != nil {
		return err
	}

	ready, err := t.WaitReady(ctx, budget)
	if err != nil {
		return err
	}
	if !ready {
		return pn532.NewTimeoutError("waitAck", t.name)
	}

	acked, err := t.CheckACK(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return pn532.NewNoACKError("checkACK", t.name)
	}

	ready, err = t.WaitReady(ctx, budget)
	if err != nil {
		return err
	}
	if !ready {
		return pn532.NewTimeoutError("waitResponse", t.name)
	}
	return nil
}

// SendCommand sends cmd with args and returns the response data starting
// with the response code (cmd+1).
func (t *Transport) SendCommand(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkOpen("sendCommand"); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, len(args)+1)
	buf = append(buf, cmd)
	buf = append(buf, args...)

	logger := pn532.Logger()
	logger.Debug().Str("port", t.name).Hex("cmd", buf).Msg("SPI send")

	if err := t.Execute(ctx, buf, t.budget); err != nil {
		return nil, err
	}

	resp, err := t.readResponse(ctx)
	if err != nil {
		return nil, err
	}

	logger.Debug().Str("port", t.name).Hex("resp", resp).Msg("SPI recv")

	if len(resp) == 0 || resp[0] != cmd+1 {
		return nil, pn532.NewTransportError("sendCommand", t.name,
			fmt.Errorf("%w: expected response code 0x%02X, got % X", pn532.ErrInvalidResponse, cmd+1, resp),
			pn532.ErrorTypePermanent)
	}
	return resp, nil
}

// readResponse reads the response frame, asking the chip to resend it
// with a NACK when it arrives corrupted.
func (t *Transport) readResponse(ctx context.Context) ([]byte, error) {
	cfg := transport.RetryConfig{
		Description: "readFrame",
		Port:        t.name,
		MaxRetries:  maxFrameRetries,
		OnRetry: func() error {
			if err := t.writeRaw(frame.NackFrame); err != nil {
				return err
			}
			ready, err := t.WaitReady(ctx, t.budget)
			if err != nil {
				return err
			}
			if !ready {
				return pn532.NewTimeoutError("waitResponse", t.name)
			}
			return nil
		},
	}

	return transport.WithRetry(ctx, cfg, func() ([]byte, bool, error) {
		data, err := t.ReadFrame(ctx)
		if err == nil {
			return data, false, nil
		}
		if errors.Is(err, pn532.ErrChecksumMismatch) || errors.Is(err, pn532.ErrFrameCorrupted) {
			logger := pn532.Logger()
			logger.Debug().Str("port", t.name).Err(err).Msg("corrupted response, sending NACK")
			return nil, true, err
		}
		return nil, false, err
	})
}

// GetFirmwareVersion runs the firmware query and returns the first four
// response bytes packed big-endian, exactly as read from the bus. Failure is
// reported through the error; the value is then zero.
func (t *Transport) GetFirmwareVersion(ctx context.Context) (uint32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkOpen("getFirmwareVersion"); err != nil {
		return 0, err
	}

	cmd := []byte{0x02}
	if err := t.Execute(ctx, cmd, DefaultFirmwareBudget); err != nil {
		return 0, err
	}

	var resp [firmwareResponseLength]byte
	if err := t.ReadData(ctx, resp[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(resp[:4]), nil
}
