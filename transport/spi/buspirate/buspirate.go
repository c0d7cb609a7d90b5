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

// Package buspirate drives a PN532 through a Bus Pirate in binary SPI mode.
package buspirate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ZaparooProject/go-pn532-spi/internal/transport"
	"go.bug.st/serial"
)

// Speed is the SPI clock selected with the 0x60 command
type Speed byte

// Bus Pirate SPI speeds
const (
	Speed30kHz   Speed = 0x00
	Speed125kHz  Speed = 0x01
	Speed250kHz  Speed = 0x02
	Speed1MHz    Speed = 0x03
	Speed2MHz    Speed = 0x04
	Speed2600kHz Speed = 0x05
	Speed4MHz    Speed = 0x06
	Speed8MHz    Speed = 0x07
)

const (
	cmdReset      = 0x00
	cmdEnterSPI   = 0x01
	cmdCSLow      = 0x02
	cmdCSHigh     = 0x03
	cmdExit       = 0x0F
	cmdBulk       = 0x10
	cmdPeripheral = 0x40
	cmdSpeed      = 0x60
	cmdConfig     = 0x80

	periphPower   = 0x08
	periphPullUps = 0x04
	periphCS      = 0x01

	// 3.3V push-pull output, idle low, transmit on active-to-idle edge,
	// sample in the middle: SPI mode 0
	configMode0 = 0x08 | 0x02

	replyOK = 0x01

	maxResetAttempts = 20
	defaultBaudRate  = 115200
	defaultTimeout   = 100 * time.Millisecond
)

var (
	bbioBanner = []byte("BBIO1")
	spiBanner  = []byte("SPI1")
)

// Errors
var (
	ErrNoBinaryMode = errors.New("bus pirate did not enter binary mode")
	ErrBadReply     = errors.New("unexpected bus pirate reply")
	ErrReadTimeout  = errors.New("bus pirate read timeout")
)

// Config configures the Bus Pirate SPI engine
type Config struct {
	Speed       Speed
	Power       bool
	PullUps     bool
	ReadTimeout time.Duration
}

// DefaultConfig powers the PN532 from the Bus Pirate at 1MHz
func DefaultConfig() Config {
	return Config{
		Speed:       Speed1MHz,
		Power:       true,
		ReadTimeout: defaultTimeout,
	}
}

// Bus is a Bus Pirate in binary SPI mode
type Bus struct {
	rw   io.ReadWriter
	name string
	cfg  Config
	buf  [2]byte
}

// Open opens a serial port and enters SPI mode
func Open(ctx context.Context, portName string, cfg Config) (*Bus, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: defaultBaudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	timeout := cfg.ReadTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}

	bus, err := New(ctx, port, portName, cfg)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	return bus, nil
}

// New enters binary SPI mode on an already open connection
func New(ctx context.Context, rw io.ReadWriter, name string, cfg Config) (*Bus, error) {
	if cfg.Speed > Speed8MHz {
		return nil, fmt.Errorf("invalid bus pirate speed 0x%02X", byte(cfg.Speed))
	}

	b := &Bus{rw: rw, name: name, cfg: cfg}
	if err := b.enterBinary(ctx); err != nil {
		return nil, err
	}
	if err := b.expect([]byte{cmdEnterSPI}, spiBanner); err != nil {
		return nil, fmt.Errorf("failed to enter SPI mode on %s: %w", name, err)
	}

	periph := byte(cmdPeripheral | periphCS)
	if cfg.Power {
		periph |= periphPower
	}
	if cfg.PullUps {
		periph |= periphPullUps
	}
	for _, cmd := range []byte{cmdSpeed | byte(cfg.Speed), cmdConfig | configMode0, periph} {
		if err := b.command(cmd); err != nil {
			return nil, fmt.Errorf("failed to configure SPI on %s: %w", name, err)
		}
	}
	return b, nil
}

// enterBinary sends resets until the Bus Pirate answers BBIO1
func (b *Bus) enterBinary(ctx context.Context) error {
	cfg := transport.RetryConfig{
		Description: "enterBinary",
		Port:        b.name,
		MaxRetries:  maxResetAttempts - 1,
	}

	_, err := transport.WithRetry(ctx, cfg, func() (struct{}, bool, error) {
		err := b.expect([]byte{cmdReset}, bbioBanner)
		switch {
		case err == nil:
			return struct{}{}, false, nil
		case errors.Is(err, ErrBadReply), errors.Is(err, ErrReadTimeout):
			return struct{}{}, true, err
		default:
			return struct{}{}, false, err
		}
	})
	if err != nil {
		return fmt.Errorf("%w on %s: %w", ErrNoBinaryMode, b.name, err)
	}
	return nil
}

// Exchange performs a one byte bulk transfer
func (b *Bus) Exchange(v byte) (byte, error) {
	if _, err := b.rw.Write([]byte{cmdBulk, v}); err != nil {
		return 0, fmt.Errorf("bus pirate write: %w", err)
	}
	if err := b.readFull(b.buf[:2]); err != nil {
		return 0, err
	}
	if b.buf[0] != replyOK {
		return 0, fmt.Errorf("%w: bulk transfer 0x%02X", ErrBadReply, b.buf[0])
	}
	return b.buf[1], nil
}

// Select drives CS through the Bus Pirate
func (b *Bus) Select(active bool) error {
	cmd := byte(cmdCSHigh)
	if active {
		cmd = cmdCSLow
	}
	return b.command(cmd)
}

// Close returns the Bus Pirate to its terminal and closes the port
func (b *Bus) Close() error {
	var errs []error
	if err := b.expect([]byte{cmdReset}, bbioBanner); err != nil {
		errs = append(errs, err)
	} else if _, err := b.rw.Write([]byte{cmdExit}); err != nil {
		errs = append(errs, err)
	}
	if c, ok := b.rw.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// command sends one byte and expects the 0x01 acknowledgment
func (b *Bus) command(cmd byte) error {
	return b.expect([]byte{cmd}, []byte{replyOK})
}

func (b *Bus) expect(cmd, want []byte) error {
	if _, err := b.rw.Write(cmd); err != nil {
		return fmt.Errorf("bus pirate write: %w", err)
	}
	got := make([]byte, len(want))
	if err := b.readFull(got); err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%w: command 0x%02X answered %q", ErrBadReply, cmd[0], got)
	}
	return nil
}

// readFull is io.ReadFull for ports whose Read returns 0, nil on timeout
func (b *Bus) readFull(buf []byte) error {
	for n := 0; n < len(buf); {
		m, err := b.rw.Read(buf[n:])
		if err != nil {
			return fmt.Errorf("bus pirate read: %w", err)
		}
		if m == 0 {
			return ErrReadTimeout
		}
		n += m
	}
	return nil
}
