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

// Package testing provides a scripted PN532 SPI simulator and canned
// responses for protocol tests.
package testing

import (
	"errors"
	"sync"

	"github.com/ZaparooProject/go-pn532-spi/internal/frame"
)

// ErrBusFault is returned by FakeChip.Exchange once FailAfter is reached
var ErrBusFault = errors.New("simulated bus fault")

type chipPhase int

const (
	phaseIdle chipPhase = iota
	phaseAck
	phaseResponse
)

// FakeChip simulates the SPI side of a PN532. It decodes the indicator byte
// of every chip-select window, records written frames, answers status
// reads and serves the ACK followed by the scripted response.
//
// Bytes cross the bus bit-reversed unless LSBFirst is set, matching a host
// whose shift register runs MSB first.
type FakeChip struct {
	responses map[byte][]byte
	failErr   error
	ack       []byte
	pending   []byte
	current   []byte
	lastResp  []byte
	frames    [][]byte
	mu        sync.Mutex

	// NotReadyPolls is the number of status reads answered "busy" before
	// each pending ACK or response becomes ready.
	NotReadyPolls int
	// NeverReady makes every status read answer "busy".
	NeverReady bool
	// LSBFirst disables bit reversal on the simulated wire.
	LSBFirst bool
	// CorruptResponses is the number of upcoming responses served with a
	// broken data checksum.
	CorruptResponses int

	phase        chipPhase
	notReadyLeft int
	indicator    int
	exchanges    int
	failAfter    int
	statusReads  int
	dataReads    int
	selected     bool
	selects      int
	nacks        int
}

// NewFakeChip returns a chip that acknowledges every command
func NewFakeChip() *FakeChip {
	return &FakeChip{
		responses: make(map[byte][]byte),
		ack:       append([]byte(nil), frame.AckFrame...),
		indicator: -1,
		failAfter: -1,
	}
}

// Respond scripts a well-formed response frame carrying data for cmd.
// data starts with the response code (cmd+1).
func (c *FakeChip) Respond(cmd byte, data []byte) {
	raw, err := frame.BuildFrame(frame.Pn532ToHost, data)
	if err != nil {
		panic(err)
	}
	c.RespondRaw(cmd, raw)
}

// RespondRaw scripts the exact bytes served after the ACK for cmd
func (c *FakeChip) RespondRaw(cmd byte, raw []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses[cmd] = append([]byte(nil), raw...)
}

// SetAck replaces the 6 bytes served as acknowledgment
func (c *FakeChip) SetAck(ack []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ack = append([]byte(nil), ack...)
}

// FailAfter makes every exchange after the first n return err
func (c *FakeChip) FailAfter(n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failAfter = n
	c.failErr = err
}

// Select implements the chip-select line
func (c *FakeChip) Select(active bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if active {
		c.selected = true
		c.selects++
		c.indicator = -1
		c.current = c.current[:0]
		return nil
	}

	if c.selected {
		c.endWindow()
	}
	c.selected = false
	return nil
}

// Exchange shifts one byte in each direction
func (c *FakeChip) Exchange(b byte) (byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failAfter >= 0 && c.exchanges >= c.failAfter {
		return 0, c.failErr
	}
	c.exchanges++

	if !c.selected {
		return 0, nil
	}

	in := c.wire(b)
	if c.indicator < 0 {
		c.indicator = int(in)
		if c.indicator == frame.SPIDataRead {
			c.dataReads++
		}
		return 0, nil
	}

	switch c.indicator {
	case frame.SPIDataWrite:
		c.current = append(c.current, in)
		return 0, nil
	case frame.SPIStatusRead:
		c.statusReads++
		return c.wire(c.status()), nil
	case frame.SPIDataRead:
		var out byte
		if len(c.pending) > 0 {
			out = c.pending[0]
			c.pending = c.pending[1:]
		}
		return c.wire(out), nil
	default:
		return 0, nil
	}
}

func (c *FakeChip) wire(b byte) byte {
	if c.LSBFirst {
		return b
	}
	return frame.ReverseBits(b)
}

func (c *FakeChip) status() byte {
	if c.NeverReady || c.phase == phaseIdle {
		return 0x00
	}
	if c.notReadyLeft > 0 {
		c.notReadyLeft--
		return 0x00
	}
	return frame.SPIReady
}

func (c *FakeChip) endWindow() {
	switch c.indicator {
	case frame.SPIDataWrite:
		written := append([]byte(nil), c.current...)
		if frame.IsNack(written) && c.lastResp != nil {
			c.nacks++
			c.serveResponse(c.lastResp)
			return
		}
		c.frames = append(c.frames, written)
		c.phase = phaseAck
		c.pending = append([]byte(nil), c.ack...)
		c.notReadyLeft = c.NotReadyPolls
	case frame.SPIDataRead:
		if c.phase != phaseAck {
			return
		}
		c.lastResp = nil
		if len(c.frames) > 0 {
			if _, data, err := frame.ParseFrame(c.frames[len(c.frames)-1]); err == nil && len(data) > 0 {
				c.lastResp = c.responses[data[0]]
			}
		}
		c.serveResponse(c.lastResp)
	}
}

func (c *FakeChip) serveResponse(resp []byte) {
	c.phase = phaseResponse
	c.notReadyLeft = c.NotReadyPolls
	c.pending = append([]byte(nil), resp...)
	if c.CorruptResponses > 0 && len(c.pending) >= 2 {
		c.CorruptResponses--
		c.pending[len(c.pending)-2] ^= 0xFF
	}
}

// Frames returns every frame written so far, without the indicator byte
func (c *FakeChip) Frames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.frames))
	for i, f := range c.frames {
		out[i] = append([]byte(nil), f...)
	}
	return out
}

// StatusReads returns the number of status bytes read
func (c *FakeChip) StatusReads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusReads
}

// DataReads returns the number of data-read windows opened
func (c *FakeChip) DataReads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dataReads
}

// Selects returns the number of times chip-select was asserted
func (c *FakeChip) Selects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selects
}

// Nacks returns the number of NACK frames received
func (c *FakeChip) Nacks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nacks
}

// Selected reports whether chip-select is currently asserted
func (c *FakeChip) Selected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}
