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

package pn532

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockTransport is a scriptable Transport for tests. Responses and errors
// are keyed by command code; every SendCommand call is counted.
type MockTransport struct {
	responses    map[byte][]byte
	errs         map[byte]error
	failuresLeft map[byte]int
	calls        map[byte]int
	lastArgs     map[byte][]byte
	delay        time.Duration
	timeout      time.Duration
	mu           sync.Mutex
	closed       bool
}

// NewMockTransport creates a connected mock transport with no scripted responses
func NewMockTransport() *MockTransport {
	return &MockTransport{
		responses:    make(map[byte][]byte),
		errs:         make(map[byte]error),
		failuresLeft: make(map[byte]int),
		calls:        make(map[byte]int),
		lastArgs:     make(map[byte][]byte),
		timeout:      time.Second,
	}
}

// SendCommand returns the scripted error or response for cmd
func (m *MockTransport) SendCommand(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	m.mu.Lock()
	m.calls[cmd]++
	m.lastArgs[cmd] = append([]byte(nil), args...)
	delay := m.delay
	closed := m.closed
	m.mu.Unlock()

	if closed {
		return nil, ErrTransportRead
	}

	if delay > 0 {
		if err := sleepContext(ctx, delay); err != nil {
			return nil, fmt.Errorf("mock command 0x%02X: %w", cmd, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.errs[cmd]; err != nil {
		left, limited := m.failuresLeft[cmd]
		if !limited || left > 0 {
			if limited {
				m.failuresLeft[cmd] = left - 1
			}
			return nil, err
		}
	}

	resp, ok := m.responses[cmd]
	if !ok {
		return nil, NewInvalidResponseError(fmt.Sprintf("mock command 0x%02X", cmd), "mock")
	}
	return append([]byte(nil), resp...), nil
}

// SetResponse scripts the response returned for cmd
func (m *MockTransport) SetResponse(cmd byte, response []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[cmd] = append([]byte(nil), response...)
}

// SetError scripts an error returned for cmd. The error is returned on every
// call unless SetFailures limits it.
func (m *MockTransport) SetError(cmd byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[cmd] = err
}

// SetFailures limits the scripted error for cmd to the next n calls
func (m *MockTransport) SetFailures(cmd byte, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failuresLeft[cmd] = n
}

// SetDelay makes every call block for d or until the context is done
func (m *MockTransport) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// GetCallCount returns how many times cmd was sent
func (m *MockTransport) GetCallCount(cmd byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[cmd]
}

// LastArgs returns the arguments of the most recent call for cmd
func (m *MockTransport) LastArgs(cmd byte) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.lastArgs[cmd]...)
}

// Close marks the transport closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SetTimeout stores the timeout
func (m *MockTransport) SetTimeout(timeout time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeout = timeout
	return nil
}

// IsConnected returns false once the transport is closed
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

var _ Transport = (*MockTransport)(nil)
