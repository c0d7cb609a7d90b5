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
	"errors"
	"testing"
	"time"

	testutil "github.com/ZaparooProject/go-pn532-spi/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInitializedMock() *MockTransport {
	mock := NewMockTransport()
	mock.SetResponse(testutil.CmdGetFirmwareVersion, testutil.BuildFirmwareVersionResponse())
	mock.SetResponse(testutil.CmdSAMConfiguration, testutil.BuildSAMConfigurationResponse())
	return mock
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		transport Transport
		name      string
		opts      []Option
		wantErr   error
	}{
		{
			name:      "Valid_MockTransport",
			transport: NewMockTransport(),
		},
		{
			name:      "Nil_Transport",
			transport: nil,
			wantErr:   ErrInvalidParameter,
		},
		{
			name:      "Invalid_Timeout",
			transport: NewMockTransport(),
			opts:      []Option{WithTimeout(0)},
			wantErr:   ErrInvalidParameter,
		},
		{
			name:      "Invalid_SAMMode",
			transport: NewMockTransport(),
			opts:      []Option{WithSAMMode(SAMMode(0x09))},
			wantErr:   ErrInvalidParameter,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			device, err := New(tt.transport, tt.opts...)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, device)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, device)
			assert.Equal(t, tt.transport, device.Transport())
		})
	}
}

func TestDevice_Init(t *testing.T) {
	t.Parallel()

	tests := []struct {
		setup   func(*MockTransport)
		name    string
		errMsg  string
		wantErr bool
	}{
		{
			name:  "Success",
			setup: func(*MockTransport) {},
		},
		{
			name: "Firmware_Failure",
			setup: func(m *MockTransport) {
				m.SetError(testutil.CmdGetFirmwareVersion, ErrTransportTimeout)
			},
			wantErr: true,
			errMsg:  "failed to get firmware version",
		},
		{
			name: "Bad_Firmware_Response",
			setup: func(m *MockTransport) {
				m.SetResponse(testutil.CmdGetFirmwareVersion, []byte{0x03, 0x32})
			},
			wantErr: true,
			errMsg:  "failed to get firmware version",
		},
		{
			name: "SAM_Failure",
			setup: func(m *MockTransport) {
				m.SetResponse(testutil.CmdSAMConfiguration, testutil.BuildErrorResponse(0x00, 0x01))
			},
			wantErr: true,
			errMsg:  "failed to configure SAM",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := newInitializedMock()
			tt.setup(mock)

			device, err := New(mock)
			require.NoError(t, err)

			err = device.Init(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 1, mock.GetCallCount(testutil.CmdGetFirmwareVersion))
			assert.Equal(t, 1, mock.GetCallCount(testutil.CmdSAMConfiguration))
			assert.Equal(t, []byte{0x01, 0x14, 0x00}, mock.LastArgs(testutil.CmdSAMConfiguration))
		})
	}
}

func TestDevice_InitWithSAMMode(t *testing.T) {
	t.Parallel()

	mock := newInitializedMock()
	device, err := New(mock, WithSAMMode(SAMModeVirtualCard))
	require.NoError(t, err)

	require.NoError(t, device.Init(context.Background()))
	assert.Equal(t, []byte{0x02, 0x14, 0x00}, mock.LastArgs(testutil.CmdSAMConfiguration))
}

func TestDevice_GetFirmwareVersion(t *testing.T) {
	t.Parallel()

	mock := newInitializedMock()
	device, err := New(mock)
	require.NoError(t, err)

	_, err = device.FirmwareVersion()
	require.ErrorIs(t, err, ErrNotInitialized)

	fw, err := device.GetFirmwareVersion(context.Background())
	require.NoError(t, err)

	assert.Equal(t, byte(0x32), fw.IC)
	assert.Equal(t, byte(0x01), fw.Ver)
	assert.Equal(t, byte(0x06), fw.Rev)
	assert.Equal(t, "1.6", fw.Version)
	assert.True(t, fw.SupportIso14443a)
	assert.True(t, fw.SupportIso14443b)
	assert.True(t, fw.SupportIso18092)
	assert.Equal(t, "PN532 v1.6 (support 0x07)", fw.String())

	cached, err := device.FirmwareVersion()
	require.NoError(t, err)
	assert.Same(t, fw, cached)
}

func TestDevice_SAMConfiguration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr error
		name    string
		resp    []byte
		want    []byte
		mode    SAMMode
		timeout byte
		irq     bool
	}{
		{name: "Normal", mode: SAMModeNormal, timeout: 0x00, resp: []byte{0x15}, want: []byte{0x01, 0x00, 0x00}},
		{name: "VirtualCard_IRQ", mode: SAMModeVirtualCard, timeout: 0x14, irq: true, resp: []byte{0x15}, want: []byte{0x02, 0x14, 0x01}},
		{name: "Invalid_Mode", mode: SAMMode(0x00), wantErr: ErrInvalidParameter},
		{name: "Wrong_Response", mode: SAMModeNormal, resp: []byte{0x03}, wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := NewMockTransport()
			if tt.resp != nil {
				mock.SetResponse(testutil.CmdSAMConfiguration, tt.resp)
			}
			device, err := New(mock)
			require.NoError(t, err)

			err = device.SAMConfiguration(context.Background(), tt.mode, tt.timeout, tt.irq)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mock.LastArgs(testutil.CmdSAMConfiguration))
		})
	}
}

func TestDevice_GetGeneralStatus(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.SetResponse(testutil.CmdGetGeneralStatus, testutil.BuildGeneralStatusResponse(0x01, true))
	device, err := New(mock)
	require.NoError(t, err)

	status, err := device.GetGeneralStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &GeneralStatus{LastError: 0x01, FieldPresent: true, Targets: 0}, status)

	mock.SetResponse(testutil.CmdGetGeneralStatus, []byte{0x05, 0x00})
	_, err = device.GetGeneralStatus(context.Background())
	require.ErrorIs(t, err, ErrInvalidResponse)
}

func TestDevice_Diagnose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr     error
		name        string
		data        []byte
		resp        []byte
		test        byte
		wantSuccess bool
	}{
		{
			name:        "Communication_Echo",
			test:        DiagnoseCommunicationTest,
			data:        []byte{0xAA, 0x55},
			resp:        []byte{0x01, 0x00, 0xAA, 0x55},
			wantSuccess: true,
		},
		{
			name: "Communication_Mismatch",
			test: DiagnoseCommunicationTest,
			data: []byte{0xAA, 0x55},
			resp: []byte{0x01, 0x00, 0xAA, 0x00},
		},
		{
			name:        "ROM_OK",
			test:        DiagnoseROMTest,
			resp:        testutil.BuildDiagnoseResponse(0x00),
			wantSuccess: true,
		},
		{
			name: "RAM_Failed",
			test: DiagnoseRAMTest,
			resp: testutil.BuildDiagnoseResponse(0xFF),
		},
		{
			name:    "Unused_Test_Number",
			test:    0x03,
			wantErr: ErrInvalidParameter,
		},
		{
			name:    "Out_Of_Range",
			test:    0x08,
			wantErr: ErrInvalidParameter,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := NewMockTransport()
			if tt.resp != nil {
				mock.SetResponse(testutil.CmdDiagnose, tt.resp)
			}
			device, err := New(mock)
			require.NoError(t, err)

			result, err := device.Diagnose(context.Background(), tt.test, tt.data)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, mock.GetCallCount(testutil.CmdDiagnose))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.test, result.TestNumber)
			assert.Equal(t, tt.wantSuccess, result.Success)
		})
	}
}

func TestDevice_CommandTimeout(t *testing.T) {
	t.Parallel()

	mock := newInitializedMock()
	mock.SetDelay(time.Second)

	device, err := New(mock, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = device.GetFirmwareVersion(context.Background())
	require.ErrorIs(t, err, ErrTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestDevice_SetRetryConfig(t *testing.T) {
	t.Parallel()

	mock := newInitializedMock()
	mock.SetError(testutil.CmdGetFirmwareVersion, NewTimeoutError("waitAck", "spi"))
	mock.SetFailures(testutil.CmdGetFirmwareVersion, 2)

	device, err := New(mock)
	require.NoError(t, err)

	_, err = device.GetFirmwareVersion(context.Background())
	require.ErrorIs(t, err, ErrTransportTimeout)

	device.SetRetryConfig(&RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, BackoffMultiplier: 1})
	retry, ok := device.Transport().(*TransportWithRetry)
	require.True(t, ok)
	assert.Same(t, mock, retry.Unwrap())

	fw, err := device.GetFirmwareVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, byte(0x32), fw.IC)
	assert.Equal(t, 3, mock.GetCallCount(testutil.CmdGetFirmwareVersion))

	// a second call must reuse the wrapper
	device.SetRetryConfig(DefaultRetryConfig())
	assert.Same(t, retry, device.Transport())
}

func TestDevice_Close(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device, err := New(mock)
	require.NoError(t, err)

	require.NoError(t, device.Close())
	assert.False(t, mock.IsConnected())
}

func TestDevice_ErrorWrapping(t *testing.T) {
	t.Parallel()

	errWire := errors.New("wire fault")
	mock := NewMockTransport()
	mock.SetError(testutil.CmdGetGeneralStatus, errWire)

	device, err := New(mock)
	require.NoError(t, err)

	_, err = device.GetGeneralStatus(context.Background())
	require.ErrorIs(t, err, errWire)
	assert.Contains(t, err.Error(), "command 0x04 failed")
}
