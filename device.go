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
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"
)

// Device errors
var (
	ErrTimeout        = errors.New("operation timeout")
	ErrNotInitialized = errors.New("device not initialized")
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// RetryConfig configures retry behavior for transport operations
	RetryConfig *RetryConfig
	// Timeout is the default timeout for operations
	Timeout time.Duration
	// SAMMode is the SAM configuration applied by Init
	SAMMode SAMMode
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		RetryConfig: DefaultRetryConfig(),
		Timeout:     1 * time.Second,
		SAMMode:     SAMModeNormal,
	}
}

// Device represents a PN532 NFC controller
//
// Thread Safety: Device is NOT thread-safe. All methods must be called from
// a single goroutine or protected with external synchronization. The SPI
// transport serializes complete command exchanges, but sequences of commands
// (such as Init) are not atomic.
type Device struct {
	transport       Transport
	config          *DeviceConfig
	firmwareVersion *FirmwareVersion
}

// New creates a new PN532 device with the given transport
func New(transport Transport, opts ...Option) (*Device, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidParameter)
	}

	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
	}

	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// Init verifies the PN532 answers and configures the SAM for normal mode.
func (d *Device) Init(ctx context.Context) error {
	fw, err := d.GetFirmwareVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get firmware version: %w", err)
	}
	debugf("PN532 firmware: %s", fw)

	if err := d.SAMConfiguration(ctx, d.config.SAMMode, DefaultSAMTimeout, false); err != nil {
		return fmt.Errorf("failed to configure SAM: %w", err)
	}
	return nil
}

// FirmwareVersion returns the version read by the last successful
// GetFirmwareVersion call.
func (d *Device) FirmwareVersion() (*FirmwareVersion, error) {
	if d.firmwareVersion == nil {
		return nil, ErrNotInitialized
	}
	return d.firmwareVersion, nil
}

// GetFirmwareVersion queries the IC, version, revision and supported
// protocols of the PN532.
func (d *Device) GetFirmwareVersion(ctx context.Context) (*FirmwareVersion, error) {
	resp, err := d.sendCommand(ctx, cmdGetFirmwareVersion, nil)
	if err != nil {
		return nil, err
	}

	fw, err := parseFirmwareVersion(resp)
	if err != nil {
		return nil, err
	}
	d.firmwareVersion = fw
	return fw, nil
}

// SAMConfiguration selects how the PN532 uses its security access module.
// timeout is only used in virtual card mode, in 50ms units.
func (d *Device) SAMConfiguration(ctx context.Context, mode SAMMode, timeout byte, useIRQ bool) error {
	if mode < SAMModeNormal || mode > SAMModeDualCard {
		return fmt.Errorf("%w: SAM mode 0x%02X", ErrInvalidParameter, byte(mode))
	}

	irq := byte(0x00)
	if useIRQ {
		irq = 0x01
	}

	resp, err := d.sendCommand(ctx, cmdSamConfiguration, []byte{byte(mode), timeout, irq})
	if err != nil {
		return err
	}
	if len(resp) < 1 || resp[0] != responseCode(cmdSamConfiguration) {
		return fmt.Errorf("%w: SAM configuration response % X", ErrInvalidResponse, resp)
	}
	return nil
}

// GetGeneralStatus returns the last error, RF field state and the number
// of targets the PN532 currently handles.
func (d *Device) GetGeneralStatus(ctx context.Context) (*GeneralStatus, error) {
	resp, err := d.sendCommand(ctx, cmdGetGeneralStatus, nil)
	if err != nil {
		return nil, err
	}
	if len(resp) < 4 || resp[0] != responseCode(cmdGetGeneralStatus) {
		return nil, fmt.Errorf("%w: general status response % X", ErrInvalidResponse, resp)
	}

	return &GeneralStatus{
		LastError:    resp[1],
		FieldPresent: resp[2] != 0,
		Targets:      resp[3],
	}, nil
}

// Diagnose runs one of the PN532 self tests. For the communication test the
// chip must echo data back unchanged; for the other tests a zero status byte
// means success.
func (d *Device) Diagnose(ctx context.Context, test byte, data []byte) (*DiagnoseResult, error) {
	if test == 0x03 || test > DiagnoseSelfAntennaTest {
		return nil, fmt.Errorf("%w: diagnose test 0x%02X", ErrInvalidParameter, test)
	}

	args := make([]byte, 0, len(data)+1)
	args = append(args, test)
	args = append(args, data...)

	resp, err := d.sendCommand(ctx, cmdDiagnose, args)
	if err != nil {
		return nil, err
	}
	if len(resp) < 1 || resp[0] != responseCode(cmdDiagnose) {
		return nil, fmt.Errorf("%w: diagnose response % X", ErrInvalidResponse, resp)
	}

	result := &DiagnoseResult{
		TestNumber: test,
		Data:       append([]byte(nil), resp[1:]...),
	}
	switch test {
	case DiagnoseCommunicationTest:
		result.Success = bytes.Equal(resp[1:], args)
	default:
		result.Success = len(resp) > 1 && resp[1] == 0x00
	}
	return result, nil
}

// SetTimeout sets the default timeout for operations
func (d *Device) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: timeout %v", ErrInvalidParameter, timeout)
	}
	d.config.Timeout = timeout
	if err := d.transport.SetTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set timeout on transport: %w", err)
	}
	return nil
}

// SetRetryConfig updates the retry configuration, wrapping the transport
// in a TransportWithRetry on first use.
func (d *Device) SetRetryConfig(config *RetryConfig) {
	d.config.RetryConfig = config
	if tr, ok := d.transport.(*TransportWithRetry); ok {
		tr.SetRetryConfig(config)
		return
	}
	d.transport = NewTransportWithRetry(d.transport, config)
}

// Close closes the device connection
func (d *Device) Close() error {
	if d.transport != nil {
		if err := d.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}

// sendCommand bounds the exchange by the configured timeout unless ctx
// already carries an earlier deadline.
func (d *Device) sendCommand(ctx context.Context, cmd byte, args []byte) ([]byte, error) {
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	resp, err := d.transport.SendCommand(ctx, cmd, args)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("command 0x%02X: %w: %w", cmd, ErrTimeout, err)
		}
		return nil, fmt.Errorf("command 0x%02X failed: %w", cmd, err)
	}
	return resp, nil
}
