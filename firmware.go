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

import "fmt"

// Firmware support flags (GetFirmwareVersion "Support" byte)
const (
	SupportISO14443A = 0x01
	SupportISO14443B = 0x02
	SupportISO18092  = 0x04
)

// FirmwareVersion contains PN532 firmware information
type FirmwareVersion struct {
	Version          string
	IC               byte
	Ver              byte
	Rev              byte
	Support          byte
	SupportIso14443a bool
	SupportIso14443b bool
	SupportIso18092  bool
}

// Packed returns IC, Ver, Rev and Support as one big-endian value, the way
// firmware versions are usually printed (0x32010607 for a PN532 v1.6).
func (f *FirmwareVersion) Packed() uint32 {
	return uint32(f.IC)<<24 | uint32(f.Ver)<<16 | uint32(f.Rev)<<8 | uint32(f.Support)
}

// String implements fmt.Stringer
func (f *FirmwareVersion) String() string {
	return fmt.Sprintf("PN5%02X v%s (support 0x%02X)", f.IC, f.Version, f.Support)
}

func parseFirmwareVersion(resp []byte) (*FirmwareVersion, error) {
	if len(resp) < 5 || resp[0] != responseCode(cmdGetFirmwareVersion) {
		return nil, fmt.Errorf("%w: firmware version response % X", ErrInvalidResponse, resp)
	}
	support := resp[4]
	return &FirmwareVersion{
		IC:               resp[1],
		Ver:              resp[2],
		Rev:              resp[3],
		Support:          support,
		Version:          fmt.Sprintf("%d.%d", resp[2], resp[3]),
		SupportIso14443a: support&SupportISO14443A != 0,
		SupportIso14443b: support&SupportISO14443B != 0,
		SupportIso18092:  support&SupportISO18092 != 0,
	}, nil
}

// GeneralStatus contains PN532 general status information
type GeneralStatus struct {
	LastError    byte
	FieldPresent bool
	Targets      byte
}

// DiagnoseResult contains the result of a diagnose test
type DiagnoseResult struct {
	Data       []byte
	TestNumber byte
	Success    bool
}

// DiagnoseTestNumber constants
const (
	DiagnoseCommunicationTest = 0x00
	DiagnoseROMTest           = 0x01
	DiagnoseRAMTest           = 0x02
	// 0x03 is not used
	DiagnosePollingTest     = 0x04
	DiagnoseEchoBackTest    = 0x05
	DiagnoseAttentionTest   = 0x06
	DiagnoseSelfAntennaTest = 0x07
)

// SAMMode represents the SAM configuration mode
type SAMMode byte

const (
	// SAMModeNormal - normal mode (default)
	SAMModeNormal SAMMode = 0x01
	// SAMModeVirtualCard - Virtual Card mode
	SAMModeVirtualCard SAMMode = 0x02
	// SAMModeWiredCard - Wired Card mode
	SAMModeWiredCard SAMMode = 0x03
	// SAMModeDualCard - Dual Card mode
	SAMModeDualCard SAMMode = 0x04
)

// DefaultSAMTimeout is the virtual card timeout in 50ms units (1 second)
const DefaultSAMTimeout byte = 0x14
