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


package detection

import (
	"path/filepath"
	"strings"
)

// DefaultBlocklist returns USB serial adapters that share a VID:PID with
// Bus Pirate hardware but are never one, so they are not probed.
// Format: VID:PID in hexadecimal (case-insensitive).
func DefaultBlocklist() []string {
	return []string{
		"0403:6015", // FTDI FT-X, used by ACR122U clones and 3D printers
		"2341:0043", // Arduino Uno
		"1A86:7523", // CH340 USB-serial, common on PN532 UART boards
	}
}

// VIDPID joins a USB vendor and product id into the upper-case VID:PID form
// used by blocklists. Ids shorter than four digits are zero padded.
func VIDPID(vid, pid string) string {
	return padID(vid) + ":" + padID(pid)
}

func padID(id string) string {
	id = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(id), "0x"))
	for len(id) < 4 {
		id = "0" + id
	}
	return id
}

// IsBlocked reports whether vidpid appears in blocklist, ignoring case and
// surrounding spaces.
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))
	for _, blocked := range blocklist {
		if strings.ToUpper(strings.TrimSpace(blocked)) == vidpid {
			return true
		}
	}
	return false
}

// IsPathIgnored reports whether devicePath matches one of ignorePaths after
// cleaning both and folding case.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" {
		return false
	}

	device := normalizedPath(devicePath)
	for _, ignored := range ignorePaths {
		if ignored != "" && normalizedPath(ignored) == device {
			return true
		}
	}
	return false
}

func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
