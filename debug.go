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
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	debugMu      sync.RWMutex
	debugEnabled bool
	debugLogger  = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("lib", "pn532").Logger()
)

// SetDebugEnabled turns protocol debug output on or off.
func SetDebugEnabled(enabled bool) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugEnabled = enabled
}

// SetLogger replaces the logger used for debug output.
func SetLogger(logger zerolog.Logger) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugLogger = logger
}

// Logger returns the debug logger, or a disabled logger when debug output is off.
// Sub-packages log through it so one switch controls the whole library.
func Logger() zerolog.Logger {
	debugMu.RLock()
	defer debugMu.RUnlock()
	if !debugEnabled {
		return zerolog.Nop()
	}
	return debugLogger
}

func debugf(format string, args ...any) {
	logger := Logger()
	logger.Debug().Msgf(format, args...)
}
