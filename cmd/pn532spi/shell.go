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

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	pn532 "github.com/ZaparooProject/go-pn532-spi"
	"github.com/ZaparooProject/go-pn532-spi/ndef"
	"github.com/abiosoft/ishell"
)

const deviceKey = "$device"

var errUsage = errors.New("usage")

func newShell(device *pn532.Device) *ishell.Shell {
	shell := ishell.New()
	shell.Set(deviceKey, device)
	shell.SetPrompt("pn532> ")
	for _, cmd := range commands() {
		shell.AddCmd(cmd)
	}
	return shell
}

func deviceFrom(c *ishell.Context) *pn532.Device {
	return c.Get(deviceKey).(*pn532.Device)
}

func commands() []*ishell.Cmd {
	return []*ishell.Cmd{
		{
			Name: "firmware",
			Help: "query the firmware version",
			Func: func(c *ishell.Context) {
				fw, err := deviceFrom(c).GetFirmwareVersion(context.Background())
				if err != nil {
					c.Err(err)
					return
				}
				c.Printf("%s (0x%08X)\n", fw, fw.Packed())
			},
		},
		{
			Name: "status",
			Help: "read the general status",
			Func: func(c *ishell.Context) {
				status, err := deviceFrom(c).GetGeneralStatus(context.Background())
				if err != nil {
					c.Err(err)
					return
				}
				c.Printf("last error 0x%02X, field present %t, targets %d\n",
					status.LastError, status.FieldPresent, status.Targets)
			},
		},
		{
			Name: "diagnose",
			Help: "TEST [HEXDATA] run a self test (0 line, 1 ROM, 2 RAM, 4 polling, 5 echo, 6 attention, 7 antenna)",
			Func: func(c *ishell.Context) {
				test, data, err := parseDiagnoseArgs(c.Args)
				if err != nil {
					c.Err(err)
					return
				}
				result, err := deviceFrom(c).Diagnose(context.Background(), test, data)
				if err != nil {
					c.Err(err)
					return
				}
				c.Printf("test %d: %s % X\n", result.TestNumber, passFail(result.Success), result.Data)
			},
		},
		{
			Name: "sam",
			Help: "MODE configure the SAM (1 normal, 2 virtual card, 3 wired card, 4 dual card)",
			Func: func(c *ishell.Context) {
				if len(c.Args) != 1 {
					c.Err(fmt.Errorf("%w: sam MODE", errUsage))
					return
				}
				mode, err := strconv.ParseUint(c.Args[0], 0, 8)
				if err != nil {
					c.Err(fmt.Errorf("invalid MODE: %w", err))
					return
				}
				if err := deviceFrom(c).SAMConfiguration(context.Background(),
					pn532.SAMMode(mode), pn532.DefaultSAMTimeout, false); err != nil {
					c.Err(err)
					return
				}
				c.Println("OK")
			},
		},
		{
			Name: "ndef-encode",
			Help: "uri|text VALUE encode an NDEF message wrapped in a TLV",
			Func: func(c *ishell.Context) {
				if len(c.Args) < 2 {
					c.Err(fmt.Errorf("%w: ndef-encode uri|text VALUE", errUsage))
					return
				}
				encoded, err := encodeNDEF(c.Args[0], strings.Join(c.Args[1:], " "))
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(hex.EncodeToString(encoded))
			},
		},
		{
			Name: "ndef-decode",
			Help: "HEX decode an NDEF message, bare or TLV wrapped",
			Func: func(c *ishell.Context) {
				if len(c.Args) != 1 {
					c.Err(fmt.Errorf("%w: ndef-decode HEX", errUsage))
					return
				}
				lines, err := decodeNDEF(c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				for _, line := range lines {
					c.Println(line)
				}
			},
		},
	}
}

func parseDiagnoseArgs(args []string) (test byte, data []byte, err error) {
	if len(args) < 1 || len(args) > 2 {
		return 0, nil, fmt.Errorf("%w: diagnose TEST [HEXDATA]", errUsage)
	}
	n, err := strconv.ParseUint(args[0], 0, 8)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid TEST: %w", err)
	}
	if len(args) == 2 {
		data, err = hex.DecodeString(args[1])
		if err != nil {
			return 0, nil, fmt.Errorf("invalid HEXDATA: %w", err)
		}
	}
	return byte(n), data, nil
}

func encodeNDEF(kind, value string) ([]byte, error) {
	var rec ndef.Record
	switch strings.ToLower(kind) {
	case "uri", "url":
		rec = ndef.NewURIRecord(value)
	case "text":
		var err error
		if rec, err = ndef.NewTextRecord(value, "en"); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: record kind %q", errUsage, kind)
	}

	msg, err := ndef.NewMessage(rec).Encode()
	if err != nil {
		return nil, err
	}
	return ndef.WrapTLV(msg)
}

// decodeNDEF accepts a TLV area or a bare message. TLV areas start with a
// NULL, lock, memory or NDEF block; anything else is parsed as records.
func decodeNDEF(s string) ([]string, error) {
	data, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid HEX: %w", err)
	}
	if len(data) == 0 {
		return nil, ndef.ErrEmptyMessage
	}

	var msg *ndef.Message
	if data[0] <= ndef.TLVNDEF {
		msg, err = ndef.ReadMessage(data)
	} else {
		msg, err = ndef.ParseMessage(data)
	}
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(msg.Records))
	for i := range msg.Records {
		lines = append(lines, describeRecord(&msg.Records[i]))
	}
	return lines, nil
}

func describeRecord(rec *ndef.Record) string {
	if uri, err := rec.URI(); err == nil {
		return "uri: " + uri
	}
	if text, lang, err := rec.Text(); err == nil {
		return fmt.Sprintf("text (%s): %s", lang, text)
	}
	return fmt.Sprintf("%s %q: % X", rec.TNF, rec.Type, rec.Payload)
}
