// go-rf24tun
// Copyright (c) 2025 The rf24tun Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-rf24tun.
//
// go-rf24tun is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-rf24tun is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-rf24tun; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package tun opens and configures the local virtual network interface
// that feeds the radio link.
package tun

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// maxPacketSize bounds a single read from the tunnel device.
const maxPacketSize = 65535

// Device is an open tunnel interface. It implements rf24tun.Tunnel.
type Device struct {
	file    *os.File
	name    string
	readBuf []byte
}

// Name returns the interface name the kernel assigned.
func (d *Device) Name() string {
	return d.name
}

// TryReadPacket returns the next outbound IP packet, or (nil, nil) when
// none is ready. The device fd is pollable, so an already-expired read
// deadline turns the read into a non-blocking probe.
func (d *Device) TryReadPacket() ([]byte, error) {
	if err := d.file.SetReadDeadline(time.Now()); err != nil {
		return nil, fmt.Errorf("tun %s: set read deadline: %w", d.name, err)
	}

	n, err := d.file.Read(d.readBuf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, nil
		}
		return nil, fmt.Errorf("tun %s: read: %w", d.name, err)
	}

	packet := make([]byte, n)
	copy(packet, d.readBuf[:n])
	return packet, nil
}

// WritePacket delivers one IP packet to the interface.
func (d *Device) WritePacket(packet []byte) error {
	n, err := d.file.Write(packet)
	if err != nil {
		return fmt.Errorf("tun %s: write: %w", d.name, err)
	}
	if n != len(packet) {
		return fmt.Errorf("tun %s: wrote %d of %d bytes", d.name, n, len(packet))
	}
	return nil
}

// Close releases the tunnel device. The kernel tears the interface down
// with the fd.
func (d *Device) Close() error {
	if err := d.file.Close(); err != nil {
		return fmt.Errorf("tun %s: close: %w", d.name, err)
	}
	return nil
}
