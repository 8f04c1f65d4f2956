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

package rf24tun

// Tunnel is the boundary to the local virtual network interface. The
// schedulers drain it opportunistically between radio exchanges and
// deliver reassembled packets into it.
type Tunnel interface {
	// TryReadPacket returns the next outbound IP packet, or (nil, nil)
	// when none is ready. It never blocks.
	TryReadPacket() ([]byte, error)

	// WritePacket delivers one reassembled IP packet to the interface.
	WritePacket(packet []byte) error

	// Close releases the tunnel device.
	Close() error
}
