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

package testing

import (
	"sync"

	rf24tun "github.com/rf24tun/go-rf24tun"
)

// MockTunnel is an in-memory tunnel device: Queue feeds packets to
// TryReadPacket and WritePacket records deliveries.
type MockTunnel struct {
	mu       sync.Mutex
	outbound [][]byte
	written  [][]byte
	closed   bool
}

// NewMockTunnel creates an empty mock tunnel.
func NewMockTunnel() *MockTunnel {
	return &MockTunnel{}
}

// Queue makes a packet available to the next TryReadPacket.
func (m *MockTunnel) Queue(packet []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(packet))
	copy(buf, packet)
	m.outbound = append(m.outbound, buf)
}

// TryReadPacket implements rf24tun.Tunnel.
func (m *MockTunnel) TryReadPacket() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, rf24tun.ErrTunnelClosed
	}
	if len(m.outbound) == 0 {
		return nil, nil
	}
	packet := m.outbound[0]
	m.outbound = m.outbound[1:]
	return packet, nil
}

// WritePacket implements rf24tun.Tunnel.
func (m *MockTunnel) WritePacket(packet []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return rf24tun.ErrTunnelClosed
	}
	buf := make([]byte, len(packet))
	copy(buf, packet)
	m.written = append(m.written, buf)
	return nil
}

// Close implements rf24tun.Tunnel.
func (m *MockTunnel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Written returns copies of every delivered packet, in order.
func (m *MockTunnel) Written() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	written := make([][]byte, len(m.written))
	copy(written, m.written)
	return written
}

// WrittenCount returns the number of delivered packets.
func (m *MockTunnel) WrittenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.written)
}
