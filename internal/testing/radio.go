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

// Package testing provides shared test doubles for the radio and tunnel
// boundaries.
package testing

import (
	"context"
	"sync"
	"time"

	rf24tun "github.com/rf24tun/go-rf24tun"
)

// MockPrimaryRadio is a scripted primary radio. Each Exchange records
// the transmitted frame and answers from ExchangeFunc, or with an Idle
// frame when no script is set.
type MockPrimaryRadio struct {
	// ExchangeFunc computes the piggybacked reply for a transmitted
	// frame. Optional.
	ExchangeFunc func(frame []byte) ([]byte, error)

	mu     sync.Mutex
	sent   [][]byte
	seq    uint8
	closed bool
}

// NewMockPrimaryRadio creates a mock primary radio.
func NewMockPrimaryRadio() *MockPrimaryRadio {
	return &MockPrimaryRadio{}
}

// Exchange implements rf24tun.PrimaryRadio.
func (m *MockPrimaryRadio) Exchange(frame []byte, _ time.Duration) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, rf24tun.ErrRadioClosed
	}

	sent := make([]byte, len(frame))
	copy(sent, frame)
	m.sent = append(m.sent, sent)

	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(sent)
	}

	reply, err := rf24tun.EncodeFrame(rf24tun.Frame{
		Kind:     rf24tun.KindIdle,
		Sequence: m.seq,
	})
	if err != nil {
		return nil, err
	}
	m.seq++
	return reply, nil
}

// Close implements rf24tun.PrimaryRadio.
func (m *MockPrimaryRadio) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// SentFrames returns copies of every transmitted buffer, in order.
func (m *MockPrimaryRadio) SentFrames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	frames := make([][]byte, len(m.sent))
	copy(frames, m.sent)
	return frames
}

// SentCount returns the number of transmitted frames.
func (m *MockPrimaryRadio) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// MockSecondaryRadio is a scripted secondary radio: Receive pops from a
// queue of incoming buffers fed by Inject, and Reply records responses.
type MockSecondaryRadio struct {
	incoming chan []byte
	mu       sync.Mutex
	replies  [][]byte
	// ReplyErr, when set, is returned by the next Reply call.
	ReplyErr error
}

// NewMockSecondaryRadio creates a mock secondary radio.
func NewMockSecondaryRadio() *MockSecondaryRadio {
	return &MockSecondaryRadio{incoming: make(chan []byte, 64)}
}

// Inject queues one incoming buffer for Receive.
func (m *MockSecondaryRadio) Inject(frame []byte) {
	buf := make([]byte, len(frame))
	copy(buf, frame)
	m.incoming <- buf
}

// Receive implements rf24tun.SecondaryRadio.
func (m *MockSecondaryRadio) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case frame := <-m.incoming:
		return frame, nil
	}
}

// Reply implements rf24tun.SecondaryRadio.
func (m *MockSecondaryRadio) Reply(frame []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReplyErr != nil {
		err := m.ReplyErr
		m.ReplyErr = nil
		return err
	}
	buf := make([]byte, len(frame))
	copy(buf, frame)
	m.replies = append(m.replies, buf)
	return nil
}

// Close implements rf24tun.SecondaryRadio.
func (*MockSecondaryRadio) Close() error {
	return nil
}

// Replies returns copies of every recorded reply, in order.
func (m *MockSecondaryRadio) Replies() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	replies := make([][]byte, len(m.replies))
	copy(replies, m.replies)
	return replies
}

// ReplyCount returns the number of recorded replies.
func (m *MockSecondaryRadio) ReplyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.replies)
}
