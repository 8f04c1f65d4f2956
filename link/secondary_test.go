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

package link

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rf24tun "github.com/rf24tun/go-rf24tun"
	mock "github.com/rf24tun/go-rf24tun/internal/testing"
)

func encodeFrame(t *testing.T, frame rf24tun.Frame) []byte {
	t.Helper()
	buf, err := rf24tun.EncodeFrame(frame)
	require.NoError(t, err)
	return buf
}

func TestNewSecondaryValidation(t *testing.T) {
	t.Parallel()

	radio := mock.NewMockSecondaryRadio()
	tunnel := mock.NewMockTunnel()

	badCfg := testConfig()
	badCfg.RetryBudget = 0
	_, err := NewSecondary(radio, tunnel, badCfg)
	require.ErrorIs(t, err, rf24tun.ErrInvalidConfig)

	_, err = NewSecondary(nil, tunnel, testConfig())
	require.Error(t, err)

	_, err = NewSecondary(radio, nil, testConfig())
	require.Error(t, err)
}

func TestSecondary_OneReplyPerFrame(t *testing.T) {
	t.Parallel()

	radio := mock.NewMockSecondaryRadio()
	tunnel := mock.NewMockTunnel()
	s, err := NewSecondary(radio, tunnel, testConfig())
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		s.handleExchange(encodeFrame(t, rf24tun.Frame{
			Kind:     rf24tun.KindIdle,
			Sequence: uint8(i),
		}))
	}

	frames := decodeSent(t, radio.Replies())
	require.Len(t, frames, 4)
	for _, frame := range frames {
		assert.Equal(t, rf24tun.KindIdle, frame.Kind)
	}
	assert.Equal(t, uint64(4), s.Stats().FramesSent)
	assert.Equal(t, uint64(4), s.Stats().FramesReceived)
}

func TestSecondary_RepliesEvenToGarbage(t *testing.T) {
	t.Parallel()

	radio := mock.NewMockSecondaryRadio()
	tunnel := mock.NewMockTunnel()
	s, err := NewSecondary(radio, tunnel, testConfig())
	require.NoError(t, err)

	// A mangled poll still gets its piggybacked response, or the primary
	// counts a timeout it did not deserve.
	s.handleExchange([]byte{0xFF, 0x00})

	require.Equal(t, 1, radio.ReplyCount())
	assert.Equal(t, uint64(1), s.Stats().DecodeErrors)
	assert.Equal(t, uint64(0), s.Stats().FramesReceived)
}

func TestSecondary_DeliversInboundPacket(t *testing.T) {
	t.Parallel()

	radio := mock.NewMockSecondaryRadio()
	tunnel := mock.NewMockTunnel()
	s, err := NewSecondary(radio, tunnel, testConfig())
	require.NoError(t, err)

	packet := testPayload(rf24tun.MaxFramePayload + 4)
	inbound := rf24tun.NewFragmenter()
	require.NoError(t, inbound.Begin(packet))
	for inbound.Pending() {
		s.handleExchange(encodeFrame(t, inbound.Frame()))
		inbound.Advance()
	}

	require.Equal(t, 1, tunnel.WrittenCount())
	assert.Equal(t, packet, tunnel.Written()[0])
	assert.Equal(t, uint64(1), s.Stats().PacketsDelivered)
}

func TestSecondary_PiggybacksOutboundPacket(t *testing.T) {
	t.Parallel()

	radio := mock.NewMockSecondaryRadio()
	tunnel := mock.NewMockTunnel()
	s, err := NewSecondary(radio, tunnel, testConfig())
	require.NoError(t, err)

	packet := testPayload(rf24tun.MaxFramePayload + 1)
	tunnel.Queue(packet)

	for i := 0; i < 3; i++ {
		s.handleExchange(encodeFrame(t, rf24tun.Frame{
			Kind:     rf24tun.KindIdle,
			Sequence: uint8(i),
		}))
	}

	frames := decodeSent(t, radio.Replies())
	require.Len(t, frames, 3)
	assert.Equal(t, rf24tun.KindStart, frames[0].Kind)
	assert.Equal(t, rf24tun.KindEnd, frames[1].Kind)
	assert.Equal(t, rf24tun.KindIdle, frames[2].Kind)

	reassembled := append([]byte{}, frames[0].Payload...)
	reassembled = append(reassembled, frames[1].Payload...)
	assert.Equal(t, packet, reassembled)
	assert.Equal(t, uint64(1), s.Stats().PacketsFragmented)
}

func TestSecondary_FailedReplyRetriesSameFrame(t *testing.T) {
	t.Parallel()

	radio := mock.NewMockSecondaryRadio()
	tunnel := mock.NewMockTunnel()
	s, err := NewSecondary(radio, tunnel, testConfig())
	require.NoError(t, err)

	tunnel.Queue(testPayload(2 * rf24tun.MaxFramePayload))

	radio.ReplyErr = rf24tun.NewExchangeFailedError("reply", "mock", nil)
	s.handleExchange(encodeFrame(t, rf24tun.Frame{Kind: rf24tun.KindIdle}))
	assert.Equal(t, 0, radio.ReplyCount())
	assert.Equal(t, uint64(1), s.Stats().ExchangeFailures)

	// The same Start frame rides the next exchange.
	s.handleExchange(encodeFrame(t, rf24tun.Frame{Kind: rf24tun.KindIdle, Sequence: 1}))
	frames := decodeSent(t, radio.Replies())
	require.Len(t, frames, 1)
	assert.Equal(t, rf24tun.KindStart, frames[0].Kind)
}

func TestSecondary_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	s, err := NewSecondary(mock.NewMockSecondaryRadio(), mock.NewMockTunnel(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
