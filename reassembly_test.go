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

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move reassembly time without sleeping.
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Unix(1000, 0)}
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newTestReassembler(threshold time.Duration) (*Reassembler, *fakeClock) {
	clock := newFakeClock()
	r := NewReassembler(threshold)
	r.now = clock.now
	return r, clock
}

func TestReassembler_IgnoresIdle(t *testing.T) {
	t.Parallel()
	r := NewReassembler(time.Second)
	packet, err := r.Consume(Frame{Kind: KindIdle, Sequence: 9})
	require.NoError(t, err)
	assert.Nil(t, packet)
	assert.False(t, r.Pending())
}

func TestReassembler_SingleDelivers(t *testing.T) {
	t.Parallel()
	r := NewReassembler(time.Second)
	packet, err := r.Consume(Frame{
		Kind:        KindSingle,
		Sequence:    5,
		TotalLength: 4,
		Payload:     []byte{1, 2, 3, 4},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, packet)
	assert.False(t, r.Pending())
}

func TestReassembler_SingleLengthMismatch(t *testing.T) {
	t.Parallel()
	r := NewReassembler(time.Second)
	_, err := r.Consume(Frame{
		Kind:        KindSingle,
		Sequence:    5,
		TotalLength: 10,
		Payload:     []byte{1, 2},
	})
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestReassembler_MultiFrameDelivers(t *testing.T) {
	t.Parallel()
	r := NewReassembler(time.Second)
	payload := testPacket(2*MaxFramePayload + 5)

	packet, err := r.Consume(Frame{
		Kind:        KindStart,
		Sequence:    10,
		TotalLength: uint16(len(payload)),
		Payload:     payload[:MaxFramePayload],
	})
	require.NoError(t, err)
	assert.Nil(t, packet)
	assert.True(t, r.Pending())

	packet, err = r.Consume(Frame{
		Kind:     KindContinuation,
		Sequence: 11,
		Payload:  payload[MaxFramePayload : 2*MaxFramePayload],
	})
	require.NoError(t, err)
	assert.Nil(t, packet)

	packet, err = r.Consume(Frame{
		Kind:     KindEnd,
		Sequence: 12,
		Payload:  payload[2*MaxFramePayload:],
	})
	require.NoError(t, err)
	assert.Equal(t, payload, packet)
	assert.False(t, r.Pending())
}

func TestReassembler_OutOfOrderAbandons(t *testing.T) {
	t.Parallel()
	r := NewReassembler(time.Second)
	payload := testPacket(3 * MaxFramePayload)

	_, err := r.Consume(Frame{
		Kind:        KindStart,
		Sequence:    0,
		TotalLength: uint16(len(payload)),
		Payload:     payload[:MaxFramePayload],
	})
	require.NoError(t, err)

	// Sequence 1 got lost; 2 arrives. The frame is dropped and the
	// whole in-flight packet abandoned, not patched around.
	_, err = r.Consume(Frame{
		Kind:     KindContinuation,
		Sequence: 2,
		Payload:  payload[2*MaxFramePayload:],
	})
	require.ErrorIs(t, err, ErrSequenceMismatch)
	assert.False(t, r.Pending())

	// The next legitimate packet reassembles cleanly.
	packet, err := r.Consume(Frame{
		Kind:        KindSingle,
		Sequence:    3,
		TotalLength: 2,
		Payload:     []byte{7, 8},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 8}, packet)
}

func TestReassembler_StartDuringInFlightDropped(t *testing.T) {
	t.Parallel()
	r := NewReassembler(time.Second)

	_, err := r.Consume(Frame{
		Kind:        KindStart,
		Sequence:    0,
		TotalLength: uint16(2 * MaxFramePayload),
		Payload:     testPacket(MaxFramePayload),
	})
	require.NoError(t, err)

	// A new packet must not begin before the prior one completed or
	// timed out.
	_, err = r.Consume(Frame{
		Kind:        KindStart,
		Sequence:    50,
		TotalLength: uint16(2 * MaxFramePayload),
		Payload:     testPacket(MaxFramePayload),
	})
	require.ErrorIs(t, err, ErrReassemblyBusy)
	assert.True(t, r.Pending())

	// The original packet still completes.
	packet, err := r.Consume(Frame{
		Kind:     KindEnd,
		Sequence: 1,
		Payload:  testPacket(MaxFramePayload),
	})
	require.NoError(t, err)
	assert.Len(t, packet, 2*MaxFramePayload)
}

func TestReassembler_ExpiresStalledPacket(t *testing.T) {
	t.Parallel()
	r, clock := newTestReassembler(100 * time.Millisecond)

	_, err := r.Consume(Frame{
		Kind:        KindStart,
		Sequence:    0,
		TotalLength: uint16(2 * MaxFramePayload),
		Payload:     testPacket(MaxFramePayload),
	})
	require.NoError(t, err)
	assert.True(t, r.Pending())

	clock.advance(200 * time.Millisecond)

	// A new Start begins a fresh reassembly over the expired one.
	_, err = r.Consume(Frame{
		Kind:        KindStart,
		Sequence:    40,
		TotalLength: uint16(MaxFramePayload + 1),
		Payload:     testPacket(MaxFramePayload),
	})
	require.NoError(t, err)
	assert.True(t, r.Pending())

	packet, err := r.Consume(Frame{
		Kind:     KindEnd,
		Sequence: 41,
		Payload:  []byte{0xFF},
	})
	require.NoError(t, err)
	assert.Len(t, packet, MaxFramePayload+1)
}

func TestReassembler_LateFrameOfExpiredPacketDropped(t *testing.T) {
	t.Parallel()
	r, clock := newTestReassembler(100 * time.Millisecond)

	_, err := r.Consume(Frame{
		Kind:        KindStart,
		Sequence:    0,
		TotalLength: uint16(2 * MaxFramePayload),
		Payload:     testPacket(MaxFramePayload),
	})
	require.NoError(t, err)

	clock.advance(200 * time.Millisecond)

	_, err = r.Consume(Frame{
		Kind:     KindEnd,
		Sequence: 1,
		Payload:  testPacket(MaxFramePayload),
	})
	require.ErrorIs(t, err, ErrReassemblyExpired)
	assert.False(t, r.Pending())
}

func TestReassembler_ContinuationWithoutStart(t *testing.T) {
	t.Parallel()
	r := NewReassembler(time.Second)
	_, err := r.Consume(Frame{
		Kind:     KindContinuation,
		Sequence: 3,
		Payload:  []byte{1},
	})
	require.ErrorIs(t, err, ErrNoReassembly)
}

func TestReassembler_EndLengthMismatchDiscards(t *testing.T) {
	t.Parallel()
	r := NewReassembler(time.Second)

	_, err := r.Consume(Frame{
		Kind:        KindStart,
		Sequence:    0,
		TotalLength: uint16(3 * MaxFramePayload),
		Payload:     testPacket(MaxFramePayload),
	})
	require.NoError(t, err)

	// End arrives a frame early; the partial packet is corrupt.
	_, err = r.Consume(Frame{
		Kind:     KindEnd,
		Sequence: 1,
		Payload:  testPacket(MaxFramePayload),
	})
	require.ErrorIs(t, err, ErrLengthMismatch)
	assert.False(t, r.Pending())
}

func TestReassembler_SequenceWrapAcrossFrames(t *testing.T) {
	t.Parallel()
	r := NewReassembler(time.Second)

	_, err := r.Consume(Frame{
		Kind:        KindStart,
		Sequence:    255,
		TotalLength: uint16(MaxFramePayload + 3),
		Payload:     testPacket(MaxFramePayload),
	})
	require.NoError(t, err)

	// 255 wraps to 0.
	packet, err := r.Consume(Frame{
		Kind:     KindEnd,
		Sequence: 0,
		Payload:  []byte{1, 2, 3},
	})
	require.NoError(t, err)
	assert.Len(t, packet, MaxFramePayload+3)
}
