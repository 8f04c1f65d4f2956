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
	"fmt"
	"math"
)

// Fragmenter owns the outbound direction of a link: the packet currently
// being fragmented and the direction's sequence counter. Every outbound
// frame, Idle included, consumes one sequence number, so within a packet
// the fragment sequence is contiguous.
//
// Frames are produced lazily, one per tick, so a scheduler can interleave
// them with its fixed poll cadence. Frame is stable until Advance is
// called; a failed radio exchange retries the identical frame.
type Fragmenter struct {
	packet     []byte
	offset     int
	frameIndex int
	frameCount int
	sequence   uint8
	active     bool
}

// NewFragmenter creates an idle fragmenter.
func NewFragmenter() *Fragmenter {
	return &Fragmenter{}
}

// Begin starts fragmenting an outbound packet. At most one packet is in
// flight per direction; Begin returns ErrFragmentPending until the prior
// packet's final frame has been advanced past.
func (f *Fragmenter) Begin(packet []byte) error {
	if f.active {
		return ErrFragmentPending
	}
	if len(packet) > math.MaxUint16 {
		return fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, len(packet))
	}

	// Own a copy; the tunnel reader reuses its buffer.
	f.packet = append(f.packet[:0], packet...)
	f.offset = 0
	f.frameIndex = 0
	f.frameCount = frameCount(len(packet))
	f.active = true
	return nil
}

// frameCount computes ceil(length/MaxFramePayload) with a minimum of one
// frame, so a zero-length packet still travels as one empty Single.
func frameCount(length int) int {
	if length == 0 {
		return 1
	}
	return (length + MaxFramePayload - 1) / MaxFramePayload
}

// Pending reports whether a packet is currently in flight.
func (f *Fragmenter) Pending() bool {
	return f.active
}

// Frame returns the frame to transmit now: the next fragment of the
// in-flight packet, or an Idle frame when nothing is pending. Repeated
// calls return the same frame until Advance commits it.
func (f *Fragmenter) Frame() Frame {
	if !f.active {
		return Frame{Kind: KindIdle, Sequence: f.sequence}
	}

	end := f.offset + MaxFramePayload
	if end > len(f.packet) {
		end = len(f.packet)
	}

	frame := Frame{
		Kind:     f.frameKind(),
		Sequence: f.sequence,
		Payload:  f.packet[f.offset:end],
	}
	if frame.Kind.carriesTotalLength() {
		frame.TotalLength = uint16(len(f.packet))
	}
	return frame
}

func (f *Fragmenter) frameKind() FrameKind {
	switch {
	case f.frameCount == 1:
		return KindSingle
	case f.frameIndex == 0:
		return KindStart
	case f.frameIndex == f.frameCount-1:
		return KindEnd
	default:
		return KindContinuation
	}
}

// Advance commits the current frame after a confirmed exchange. The
// sequence counter always moves; the fragment cursor moves only while a
// packet is in flight, and the fragmenter goes idle past the final frame.
func (f *Fragmenter) Advance() {
	f.sequence++ // wraps modulo SequenceModulus
	if !f.active {
		return
	}

	f.frameIndex++
	f.offset += MaxFramePayload
	if f.frameIndex >= f.frameCount {
		f.active = false
		f.packet = f.packet[:0]
	}
}

// Reset abandons any in-flight packet, for link restart. The sequence
// counter is preserved; the peer resynchronizes on the next Start.
func (f *Fragmenter) Reset() {
	f.active = false
	f.packet = f.packet[:0]
}
