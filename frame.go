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
	"encoding/binary"
	"fmt"
)

// Frame sizing. The NRF24L01 moves at most 32 bytes per transaction;
// the codec reserves a fixed header and hands the rest to the payload.
//
// Wire layout: Kind(1) | Sequence(1) | PayloadLen(1) | TotalLength(2, LE) | Payload
const (
	// RadioFrameSize is the hardware payload width of the NRF24L01.
	RadioFrameSize = 32

	// FrameHeaderSize is the fixed header preceding the payload.
	FrameHeaderSize = 5

	// MaxFramePayload is the packet bytes one frame can carry.
	MaxFramePayload = RadioFrameSize - FrameHeaderSize

	// SequenceModulus bounds the per-direction sequence counter.
	SequenceModulus = 256
)

// FrameKind identifies the role of a frame within a packet.
type FrameKind byte

const (
	// KindSingle carries a whole packet in one frame.
	KindSingle FrameKind = iota
	// KindStart opens a multi-frame packet and declares its total length.
	KindStart
	// KindContinuation carries middle bytes of a multi-frame packet.
	KindContinuation
	// KindEnd closes a multi-frame packet.
	KindEnd
	// KindIdle carries no payload; it only keeps the poll cadence alive.
	KindIdle
)

// String returns a short name for the frame kind.
func (k FrameKind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindStart:
		return "start"
	case KindContinuation:
		return "continuation"
	case KindEnd:
		return "end"
	case KindIdle:
		return "idle"
	default:
		return fmt.Sprintf("unknown(%d)", byte(k))
	}
}

func (k FrameKind) valid() bool {
	return k <= KindIdle
}

// carriesTotalLength reports whether the kind declares the reassembled
// packet length in its header.
func (k FrameKind) carriesTotalLength() bool {
	return k == KindSingle || k == KindStart
}

// Frame is the atomic radio transport unit.
type Frame struct {
	Payload []byte
	// TotalLength declares the full reassembled packet length.
	// Meaningful only on Single and Start frames.
	TotalLength uint16
	Kind        FrameKind
	Sequence    uint8
}

// EncodeFrame serializes a frame into a buffer no larger than
// RadioFrameSize. The codec performs no sequence validation; continuity
// is the reassembler's concern.
func EncodeFrame(f Frame) ([]byte, error) {
	if !f.Kind.valid() {
		return nil, fmt.Errorf("%w: kind %d", ErrFrameMalformed, byte(f.Kind))
	}
	if len(f.Payload) > MaxFramePayload {
		return nil, fmt.Errorf("%w: payload %d exceeds %d bytes",
			ErrPayloadTooLarge, len(f.Payload), MaxFramePayload)
	}
	if !f.Kind.carriesTotalLength() && f.TotalLength != 0 {
		return nil, fmt.Errorf("%w: %s frame declares total length",
			ErrFrameMalformed, f.Kind)
	}
	if f.Kind == KindIdle && len(f.Payload) != 0 {
		return nil, fmt.Errorf("%w: idle frame carries payload", ErrFrameMalformed)
	}

	buf := make([]byte, FrameHeaderSize+len(f.Payload))
	buf[0] = byte(f.Kind)
	buf[1] = f.Sequence
	buf[2] = byte(len(f.Payload))
	binary.LittleEndian.PutUint16(buf[3:5], f.TotalLength)
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf, nil
}

// DecodeFrame parses a received buffer into a frame. Buffers longer than
// the declared payload are accepted and trimmed, since the radio delivers
// fixed-width transactions padded past the payload.
func DecodeFrame(buf []byte) (Frame, error) {
	if len(buf) < FrameHeaderSize {
		return Frame{}, fmt.Errorf("%w: %d bytes, header needs %d",
			ErrFrameMalformed, len(buf), FrameHeaderSize)
	}

	kind := FrameKind(buf[0])
	if !kind.valid() {
		return Frame{}, fmt.Errorf("%w: kind %d", ErrFrameMalformed, buf[0])
	}

	payloadLen := int(buf[2])
	if payloadLen > MaxFramePayload {
		return Frame{}, fmt.Errorf("%w: declared payload %d exceeds %d",
			ErrFrameTruncated, payloadLen, MaxFramePayload)
	}
	if FrameHeaderSize+payloadLen > len(buf) {
		return Frame{}, fmt.Errorf("%w: declared payload %d, buffer holds %d",
			ErrFrameTruncated, payloadLen, len(buf)-FrameHeaderSize)
	}

	f := Frame{
		Kind:        kind,
		Sequence:    buf[1],
		TotalLength: binary.LittleEndian.Uint16(buf[3:5]),
	}
	if payloadLen > 0 {
		f.Payload = make([]byte, payloadLen)
		copy(f.Payload, buf[FrameHeaderSize:FrameHeaderSize+payloadLen])
	}
	return f, nil
}
