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
	"time"
)

// Reassembler owns the inbound direction of a link: the packet currently
// being reassembled from a strict in-order frame sequence.
//
// The policy is no-reorder, no-retransmit-request: a frame with an
// unexpected sequence abandons the whole in-flight packet, and a stalled
// reassembly expires once the idle threshold passes. Packet-level
// recovery belongs to protocols above IP.
type Reassembler struct {
	lastActivity  time.Time
	now           func() time.Time
	buffer        []byte
	idleThreshold time.Duration
	declared      int
	nextSequence  uint8
	active        bool
}

// NewReassembler creates an idle reassembler. A stalled in-progress
// packet is discarded once no frame arrives for idleThreshold.
func NewReassembler(idleThreshold time.Duration) *Reassembler {
	return &Reassembler{
		idleThreshold: idleThreshold,
		now:           time.Now,
	}
}

// Pending reports whether a packet is currently reassembling.
func (r *Reassembler) Pending() bool {
	return r.active
}

// Reset abandons any in-flight packet, for link restart.
func (r *Reassembler) Reset() {
	r.active = false
	r.buffer = r.buffer[:0]
	r.declared = 0
}

// expired reports whether the in-flight packet has gone stale.
func (r *Reassembler) expired() bool {
	return r.active && r.now().Sub(r.lastActivity) > r.idleThreshold
}

// Consume feeds one received frame into the reassembler. It returns the
// completed packet on a Single or final End frame, nil otherwise. Errors
// are diagnostic; the caller logs them and the link stays up.
func (r *Reassembler) Consume(f Frame) ([]byte, error) {
	if f.Kind == KindIdle {
		return nil, nil
	}

	stale := r.expired()
	if stale {
		debugf("reassembly abandoned after %v idle: %d/%d bytes",
			r.idleThreshold, len(r.buffer), r.declared)
		r.Reset()
	}

	switch f.Kind {
	case KindSingle, KindStart:
		return r.consumeFirst(f)
	case KindContinuation, KindEnd:
		if stale {
			// The packet these frames belonged to just expired.
			return nil, fmt.Errorf("%w: %s frame seq %d dropped",
				ErrReassemblyExpired, f.Kind, f.Sequence)
		}
		return r.consumeNext(f)
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrFrameMalformed, byte(f.Kind))
	}
}

// consumeFirst handles Start and Single frames, which open a packet.
func (r *Reassembler) consumeFirst(f Frame) ([]byte, error) {
	if r.active {
		// A new packet must not begin before the prior one completed or
		// timed out.
		return nil, fmt.Errorf("%w: %s frame seq %d dropped, %d/%d bytes held",
			ErrReassemblyBusy, f.Kind, f.Sequence, len(r.buffer), r.declared)
	}

	declared := int(f.TotalLength)
	if f.Kind == KindSingle {
		if len(f.Payload) != declared {
			return nil, fmt.Errorf("%w: single frame holds %d bytes, declares %d",
				ErrLengthMismatch, len(f.Payload), declared)
		}
		packet := make([]byte, len(f.Payload))
		copy(packet, f.Payload)
		return packet, nil
	}

	if len(f.Payload) >= declared {
		// A Start that already satisfies its declared length leaves no
		// room for the End frame that must follow.
		return nil, fmt.Errorf("%w: start frame holds %d bytes, declares %d",
			ErrLengthMismatch, len(f.Payload), declared)
	}

	r.active = true
	r.declared = declared
	r.buffer = append(r.buffer[:0], f.Payload...)
	r.nextSequence = f.Sequence + 1
	r.lastActivity = r.now()
	return nil, nil
}

// consumeNext handles Continuation and End frames of the in-flight packet.
func (r *Reassembler) consumeNext(f Frame) ([]byte, error) {
	if !r.active {
		return nil, fmt.Errorf("%w: %s frame seq %d dropped",
			ErrNoReassembly, f.Kind, f.Sequence)
	}
	if f.Sequence != r.nextSequence {
		expected := r.nextSequence
		r.Reset()
		return nil, fmt.Errorf("%w: %s frame seq %d, expected %d; packet abandoned",
			ErrSequenceMismatch, f.Kind, f.Sequence, expected)
	}

	r.buffer = append(r.buffer, f.Payload...)
	r.nextSequence++
	r.lastActivity = r.now()

	if len(r.buffer) > r.declared {
		consumed := len(r.buffer)
		r.Reset()
		return nil, fmt.Errorf("%w: %d bytes consumed, %d declared; packet discarded",
			ErrLengthMismatch, consumed, r.declared)
	}

	if f.Kind == KindContinuation {
		return nil, nil
	}

	// End frame: the packet is complete only at exactly the declared size.
	if len(r.buffer) != r.declared {
		consumed := len(r.buffer)
		declared := r.declared
		r.Reset()
		return nil, fmt.Errorf("%w: %d bytes consumed, %d declared; packet discarded",
			ErrLengthMismatch, consumed, declared)
	}

	packet := make([]byte, len(r.buffer))
	copy(packet, r.buffer)
	r.Reset()
	return packet, nil
}
