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

// Package link runs the two scheduling strategies over the shared
// transport core: a fixed-period poll loop for the primary role and a
// purely reactive receive loop for the secondary role.
package link

// State is the scheduler's position in its exchange cycle.
type State int

const (
	// StateIdlePoll: primary between ticks, nothing outstanding.
	StateIdlePoll State = iota
	// StateSendingFragment: primary handing a frame to the radio.
	StateSendingFragment
	// StateAwaitingResponse: primary blocked on the piggybacked reply.
	StateAwaitingResponse
	// StateLinkError: the retry budget is exhausted. Polling continues;
	// the link is expected to recover once interference clears.
	StateLinkError
	// StateAwaitingFrame: secondary blocked on the radio receive.
	StateAwaitingFrame
	// StateProcessing: secondary handling a received frame and composing
	// its reply.
	StateProcessing
)

// String returns a short name for the state.
func (s State) String() string {
	switch s {
	case StateIdlePoll:
		return "idle-poll"
	case StateSendingFragment:
		return "sending-fragment"
	case StateAwaitingResponse:
		return "awaiting-response"
	case StateLinkError:
		return "link-error"
	case StateAwaitingFrame:
		return "awaiting-frame"
	case StateProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// Stats counts link activity since startup. Counters only grow; they
// exist to diagnose link health from logs and tooling.
type Stats struct {
	// FramesSent counts frames confirmed on the air, Idle included.
	FramesSent uint64
	// FramesReceived counts frames successfully decoded.
	FramesReceived uint64
	// PacketsFragmented counts tunnel packets begun fragmenting.
	PacketsFragmented uint64
	// PacketsDelivered counts reassembled packets written to the tunnel.
	PacketsDelivered uint64
	// DecodeErrors counts received buffers the codec rejected.
	DecodeErrors uint64
	// ReassemblyDrops counts frames or packets the reassembler discarded.
	ReassemblyDrops uint64
	// ExchangeFailures counts radio exchanges that timed out or failed.
	ExchangeFailures uint64
	// LinkErrors counts transitions into StateLinkError.
	LinkErrors uint64
}
