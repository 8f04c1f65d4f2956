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
	"errors"
	"log"

	rf24tun "github.com/rf24tun/go-rf24tun"
)

// Secondary drives the reactive side of the link. It never initiates a
// radio exchange: it blocks until the primary polls, then answers that
// same exchange with exactly one frame, carrying its own traffic
// piggybacked on the primary's cadence.
type Secondary struct {
	radio    rf24tun.SecondaryRadio
	tunnel   rf24tun.Tunnel
	outbound *rf24tun.Fragmenter
	inbound  *rf24tun.Reassembler

	settings settings
	state    State
	stats    Stats
}

// NewSecondary creates the secondary scheduler over a radio and a tunnel
// device. The configuration is validated before use; the poll interval
// is ignored since the secondary has no period of its own.
func NewSecondary(radio rf24tun.SecondaryRadio, tunnel rf24tun.Tunnel,
	cfg *rf24tun.Config, opts ...Option,
) (*Secondary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if radio == nil {
		return nil, errors.New("radio cannot be nil")
	}
	if tunnel == nil {
		return nil, errors.New("tunnel cannot be nil")
	}

	s := settingsFromConfig(cfg)
	for _, opt := range opts {
		if err := opt(&s); err != nil {
			return nil, err
		}
	}

	return &Secondary{
		radio:    radio,
		tunnel:   tunnel,
		outbound: rf24tun.NewFragmenter(),
		inbound:  rf24tun.NewReassembler(s.idleThreshold),
		settings: s,
		state:    StateAwaitingFrame,
	}, nil
}

// State returns the scheduler's current state. Not safe to call
// concurrently with Run.
func (s *Secondary) State() State {
	return s.state
}

// Stats returns a copy of the activity counters. Not safe to call
// concurrently with Run.
func (s *Secondary) Stats() Stats {
	return s.stats
}

// Run blocks on the radio until ctx is done, answering each received
// frame synchronously.
func (s *Secondary) Run(ctx context.Context) error {
	for {
		s.state = StateAwaitingFrame
		data, err := s.radio.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Transient radio noise; to the caller this is just "no
			// frame yet".
			log.Printf("link: receive failed: %v", err)
			continue
		}

		s.state = StateProcessing
		s.handleExchange(data)
	}
}

// handleExchange processes one received frame and composes the reply.
// Exactly one reply is produced per received frame, even when the
// inbound frame is garbage: the primary still expects its piggybacked
// response, and an Idle reply keeps the cadence alive.
func (s *Secondary) handleExchange(data []byte) {
	frame, err := rf24tun.DecodeFrame(data)
	if err != nil {
		s.stats.DecodeErrors++
		log.Printf("link: dropping received frame: %v", err)
	} else {
		s.stats.FramesReceived++
		s.deliverInbound(frame)
	}

	s.fillOutbound()

	reply := s.outbound.Frame()
	buf, err := rf24tun.EncodeFrame(reply)
	if err != nil {
		log.Printf("link: dropping unencodable %s frame seq %d: %v",
			reply.Kind, reply.Sequence, err)
		s.outbound.Reset()
		return
	}
	if err := s.radio.Reply(buf); err != nil {
		// Not advanced; the same frame rides the next exchange.
		s.stats.ExchangeFailures++
		log.Printf("link: reply failed for %s frame seq %d: %v",
			reply.Kind, reply.Sequence, err)
		return
	}
	s.outbound.Advance()
	s.stats.FramesSent++
}

func (s *Secondary) deliverInbound(frame rf24tun.Frame) {
	packet, err := s.inbound.Consume(frame)
	if err != nil {
		s.stats.ReassemblyDrops++
		log.Printf("link: %v", err)
		return
	}
	if packet == nil {
		return
	}

	if s.settings.tunnelLogging {
		log.Printf("link: writing %d bytes to tunnel", len(packet))
	}
	if err := s.tunnel.WritePacket(packet); err != nil {
		log.Printf("link: tunnel write failed: %v", err)
		return
	}
	s.stats.PacketsDelivered++
}

// fillOutbound begins fragmenting a fresh tunnel packet when the
// outbound engine is idle, so the reply can carry it.
func (s *Secondary) fillOutbound() {
	if s.outbound.Pending() {
		return
	}

	packet, err := s.tunnel.TryReadPacket()
	if err != nil {
		log.Printf("link: tunnel read failed: %v", err)
		return
	}
	if packet == nil {
		return
	}

	if s.settings.tunnelLogging {
		log.Printf("link: read %d bytes from tunnel", len(packet))
	}
	if err := s.outbound.Begin(packet); err != nil {
		log.Printf("link: dropping %d byte packet: %v", len(packet), err)
		return
	}
	s.stats.PacketsFragmented++
}
