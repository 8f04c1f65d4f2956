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
	"time"

	rf24tun "github.com/rf24tun/go-rf24tun"
)

// Primary drives the polling side of the link. Each tick of the fixed
// poll period it transmits exactly one frame, a fragment when a packet
// is in flight and an Idle frame otherwise, and feeds the piggybacked
// reply into the inbound engine. The secondary has no transmit slot of
// its own, so the cadence must hold even when there is nothing to say.
type Primary struct {
	radio    rf24tun.PrimaryRadio
	tunnel   rf24tun.Tunnel
	outbound *rf24tun.Fragmenter
	inbound  *rf24tun.Reassembler

	// OnLinkError fires once when the consecutive-failure count passes
	// the retry budget. Polling continues regardless.
	OnLinkError func(err error)
	// OnLinkRecovered fires when an exchange succeeds after OnLinkError.
	OnLinkRecovered func()

	settings settings
	state    State
	stats    Stats
	failures int
}

// NewPrimary creates the primary scheduler over a radio and a tunnel
// device. The configuration is validated before use.
func NewPrimary(radio rf24tun.PrimaryRadio, tunnel rf24tun.Tunnel,
	cfg *rf24tun.Config, opts ...Option,
) (*Primary, error) {
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

	return &Primary{
		radio:    radio,
		tunnel:   tunnel,
		outbound: rf24tun.NewFragmenter(),
		inbound:  rf24tun.NewReassembler(s.idleThreshold),
		settings: s,
		state:    StateIdlePoll,
	}, nil
}

// State returns the scheduler's current state. Not safe to call
// concurrently with Run.
func (p *Primary) State() State {
	return p.state
}

// Stats returns a copy of the activity counters. Not safe to call
// concurrently with Run.
func (p *Primary) Stats() Stats {
	return p.stats
}

// Run polls at the configured period until ctx is done. The tick in
// progress finishes its blocking exchange (or times out) before Run
// returns, so shutdown never tears the radio out from under an exchange.
func (p *Primary) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.settings.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick performs one poll cycle: select a frame, exchange it, process the
// piggybacked reply.
func (p *Primary) tick() {
	p.fillOutbound()

	frame := p.outbound.Frame()
	p.state = StateSendingFragment
	buf, err := rf24tun.EncodeFrame(frame)
	if err != nil {
		// Frames built by the fragmenter always encode; treat anything
		// else as a bug worth seeing in logs.
		log.Printf("link: dropping unencodable %s frame seq %d: %v",
			frame.Kind, frame.Sequence, err)
		p.outbound.Reset()
		p.state = StateIdlePoll
		return
	}

	p.state = StateAwaitingResponse
	reply, err := p.radio.Exchange(buf, p.settings.exchangeTimeout)
	if err != nil {
		p.exchangeFailed(frame, err)
		return
	}

	p.exchangeSucceeded()
	p.outbound.Advance()
	p.stats.FramesSent++
	p.processReply(reply)
}

// fillOutbound drains the tunnel opportunistically: only when no packet
// is mid-fragmentation, preserving the single in-flight invariant.
func (p *Primary) fillOutbound() {
	if p.outbound.Pending() {
		return
	}

	packet, err := p.tunnel.TryReadPacket()
	if err != nil {
		log.Printf("link: tunnel read failed: %v", err)
		return
	}
	if packet == nil {
		return
	}

	if p.settings.tunnelLogging {
		log.Printf("link: read %d bytes from tunnel", len(packet))
	}
	if err := p.outbound.Begin(packet); err != nil {
		log.Printf("link: dropping %d byte packet: %v", len(packet), err)
		return
	}
	p.stats.PacketsFragmented++
}

// exchangeFailed counts a failed exchange against the retry budget. The
// unsent frame is not advanced past; the next tick retries it.
func (p *Primary) exchangeFailed(frame rf24tun.Frame, err error) {
	p.failures++
	p.stats.ExchangeFailures++

	if p.state != StateLinkError && p.failures >= p.settings.retryBudget {
		p.state = StateLinkError
		p.stats.LinkErrors++
		log.Printf("link: %d consecutive exchange failures, last: %v", p.failures, err)
		if p.OnLinkError != nil {
			p.OnLinkError(err)
		}
		return
	}
	if p.state == StateLinkError {
		// Already reported; keep retrying at the poll period.
		return
	}
	debugRetry(frame, p.failures, err)
}

func (p *Primary) exchangeSucceeded() {
	recovered := p.state == StateLinkError
	p.failures = 0
	p.state = StateIdlePoll
	if recovered {
		log.Printf("link: recovered")
		if p.OnLinkRecovered != nil {
			p.OnLinkRecovered()
		}
	}
}

// processReply decodes the piggybacked response and feeds it inbound.
// Every error here is diagnostic; the poll cadence is never interrupted.
func (p *Primary) processReply(reply []byte) {
	frame, err := rf24tun.DecodeFrame(reply)
	if err != nil {
		p.stats.DecodeErrors++
		log.Printf("link: dropping reply: %v", err)
		return
	}
	p.stats.FramesReceived++

	packet, err := p.inbound.Consume(frame)
	if err != nil {
		p.stats.ReassemblyDrops++
		log.Printf("link: %v", err)
		return
	}
	if packet == nil {
		return
	}

	if p.settings.tunnelLogging {
		log.Printf("link: writing %d bytes to tunnel", len(packet))
	}
	if err := p.tunnel.WritePacket(packet); err != nil {
		log.Printf("link: tunnel write failed: %v", err)
		return
	}
	p.stats.PacketsDelivered++
}

func debugRetry(frame rf24tun.Frame, failures int, err error) {
	if rf24tun.DebugEnabled() {
		log.Printf("rf24tun: exchange failed (%d consecutive), retrying %s frame seq %d: %v",
			failures, frame.Kind, frame.Sequence, err)
	}
}
