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
	"context"
	"time"
)

// PrimaryRadio is the radio boundary for the polling side. Every
// exchange on the air is initiated through it. The peer address and
// channel are fixed at construction from the link configuration.
//
// Any hardware-level acknowledgment or retry beneath the transport is
// opaque here: the link observes a successful or failed exchange, never
// its internal retries.
type PrimaryRadio interface {
	// Exchange transmits one encoded frame and blocks for the peer's
	// piggybacked reply, bounded by timeout. It returns the raw reply
	// bytes, or an error wrapping ErrLinkTimeout / ErrLinkFailure.
	Exchange(frame []byte, timeout time.Duration) ([]byte, error)

	// Close releases the radio hardware.
	Close() error
}

// SecondaryRadio is the radio boundary for the reactive side. It never
// initiates; each received frame is answered with exactly one reply in
// the same exchange.
type SecondaryRadio interface {
	// Receive blocks until a frame arrives or ctx is done. There is no
	// fixed period; the secondary waits indefinitely for the primary.
	Receive(ctx context.Context) ([]byte, error)

	// Reply transmits the response to the exchange that produced the
	// last received frame.
	Reply(frame []byte) error

	// Close releases the radio hardware.
	Close() error
}
