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

package testing

import (
	"context"
	"time"

	rf24tun "github.com/rf24tun/go-rf24tun"
)

// RadioPipe wires a primary and a secondary radio together in memory,
// modelling the half-duplex exchange: the primary's transmit blocks
// until the secondary replies or the timeout passes, exactly one reply
// per exchange.
type RadioPipe struct {
	toSecondary chan []byte
	toPrimary   chan []byte
}

// NewRadioPipe creates a connected radio pair.
func NewRadioPipe() *RadioPipe {
	return &RadioPipe{
		toSecondary: make(chan []byte, 1),
		toPrimary:   make(chan []byte, 1),
	}
}

// Primary returns the polling end of the pipe.
func (p *RadioPipe) Primary() rf24tun.PrimaryRadio {
	return &pipePrimary{pipe: p}
}

// Secondary returns the reactive end of the pipe.
func (p *RadioPipe) Secondary() rf24tun.SecondaryRadio {
	return &pipeSecondary{pipe: p}
}

type pipePrimary struct {
	pipe *RadioPipe
}

func (r *pipePrimary) Exchange(frame []byte, timeout time.Duration) ([]byte, error) {
	buf := make([]byte, len(frame))
	copy(buf, frame)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r.pipe.toSecondary <- buf:
	case <-timer.C:
		return nil, rf24tun.NewTimeoutError("exchange", "pipe")
	}

	select {
	case reply := <-r.pipe.toPrimary:
		return reply, nil
	case <-timer.C:
		return nil, rf24tun.NewTimeoutError("exchange", "pipe")
	}
}

func (*pipePrimary) Close() error {
	return nil
}

type pipeSecondary struct {
	pipe *RadioPipe
}

func (r *pipeSecondary) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case frame := <-r.pipe.toSecondary:
		return frame, nil
	}
}

func (r *pipeSecondary) Reply(frame []byte) error {
	buf := make([]byte, len(frame))
	copy(buf, frame)
	select {
	case r.pipe.toPrimary <- buf:
		return nil
	default:
		return rf24tun.NewExchangeFailedError("reply", "pipe", nil)
	}
}

func (*pipeSecondary) Close() error {
	return nil
}
