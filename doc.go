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

/*
Package rf24tun implements a point-to-point IP tunnel over NRF24L01-class
radio transceivers.

These radios move at most 32 bytes per transaction and cannot transmit and
receive at the same time, so the package provides a miniature link layer on
top of them: a frame codec sized to the hardware payload, a fragmentation/
reassembly engine that carries arbitrary IP packets across many frames, and
two scheduling strategies sharing that core. The primary side polls on a
fixed period and the secondary side only ever answers, piggybacking its own
traffic on each exchange.

Basic Usage:

	import (
	    "github.com/rf24tun/go-rf24tun"
	    "github.com/rf24tun/go-rf24tun/link"
	    "github.com/rf24tun/go-rf24tun/transport/nrf24"
	    "github.com/rf24tun/go-rf24tun/tun"
	)

	cfg := rf24tun.DefaultConfig()
	if err := cfg.Validate(); err != nil {
	    log.Fatal(err)
	}

	radio, err := nrf24.NewPrimary("/dev/spidev0.0", 22, cfg)
	if err != nil {
	    log.Fatal(err)
	}
	defer radio.Close()

	tunnel, err := tun.Open("rf24tun0", "192.168.10.1", "255.255.255.0")
	if err != nil {
	    log.Fatal(err)
	}
	defer tunnel.Close()

	primary, err := link.NewPrimary(radio, tunnel, cfg,
	    link.WithRetryBudget(5))
	if err != nil {
	    log.Fatal(err)
	}
	if err := primary.Run(ctx); err != nil {
	    log.Fatal(err)
	}

Transport Selection:

Two radio attachments are supported:

  - nrf24: NRF24L01+ wired to SPI plus a GPIO chip-enable pin
  - uart: a radio modem behind a serial bridge

Reliability Model:

The link is best-effort, like any link layer. A lost or corrupted frame
abandons the in-flight packet after an idle threshold; nothing is
retransmitted at the frame level. Protocols above IP own end-to-end
reliability. Decode errors, sequence mismatches and abandoned reassemblies
are logged and never fatal:

	if errors.Is(err, rf24tun.ErrSequenceMismatch) {
	    // frame dropped, in-flight packet reset
	}

Thread Safety:

Engine and scheduler operations are not thread-safe. Each role runs a
single logical flow of control; the half-duplex channel admits only one
outstanding exchange anyway.
*/
package rf24tun
