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

package nrf24

// SPI commands.
const (
	cmdReadRegister  = 0x00 // OR with register address
	cmdWriteRegister = 0x20 // OR with register address
	cmdReadRxPayload = 0x61
	cmdWriteTxPayload = 0xA0
	cmdFlushTx       = 0xE1
	cmdFlushRx       = 0xE2
	cmdNop           = 0xFF
)

// Registers.
const (
	regConfig     = 0x00
	regEnAA       = 0x01
	regEnRxAddr   = 0x02
	regSetupAW    = 0x03
	regSetupRetr  = 0x04
	regRFChannel  = 0x05
	regRFSetup    = 0x06
	regStatus     = 0x07
	regRxAddrP0   = 0x0A
	regRxAddrP1   = 0x0B
	regTxAddr     = 0x10
	regRxPwP0     = 0x11
	regRxPwP1     = 0x12
	regFIFOStatus = 0x17
)

// CONFIG bits.
const (
	configPrimRX = 1 << 0
	configPwrUp  = 1 << 1
	configCRCO   = 1 << 2 // 2-byte CRC
	configEnCRC  = 1 << 3
)

// STATUS bits.
const (
	statusMaxRT = 1 << 4 // auto-retransmit budget spent
	statusTxDS  = 1 << 5 // transmit complete
	statusRxDR  = 1 << 6 // payload waiting
)

// FIFO_STATUS bits.
const (
	fifoRxEmpty = 1 << 0
)

const (
	// addressWidth is the on-air address size. The link configuration
	// carries 32-bit addresses.
	addressWidth = 4

	// setupAW encodes a 4-byte address width (AW = width - 2).
	setupAW = addressWidth - 2

	// setupRetr enables 15 hardware retransmits at 500us. Opaque to the
	// layers above; they only see a successful or failed exchange.
	setupRetr = 0x1F | (0x01 << 4)

	// rfSetup selects 1 Mbps at 0 dBm.
	rfSetup = 0x06
)
