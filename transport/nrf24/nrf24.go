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

// Package nrf24 drives an NRF24L01+ transceiver over SPI plus a GPIO
// chip-enable pin. The radio's ShockBurst acknowledgment and retransmit
// machinery runs beneath this transport and is opaque to the link layer:
// an exchange either completes or fails.
package nrf24

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	rf24tun "github.com/rf24tun/go-rf24tun"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	spiSpeed = 8 * physic.MegaHertz

	// cePulse is the minimum chip-enable pulse starting a transmission.
	cePulse = 10 * time.Microsecond

	// powerUpDelay covers the oscillator start-up after PWR_UP.
	powerUpDelay = 5 * time.Millisecond

	// pollDelay paces STATUS polls while waiting on the air.
	pollDelay = 100 * time.Microsecond
)

// radio is the role-independent register plumbing.
type radio struct {
	port      spi.PortCloser
	conn      spi.Conn
	ce        gpio.PinIO
	path      string
	localAddr uint32
	peerAddr  uint32
}

func open(path string, cePin int, localAddr, peerAddr uint32, channel uint8) (*radio, error) {
	if _, err := host.Init(); err != nil {
		return nil, rf24tun.NewLinkError("init", path, err, rf24tun.ErrorTypePermanent)
	}

	port, err := spireg.Open(path)
	if err != nil {
		return nil, rf24tun.NewLinkError("open", path, err, rf24tun.ErrorTypePermanent)
	}

	conn, err := port.Connect(spiSpeed, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, rf24tun.NewLinkError("connect", path, err, rf24tun.ErrorTypePermanent)
	}

	ce := gpioreg.ByName(fmt.Sprintf("GPIO%d", cePin))
	if ce == nil {
		ce = gpioreg.ByName(fmt.Sprintf("%d", cePin))
	}
	if ce == nil {
		_ = port.Close()
		return nil, rf24tun.NewLinkError("open", path,
			fmt.Errorf("chip-enable pin %d not found", cePin), rf24tun.ErrorTypePermanent)
	}

	r := &radio{
		port:      port,
		conn:      conn,
		ce:        ce,
		path:      path,
		localAddr: localAddr,
		peerAddr:  peerAddr,
	}
	if err := r.configure(channel); err != nil {
		_ = port.Close()
		return nil, err
	}
	return r, nil
}

// configure programs the common register set and verifies the radio is
// actually on the bus by reading the channel back.
func (r *radio) configure(channel uint8) error {
	if err := r.ce.Out(gpio.Low); err != nil {
		return rf24tun.NewLinkError("configure", r.path, err, rf24tun.ErrorTypePermanent)
	}

	local := addressBytes(r.localAddr)
	peer := addressBytes(r.peerAddr)

	steps := []struct {
		reg byte
		val []byte
	}{
		{regConfig, []byte{configEnCRC | configCRCO | configPwrUp}},
		{regSetupAW, []byte{setupAW}},
		{regSetupRetr, []byte{setupRetr}},
		{regRFChannel, []byte{channel}},
		{regRFSetup, []byte{rfSetup}},
		{regEnAA, []byte{0x03}},     // auto-ack on pipes 0 and 1
		{regEnRxAddr, []byte{0x03}}, // pipes 0 and 1 active
		{regRxAddrP0, peer},         // pipe 0 hears the ack address
		{regRxAddrP1, local},        // pipe 1 hears our own address
		{regTxAddr, peer},
		{regRxPwP0, []byte{rf24tun.RadioFrameSize}},
		{regRxPwP1, []byte{rf24tun.RadioFrameSize}},
	}
	for _, step := range steps {
		if err := r.writeRegister(step.reg, step.val...); err != nil {
			return err
		}
	}
	time.Sleep(powerUpDelay)

	if err := r.flush(); err != nil {
		return err
	}

	// Probe with retry: SPI glitches during bring-up are transient.
	probe := func() error {
		got, err := r.readRegister(regRFChannel)
		if err != nil {
			return rf24tun.NewExchangeFailedError("probe", r.path, err)
		}
		if got != channel {
			return rf24tun.NewLinkError("probe", r.path,
				fmt.Errorf("channel reads %d, wrote %d: radio not responding", got, channel),
				rf24tun.ErrorTypePermanent)
		}
		return nil
	}
	return rf24tun.RetryWithConfig(context.Background(), nil, probe)
}

func addressBytes(addr uint32) []byte {
	buf := make([]byte, addressWidth)
	binary.LittleEndian.PutUint32(buf, addr)
	return buf
}

// command clocks one SPI transaction: command byte plus data.
func (r *radio) command(cmd byte, data []byte) ([]byte, error) {
	write := make([]byte, 1+len(data))
	write[0] = cmd
	copy(write[1:], data)
	read := make([]byte, len(write))
	if err := r.conn.Tx(write, read); err != nil {
		return nil, rf24tun.NewExchangeFailedError("spi", r.path, err)
	}
	return read[1:], nil
}

func (r *radio) writeRegister(reg byte, val ...byte) error {
	_, err := r.command(cmdWriteRegister|reg, val)
	return err
}

func (r *radio) readRegister(reg byte) (byte, error) {
	data, err := r.command(cmdReadRegister|reg, []byte{0x00})
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

func (r *radio) status() (byte, error) {
	read := make([]byte, 1)
	if err := r.conn.Tx([]byte{cmdNop}, read); err != nil {
		return 0, rf24tun.NewExchangeFailedError("spi", r.path, err)
	}
	return read[0], nil
}

func (r *radio) clearStatus() error {
	return r.writeRegister(regStatus, statusRxDR|statusTxDS|statusMaxRT)
}

func (r *radio) flush() error {
	if _, err := r.command(cmdFlushTx, nil); err != nil {
		return err
	}
	if _, err := r.command(cmdFlushRx, nil); err != nil {
		return err
	}
	return r.clearStatus()
}

// transmit pushes one frame through the TX FIFO and waits for the
// hardware verdict. The payload is padded to the fixed 32-byte width;
// the codec's declared payload length strips the padding on the far side.
func (r *radio) transmit(frame []byte, deadline time.Time) error {
	if len(frame) > rf24tun.RadioFrameSize {
		return rf24tun.NewLinkError("transmit", r.path,
			rf24tun.ErrPayloadTooLarge, rf24tun.ErrorTypePermanent)
	}

	if err := r.ce.Out(gpio.Low); err != nil {
		return rf24tun.NewExchangeFailedError("transmit", r.path, err)
	}
	if err := r.setReceiveMode(false); err != nil {
		return err
	}
	if err := r.clearStatus(); err != nil {
		return err
	}

	payload := make([]byte, rf24tun.RadioFrameSize)
	copy(payload, frame)
	if _, err := r.command(cmdWriteTxPayload, payload); err != nil {
		return err
	}

	if err := r.ce.Out(gpio.High); err != nil {
		return rf24tun.NewExchangeFailedError("transmit", r.path, err)
	}
	time.Sleep(cePulse)
	if err := r.ce.Out(gpio.Low); err != nil {
		return rf24tun.NewExchangeFailedError("transmit", r.path, err)
	}

	for {
		status, err := r.status()
		if err != nil {
			return err
		}
		switch {
		case status&statusTxDS != 0:
			return r.clearStatus()
		case status&statusMaxRT != 0:
			_ = r.clearStatus()
			_, _ = r.command(cmdFlushTx, nil)
			return rf24tun.NewExchangeFailedError("transmit", r.path, rf24tun.ErrLinkFailure)
		}
		if time.Now().After(deadline) {
			return rf24tun.NewTimeoutError("transmit", r.path)
		}
		time.Sleep(pollDelay)
	}
}

func (r *radio) setReceiveMode(rx bool) error {
	config := byte(configEnCRC | configCRCO | configPwrUp)
	if rx {
		config |= configPrimRX
	}
	return r.writeRegister(regConfig, config)
}

// receivePayload drains one fixed-width payload from the RX FIFO.
func (r *radio) receivePayload() ([]byte, error) {
	data, err := r.command(cmdReadRxPayload, make([]byte, rf24tun.RadioFrameSize))
	if err != nil {
		return nil, err
	}
	if err := r.writeRegister(regStatus, statusRxDR); err != nil {
		return nil, err
	}
	return data, nil
}

// listen raises CE in receive mode.
func (r *radio) listen() error {
	if err := r.setReceiveMode(true); err != nil {
		return err
	}
	if err := r.ce.Out(gpio.High); err != nil {
		return rf24tun.NewExchangeFailedError("listen", r.path, err)
	}
	return nil
}

func (r *radio) close() error {
	_ = r.ce.Out(gpio.Low)
	_ = r.writeRegister(regConfig, configEnCRC|configCRCO) // power down
	if err := r.port.Close(); err != nil {
		return rf24tun.NewLinkError("close", r.path, err, rf24tun.ErrorTypePermanent)
	}
	return nil
}

// Primary is the polling side of an NRF24L01+ pair. It implements
// rf24tun.PrimaryRadio.
type Primary struct {
	radio *radio
}

// NewPrimary opens the radio at the given SPI path with the given
// chip-enable GPIO pin, configured from the link configuration.
func NewPrimary(path string, cePin int, cfg *rf24tun.Config) (*Primary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r, err := open(path, cePin, cfg.PrimaryAddress, cfg.SecondaryAddress, cfg.Channel)
	if err != nil {
		return nil, err
	}
	return &Primary{radio: r}, nil
}

// Exchange transmits one frame and blocks for the piggybacked reply.
func (p *Primary) Exchange(frame []byte, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	if err := p.radio.transmit(frame, deadline); err != nil {
		return nil, err
	}

	if err := p.radio.listen(); err != nil {
		return nil, err
	}
	defer func() {
		_ = p.radio.ce.Out(gpio.Low)
	}()

	for {
		status, err := p.radio.status()
		if err != nil {
			return nil, err
		}
		if status&statusRxDR != 0 {
			return p.radio.receivePayload()
		}
		if time.Now().After(deadline) {
			return nil, rf24tun.NewTimeoutError("exchange", p.radio.path)
		}
		time.Sleep(pollDelay)
	}
}

// Close powers the radio down and releases the SPI port.
func (p *Primary) Close() error {
	return p.radio.close()
}

// Secondary is the reactive side of an NRF24L01+ pair. It implements
// rf24tun.SecondaryRadio.
type Secondary struct {
	radio *radio
}

// NewSecondary opens the radio at the given SPI path with the given
// chip-enable GPIO pin, configured from the link configuration.
func NewSecondary(path string, cePin int, cfg *rf24tun.Config) (*Secondary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r, err := open(path, cePin, cfg.SecondaryAddress, cfg.PrimaryAddress, cfg.Channel)
	if err != nil {
		return nil, err
	}
	if err := r.listen(); err != nil {
		_ = r.close()
		return nil, err
	}
	return &Secondary{radio: r}, nil
}

// Receive blocks until the primary polls or ctx is done.
func (s *Secondary) Receive(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		status, err := s.radio.status()
		if err != nil {
			return nil, err
		}
		if status&statusRxDR != 0 {
			return s.radio.receivePayload()
		}
		time.Sleep(pollDelay)
	}
}

// Reply answers the exchange that produced the last received frame,
// then returns the radio to receive mode for the next poll.
func (s *Secondary) Reply(frame []byte) error {
	deadline := time.Now().Add(rf24tun.DefaultExchangeTimeout)
	err := s.radio.transmit(frame, deadline)
	if listenErr := s.radio.listen(); err == nil {
		err = listenErr
	}
	return err
}

// Close powers the radio down and releases the SPI port.
func (s *Secondary) Close() error {
	return s.radio.close()
}
