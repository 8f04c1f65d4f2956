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

// Package uart attaches the link to a radio modem behind a serial
// bridge. The modem owns channel tuning and on-air delivery; this
// transport only moves framed payloads across the wire: two magic
// bytes, one length byte, then the payload.
package uart

import (
	"context"
	"fmt"
	"time"

	rf24tun "github.com/rf24tun/go-rf24tun"
	"go.bug.st/serial"
)

const (
	defaultBaudRate = 115200

	magic1 = 0xA5
	magic2 = 0x5A

	// receivePollTimeout paces reads so a blocking Receive can notice
	// context cancellation.
	receivePollTimeout = 100 * time.Millisecond
)

// Port is a serial attachment to a radio modem. It implements both
// rf24tun.PrimaryRadio and rf24tun.SecondaryRadio; the link role decides
// which surface is used.
type Port struct {
	port serial.Port
	path string
}

// New opens the serial device at the default baud rate.
func New(path string) (*Port, error) {
	return NewWithBaudRate(path, defaultBaudRate)
}

// NewWithBaudRate opens the serial device at a specific baud rate.
func NewWithBaudRate(path string, baudRate int) (*Port, error) {
	mode := &serial.Mode{BaudRate: baudRate}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, rf24tun.NewLinkError("open", path, err, rf24tun.ErrorTypePermanent)
	}
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, rf24tun.NewLinkError("open", path, err, rf24tun.ErrorTypePermanent)
	}
	return &Port{port: port, path: path}, nil
}

// Exchange transmits one frame and blocks for the modem's piggybacked
// reply, bounded by timeout.
func (p *Port) Exchange(frame []byte, timeout time.Duration) ([]byte, error) {
	if err := p.writeFrame(frame); err != nil {
		return nil, err
	}
	return p.readFrame(time.Now().Add(timeout))
}

// Receive blocks until a frame arrives or ctx is done.
func (p *Port) Receive(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, err := p.readFrame(time.Now().Add(receivePollTimeout))
		if err == nil {
			return frame, nil
		}
		if rf24tun.GetErrorType(err) != rf24tun.ErrorTypeTimeout {
			return nil, err
		}
	}
}

// Reply answers the exchange that produced the last received frame.
func (p *Port) Reply(frame []byte) error {
	return p.writeFrame(frame)
}

// Close releases the serial device.
func (p *Port) Close() error {
	if err := p.port.Close(); err != nil {
		return rf24tun.NewLinkError("close", p.path, err, rf24tun.ErrorTypePermanent)
	}
	return nil
}

func (p *Port) writeFrame(frame []byte) error {
	if len(frame) > rf24tun.RadioFrameSize {
		return rf24tun.NewLinkError("write", p.path,
			rf24tun.ErrPayloadTooLarge, rf24tun.ErrorTypePermanent)
	}

	buf := make([]byte, 0, 3+len(frame))
	buf = append(buf, magic1, magic2, byte(len(frame)))
	buf = append(buf, frame...)

	n, err := p.port.Write(buf)
	if err != nil {
		return rf24tun.NewExchangeFailedError("write", p.path, err)
	}
	if n != len(buf) {
		return rf24tun.NewExchangeFailedError("write", p.path,
			fmt.Errorf("wrote %d of %d bytes", n, len(buf)))
	}
	return nil
}

// readFrame hunts for the magic pair, then reads length and payload.
// Bytes before the magic are modem noise and discarded.
func (p *Port) readFrame(deadline time.Time) ([]byte, error) {
	if err := p.syncMagic(deadline); err != nil {
		return nil, err
	}

	length, err := p.readByte(deadline)
	if err != nil {
		return nil, err
	}
	if int(length) > rf24tun.RadioFrameSize {
		return nil, rf24tun.NewExchangeFailedError("read", p.path,
			fmt.Errorf("frame length %d exceeds %d", length, rf24tun.RadioFrameSize))
	}

	frame := make([]byte, length)
	for filled := 0; filled < len(frame); {
		n, err := p.read(frame[filled:], deadline)
		if err != nil {
			return nil, err
		}
		filled += n
	}
	return frame, nil
}

func (p *Port) syncMagic(deadline time.Time) error {
	for {
		b, err := p.readByte(deadline)
		if err != nil {
			return err
		}
		if b != magic1 {
			continue
		}
		b, err = p.readByte(deadline)
		if err != nil {
			return err
		}
		if b == magic2 {
			return nil
		}
	}
}

func (p *Port) readByte(deadline time.Time) (byte, error) {
	buf := make([]byte, 1)
	for {
		n, err := p.read(buf, deadline)
		if err != nil {
			return 0, err
		}
		if n == 1 {
			return buf[0], nil
		}
	}
}

// read performs one bounded read, mapping an elapsed deadline to a
// timeout error.
func (p *Port) read(buf []byte, deadline time.Time) (int, error) {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return 0, rf24tun.NewTimeoutError("read", p.path)
	}
	if err := p.port.SetReadTimeout(remaining); err != nil {
		return 0, rf24tun.NewExchangeFailedError("read", p.path, err)
	}

	n, err := p.port.Read(buf)
	if err != nil {
		return 0, rf24tun.NewExchangeFailedError("read", p.path, err)
	}
	if n == 0 {
		// A zero-byte read signals the timeout elapsed.
		return 0, rf24tun.NewTimeoutError("read", p.path)
	}
	return n, nil
}
