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
	"errors"
	"fmt"
)

// Codec errors. A bad frame is dropped, never fatal.
var (
	// ErrFrameMalformed indicates a buffer too short for the fixed header
	// or an unknown frame kind.
	ErrFrameMalformed = errors.New("frame malformed")

	// ErrFrameTruncated indicates a declared payload length that disagrees
	// with the actual buffer length.
	ErrFrameTruncated = errors.New("frame truncated")

	// ErrPayloadTooLarge indicates a payload exceeding MaxFramePayload.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// Fragmentation errors.
var (
	// ErrFragmentPending indicates an outbound packet is already in
	// flight; at most one packet fragments at a time per direction.
	ErrFragmentPending = errors.New("outbound packet already in flight")

	// ErrPacketTooLarge indicates a packet whose length cannot be declared
	// in a frame header.
	ErrPacketTooLarge = errors.New("packet too large")
)

// Reassembly errors. All of these drop data and reset state; none are
// fatal, and a dropped IP packet is acceptable at this layer.
var (
	// ErrReassemblyBusy indicates a Start or Single frame arrived while a
	// prior packet was still reassembling and had not expired.
	ErrReassemblyBusy = errors.New("reassembly in progress")

	// ErrReassemblyExpired indicates a stalled reassembly exceeded the
	// idle threshold and was discarded.
	ErrReassemblyExpired = errors.New("reassembly expired")

	// ErrSequenceMismatch indicates a frame with an unexpected sequence
	// number; the in-flight packet is abandoned.
	ErrSequenceMismatch = errors.New("sequence mismatch")

	// ErrLengthMismatch indicates a completed packet whose size disagrees
	// with the declared total length.
	ErrLengthMismatch = errors.New("reassembled length mismatch")

	// ErrNoReassembly indicates a Continuation or End frame with no
	// packet in flight.
	ErrNoReassembly = errors.New("no reassembly in progress")
)

// Link and device errors.
var (
	// ErrLinkTimeout indicates a radio exchange did not complete in time.
	ErrLinkTimeout = errors.New("link exchange timeout")

	// ErrLinkFailure indicates a radio exchange failed outright.
	ErrLinkFailure = errors.New("link exchange failed")

	// ErrRadioClosed indicates an operation on a closed radio.
	ErrRadioClosed = errors.New("radio closed")

	// ErrTunnelClosed indicates an operation on a closed tunnel device.
	ErrTunnelClosed = errors.New("tunnel device closed")

	// ErrInvalidConfig indicates a rejected link configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedPlatform indicates the tunnel device is not available
	// on this operating system.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// ErrorType classifies errors for retry decisions.
type ErrorType int

const (
	// ErrorTypePermanent indicates errors that will not resolve on retry.
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient indicates errors that may resolve on retry.
	ErrorTypeTransient
	// ErrorTypeTimeout indicates a bounded wait that elapsed.
	ErrorTypeTimeout
)

// LinkError wraps a radio or tunnel failure with operation context.
type LinkError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

// NewLinkError creates a LinkError with retryability derived from the type.
func NewLinkError(op, port string, err error, errType ErrorType) *LinkError {
	return &LinkError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewTimeoutError creates a retryable timeout LinkError.
func NewTimeoutError(op, port string) *LinkError {
	return NewLinkError(op, port, ErrLinkTimeout, ErrorTypeTimeout)
}

// NewExchangeFailedError creates a retryable transient LinkError.
func NewExchangeFailedError(op, port string, err error) *LinkError {
	if err == nil {
		err = ErrLinkFailure
	}
	return NewLinkError(op, port, err, ErrorTypeTransient)
}

func (e *LinkError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("rf24tun: %s %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("rf24tun: %s: %v", e.Op, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether an operation that returned err is worth
// retrying. LinkError carries its own verdict; sentinel errors are
// classified by kind.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var linkErr *LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Retryable
	}

	switch {
	case errors.Is(err, ErrLinkTimeout),
		errors.Is(err, ErrLinkFailure),
		errors.Is(err, ErrFrameMalformed),
		errors.Is(err, ErrFrameTruncated):
		return true
	default:
		return false
	}
}

// GetErrorType returns the classification for err.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var linkErr *LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Type
	}

	switch {
	case errors.Is(err, ErrLinkTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrLinkFailure),
		errors.Is(err, ErrFrameMalformed),
		errors.Is(err, ErrFrameTruncated):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}
