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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkErrorFormatting(t *testing.T) {
	t.Parallel()

	withPort := NewTimeoutError("exchange", "/dev/spidev0.0")
	assert.Contains(t, withPort.Error(), "exchange")
	assert.Contains(t, withPort.Error(), "/dev/spidev0.0")

	withoutPort := NewTimeoutError("exchange", "")
	assert.Contains(t, withoutPort.Error(), "exchange")
	assert.NotContains(t, withoutPort.Error(), "  ")
}

func TestLinkErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := NewTimeoutError("receive", "uart")
	require.ErrorIs(t, err, ErrLinkTimeout)

	cause := errors.New("bus fault")
	wrapped := NewExchangeFailedError("transmit", "spi", cause)
	require.ErrorIs(t, wrapped, cause)
}

func TestNewExchangeFailedErrorNilCause(t *testing.T) {
	t.Parallel()
	err := NewExchangeFailedError("transmit", "spi", nil)
	assert.ErrorIs(t, err, ErrLinkFailure)
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err       error
		name      string
		retryable bool
	}{
		{name: "nil", err: nil, retryable: false},
		{name: "timeout link error", err: NewTimeoutError("exchange", "spi"), retryable: true},
		{name: "transient link error", err: NewExchangeFailedError("reply", "uart", nil), retryable: true},
		{name: "permanent link error", err: NewLinkError("open", "spi", ErrRadioClosed, ErrorTypePermanent), retryable: false},
		{name: "timeout sentinel", err: ErrLinkTimeout, retryable: true},
		{name: "wrapped timeout sentinel", err: fmt.Errorf("poll: %w", ErrLinkTimeout), retryable: true},
		{name: "malformed frame", err: ErrFrameMalformed, retryable: true},
		{name: "truncated frame", err: ErrFrameTruncated, retryable: true},
		{name: "closed radio", err: ErrRadioClosed, retryable: false},
		{name: "invalid config", err: ErrInvalidConfig, retryable: false},
		{name: "unrelated", err: errors.New("boom"), retryable: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		name string
		want ErrorType
	}{
		{name: "nil", err: nil, want: ErrorTypePermanent},
		{name: "timeout link error", err: NewTimeoutError("exchange", "spi"), want: ErrorTypeTimeout},
		{name: "transient link error", err: NewExchangeFailedError("reply", "uart", nil), want: ErrorTypeTransient},
		{name: "timeout sentinel", err: ErrLinkTimeout, want: ErrorTypeTimeout},
		{name: "failure sentinel", err: ErrLinkFailure, want: ErrorTypeTransient},
		{name: "malformed frame", err: ErrFrameMalformed, want: ErrorTypeTransient},
		{name: "closed tunnel", err: ErrTunnelClosed, want: ErrorTypePermanent},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetErrorType(tt.err))
		})
	}
}
