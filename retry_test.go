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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(attempts int) *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Microsecond,
		MaxBackoff:        10 * time.Microsecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetrySucceedsFirstTry(t *testing.T) {
	t.Parallel()

	calls := 0
	err := RetryWithConfig(context.Background(), fastRetryConfig(3), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversFromTransient(t *testing.T) {
	t.Parallel()

	calls := 0
	err := RetryWithConfig(context.Background(), fastRetryConfig(3), func() error {
		calls++
		if calls < 3 {
			return NewTimeoutError("exchange", "spi")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnPermanent(t *testing.T) {
	t.Parallel()

	calls := 0
	err := RetryWithConfig(context.Background(), fastRetryConfig(5), func() error {
		calls++
		return ErrRadioClosed
	})
	require.ErrorIs(t, err, ErrRadioClosed)
	assert.Equal(t, 1, calls)
}

func TestRetryExhaustsBudget(t *testing.T) {
	t.Parallel()

	calls := 0
	err := RetryWithConfig(context.Background(), fastRetryConfig(3), func() error {
		calls++
		return NewExchangeFailedError("transmit", "spi", nil)
	})
	require.ErrorIs(t, err, ErrLinkFailure)
	assert.Equal(t, 3, calls)
}

func TestRetryHonorsContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryWithConfig(ctx, fastRetryConfig(10), func() error {
		calls++
		cancel()
		return NewTimeoutError("exchange", "spi")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryNilConfigUsesDefaults(t *testing.T) {
	t.Parallel()

	attempted := errors.New("probe")
	calls := 0
	err := RetryWithConfig(context.Background(), nil, func() error {
		calls++
		return attempted
	})
	// The probe error is not retryable, so defaults still stop after one.
	require.ErrorIs(t, err, attempted)
	assert.Equal(t, 1, calls)
}
