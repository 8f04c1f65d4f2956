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
	"fmt"
	"time"

	rf24tun "github.com/rf24tun/go-rf24tun"
)

// settings are the per-scheduler knobs, seeded from the link Config and
// overridable through options.
type settings struct {
	pollInterval    time.Duration
	exchangeTimeout time.Duration
	idleThreshold   time.Duration
	retryBudget     int
	tunnelLogging   bool
}

func settingsFromConfig(cfg *rf24tun.Config) settings {
	return settings{
		pollInterval:    cfg.PollInterval,
		exchangeTimeout: cfg.ExchangeTimeout,
		idleThreshold:   cfg.IdleThreshold,
		retryBudget:     cfg.RetryBudget,
	}
}

// Option is a functional option for configuring a scheduler.
type Option func(*settings) error

// WithRetryBudget sets the consecutive exchange failures tolerated
// before the primary reports a link error.
func WithRetryBudget(budget int) Option {
	return func(s *settings) error {
		if budget < 1 {
			return fmt.Errorf("%w: retry budget %d", rf24tun.ErrInvalidConfig, budget)
		}
		s.retryBudget = budget
		return nil
	}
}

// WithExchangeTimeout bounds a single blocking radio exchange.
func WithExchangeTimeout(timeout time.Duration) Option {
	return func(s *settings) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: exchange timeout %v", rf24tun.ErrInvalidConfig, timeout)
		}
		s.exchangeTimeout = timeout
		return nil
	}
}

// WithIdleThreshold sets how long a stalled reassembly is held before it
// is abandoned.
func WithIdleThreshold(threshold time.Duration) Option {
	return func(s *settings) error {
		if threshold <= 0 {
			return fmt.Errorf("%w: idle threshold %v", rf24tun.ErrInvalidConfig, threshold)
		}
		s.idleThreshold = threshold
		return nil
	}
}

// WithTunnelLogging enables verbose logs for every packet read from or
// written to the tunnel device.
func WithTunnelLogging(enabled bool) Option {
	return func(s *settings) error {
		s.tunnelLogging = enabled
		return nil
	}
}
