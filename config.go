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
	"fmt"
	"time"
)

// Default link parameters. Addresses and channel must match on both
// peers for the link to function; that contract is operational, not
// something the transport verifies.
const (
	DefaultPrimaryAddress   uint32 = 0x90019001
	DefaultSecondaryAddress uint32 = 0x90009000
	DefaultChannel          uint8  = 1

	DefaultPollInterval    = 100 * time.Microsecond
	DefaultExchangeTimeout = 50 * time.Millisecond
	DefaultIdleThreshold   = time.Second
	DefaultRetryBudget     = 5

	// MinChannel and MaxChannel bound the radio channel index.
	MinChannel uint8 = 1
	MaxChannel uint8 = 128
)

// Config holds the immutable link configuration, set once at startup and
// shared by reference by both scheduler types.
type Config struct {
	// PrimaryAddress is the radio address of the polling side.
	PrimaryAddress uint32

	// SecondaryAddress is the radio address of the reactive side.
	SecondaryAddress uint32

	// Channel is the radio channel index, 1-128.
	Channel uint8

	// PollInterval is the primary's fixed poll period. Unused by the
	// secondary, which is purely reactive.
	PollInterval time.Duration

	// ExchangeTimeout bounds a single blocking radio exchange.
	ExchangeTimeout time.Duration

	// IdleThreshold expires a stalled in-progress reassembly.
	IdleThreshold time.Duration

	// RetryBudget is the consecutive exchange failures tolerated before
	// the primary reports a link error. Polling continues regardless.
	RetryBudget int
}

// DefaultConfig returns a configuration with the stock address pair,
// channel and timings.
func DefaultConfig() *Config {
	return &Config{
		PrimaryAddress:   DefaultPrimaryAddress,
		SecondaryAddress: DefaultSecondaryAddress,
		Channel:          DefaultChannel,
		PollInterval:     DefaultPollInterval,
		ExchangeTimeout:  DefaultExchangeTimeout,
		IdleThreshold:    DefaultIdleThreshold,
		RetryBudget:      DefaultRetryBudget,
	}
}

// Validate checks the configuration for values the link cannot operate
// with. It returns errors wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if c.Channel < MinChannel || c.Channel > MaxChannel {
		return fmt.Errorf("%w: channel %d outside %d-%d",
			ErrInvalidConfig, c.Channel, MinChannel, MaxChannel)
	}
	if c.PrimaryAddress == 0 || c.SecondaryAddress == 0 {
		return fmt.Errorf("%w: zero radio address", ErrInvalidConfig)
	}
	if c.PrimaryAddress == c.SecondaryAddress {
		return fmt.Errorf("%w: primary and secondary share address %#08x",
			ErrInvalidConfig, c.PrimaryAddress)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval %v", ErrInvalidConfig, c.PollInterval)
	}
	if c.ExchangeTimeout <= 0 {
		return fmt.Errorf("%w: exchange timeout %v", ErrInvalidConfig, c.ExchangeTimeout)
	}
	if c.IdleThreshold <= 0 {
		return fmt.Errorf("%w: idle threshold %v", ErrInvalidConfig, c.IdleThreshold)
	}
	if c.RetryBudget < 1 {
		return fmt.Errorf("%w: retry budget %d", ErrInvalidConfig, c.RetryBudget)
	}
	return nil
}
