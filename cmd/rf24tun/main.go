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

// rf24tun creates a network tunnel over cheap NRF24L01 radios.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	rf24tun "github.com/rf24tun/go-rf24tun"
	"github.com/rf24tun/go-rf24tun/link"
	"github.com/rf24tun/go-rf24tun/transport/nrf24"
	"github.com/rf24tun/go-rf24tun/transport/uart"
	"github.com/rf24tun/go-rf24tun/tun"
)

type config struct {
	interfaceName *string
	device        *string
	tunnelIP      *string
	tunnelMask    *string
	primary       *bool
	secondary     *bool
	primaryAddr   *uint64
	secondaryAddr *uint64
	channel       *uint
	pollInterval  *time.Duration
	cePin         *int
	tunnelLogs    *bool
	debug         *bool
}

func parseFlags() *config {
	cfg := &config{
		interfaceName: flag.String("interface", "rf24tun0",
			"Name of the tunnel device to create."),
		device: flag.String("device", "spi:/dev/spidev0.0",
			"Radio attachment: spi:<path> for an NRF24L01 on SPI, uart:<path> for a serial radio modem."),
		primary: flag.Bool("primary", false,
			"Run this side of the network in primary mode."),
		secondary: flag.Bool("secondary", false,
			"Run this side of the network in secondary mode."),
		tunnelIP: flag.String("tunnel-ip", "",
			"IP address to assign to the tunnel interface (default 192.168.10.1 primary, 192.168.10.2 secondary)."),
		tunnelMask: flag.String("tunnel-mask", "255.255.255.0",
			"Network mask to use for the tunnel interface."),
		primaryAddr: flag.Uint64("primary-addr", uint64(rf24tun.DefaultPrimaryAddress),
			"Radio address of the primary side."),
		secondaryAddr: flag.Uint64("secondary-addr", uint64(rf24tun.DefaultSecondaryAddress),
			"Radio address of the secondary side."),
		channel: flag.Uint("channel", uint(rf24tun.DefaultChannel),
			"Radio channel to use for transmit/receive (1-128)."),
		pollInterval: flag.Duration("poll-interval", rf24tun.DefaultPollInterval,
			"How often the primary polls the secondary."),
		cePin: flag.Int("ce-pin", 22,
			"Index of the NRF24L01 chip-enable GPIO pin (spi device only)."),
		tunnelLogs: flag.Bool("enable-tunnel-logs", false,
			"Enable verbose logs for reads/writes from the tunnel."),
		debug: flag.Bool("debug", false, "Enable debug output."),
	}
	flag.Parse()

	if *cfg.debug {
		rf24tun.SetDebugEnabled(true)
	}
	return cfg
}

func (c *config) linkConfig() (*rf24tun.Config, error) {
	if *c.primaryAddr > 0xFFFFFFFF || *c.secondaryAddr > 0xFFFFFFFF {
		return nil, fmt.Errorf("%w: radio addresses are 32-bit", rf24tun.ErrInvalidConfig)
	}
	if *c.channel > 255 {
		return nil, fmt.Errorf("%w: channel %d", rf24tun.ErrInvalidConfig, *c.channel)
	}

	cfg := rf24tun.DefaultConfig()
	cfg.PrimaryAddress = uint32(*c.primaryAddr)
	cfg.SecondaryAddress = uint32(*c.secondaryAddr)
	cfg.Channel = uint8(*c.channel)
	cfg.PollInterval = *c.pollInterval
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// tunnelIP applies the role-based default address.
func (c *config) tunnelIPValue() string {
	if *c.tunnelIP != "" {
		return *c.tunnelIP
	}
	if *c.primary {
		return "192.168.10.1"
	}
	return "192.168.10.2"
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("rf24tun: %v", err)
	}
}

func run() error {
	cfg := parseFlags()
	if *cfg.primary == *cfg.secondary {
		return errors.New("exactly one of -primary or -secondary must be set")
	}

	linkCfg, err := cfg.linkConfig()
	if err != nil {
		return err
	}

	tunnel, err := tun.Open(*cfg.interfaceName, cfg.tunnelIPValue(), *cfg.tunnelMask)
	if err != nil {
		return err
	}
	defer tunnel.Close()
	log.Printf("tunnel %q up with %s mask %s",
		tunnel.Name(), cfg.tunnelIPValue(), *cfg.tunnelMask)
	log.Printf("using channel %d", linkCfg.Channel)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *cfg.primary {
		return runPrimary(ctx, cfg, linkCfg, tunnel)
	}
	return runSecondary(ctx, cfg, linkCfg, tunnel)
}

func runPrimary(ctx context.Context, cfg *config, linkCfg *rf24tun.Config, tunnel *tun.Device) error {
	radio, err := newPrimaryRadio(cfg, linkCfg)
	if err != nil {
		return err
	}
	defer radio.Close()

	primary, err := link.NewPrimary(radio, tunnel, linkCfg,
		link.WithTunnelLogging(*cfg.tunnelLogs))
	if err != nil {
		return err
	}
	log.Printf("running in primary mode, polling every %v", linkCfg.PollInterval)
	if err := primary.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runSecondary(ctx context.Context, cfg *config, linkCfg *rf24tun.Config, tunnel *tun.Device) error {
	radio, err := newSecondaryRadio(cfg, linkCfg)
	if err != nil {
		return err
	}
	defer radio.Close()

	secondary, err := link.NewSecondary(radio, tunnel, linkCfg,
		link.WithTunnelLogging(*cfg.tunnelLogs))
	if err != nil {
		return err
	}
	log.Printf("running in secondary mode")
	if err := secondary.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newPrimaryRadio(cfg *config, linkCfg *rf24tun.Config) (rf24tun.PrimaryRadio, error) {
	kind, path, err := splitDevice(*cfg.device)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "spi":
		return nrf24.NewPrimary(path, *cfg.cePin, linkCfg)
	case "uart":
		return uart.New(path)
	default:
		return nil, fmt.Errorf("unknown radio attachment %q", kind)
	}
}

func newSecondaryRadio(cfg *config, linkCfg *rf24tun.Config) (rf24tun.SecondaryRadio, error) {
	kind, path, err := splitDevice(*cfg.device)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "spi":
		return nrf24.NewSecondary(path, *cfg.cePin, linkCfg)
	case "uart":
		return uart.New(path)
	default:
		return nil, fmt.Errorf("unknown radio attachment %q", kind)
	}
}

func splitDevice(device string) (kind, path string, err error) {
	kind, path, ok := strings.Cut(device, ":")
	if !ok || path == "" {
		return "", "", fmt.Errorf("radio attachment %q must be <kind>:<path>", device)
	}
	return kind, path, nil
}
