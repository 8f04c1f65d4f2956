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

package tun

import (
	"fmt"
	"net"
	"os"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

const tunDevice = "/dev/net/tun"

// Open creates the tunnel interface, assigns it the given IPv4 address
// and netmask, and brings it up. The name may contain a %d pattern for
// the kernel to number.
func Open(name, ip, mask string) (*Device, error) {
	dev, err := open(name)
	if err != nil {
		return nil, err
	}

	if err := configure(dev.name, ip, mask); err != nil {
		_ = dev.Close()
		return nil, err
	}
	return dev, nil
}

func open(name string) (*Device, error) {
	fd, err := unix.Open(tunDevice, unix.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("tun: open %s: %w", tunDevice, err)
	}

	ifr, err := unix.NewIfreq(name)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("tun: interface name %q: %w", name, err)
	}
	ifr.SetUint16(unix.IFF_TUN | unix.IFF_NO_PI)

	if err := unix.IoctlIfreq(fd, unix.TUNSETIFF, ifr); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("tun: TUNSETIFF %q: %w", name, err)
	}

	assigned := ifr.Name()
	return &Device{
		file:    os.NewFile(uintptr(fd), assigned),
		name:    assigned,
		readBuf: make([]byte, maxPacketSize),
	}, nil
}

// configure assigns the address and brings the interface up via netlink.
func configure(name, ip, mask string) error {
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil || parsedIP.To4() == nil {
		return fmt.Errorf("tun: invalid IPv4 address %q", ip)
	}
	parsedMask := net.ParseIP(mask)
	if parsedMask == nil || parsedMask.To4() == nil {
		return fmt.Errorf("tun: invalid network mask %q", mask)
	}

	iface, err := netlink.LinkByName(name)
	if err != nil {
		return fmt.Errorf("tun: lookup %s: %w", name, err)
	}

	addr := &netlink.Addr{IPNet: &net.IPNet{
		IP:   parsedIP.To4(),
		Mask: net.IPMask(parsedMask.To4()),
	}}
	if err := netlink.AddrAdd(iface, addr); err != nil {
		return fmt.Errorf("tun: assign %s to %s: %w", addr.IPNet, name, err)
	}

	if err := netlink.LinkSetUp(iface); err != nil {
		return fmt.Errorf("tun: set %s up: %w", name, err)
	}
	return nil
}
