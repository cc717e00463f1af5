// docker-machine-nfs - Activates NFS shared folders for Docker Machine VMs.
// Copyright (c) 2026 The docker-machine-nfs Authors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package netresolve

import (
	"net"

	"github.com/pkg/errors"
	psnet "github.com/shirou/gopsutil/net"
)

type HostInterface struct {
	Name string
	// CIDRs, e.g. "192.168.99.1/24".
	Addrs []string
}

type InterfaceLister func() ([]HostInterface, error)

func ListHostInterfaces() ([]HostInterface, error) {
	stats, err := psnet.Interfaces()
	if err != nil {
		return nil, errors.Wrap(err, "list network interfaces")
	}

	ret := make([]HostInterface, 0, len(stats))
	for _, stat := range stats {
		hi := HostInterface{Name: stat.Name}
		for _, addr := range stat.Addrs {
			hi.Addrs = append(hi.Addrs, addr.Addr)
		}

		ret = append(ret, hi)
	}

	return ret, nil
}

func parseInterfaceAddr(s string) (net.IP, *net.IPNet) {
	ip, ipNet, err := net.ParseCIDR(s)
	if err != nil {
		return net.ParseIP(s), nil
	}

	return ip, ipNet
}

// interfaceIPv4 returns the first IPv4 address of the named interface.
func interfaceIPv4(ifaces []HostInterface, name string) net.IP {
	for _, iface := range ifaces {
		if iface.Name != name {
			continue
		}

		for _, addr := range iface.Addrs {
			ip, _ := parseInterfaceAddr(addr)
			if ip4 := ip.To4(); ip4 != nil {
				return ip4
			}
		}
	}

	return nil
}

// subnetIPv4 returns the host's IPv4 address on the subnet that
// contains guestIP.
func subnetIPv4(ifaces []HostInterface, guestIP net.IP) net.IP {
	for _, iface := range ifaces {
		for _, addr := range iface.Addrs {
			ip, ipNet := parseInterfaceAddr(addr)
			ip4 := ip.To4()
			if ip4 == nil || ipNet == nil {
				continue
			}

			if ipNet.Contains(guestIP) && !ip4.Equal(guestIP.To4()) {
				return ip4
			}
		}
	}

	return nil
}
