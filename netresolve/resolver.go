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
	"context"
	"log/slog"
	"net"

	"github.com/machinenfs/docker-machine-nfs/config"
	"github.com/machinenfs/docker-machine-nfs/constants"
	"github.com/machinenfs/docker-machine-nfs/hostexec"
	"github.com/machinenfs/docker-machine-nfs/machine"
	"github.com/machinenfs/docker-machine-nfs/osspecifics"
	"github.com/pkg/errors"
)

// RouteLookup knows how to ask the host which interface routes to an IP.
type RouteLookup struct {
	Cmd   func(ip net.IP) hostexec.Cmd
	Parse func(out string) string
}

var DarwinRouteLookup = RouteLookup{
	Cmd: func(ip net.IP) hostexec.Cmd {
		return hostexec.Command("route", "-n", "get", ip.String())
	},
	Parse: parseDarwinRouteInterface,
}

var LinuxRouteLookup = RouteLookup{
	Cmd: func(ip net.IP) hostexec.Cmd {
		return hostexec.Command("ip", "route", "get", ip.String())
	},
	Parse: parseLinuxRouteInterface,
}

func GetHostRouteLookup() RouteLookup {
	if osspecifics.IsMacOS() {
		return DarwinRouteLookup
	}

	return LinuxRouteLookup
}

type Request struct {
	MachineName string
	Driver      machine.Driver
	GuestIP     net.IP
	// HostIPOverride skips host IP discovery when set.
	HostIPOverride net.IP
}

type resolveFunc func(ctx context.Context, req Request) (networkID string, hostIP net.IP, err error)

type Resolver struct {
	logger *slog.Logger

	runner hostexec.Runner
	ifaces InterfaceLister
	route  RouteLookup

	strategies map[machine.Driver]resolveFunc
}

func NewResolver(logger *slog.Logger, runner hostexec.Runner, ifaces InterfaceLister, route RouteLookup) *Resolver {
	r := &Resolver{
		logger: logger,

		runner: runner,
		ifaces: ifaces,
		route:  route,
	}

	r.strategies = map[machine.Driver]resolveFunc{
		machine.DriverVirtualBox:    r.resolveVirtualBox,
		machine.DriverParallels:     r.resolveParallels,
		machine.DriverVMware:        r.resolveRouted,
		machine.DriverVMwareFusion:  r.resolveRouted,
		machine.DriverVMwareVSphere: r.resolveRouted,
		machine.DriverXhyve:         r.resolveRouted,
		machine.DriverHyperkit:      r.resolveRouted,
	}

	return r
}

// Resolve determines the network identifier and the host IP the guest can
// reach. It does not modify anything on the host; failures are
// *config.Error values of kind KindConfiguration unless an external tool
// failed to run.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Topology, error) {
	strategy, ok := r.strategies[req.Driver]
	if !ok {
		return Topology{}, config.WithKind(config.KindConfiguration, ErrUnsupportedDriver, "cannot configure machine with driver '"+string(req.Driver)+"'")
	}

	if req.GuestIP.To4() == nil {
		return Topology{}, config.ConfigurationErrorf("could not find the machine IP")
	}

	networkID, hostIP, err := strategy(ctx, req)
	if err != nil {
		return Topology{}, err
	}

	if networkID == "" {
		return Topology{}, config.ConfigurationErrorf("could not find the %v network name", req.Driver)
	}

	if hostIP == nil {
		return Topology{}, config.ConfigurationErrorf("could not find the %v network IP", req.Driver)
	}

	t := Topology{
		Driver:    req.Driver,
		GuestIP:   req.GuestIP.To4(),
		NetworkID: networkID,
		HostIP:    hostIP.To4(),
	}

	r.logger.Debug("Resolved network topology", "driver", t.Driver, "network-id", t.NetworkID, "host-ip", t.HostIP, "guest-ip", t.GuestIP)

	return t, nil
}

func (r *Resolver) resolveVirtualBox(ctx context.Context, req Request) (string, net.IP, error) {
	out, err := r.runner.Run(ctx, hostexec.Command("VBoxManage", "showvminfo", req.MachineName, "--machinereadable"))
	if err != nil {
		return "", nil, errors.Wrap(err, "get virtualbox vm info")
	}

	adapter := parseVBoxHostOnlyAdapter(string(out))
	if adapter == "" {
		return "", nil, config.ConfigurationErrorf("could not find the virtualbox net name")
	}

	if req.HostIPOverride != nil {
		return adapter, req.HostIPOverride, nil
	}

	out, err = r.runner.Run(ctx, hostexec.Command("VBoxManage", "list", "hostonlyifs"))
	if err != nil {
		return "", nil, errors.Wrap(err, "list virtualbox host-only interfaces")
	}

	ip := net.ParseIP(parseVBoxHostOnlyIfIP(string(out), adapter))
	if ip.To4() == nil {
		return "", nil, config.ConfigurationErrorf("could not find the virtualbox net IP")
	}

	return adapter, ip, nil
}

func (r *Resolver) resolveParallels(ctx context.Context, req Request) (string, net.IP, error) {
	if req.HostIPOverride != nil {
		return constants.SharedNetworkName, req.HostIPOverride, nil
	}

	out, err := r.runner.Run(ctx, hostexec.Command("prlsrvctl", "net", "info", constants.SharedNetworkName))
	if err != nil {
		return "", nil, errors.Wrap(err, "get parallels network info")
	}

	ip := net.ParseIP(parseParallelsSharedIP(string(out)))
	if ip.To4() == nil {
		return "", nil, config.ConfigurationErrorf("could not find the parallels net IP")
	}

	return constants.SharedNetworkName, ip, nil
}

// resolveRouted finds the host address on the interface that routes to the
// guest. If the route lookup does not work out, the first host interface
// whose subnet contains the guest IP is used.
func (r *Resolver) resolveRouted(ctx context.Context, req Request) (string, net.IP, error) {
	if req.HostIPOverride != nil {
		return constants.SharedNetworkName, req.HostIPOverride, nil
	}

	ifaces, err := r.ifaces()
	if err != nil {
		return "", nil, errors.Wrap(err, "list host interfaces")
	}

	out, err := r.runner.Run(ctx, r.route.Cmd(req.GuestIP))
	if err != nil {
		r.logger.Warn("Failed to look up the route to the machine, falling back to subnet matching", "error", err.Error())
	} else if ifaceName := r.route.Parse(string(out)); ifaceName != "" {
		if ip := interfaceIPv4(ifaces, ifaceName); ip != nil {
			return constants.SharedNetworkName, ip, nil
		}

		r.logger.Warn("Route interface has no IPv4 address, falling back to subnet matching", "interface", ifaceName)
	}

	ip := subnetIPv4(ifaces, req.GuestIP)
	if ip == nil {
		return "", nil, config.ConfigurationErrorf("could not find the host IP for the %v network", req.Driver)
	}

	return constants.SharedNetworkName, ip, nil
}
