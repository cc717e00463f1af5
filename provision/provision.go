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

package provision

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/machinenfs/docker-machine-nfs/bootscript"
	"github.com/machinenfs/docker-machine-nfs/config"
	"github.com/machinenfs/docker-machine-nfs/constants"
	"github.com/machinenfs/docker-machine-nfs/exports"
	"github.com/machinenfs/docker-machine-nfs/guest"
	"github.com/machinenfs/docker-machine-nfs/machine"
	"github.com/machinenfs/docker-machine-nfs/netresolve"
	"github.com/machinenfs/docker-machine-nfs/utils"
	"github.com/machinenfs/docker-machine-nfs/verify"
	"github.com/pkg/errors"
)

type MachineClient interface {
	Lookup(ctx context.Context, name string) (machine.Info, error)
	IP(ctx context.Context, name string) (net.IP, error)
	Restart(ctx context.Context, name string) error
}

type TopologyResolver interface {
	Resolve(ctx context.Context, req netresolve.Request) (netresolve.Topology, error)
}

type ExportWriter interface {
	Apply(ctx context.Context, b exports.Block) error
}

type ConfEditor interface {
	EnsureLine(ctx context.Context, line string) (bool, error)
}

// ChannelFactory opens the guest channel once the machine is known to be running.
type ChannelFactory func(ctx context.Context) (guest.Channel, error)

type Deps struct {
	Machines   MachineClient
	Resolver   TopologyResolver
	NewChannel ChannelFactory
	Exports    ExportWriter
	Syntax     exports.Syntax
	// NFSConf is only used for VMware guests on macOS hosts. May be nil
	// on other hosts.
	NFSConf ConfEditor

	// DataVolumePrefix enables firmlink resolution when not empty.
	DataVolumePrefix  string
	DefaultMountPoint string
	BootScriptPath    string

	VerifyDelay time.Duration
	Sleep       utils.SleepFunc
}

type Result struct {
	Topology netresolve.Topology
	Folders  []exports.SharedFolder

	// AlreadyConfigured is set when NFS was found mounted and nothing was
	// changed because --force was not given.
	AlreadyConfigured bool

	// Set in dry-run mode only.
	ExportBlock string
	BootScript  string

	VerifyAttempts int
}

type Provisioner struct {
	logger *slog.Logger

	cfg  *config.Configuration
	deps Deps
}

func New(logger *slog.Logger, cfg *config.Configuration, deps Deps) *Provisioner {
	if deps.BootScriptPath == "" {
		deps.BootScriptPath = constants.GuestBootScriptPath
	}

	if deps.Sleep == nil {
		deps.Sleep = utils.SleepContext
	}

	return &Provisioner{
		logger: logger,

		cfg:  cfg,
		deps: deps,
	}
}

// Run performs the whole configuration sequence once. Nothing on the host
// or in the guest is modified before the machine checks and the network
// resolution have succeeded.
func (p *Provisioner) Run(ctx context.Context) (Result, error) {
	name := p.cfg.MachineName()
	lg := p.logger.With("machine", name)

	info, err := p.deps.Machines.Lookup(ctx, name)
	if err != nil {
		if errors.Is(err, machine.ErrMachineNotFound) {
			return Result{}, config.WithKind(config.KindPrecondition, err, "machine '"+name+"'")
		}

		return Result{}, errors.Wrap(err, "look up machine")
	}

	if !info.Running() {
		return Result{}, config.WithKind(config.KindPrecondition, machine.ErrMachineNotRunning, "machine '"+name+"' (state '"+info.State+"')")
	}

	lg.Info("Found the machine", "driver", info.Driver, "state", info.State)

	guestIP, err := p.deps.Machines.IP(ctx, name)
	if err != nil {
		return Result{}, errors.Wrap(err, "get machine ip")
	}

	topology, err := p.deps.Resolver.Resolve(ctx, netresolve.Request{
		MachineName:    name,
		Driver:         info.Driver,
		GuestIP:        guestIP,
		HostIPOverride: p.cfg.HostIP(),
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "resolve network")
	}

	lg.Info("Resolved the machine network", "network-id", topology.NetworkID, "host-ip", topology.HostIP, "machine-ip", topology.GuestIP)

	folders := exports.ResolveSharedFolders(p.cfg.SharedFolders(), p.deps.DataVolumePrefix)
	for _, f := range folders {
		if f.HostPath != f.Path {
			lg.Info("Using the data volume path for a firmlinked folder", "folder", f.Path, "host-path", f.HostPath)
		}
	}

	res := Result{
		Topology: topology,
		Folders:  folders,
	}

	target, err := p.deps.Syntax.Target(topology.GuestIP, p.cfg.UseIPRange())
	if err != nil {
		return Result{}, config.WithKind(config.KindConfiguration, err, "build export target")
	}

	block := p.deps.Syntax.NewBlock(name, folders, target, p.cfg.ExportOptions())
	script := bootscript.Render(bootscript.Params{
		DefaultMountPoint: p.deps.DefaultMountPoint,
		HostIP:            topology.HostIP,
		Folders:           folders,
		MountOptions:      p.cfg.MountOptions(),
	})

	if p.cfg.DryRun() {
		res.ExportBlock = block.String()
		res.BootScript = script
		return res, nil
	}

	channel, err := p.deps.NewChannel(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "open guest channel")
	}

	if !p.cfg.Force() {
		table, err := verify.ReadMountTable(ctx, channel)
		if err != nil {
			lg.Warn("Failed to check whether NFS is already mounted, continuing", "error", err.Error())
		} else if verify.AllNFSMounted(table, topology.HostIP, folders) {
			lg.Info("NFS is already mounted in the machine, use --force to reconfigure")
			res.AlreadyConfigured = true
			return res, nil
		}
	}

	if topology.RequiresNonReservedPorts() && p.deps.NFSConf != nil {
		_, err = p.deps.NFSConf.EnsureLine(ctx, constants.NFSConfReservedPortLine)
		if err != nil {
			return Result{}, errors.Wrap(err, "allow non-reserved nfs ports")
		}
	}

	err = p.deps.Exports.Apply(ctx, block)
	if err != nil {
		return Result{}, errors.Wrap(err, "configure host exports")
	}

	installer := bootscript.NewInstaller(p.logger.With("caller", "bootscript"), channel, p.deps.Machines, p.deps.BootScriptPath)
	err = installer.Install(ctx, name, script)
	if err != nil {
		return Result{}, errors.Wrap(err, "configure machine boot")
	}

	lg.Info("Waiting for the NFS mounts to come up", "attempts", p.cfg.VerifyAttempts())

	verifier := verify.NewVerifier(p.logger.With("caller", "verify"), channel, p.cfg.VerifyAttempts(), p.deps.VerifyDelay, p.deps.Sleep)
	res.VerifyAttempts, err = verifier.Wait(ctx, topology.HostIP, folders)
	if err != nil {
		return res, errors.Wrap(err, "verify nfs mounts")
	}

	return res, nil
}
