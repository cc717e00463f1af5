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

package bootscript

import (
	"context"
	"log/slog"
	"net"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/machinenfs/docker-machine-nfs/constants"
	"github.com/machinenfs/docker-machine-nfs/exports"
	"github.com/machinenfs/docker-machine-nfs/guest"
	"github.com/pkg/errors"
)

type Params struct {
	// DefaultMountPoint is where the hypervisor's own shared folder is
	// mounted. It gets unmounted first.
	DefaultMountPoint string
	HostIP            net.IP
	Folders           []exports.SharedFolder
	MountOptions      string
}

// Render generates the complete boot script. The script is owned entirely
// by us and replaces whatever was there before.
func Render(p Params) string {
	var sb strings.Builder

	sb.WriteString("#!/bin/sh\n")
	sb.WriteString("sudo umount " + shellescape.Quote(p.DefaultMountPoint) + "\n")

	for _, f := range p.Folders {
		sb.WriteString("sudo mkdir -p " + shellescape.Quote(f.Path) + "\n")
	}

	sb.WriteString("sudo " + constants.GuestNFSClientInit + " start\n")

	for _, f := range p.Folders {
		sb.WriteString("sudo mount -t nfs -o " + shellescape.Quote(p.MountOptions) + " " +
			shellescape.Quote(MountSource(p.HostIP, f)) + " " + shellescape.Quote(f.Path) + "\n")
	}

	return sb.String()
}

// MountSource is the NFS source of a folder as it shows up in the guest's
// mount table.
func MountSource(hostIP net.IP, f exports.SharedFolder) string {
	return hostIP.String() + ":" + f.HostPath
}

type Restarter interface {
	Restart(ctx context.Context, machineName string) error
}

type Installer struct {
	logger *slog.Logger

	channel   guest.Channel
	restarter Restarter
	path      string
}

func NewInstaller(logger *slog.Logger, channel guest.Channel, restarter Restarter, path string) *Installer {
	return &Installer{
		logger: logger,

		channel:   channel,
		restarter: restarter,
		path:      path,
	}
}

// Install overwrites the guest boot script and restarts the machine so
// that the script runs.
func (i *Installer) Install(ctx context.Context, machineName string, script string) error {
	err := i.channel.InstallFile(ctx, i.path, []byte(script))
	if err != nil {
		return errors.Wrap(err, "install boot script")
	}

	i.logger.Info("Installed the boot script", "path", i.path)

	err = i.restarter.Restart(ctx, machineName)
	if err != nil {
		return errors.Wrap(err, "restart machine")
	}

	return nil
}
