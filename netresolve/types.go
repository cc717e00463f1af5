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

	"github.com/machinenfs/docker-machine-nfs/machine"
	"github.com/pkg/errors"
)

var ErrUnsupportedDriver = errors.New("unsupported driver")

// Topology describes how the guest and the host see each other.
// It is built once per run and never modified afterwards.
type Topology struct {
	Driver    machine.Driver
	GuestIP   net.IP
	NetworkID string
	HostIP    net.IP
}

// RequiresNonReservedPorts reports whether the host nfsd must accept mount
// requests from unprivileged source ports for this guest to mount.
func (t Topology) RequiresNonReservedPorts() bool {
	return t.Driver.IsVMware()
}
