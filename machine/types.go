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

package machine

import "strings"

type Driver string

const (
	DriverVirtualBox    Driver = "virtualbox"
	DriverVMware        Driver = "vmware"
	DriverVMwareFusion  Driver = "vmwarefusion"
	DriverVMwareVSphere Driver = "vmwarevsphere"
	DriverXhyve         Driver = "xhyve"
	DriverHyperkit      Driver = "hyperkit"
	DriverParallels     Driver = "parallels"
)

var knownDrivers = map[Driver]struct{}{
	DriverVirtualBox:    {},
	DriverVMware:        {},
	DriverVMwareFusion:  {},
	DriverVMwareVSphere: {},
	DriverXhyve:         {},
	DriverHyperkit:      {},
	DriverParallels:     {},
}

func ParseDriver(s string) Driver {
	return Driver(strings.ToLower(strings.TrimSpace(s)))
}

func (d Driver) Supported() bool {
	_, ok := knownDrivers[d]
	return ok
}

// IsVMware reports whether the driver runs on VMware Fusion and therefore
// needs the host nfsd to accept mounts from non-reserved ports.
func (d Driver) IsVMware() bool {
	return d == DriverVMware || d == DriverVMwareFusion
}

const StateRunning = "Running"

type Info struct {
	Name   string
	State  string
	Driver Driver
}

func (i Info) Running() bool {
	return i.State == StateRunning
}

// SSHDetails is the subset of `docker-machine inspect` output needed to
// reach the guest without going through the docker-machine binary.
type SSHDetails struct {
	Host    string
	Port    uint16
	User    string
	KeyPath string
}

type inspectOutput struct {
	DriverName string `json:"DriverName"`
	Driver     struct {
		IPAddress  string `json:"IPAddress"`
		SSHUser    string `json:"SSHUser"`
		SSHPort    uint16 `json:"SSHPort"`
		SSHKeyPath string `json:"SSHKeyPath"`
	} `json:"Driver"`
}
