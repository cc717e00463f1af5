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

package config

import (
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/machinenfs/docker-machine-nfs/constants"
	"github.com/machinenfs/docker-machine-nfs/osspecifics"
	"github.com/machinenfs/docker-machine-nfs/utils"
	"github.com/pkg/errors"
)

type Transport string

const (
	TransportCLI    Transport = "cli"
	TransportNative Transport = "native"
)

// HostDefaults are the values used when neither a flag nor the config
// file specify one. They depend on the host OS and the invoking user.
type HostDefaults struct {
	SharedFolder  string
	ExportOptions string
	MountOptions  string
}

func GetHostDefaults() HostDefaults {
	uid, gid := osspecifics.GetInvokingUserIDs()

	exportOpts := "-alldirs " + utils.MapAllOption(uid, gid)
	if !osspecifics.IsMacOS() {
		exportOpts = "rw,async,no_subtree_check,all_squash," + utils.AnonIDOptions(uid, gid)
	}

	return HostDefaults{
		SharedFolder:  constants.GetDefaultSharedFolder(osspecifics.IsMacOS()),
		ExportOptions: exportOpts,
		MountOptions:  constants.DefaultMountOptions,
	}
}

// RawConfiguration holds unvalidated values as they come from the command
// line and the config file.
type RawConfiguration struct {
	MachineName   string
	SharedFolders []string
	NFSConfig     string
	MountOpts     string
	Force         bool
	UseIPRange    bool
	IP            string
	TimeoutSecs   uint
	Attempts      int
	Transport     string
	DryRun        bool
}

// Configuration is the validated, immutable run configuration. It is built
// once by RawConfiguration.Process and handed to every component.
type Configuration struct {
	machineName   string
	sharedFolders []string
	exportOptions string
	mountOptions  string
	force         bool
	useIPRange    bool
	hostIP        net.IP
	timeout       time.Duration
	attempts      int
	transport     Transport
	dryRun        bool
}

func (rc RawConfiguration) Process(defaults HostDefaults, warnLogger *slog.Logger) (*Configuration, error) {
	if rc.MachineName == "" {
		return nil, UsageErrorf("machine name is required")
	}

	if !utils.ValidateMachineName(rc.MachineName) {
		return nil, UsageErrorf("invalid machine name '%v'", rc.MachineName)
	}

	folders := rc.SharedFolders
	if len(folders) == 0 {
		folders = []string{defaults.SharedFolder}
	}

	sharedFolders, err := processSharedFolders(folders)
	if err != nil {
		return nil, err
	}

	exportOpts := rc.NFSConfig
	if exportOpts == "" {
		exportOpts = defaults.ExportOptions
	}

	if !utils.ValidateExportOptions(exportOpts) {
		return nil, UsageErrorf("invalid nfs config '%v'", exportOpts)
	}

	mountOpts := rc.MountOpts
	if mountOpts == "" {
		mountOpts = defaults.MountOptions
	}

	if !utils.ValidateMountOptions(mountOpts) {
		return nil, UsageErrorf("invalid mount options '%v'", mountOpts)
	}

	var hostIP net.IP
	if rc.IP != "" {
		hostIP = net.ParseIP(rc.IP)
		if hostIP == nil || !utils.IsIPv4IP(hostIP) {
			return nil, UsageErrorf("invalid ip '%v'", rc.IP)
		}
		hostIP = hostIP.To4()
	}

	attempts := rc.Attempts
	if attempts == 0 {
		attempts = constants.DefaultVerifyAttempts
	}

	if attempts < 0 {
		return nil, UsageErrorf("attempts cannot be negative (have %v)", attempts)
	}

	transport := Transport(rc.Transport)
	switch transport {
	case "":
		transport = TransportCLI
	case TransportCLI, TransportNative:
	default:
		return nil, UsageErrorf("unknown transport '%v' (want '%v' or '%v')", rc.Transport, TransportCLI, TransportNative)
	}

	if rc.UseIPRange && hostIP != nil {
		warnLogger.Warn("Static host IP has no effect on the export range, the range is derived from the machine IP")
	}

	return &Configuration{
		machineName:   rc.MachineName,
		sharedFolders: sharedFolders,
		exportOptions: exportOpts,
		mountOptions:  mountOpts,
		force:         rc.Force,
		useIPRange:    rc.UseIPRange,
		hostIP:        hostIP,
		timeout:       time.Duration(rc.TimeoutSecs) * time.Second,
		attempts:      attempts,
		transport:     transport,
		dryRun:        rc.DryRun,
	}, nil
}

func processSharedFolders(folders []string) ([]string, error) {
	var ret []string
	seen := make(map[string]struct{})

	for _, folder := range folders {
		if folder == "" {
			return nil, UsageErrorf("empty shared folder path")
		}

		abs, err := filepath.Abs(folder)
		if err != nil {
			return nil, UsageErrorf("bad shared folder path '%v': %v", folder, err)
		}

		if !utils.ValidateSharedFolderPath(abs) {
			return nil, UsageErrorf("shared folder path %q contains a quote or line break", abs)
		}

		stat, err := os.Stat(abs)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, PreconditionErrorf("shared folder '%v' does not exist", abs)
			}

			return nil, WithKind(KindPrecondition, err, "stat shared folder '"+abs+"'")
		}

		if !stat.IsDir() {
			return nil, PreconditionErrorf("shared folder '%v' is not a directory", abs)
		}

		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}

		ret = append(ret, abs)
	}

	return ret, nil
}

func (c *Configuration) MachineName() string {
	return c.machineName
}

// SharedFolders returns the absolute host paths in the order they were given.
func (c *Configuration) SharedFolders() []string {
	ret := make([]string, len(c.sharedFolders))
	copy(ret, c.sharedFolders)
	return ret
}

func (c *Configuration) ExportOptions() string {
	return c.exportOptions
}

func (c *Configuration) MountOptions() string {
	return c.mountOptions
}

func (c *Configuration) Force() bool {
	return c.force
}

func (c *Configuration) UseIPRange() bool {
	return c.useIPRange
}

// HostIP returns the static host IP override, or nil.
func (c *Configuration) HostIP() net.IP {
	if c.hostIP == nil {
		return nil
	}

	ret := make(net.IP, len(c.hostIP))
	copy(ret, c.hostIP)
	return ret
}

// Timeout is the per-command timeout. Zero means no timeout.
func (c *Configuration) Timeout() time.Duration {
	return c.timeout
}

func (c *Configuration) VerifyAttempts() int {
	return c.attempts
}

func (c *Configuration) Transport() Transport {
	return c.transport
}

func (c *Configuration) DryRun() bool {
	return c.dryRun
}
