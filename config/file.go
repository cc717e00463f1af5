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
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Flag names. The file only fills in values whose flag was not set.
const (
	FlagSharedFolder = "shared-folder"
	FlagNFSConfig    = "nfs-config"
	FlagMountOpts    = "mount-opts"
	FlagUseIPRange   = "use-ip-range"
	FlagIP           = "ip"
	FlagTimeout      = "timeout"
	FlagAttempts     = "attempts"
	FlagTransport    = "transport"
)

const defaultFileName = ".docker-machine-nfs.toml"

type FileSection struct {
	SharedFolders []string `toml:"shared_folders"`
	NFSConfig     string   `toml:"nfs_config"`
	MountOpts     string   `toml:"mount_opts"`
	UseIPRange    *bool    `toml:"use_ip_range"`
	IP            string   `toml:"ip"`
	Timeout       uint     `toml:"timeout"`
	Attempts      int      `toml:"attempts"`
	Transport     string   `toml:"transport"`
}

// File is the optional defaults file. Top-level keys apply to every
// machine, [machines.<name>] tables override them for a single machine.
type File struct {
	FileSection

	Machines map[string]FileSection `toml:"machines"`
}

func GetDefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "get user home dir")
	}

	return filepath.Join(home, defaultFileName), nil
}

// LoadFile reads the config file at path. If mustExist is false, a missing
// file yields an empty configuration.
func LoadFile(logger *slog.Logger, path string, mustExist bool) (*File, error) {
	var f File

	md, err := toml.DecodeFile(filepath.Clean(path), &f)
	if err != nil {
		if !mustExist && errors.Is(err, os.ErrNotExist) {
			return &File{}, nil
		}

		return nil, WithKind(KindUsage, err, "load config file '"+path+"'")
	}

	for _, key := range md.Undecoded() {
		logger.Warn("Unknown key in config file, ignoring", "key", key.String(), "path", path)
	}

	logger.Debug("Loaded config file", "path", path)

	return &f, nil
}

// Section returns the effective settings for a machine.
func (f *File) Section(machineName string) FileSection {
	ret := f.FileSection

	m, ok := f.Machines[machineName]
	if !ok {
		return ret
	}

	if len(m.SharedFolders) != 0 {
		ret.SharedFolders = m.SharedFolders
	}
	if m.NFSConfig != "" {
		ret.NFSConfig = m.NFSConfig
	}
	if m.MountOpts != "" {
		ret.MountOpts = m.MountOpts
	}
	if m.UseIPRange != nil {
		ret.UseIPRange = m.UseIPRange
	}
	if m.IP != "" {
		ret.IP = m.IP
	}
	if m.Timeout != 0 {
		ret.Timeout = m.Timeout
	}
	if m.Attempts != 0 {
		ret.Attempts = m.Attempts
	}
	if m.Transport != "" {
		ret.Transport = m.Transport
	}

	return ret
}

// ApplyFile fills in rc from the file for every flag that was not
// explicitly set on the command line.
func (rc RawConfiguration) ApplyFile(f *File, flagChanged func(name string) bool) RawConfiguration {
	if f == nil {
		return rc
	}

	s := f.Section(rc.MachineName)

	if !flagChanged(FlagSharedFolder) && len(s.SharedFolders) != 0 {
		rc.SharedFolders = append([]string(nil), s.SharedFolders...)
	}
	if !flagChanged(FlagNFSConfig) && s.NFSConfig != "" {
		rc.NFSConfig = s.NFSConfig
	}
	if !flagChanged(FlagMountOpts) && s.MountOpts != "" {
		rc.MountOpts = s.MountOpts
	}
	if !flagChanged(FlagUseIPRange) && s.UseIPRange != nil {
		rc.UseIPRange = *s.UseIPRange
	}
	if !flagChanged(FlagIP) && s.IP != "" {
		rc.IP = s.IP
	}
	if !flagChanged(FlagTimeout) && s.Timeout != 0 {
		rc.TimeoutSecs = s.Timeout
	}
	if !flagChanged(FlagAttempts) && s.Attempts != 0 {
		rc.Attempts = s.Attempts
	}
	if !flagChanged(FlagTransport) && s.Transport != "" {
		rc.Transport = s.Transport
	}

	return rc
}
