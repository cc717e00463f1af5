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

package exports

import (
	"os"
	"path/filepath"
)

// SharedFolder is a host directory exposed to the guest. Path is the
// directory as configured and doubles as the guest mount point. HostPath
// is what the NFS server actually exports.
type SharedFolder struct {
	Path     string
	HostPath string
}

// ResolveSharedFolders builds the folder list used for both the export
// block and the guest boot script, preserving order.
//
// On macOS Catalina and later, /Users and friends are firmlinks into the
// data volume and nfsd only accepts the real location. If dataVolumePrefix
// is not empty and a directory exists at dataVolumePrefix+path, that one
// is exported instead.
func ResolveSharedFolders(paths []string, dataVolumePrefix string) []SharedFolder {
	ret := make([]SharedFolder, 0, len(paths))
	for _, p := range paths {
		ret = append(ret, SharedFolder{
			Path:     p,
			HostPath: resolveFirmlink(p, dataVolumePrefix),
		})
	}

	return ret
}

func resolveFirmlink(path string, dataVolumePrefix string) string {
	if dataVolumePrefix == "" {
		return path
	}

	candidate := filepath.Join(dataVolumePrefix, path)
	stat, err := os.Stat(candidate)
	if err != nil || !stat.IsDir() {
		return path
	}

	return candidate
}
