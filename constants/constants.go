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

package constants

import "time"

const Version = "0.2.0"

const (
	// DarwinDataVolumePrefix is where macOS Catalina and later keep the real
	// location of firmlinked system paths such as /Users.
	DarwinDataVolumePrefix = "/System/Volumes/Data"

	HostExportsPath   = "/etc/exports"
	HostNFSConfPath   = "/etc/nfs.conf"
	HostNFSConfBackup = HostNFSConfPath + ".bak"

	NFSConfReservedPortLine = "nfs.server.mount.require_resv_port = 0"

	GuestBootScriptPath = "/var/lib/boot2docker/bootlocal.sh"
	GuestNFSClientInit  = "/usr/local/etc/init.d/nfs-client"

	DefaultMountOptions = "noacl,async"

	DefaultVerifyAttempts = 10
	DefaultVerifyDelay    = time.Second

	// SharedNetworkName is the network identifier used by drivers that
	// route guests through a shared (NAT) host network.
	SharedNetworkName = "Shared"
)

// GetDefaultGuestMountPoint returns the shared-folder mount point boot2docker
// sets up by default, which must be unmounted before NFS takes over.
func GetDefaultGuestMountPoint(hostIsMacOS bool) string {
	if hostIsMacOS {
		return "/Users"
	}

	return "/hosthome"
}

func GetDefaultSharedFolder(hostIsMacOS bool) string {
	if hostIsMacOS {
		return "/Users"
	}

	return "/home"
}

func GetSentinelBegin(machineName string) string {
	return "# docker-machine-nfs-begin " + machineName + " #"
}

func GetSentinelEnd(machineName string) string {
	return "# docker-machine-nfs-end " + machineName + " #"
}
