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

package utils

import (
	"net"
	"strconv"

	"golang.org/x/exp/constraints"
)

// MapAllOption renders the BSD export option that maps every client user
// to uid:gid, e.g. "-mapall=501:20".
func MapAllOption[T constraints.Signed](uid, gid T) string {
	return "-mapall=" + strconv.FormatInt(int64(uid), 10) + ":" + strconv.FormatInt(int64(gid), 10)
}

// AnonIDOptions renders the Linux export options that squash every client
// user to uid and gid.
func AnonIDOptions[T constraints.Signed](uid, gid T) string {
	return "anonuid=" + strconv.FormatInt(int64(uid), 10) + ",anongid=" + strconv.FormatInt(int64(gid), 10)
}

func HostPort[T constraints.Unsigned](host string, port T) string {
	return net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))
}
