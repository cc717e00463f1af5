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
	"fmt"
	"net"
	"strings"

	"github.com/machinenfs/docker-machine-nfs/utils"
	"github.com/pkg/errors"
)

// Syntax is the dialect of the host's export table.
type Syntax int

const (
	// SyntaxBSD is the macOS /etc/exports syntax:
	//   "/Users" 192.168.99.100 -alldirs -mapall=501:20
	SyntaxBSD Syntax = iota
	// SyntaxLinux is the nfs-kernel-server syntax:
	//   "/home" 192.168.99.100(rw,async,no_subtree_check)
	SyntaxLinux
)

// Target returns who the export is granted to: the exact guest IP, or in
// range mode the guest's whole /24 network.
func (s Syntax) Target(guestIP net.IP, useRange bool) (string, error) {
	if !utils.IsIPv4IP(guestIP) {
		return "", fmt.Errorf("guest ip '%v' is not an ipv4 address", guestIP)
	}

	if !useRange {
		return guestIP.To4().String(), nil
	}

	prefix, err := utils.IPv4NetworkPrefix(guestIP)
	if err != nil {
		return "", errors.Wrap(err, "get network prefix")
	}

	if s == SyntaxLinux {
		return prefix + ".0/24", nil
	}

	return "-network " + prefix, nil
}

// Line renders one export. The host path is double-quoted; Linux options
// attach to the target in parentheses, BSD options follow it after a space.
func (s Syntax) Line(folder SharedFolder, target string, options string) string {
	quoted := `"` + folder.HostPath + `"`

	if s == SyntaxLinux {
		return quoted + " " + target + "(" + strings.TrimSpace(options) + ")"
	}

	return quoted + " " + target + " " + strings.TrimSpace(options)
}

// NewBlock renders the machine's export block, one line per folder in the
// given order.
func (s Syntax) NewBlock(machineName string, folders []SharedFolder, target string, options string) Block {
	lines := make([]string, 0, len(folders))
	for _, f := range folders {
		lines = append(lines, s.Line(f, target, options))
	}

	return Block{
		MachineName: machineName,
		Lines:       lines,
	}
}
