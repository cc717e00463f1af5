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

//go:build !windows

package osspecifics

import (
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
)

func SetNewProcessGroupCmd(cmd *exec.Cmd) {
	// This is to prevent Ctrl+C propagating to the child process.
	// Cancellation is delivered through TerminateProcess instead.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

func TerminateProcess(pid int) error {
	return syscall.Kill(-pid, syscall.SIGTERM)
}

func CheckRunAsRoot() (bool, error) {
	currentUser, err := user.Current()
	if err != nil {
		return false, errors.Wrap(err, "get current user")
	}

	return currentUser.Username == "root", nil
}

// GetInvokingUserIDs returns the uid and gid NFS exports should map to.
// When run through sudo, that is the user who invoked sudo rather than root.
func GetInvokingUserIDs() (int, int) {
	uid, gid := os.Getuid(), os.Getgid()
	if uid != 0 {
		return uid, gid
	}

	sudoUser := os.Getenv("SUDO_USER")
	if sudoUser == "" {
		return uid, gid
	}

	u, err := user.Lookup(sudoUser)
	if err != nil {
		return uid, gid
	}

	return atoiOr(u.Uid, uid), atoiOr(u.Gid, gid)
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}

	return n
}
