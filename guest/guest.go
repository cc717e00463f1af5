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

package guest

import (
	"context"

	"github.com/alessio/shellescape"
)

// Channel is the remote-execution channel into the guest.
type Channel interface {
	// Run executes a shell command in the guest and returns its stdout.
	Run(ctx context.Context, cmd string) ([]byte, error)
	// InstallFile writes content to path as root, marks it executable
	// and flushes it to stable storage.
	InstallFile(ctx context.Context, path string, content []byte) error
}

func finalizeInstallCmd(path string) string {
	quoted := shellescape.Quote(path)
	return "sudo chmod +x " + quoted + " && sync"
}
