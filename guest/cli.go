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
	"log/slog"

	"github.com/alessio/shellescape"
	"github.com/dustin/go-humanize"
	"github.com/machinenfs/docker-machine-nfs/machine"
	"github.com/pkg/errors"
)

// CLIChannel goes through `docker-machine ssh`.
type CLIChannel struct {
	logger *slog.Logger

	client      *machine.Client
	machineName string
}

func NewCLIChannel(logger *slog.Logger, client *machine.Client, machineName string) *CLIChannel {
	return &CLIChannel{
		logger: logger,

		client:      client,
		machineName: machineName,
	}
}

func (c *CLIChannel) Run(ctx context.Context, cmd string) ([]byte, error) {
	return c.client.SSH(ctx, c.machineName, cmd, nil)
}

// InstallCmd is the guest command InstallFile pipes the content into.
func InstallCmd(path string) string {
	return "sudo tee " + shellescape.Quote(path) + " > /dev/null && " + finalizeInstallCmd(path)
}

func (c *CLIChannel) InstallFile(ctx context.Context, path string, content []byte) error {
	_, err := c.client.SSH(ctx, c.machineName, InstallCmd(path), content)
	if err != nil {
		return errors.Wrap(err, "pipe file into guest")
	}

	c.logger.Debug("Installed file in the guest", "path", path, "size", humanize.Bytes(uint64(len(content))))

	return nil
}
