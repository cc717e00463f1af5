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
	"bytes"
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/alessio/shellescape"
	"github.com/bramvdbogaerde/go-scp"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/machinenfs/docker-machine-nfs/machine"
	"github.com/machinenfs/docker-machine-nfs/sshutil"
	"github.com/machinenfs/docker-machine-nfs/utils"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/crypto/ssh"
)

const defaultSSHCmdTimeout = time.Second * 30

// SSHChannel talks to the guest's sshd directly using the key
// docker-machine generated for the machine. Every operation dials a new
// connection so the channel survives machine restarts.
type SSHChannel struct {
	logger *slog.Logger

	addr    string
	sshConf *ssh.ClientConfig
	timeout time.Duration
}

func NewSSHChannel(logger *slog.Logger, details machine.SSHDetails, timeout time.Duration) (*SSHChannel, error) {
	signer, err := sshutil.LoadPrivateKeySigner(details.KeyPath)
	if err != nil {
		return nil, errors.Wrap(err, "load machine ssh key")
	}

	if timeout == 0 {
		timeout = defaultSSHCmdTimeout
	}

	return &SSHChannel{
		logger: logger,

		addr: utils.HostPort(details.Host, details.Port),
		sshConf: &ssh.ClientConfig{
			User: details.User,
			Auth: []ssh.AuthMethod{
				ssh.PublicKeys(signer),
			},
			// docker-machine does not record guest host keys either.
			HostKeyCallback: ssh.InsecureIgnoreHostKey(), // #nosec G106
			Timeout:         time.Second * 10,
		},
		timeout: timeout,
	}, nil
}

func (c *SSHChannel) dial() (*ssh.Client, error) {
	sc, err := ssh.Dial("tcp", c.addr, c.sshConf)
	if err != nil {
		return nil, errors.Wrap(err, "dial guest ssh")
	}

	return sc, nil
}

func (c *SSHChannel) Run(ctx context.Context, cmd string) (_ []byte, err error) {
	sc, err := c.dial()
	if err != nil {
		return nil, err
	}

	defer func() {
		err = multierr.Combine(err, ignoreClosed(sc.Close()))
	}()

	out, err := sshutil.RunSSHCmd(ctx, sc, c.timeout, cmd)
	if err != nil {
		return nil, errors.Wrap(err, "run guest ssh cmd")
	}

	return out, nil
}

// InstallFile copies content to a unique staging file over SCP and then
// moves it into place with sudo, since the SSH user cannot write to
// root-owned locations directly.
func (c *SSHChannel) InstallFile(ctx context.Context, path string, content []byte) error {
	stagingPath := "/tmp/docker-machine-nfs-" + uuid.NewString() + ".sh"

	scpCtx, scpCtxCancel := context.WithTimeout(ctx, c.timeout)
	defer scpCtxCancel()

	scpClient := scp.NewClient(c.addr, c.sshConf)
	err := scpClient.Connect()
	if err != nil {
		return errors.Wrap(err, "dial guest scp")
	}

	err = scpClient.CopyFile(scpCtx, bytes.NewReader(content), stagingPath, "0644")
	scpClient.Close()
	if err != nil {
		return errors.Wrap(err, "copy file to guest staging path")
	}

	c.logger.Debug("Copied file to the guest", "staging-path", stagingPath, "size", humanize.Bytes(uint64(len(content))))

	_, err = c.Run(ctx, "sudo mv "+shellescape.Quote(stagingPath)+" "+shellescape.Quote(path)+" && "+finalizeInstallCmd(path))
	if err != nil {
		_, rmErr := c.Run(ctx, "rm -f "+shellescape.Quote(stagingPath))
		if rmErr != nil {
			c.logger.Warn("Failed to remove guest staging file", "staging-path", stagingPath, "error", rmErr.Error())
		}

		return errors.Wrap(err, "move staged file into place")
	}

	return nil
}

// The session helper closes the connection itself on timeout.
func ignoreClosed(err error) error {
	if err == nil || errors.Is(err, net.ErrClosed) {
		return nil
	}

	return err
}
