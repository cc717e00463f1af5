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

package hostexec

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/alessio/shellescape"
	"github.com/machinenfs/docker-machine-nfs/osspecifics"
	"github.com/machinenfs/docker-machine-nfs/utils"
	"github.com/pkg/errors"
)

// Cmd describes a single synchronous invocation of an external tool.
type Cmd struct {
	Name  string
	Args  []string
	Stdin []byte

	// Sudo runs the command through sudo unless we already are root.
	Sudo bool
}

func Command(name string, args ...string) Cmd {
	return Cmd{Name: name, Args: args}
}

func SudoCommand(name string, args ...string) Cmd {
	return Cmd{Name: name, Args: args, Sudo: true}
}

func (c Cmd) WithStdin(b []byte) Cmd {
	c.Stdin = b
	return c
}

// String renders the command the way a user would type it. Fakes key their
// responses on this representation.
func (c Cmd) String() string {
	s := shellescape.QuoteCommand(append([]string{c.Name}, c.Args...))
	if c.Sudo {
		s = "sudo " + s
	}

	return s
}

type Runner interface {
	// Run executes the command and returns its stdout. A non-zero exit
	// status is an error which includes a trimmed stderr excerpt.
	Run(ctx context.Context, c Cmd) ([]byte, error)
}

type ExecRunner struct {
	logger *slog.Logger

	timeout time.Duration
	isRoot  bool
}

// NewExecRunner creates a runner backed by os/exec. A zero timeout
// disables the per-command deadline.
func NewExecRunner(logger *slog.Logger, timeout time.Duration) (*ExecRunner, error) {
	isRoot, err := osspecifics.CheckRunAsRoot()
	if err != nil {
		return nil, errors.Wrap(err, "check run as root")
	}

	return &ExecRunner{
		logger: logger,

		timeout: timeout,
		isRoot:  isRoot,
	}, nil
}

func (r *ExecRunner) Run(ctx context.Context, c Cmd) ([]byte, error) {
	if r.timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	name, args := c.Name, c.Args
	useSudo := c.Sudo && !r.isRoot
	if useSudo {
		name, args = "sudo", append([]string{c.Name}, c.Args...)
	}

	cmd := exec.CommandContext(ctx, name, args...)

	// sudo has to stay in the foreground process group to be
	// able to prompt for the password on the terminal.
	if !useSudo {
		osspecifics.SetNewProcessGroupCmd(cmd)
		cmd.Cancel = func() error {
			return osspecifics.TerminateProcess(cmd.Process.Pid)
		}
	}
	cmd.WaitDelay = time.Second * 5

	if c.Stdin != nil {
		cmd.Stdin = bytes.NewReader(c.Stdin)
	}

	stdout := bytes.NewBuffer(nil)
	stderr := bytes.NewBuffer(nil)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	r.logger.Debug("Running command", "cmd", c.String())

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%w (%v)", err, ctx.Err())
		}

		return stdout.Bytes(), utils.WrapErrWithLog(err, "run '"+strings.TrimSpace(c.String())+"'", stderr.String())
	}

	return stdout.Bytes(), nil
}
