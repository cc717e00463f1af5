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

package nfsd

import (
	"context"
	"log/slog"
	"time"

	"github.com/machinenfs/docker-machine-nfs/exports"
	"github.com/machinenfs/docker-machine-nfs/hostexec"
	"github.com/machinenfs/docker-machine-nfs/osspecifics"
	"github.com/machinenfs/docker-machine-nfs/utils"
	"github.com/pkg/errors"
)

// nfsd needs a moment after a restart before checkexports sees the new table.
const bsdSettleDelay = time.Second * 2

// BSDServer drives the macOS nfsd.
type BSDServer struct {
	logger *slog.Logger

	runner hostexec.Runner
	sleep  utils.SleepFunc
}

func NewBSDServer(logger *slog.Logger, runner hostexec.Runner, sleep utils.SleepFunc) *BSDServer {
	return &BSDServer{
		logger: logger,

		runner: runner,
		sleep:  sleep,
	}
}

func (s *BSDServer) Reload(ctx context.Context) error {
	s.logger.Info("Restarting nfsd")

	_, err := s.runner.Run(ctx, hostexec.SudoCommand("nfsd", "restart"))
	if err != nil {
		return errors.Wrap(err, "restart nfsd")
	}

	return s.sleep(ctx, bsdSettleDelay)
}

func (s *BSDServer) CheckExports(ctx context.Context) error {
	_, err := s.runner.Run(ctx, hostexec.SudoCommand("nfsd", "checkexports"))
	if err != nil {
		return errors.Wrap(err, "nfsd checkexports")
	}

	return nil
}

// LinuxServer drives nfs-kernel-server through exportfs.
type LinuxServer struct {
	logger *slog.Logger

	runner hostexec.Runner
}

func NewLinuxServer(logger *slog.Logger, runner hostexec.Runner) *LinuxServer {
	return &LinuxServer{
		logger: logger,

		runner: runner,
	}
}

func (s *LinuxServer) Reload(ctx context.Context) error {
	s.logger.Info("Re-exporting NFS shares")

	// exportfs parses the whole table here, so a bad line fails this step.
	_, err := s.runner.Run(ctx, hostexec.SudoCommand("exportfs", "-ra"))
	if err != nil {
		return errors.Wrap(err, "exportfs -ra")
	}

	return nil
}

func (s *LinuxServer) CheckExports(ctx context.Context) error {
	_, err := s.runner.Run(ctx, hostexec.SudoCommand("exportfs", "-v"))
	if err != nil {
		return errors.Wrap(err, "exportfs -v")
	}

	return nil
}

// NewHostServer returns the NFS server implementation for the running OS
// together with the export line syntax it expects.
func NewHostServer(logger *slog.Logger, runner hostexec.Runner) (exports.Server, exports.Syntax) {
	if osspecifics.IsMacOS() {
		return NewBSDServer(logger, runner, utils.SleepContext), exports.SyntaxBSD
	}

	return NewLinuxServer(logger, runner), exports.SyntaxLinux
}
