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

package hostfs

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/machinenfs/docker-machine-nfs/hostexec"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Files gives access to host files that are usually owned by root,
// like /etc/exports and /etc/nfs.conf.
type Files interface {
	// ReadFile returns an error satisfying errors.Is(err, os.ErrNotExist)
	// for missing files.
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
	CopyFile(ctx context.Context, src string, dst string) error
	Exists(path string) (bool, error)
}

// HostFiles writes directly when the current user may, and falls
// back to sudo otherwise.
type HostFiles struct {
	logger *slog.Logger

	runner hostexec.Runner

	warnedNoTTY bool
}

func NewHostFiles(logger *slog.Logger, runner hostexec.Runner) *HostFiles {
	return &HostFiles{
		logger: logger,

		runner: runner,
	}
}

func (hf *HostFiles) ReadFile(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	return data, nil
}

func (hf *HostFiles) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, errors.Wrap(err, "stat file")
	}

	return true, nil
}

func (hf *HostFiles) WriteFile(ctx context.Context, path string, data []byte) error {
	path = filepath.Clean(path)
	lg := hf.logger.With("path", path, "size", humanize.Bytes(uint64(len(data))))

	if canWrite(path) {
		err := writeFileKeepMode(path, data)
		if err != nil {
			return errors.Wrap(err, "write file")
		}

		lg.Debug("Wrote file")

		return nil
	}

	hf.warnIfNoTTY()

	lg.Debug("Writing file with sudo")

	_, err := hf.runner.Run(ctx, hostexec.SudoCommand("tee", path).WithStdin(data))
	if err != nil {
		return errors.Wrap(err, "write file with sudo tee")
	}

	return nil
}

func (hf *HostFiles) CopyFile(ctx context.Context, src string, dst string) error {
	src, dst = filepath.Clean(src), filepath.Clean(dst)

	if canWrite(dst) {
		data, err := os.ReadFile(src)
		if err != nil {
			return errors.Wrap(err, "read source file")
		}

		err = writeFileKeepMode(dst, data)
		if err != nil {
			return errors.Wrap(err, "write destination file")
		}

		return nil
	}

	hf.warnIfNoTTY()

	_, err := hf.runner.Run(ctx, hostexec.SudoCommand("cp", "-p", src, dst))
	if err != nil {
		return errors.Wrap(err, "copy file with sudo")
	}

	return nil
}

func (hf *HostFiles) warnIfNoTTY() {
	if hf.warnedNoTTY {
		return
	}
	hf.warnedNoTTY = true

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		hf.logger.Warn("Root privileges are required but stdin is not a terminal, sudo may fail to ask for a password")
	}
}

// canWrite reports whether path can be written without privilege
// escalation. For a missing file, the parent directory is checked.
func canWrite(path string) bool {
	err := unix.Access(path, unix.W_OK)
	if err == nil {
		return true
	}

	if errors.Is(err, unix.ENOENT) {
		return unix.Access(filepath.Dir(path), unix.W_OK) == nil
	}

	return false
}

func writeFileKeepMode(path string, data []byte) (err error) {
	mode := os.FileMode(0644)
	if stat, statErr := os.Stat(path); statErr == nil {
		mode = stat.Mode().Perm()
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return errors.Wrap(err, "open file")
	}

	defer func() {
		err = multierr.Combine(err, errors.Wrap(f.Close(), "close file"))
	}()

	_, err = f.Write(data)
	if err != nil {
		return errors.Wrap(err, "write data")
	}

	return errors.Wrap(f.Sync(), "sync file")
}
