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
	"context"
	"log/slog"
	"os"

	"github.com/machinenfs/docker-machine-nfs/hostfs"
	"github.com/pkg/errors"
)

// Server is the host NFS server that serves the export table.
type Server interface {
	// Reload makes the server pick up the edited export table.
	Reload(ctx context.Context) error
	// CheckExports validates the export table currently on disk.
	CheckExports(ctx context.Context) error
}

type Writer struct {
	logger *slog.Logger

	files  hostfs.Files
	server Server
	path   string
}

func NewWriter(logger *slog.Logger, files hostfs.Files, server Server, path string) *Writer {
	return &Writer{
		logger: logger,

		files:  files,
		server: server,
		path:   path,
	}
}

// Render returns the export table content with b spliced in, without
// writing anything.
func (w *Writer) Render(ctx context.Context, b Block) (string, error) {
	data, err := w.files.ReadFile(ctx, w.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", errors.Wrap(err, "read export table")
		}

		w.logger.Info("Export table does not exist yet, creating it", "path", w.path)
	}

	content, res := Splice(string(data), b)
	if res.Unterminated != 0 {
		w.logger.Warn("Found an unterminated block marker for this machine in the export table, leaving it in place", "path", w.path, "machine", b.MachineName, "count", res.Unterminated)
	}

	if res.Removed != 0 {
		w.logger.Debug("Replacing existing export block", "machine", b.MachineName, "count", res.Removed)
	}

	return content, nil
}

// Apply writes b into the export table, then reloads the NFS server and
// has it validate the result.
func (w *Writer) Apply(ctx context.Context, b Block) error {
	content, err := w.Render(ctx, b)
	if err != nil {
		return err
	}

	err = w.files.WriteFile(ctx, w.path, []byte(content))
	if err != nil {
		return errors.Wrap(err, "write export table")
	}

	w.logger.Info("Updated the export table", "path", w.path, "machine", b.MachineName)

	err = w.server.Reload(ctx)
	if err != nil {
		return errors.Wrap(err, "reload nfs server")
	}

	err = w.server.CheckExports(ctx)
	if err != nil {
		return errors.Wrap(err, "check exports")
	}

	return nil
}
