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
	"os"
	"strings"

	"github.com/machinenfs/docker-machine-nfs/hostfs"
	"github.com/pkg/errors"
)

// ConfEditor adds single settings to the nfsd configuration file.
type ConfEditor struct {
	logger *slog.Logger

	files      hostfs.Files
	path       string
	backupPath string
}

func NewConfEditor(logger *slog.Logger, files hostfs.Files, path string, backupPath string) *ConfEditor {
	return &ConfEditor{
		logger: logger,

		files:      files,
		path:       path,
		backupPath: backupPath,
	}
}

// EnsureLine appends line to the config file unless an equivalent line is
// already present. Before the first edit, the original file is copied to
// the backup path; an existing backup is never overwritten.
func (ce *ConfEditor) EnsureLine(ctx context.Context, line string) (bool, error) {
	exists := true

	data, err := ce.files.ReadFile(ctx, ce.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return false, errors.Wrap(err, "read nfs conf")
		}

		exists = false
	}

	content := string(data)
	if containsSetting(content, line) {
		ce.logger.Debug("NFS config line already present", "path", ce.path, "line", line)
		return false, nil
	}

	if exists {
		backupExists, err := ce.files.Exists(ce.backupPath)
		if err != nil {
			return false, errors.Wrap(err, "check nfs conf backup exists")
		}

		if !backupExists {
			err = ce.files.CopyFile(ctx, ce.path, ce.backupPath)
			if err != nil {
				return false, errors.Wrap(err, "back up nfs conf")
			}

			ce.logger.Info("Backed up the NFS config", "path", ce.path, "backup", ce.backupPath)
		}
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += line + "\n"

	err = ce.files.WriteFile(ctx, ce.path, []byte(content))
	if err != nil {
		return false, errors.Wrap(err, "write nfs conf")
	}

	ce.logger.Info("Added a line to the NFS config", "path", ce.path, "line", line)

	return true, nil
}

// containsSetting compares lines with all whitespace removed, so that
// "a.b = 0" and "a.b=0" are the same setting.
func containsSetting(content string, line string) bool {
	want := stripSpaces(line)
	for _, l := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), "#") {
			continue
		}

		if stripSpaces(l) == want {
			return true
		}
	}

	return false
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
