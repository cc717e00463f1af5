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

package verify

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/machinenfs/docker-machine-nfs/bootscript"
	"github.com/machinenfs/docker-machine-nfs/exports"
	"github.com/machinenfs/docker-machine-nfs/guest"
	"github.com/machinenfs/docker-machine-nfs/utils"
	"github.com/pkg/errors"
)

var ErrMountTimeout = errors.New("timed out waiting for the nfs mounts to show up in the machine")

const mountTableCmd = "mount"

type Verifier struct {
	logger *slog.Logger

	channel  guest.Channel
	attempts int
	delay    time.Duration
	sleep    utils.SleepFunc
}

func NewVerifier(logger *slog.Logger, channel guest.Channel, attempts int, delay time.Duration, sleep utils.SleepFunc) *Verifier {
	return &Verifier{
		logger: logger,

		channel:  channel,
		attempts: attempts,
		delay:    delay,
		sleep:    sleep,
	}
}

// Wait polls the guest's mount table until every folder is mounted from
// hostIP. It returns the number of attempts made. After the attempt budget
// is used up, the error is ErrMountTimeout.
func (v *Verifier) Wait(ctx context.Context, hostIP net.IP, folders []exports.SharedFolder) (int, error) {
	for attempt := 1; attempt <= v.attempts; attempt++ {
		table, err := v.channel.Run(ctx, mountTableCmd)
		if err != nil {
			if ctx.Err() != nil {
				return attempt, ctx.Err()
			}

			// The machine is likely still booting.
			v.logger.Debug("Failed to read the machine mount table", "attempt", attempt, "error", err.Error())
		} else {
			missing := MissingMounts(string(table), hostIP, folders)
			if len(missing) == 0 {
				v.logger.Debug("All NFS mounts are up", "attempt", attempt)
				return attempt, nil
			}

			v.logger.Debug("Waiting for NFS mounts", "attempt", attempt, "missing", len(missing))
		}

		if attempt == v.attempts {
			break
		}

		err = v.sleep(ctx, v.delay)
		if err != nil {
			return attempt, err
		}
	}

	return v.attempts, ErrMountTimeout
}

// MissingMounts returns the folders that have no "<host-ip>:<host-path> on"
// entry in the mount table, in their original order.
func MissingMounts(table string, hostIP net.IP, folders []exports.SharedFolder) []exports.SharedFolder {
	var missing []exports.SharedFolder
	for _, f := range folders {
		if !strings.Contains(table, bootscript.MountSource(hostIP, f)+" on") {
			missing = append(missing, f)
		}
	}

	return missing
}

// AllNFSMounted reports whether every folder is already mounted over NFS
// at its mount point from hostIP.
func AllNFSMounted(table string, hostIP net.IP, folders []exports.SharedFolder) bool {
	if len(folders) == 0 {
		return false
	}

	lines := strings.Split(table, "\n")
	for _, f := range folders {
		needle := bootscript.MountSource(hostIP, f) + " on " + f.Path + " "

		found := false
		for _, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), needle) && strings.Contains(line, "nfs") {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}

// ReadMountTable returns the guest's live mount table.
func ReadMountTable(ctx context.Context, channel guest.Channel) (string, error) {
	out, err := channel.Run(ctx, mountTableCmd)
	if err != nil {
		return "", errors.Wrap(err, "read machine mount table")
	}

	return string(out), nil
}
