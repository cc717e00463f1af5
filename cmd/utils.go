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

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/machinenfs/docker-machine-nfs/config"
	"github.com/machinenfs/docker-machine-nfs/constants"
	"github.com/machinenfs/docker-machine-nfs/exports"
	"github.com/machinenfs/docker-machine-nfs/guest"
	"github.com/machinenfs/docker-machine-nfs/hostexec"
	"github.com/machinenfs/docker-machine-nfs/hostfs"
	"github.com/machinenfs/docker-machine-nfs/machine"
	"github.com/machinenfs/docker-machine-nfs/netresolve"
	"github.com/machinenfs/docker-machine-nfs/nfsd"
	"github.com/machinenfs/docker-machine-nfs/osspecifics"
	"github.com/machinenfs/docker-machine-nfs/provision"
	"github.com/machinenfs/docker-machine-nfs/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func loadConfiguration(cmd *cobra.Command, machineName string) (*config.Configuration, error) {
	path := configFileFlag
	mustExist := cmd.Flags().Changed("config")
	if path == "" {
		var err error
		path, err = config.GetDefaultFilePath()
		if err != nil {
			slog.Warn("Failed to get default config file path, skipping", "error", err.Error())
		}
	}

	rc := getRawConfiguration(machineName)

	if path != "" {
		f, err := config.LoadFile(slog.With("caller", "config"), path, mustExist)
		if err != nil {
			return nil, err
		}

		rc = rc.ApplyFile(f, cmd.Flags().Changed)
	}

	return rc.Process(config.GetHostDefaults(), slog.With("caller", "config"))
}

func newChannelFactory(cfg *config.Configuration, client *machine.Client) provision.ChannelFactory {
	lg := slog.With("caller", "guest")

	return func(ctx context.Context) (guest.Channel, error) {
		if cfg.Transport() != config.TransportNative {
			return guest.NewCLIChannel(lg, client, cfg.MachineName()), nil
		}

		details, err := client.SSHDetails(ctx, cfg.MachineName())
		if err != nil {
			return nil, errors.Wrap(err, "get machine ssh details")
		}

		ch, err := guest.NewSSHChannel(lg, details, cfg.Timeout())
		if err != nil {
			return nil, errors.Wrap(err, "create native ssh channel")
		}

		return ch, nil
	}
}

// notifyInterrupt cancels the returned context on the first SIGINT/SIGTERM
// and panics after repeated ones.
func notifyInterrupt() (context.Context, context.CancelFunc) {
	ctx, ctxCancel := context.WithCancel(context.Background())

	interrupt := make(chan os.Signal, 2)
	signal.Notify(interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				signal.Stop(interrupt)
				return
			case sig := <-interrupt:
				lg := slog.With("signal", sig)

				if i == 0 {
					lg.Warn("Caught interrupt, stopping. The host and the machine may be left partially configured, run again to finish")
					ctxCancel()
				} else if i < 10 {
					lg.Warn("Caught subsequent interrupt, please interrupt n more times to panic", "n", 10-i)
				} else {
					panic("force interrupt")
				}
			}
		}
	}()

	return ctx, ctxCancel
}

func runConfigure(cmd *cobra.Command, machineName string) int {
	if !osspecifics.CheckSupportedHost() {
		slog.Error("Unsupported host OS, only macOS and Linux hosts can serve NFS to Docker Machine VMs")
		return 1
	}

	cfg, err := loadConfiguration(cmd, machineName)
	if err != nil {
		if kind, ok := config.KindOf(err); ok && kind == config.KindUsage {
			slog.Error("Bad usage", "error", err.Error())
			_ = cmd.Usage()
			return 1
		}

		slog.Error("Failed to load configuration", "error", err.Error())
		return 1
	}

	runner, err := hostexec.NewExecRunner(slog.With("caller", "hostexec"), cfg.Timeout())
	if err != nil {
		slog.Error("Failed to create command runner", "error", err.Error())
		return 1
	}

	isMac := osspecifics.IsMacOS()

	client := machine.NewClient(slog.With("caller", "machine"), runner)
	files := hostfs.NewHostFiles(slog.With("caller", "hostfs"), runner)
	server, syntax := nfsd.NewHostServer(slog.With("caller", "nfsd"), runner)

	deps := provision.Deps{
		Machines:          client,
		Resolver:          netresolve.NewResolver(slog.With("caller", "netresolve"), runner, netresolve.ListHostInterfaces, netresolve.GetHostRouteLookup()),
		NewChannel:        newChannelFactory(cfg, client),
		Exports:           exports.NewWriter(slog.With("caller", "exports"), files, server, constants.HostExportsPath),
		Syntax:            syntax,
		DefaultMountPoint: constants.GetDefaultGuestMountPoint(isMac),
		BootScriptPath:    constants.GuestBootScriptPath,
		VerifyDelay:       constants.DefaultVerifyDelay,
		Sleep:             utils.SleepContext,
	}

	if isMac {
		deps.NFSConf = nfsd.NewConfEditor(slog.With("caller", "nfs-conf"), files, constants.HostNFSConfPath, constants.HostNFSConfBackup)
		deps.DataVolumePrefix = constants.DarwinDataVolumePrefix
	}

	ctx, ctxCancel := notifyInterrupt()
	defer ctxCancel()

	res, err := provision.New(slog.With("caller", "provision"), cfg, deps).Run(ctx)
	if err != nil {
		if kind, ok := config.KindOf(err); ok {
			slog.Error("Failed to configure NFS", "error", err.Error(), "kind", kind.String())
		} else {
			slog.Error("Failed to configure NFS", "error", err.Error())
		}

		return 1
	}

	switch {
	case cfg.DryRun():
		fmt.Printf("# %v (would be written to %v)\n%v\n", "Export block", constants.HostExportsPath, res.ExportBlock)
		fmt.Printf("# %v (would be written to %v in the machine)\n%v", "Boot script", constants.GuestBootScriptPath, res.BootScript)
	case res.AlreadyConfigured:
		fmt.Printf("NFS is already configured for machine '%v'. Use --force to reconfigure.\n", cfg.MachineName())
	default:
		paths := make([]string, 0, len(res.Folders))
		for _, f := range res.Folders {
			paths = append(paths, f.Path)
		}

		fmt.Printf("NFS is now active for machine '%v'.\nShared folders: %v\nHost IP (as seen from the machine): %v\n", cfg.MachineName(), strings.Join(paths, ", "), res.Topology.HostIP)
	}

	return 0
}
