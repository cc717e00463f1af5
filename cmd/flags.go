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
	"github.com/machinenfs/docker-machine-nfs/config"
	"github.com/spf13/cobra"
)

var (
	sharedFoldersFlag []string
	nfsConfigFlag     string
	mountOptsFlag     string
	forceFlag         bool
	useIPRangeFlag    bool
	ipFlag            string
	timeoutFlag       uint
	attemptsFlag      int
	transportFlag     string
	configFileFlag    string
	dryRunFlag        bool
)

func initConfigureFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringArrayVar(&sharedFoldersFlag, config.FlagSharedFolder, nil, "Host folder to share with the machine. Can be repeated. Defaults to /Users on macOS and /home on Linux.")
	flags.StringVar(&nfsConfigFlag, config.FlagNFSConfig, "", `NFS export options. Defaults to "-alldirs -mapall=<uid>:<gid>" on macOS and "rw,async,no_subtree_check,all_squash,anonuid=<uid>,anongid=<gid>" on Linux.`)
	flags.StringVar(&mountOptsFlag, config.FlagMountOpts, "", "NFS mount options used inside the machine. Defaults to \"noacl,async\".")
	flags.BoolVarP(&forceFlag, "force", "f", false, "Reconfigure even if NFS is already mounted in the machine.")
	flags.BoolVar(&useIPRangeFlag, config.FlagUseIPRange, false, "Export to the machine's whole /24 network instead of its exact IP.")
	flags.StringVar(&ipFlag, config.FlagIP, "", "Host IP address as seen from the machine. Skips host IP discovery.")
	flags.UintVar(&timeoutFlag, config.FlagTimeout, 0, "Timeout in seconds for each external command. 0 disables the timeout.")
	flags.IntVar(&attemptsFlag, config.FlagAttempts, 0, "How many times to check the machine for the NFS mounts after the restart. Defaults to 10.")
	flags.StringVar(&transportFlag, config.FlagTransport, "", `How to reach the machine: "cli" runs "docker-machine ssh", "native" connects to the machine's SSH server directly. Defaults to "cli".`)
	flags.StringVar(&configFileFlag, "config", "", "Path to a TOML file with defaults. Defaults to ~/.docker-machine-nfs.toml if it exists.")
	flags.BoolVar(&dryRunFlag, "dry-run", false, "Print the export block and the boot script without changing anything.")
}

func getRawConfiguration(machineName string) config.RawConfiguration {
	return config.RawConfiguration{
		MachineName:   machineName,
		SharedFolders: sharedFoldersFlag,
		NFSConfig:     nfsConfigFlag,
		MountOpts:     mountOptsFlag,
		Force:         forceFlag,
		UseIPRange:    useIPRangeFlag,
		IP:            ipFlag,
		TimeoutSecs:   timeoutFlag,
		Attempts:      attemptsFlag,
		Transport:     transportFlag,
		DryRun:        dryRunFlag,
	}
}
