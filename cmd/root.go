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
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docker-machine-nfs <machine-name>",
	Short: "Activates NFS shared folders for a Docker Machine VM.",
	Long: `docker-machine-nfs replaces the default shared folder mechanism of a Docker Machine VM (vboxsf, vmhgfs and friends) ` +
		`with native NFS mounts. It adds an export for the machine to the host NFS server, installs a boot script in the machine ` +
		`that mounts the shared folders over NFS, restarts the machine and waits until the mounts are up. ` +
		`Running it again is safe: the machine's exports and boot script are replaced, never duplicated.`,
	Args: cobra.ExactArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugFlag {
			logLevel.Set(slog.LevelDebug)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runConfigure(cmd, args[0]))
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var logLevel = new(slog.LevelVar)

var debugFlag bool

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(copyrightCmd)

	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enables debug logging, including every external command that is run.")

	initConfigureFlags(rootCmd)
}
