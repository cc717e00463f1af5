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

package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/acarl005/stripansi"
)

func ClearUnprintableChars(s string, allowNewlines bool) string {
	// This will remove ANSI color codes.
	s = stripansi.Strip(s)

	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || (allowNewlines && r == '\n') {
			return r
		}
		return -1
	}, s)
}

// docker-machine itself only accepts these characters in machine names.
var machineNameRegexp = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-\.]*$`)

func ValidateMachineName(s string) bool {
	return machineNameRegexp.MatchString(s)
}

var mountOptionsRegexp = regexp.MustCompile(`^([a-zA-Z0-9_]+(=[a-zA-Z0-9_.:/]+)?)(,[a-zA-Z0-9_]+(=[a-zA-Z0-9_.:/]+)?)*$`)

func ValidateMountOptions(s string) bool {
	return mountOptionsRegexp.MatchString(s)
}

// Export options are space-separated on macOS ("-alldirs -mapall=501:20")
// and comma-separated on Linux, so we only reject characters that would
// break out of a single /etc/exports line.
func ValidateExportOptions(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}

	return !strings.ContainsAny(s, "\n\r#\"")
}

// Shared folder paths are written double-quoted into /etc/exports, one
// export per line.
func ValidateSharedFolderPath(s string) bool {
	return !strings.ContainsAny(s, "\n\r\"")
}
