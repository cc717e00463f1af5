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

package netresolve

import (
	"strings"
)

// parseVBoxHostOnlyAdapter extracts the first host-only adapter name from
// `VBoxManage showvminfo --machinereadable` output, which has lines like
// hostonlyadapter2="vboxnet0".
func parseVBoxHostOnlyAdapter(out string) string {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "hostonlyadapter") {
			continue
		}

		_, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		value = strings.Trim(strings.TrimSpace(value), `"`)
		if value != "" && value != "none" {
			return value
		}
	}

	return ""
}

// parseVBoxHostOnlyIfIP finds the IPAddress of the named interface in
// `VBoxManage list hostonlyifs` output. Interfaces are blank-line separated
// blocks of "Key:   value" lines.
func parseVBoxHostOnlyIfIP(out string, name string) string {
	for _, block := range splitBlocks(out) {
		fields := parseColonFields(block)
		if fields["Name"] == name {
			return fields["IPAddress"]
		}
	}

	return ""
}

// parseParallelsSharedIP extracts the "IPv4 address" field from
// `prlsrvctl net info Shared` output.
func parseParallelsSharedIP(out string) string {
	return parseColonFields(out)["IPv4 address"]
}

// parseDarwinRouteInterface extracts the "interface" field from
// `route -n get <ip>` output.
func parseDarwinRouteInterface(out string) string {
	return parseColonFields(out)["interface"]
}

// parseLinuxRouteInterface extracts the device from `ip route get <ip>`
// output, e.g. "192.168.99.100 dev vboxnet0 src 192.168.99.1 uid 1000".
func parseLinuxRouteInterface(out string) string {
	fields := strings.Fields(out)
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] == "dev" {
			return fields[i+1]
		}
	}

	return ""
}

func splitBlocks(out string) []string {
	var blocks []string
	var cur strings.Builder

	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			if cur.Len() != 0 {
				blocks = append(blocks, cur.String())
				cur.Reset()
			}
			continue
		}

		cur.WriteString(line)
		cur.WriteByte('\n')
	}

	if cur.Len() != 0 {
		blocks = append(blocks, cur.String())
	}

	return blocks
}

// parseColonFields parses "Key: value" lines. The first occurrence of a key wins.
func parseColonFields(out string) map[string]string {
	ret := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		if _, exists := ret[key]; exists {
			continue
		}

		ret[key] = strings.TrimSpace(value)
	}

	return ret
}
