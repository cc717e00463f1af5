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
	"strings"

	"github.com/machinenfs/docker-machine-nfs/constants"
)

// Block is the region of the export table owned by a single machine.
type Block struct {
	MachineName string
	Lines       []string
}

func (b Block) String() string {
	var sb strings.Builder

	sb.WriteString(constants.GetSentinelBegin(b.MachineName))
	sb.WriteByte('\n')
	for _, line := range b.Lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(constants.GetSentinelEnd(b.MachineName))
	sb.WriteByte('\n')

	return sb.String()
}

// RemoveResult describes what RemoveBlock did.
type RemoveResult struct {
	Removed int
	// Unterminated counts begin markers with no matching end marker
	// before the next begin marker. These are left in place.
	Unterminated int
}

// RemoveBlock removes every block owned by machineName from content.
//
// A block spans from its begin marker line to the first end marker line
// after it, inclusive. A begin marker that is followed by another begin
// marker or by the end of the content before any end marker is treated
// as unterminated: nothing is removed for it. Blocks of other machines
// and all other content are left untouched.
func RemoveBlock(content string, machineName string) (string, RemoveResult) {
	begin := constants.GetSentinelBegin(machineName)
	end := constants.GetSentinelEnd(machineName)

	lines := strings.SplitAfter(content, "\n")

	var res RemoveResult
	var sb strings.Builder
	sb.Grow(len(content))

	for i := 0; i < len(lines); i++ {
		if trimLine(lines[i]) != begin {
			sb.WriteString(lines[i])
			continue
		}

		endIdx := -1
		for j := i + 1; j < len(lines); j++ {
			l := trimLine(lines[j])
			if l == begin {
				break
			}

			if l == end {
				endIdx = j
				break
			}
		}

		if endIdx == -1 {
			res.Unterminated++
			sb.WriteString(lines[i])
			continue
		}

		res.Removed++
		i = endIdx
	}

	return sb.String(), res
}

// Splice replaces the machine's block in content with b. The new block is
// always appended at the end, so applying the same block twice yields
// byte-identical content.
func Splice(content string, b Block) (string, RemoveResult) {
	content, res := RemoveBlock(content, b.MachineName)

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	return content + b.String(), res
}

// FindBlock returns the machine's block, markers included, if there is a
// terminated one.
func FindBlock(content string, machineName string) (string, bool) {
	begin := constants.GetSentinelBegin(machineName)
	end := constants.GetSentinelEnd(machineName)

	lines := strings.SplitAfter(content, "\n")
	for i := range lines {
		if trimLine(lines[i]) != begin {
			continue
		}

		for j := i + 1; j < len(lines); j++ {
			l := trimLine(lines[j])
			if l == begin {
				break
			}

			if l == end {
				return strings.Join(lines[i:j+1], ""), true
			}
		}
	}

	return "", false
}

func trimLine(s string) string {
	return strings.TrimRight(s, "\r\n")
}
