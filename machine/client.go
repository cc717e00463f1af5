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

package machine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/machinenfs/docker-machine-nfs/hostexec"
	"github.com/pkg/errors"
)

const defaultBinary = "docker-machine"

// Client talks to the docker-machine control plane through its CLI.
type Client struct {
	logger *slog.Logger

	runner hostexec.Runner
	binary string
}

func NewClient(logger *slog.Logger, runner hostexec.Runner) *Client {
	return &Client{
		logger: logger,

		runner: runner,
		binary: defaultBinary,
	}
}

func (c *Client) cmd(args ...string) hostexec.Cmd {
	return hostexec.Command(c.binary, args...)
}

// LookupCmd is the `docker-machine ls` invocation Lookup performs.
func (c *Client) LookupCmd(name string) hostexec.Cmd {
	return c.cmd("ls", "--filter", "name=^"+name+"$", "--format", "{{.Name}}|{{.State}}|{{.DriverName}}")
}

// Lookup finds the machine by its exact name. It returns ErrMachineNotFound
// if docker-machine does not know about it.
func (c *Client) Lookup(ctx context.Context, name string) (Info, error) {
	out, err := c.runner.Run(ctx, c.LookupCmd(name))
	if err != nil {
		return Info{}, errors.Wrap(err, "list machines")
	}

	return parseLookupOutput(name, string(out))
}

func parseLookupOutput(name string, out string) (Info, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		split := strings.Split(line, "|")
		if want, have := 3, len(split); want != have {
			return Info{}, fmt.Errorf("bad machine list line split length: want %v, have %v ('%v')", want, have, line)
		}

		// The name filter is a regular expression, so we double-check.
		if split[0] != name {
			continue
		}

		return Info{
			Name:   split[0],
			State:  split[1],
			Driver: ParseDriver(split[2]),
		}, nil
	}

	return Info{}, ErrMachineNotFound
}

func (c *Client) IPCmd(name string) hostexec.Cmd {
	return c.cmd("ip", name)
}

func (c *Client) IP(ctx context.Context, name string) (net.IP, error) {
	out, err := c.runner.Run(ctx, c.IPCmd(name))
	if err != nil {
		return nil, errors.Wrap(err, "get machine ip")
	}

	ipStr := strings.TrimSpace(string(out))
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return nil, fmt.Errorf("bad machine ip '%v'", ipStr)
	}

	return ip, nil
}

func (c *Client) InspectCmd(name string) hostexec.Cmd {
	return c.cmd("inspect", name)
}

// SSHDetails resolves the endpoint and credentials docker-machine itself
// uses to reach the guest.
func (c *Client) SSHDetails(ctx context.Context, name string) (SSHDetails, error) {
	out, err := c.runner.Run(ctx, c.InspectCmd(name))
	if err != nil {
		return SSHDetails{}, errors.Wrap(err, "inspect machine")
	}

	return parseInspectOutput(out)
}

func parseInspectOutput(out []byte) (SSHDetails, error) {
	var parsed inspectOutput
	err := json.Unmarshal(out, &parsed)
	if err != nil {
		return SSHDetails{}, errors.Wrap(err, "unmarshal inspect output")
	}

	host := parsed.Driver.IPAddress
	// VirtualBox guests are reached through a NAT port forward.
	if ParseDriver(parsed.DriverName) == DriverVirtualBox {
		host = "127.0.0.1"
	}

	switch {
	case host == "":
		return SSHDetails{}, fmt.Errorf("no ssh host in inspect output")
	case parsed.Driver.SSHPort == 0:
		return SSHDetails{}, fmt.Errorf("no ssh port in inspect output")
	case parsed.Driver.SSHKeyPath == "":
		return SSHDetails{}, fmt.Errorf("no ssh key path in inspect output")
	}

	user := parsed.Driver.SSHUser
	if user == "" {
		user = "docker"
	}

	return SSHDetails{
		Host:    host,
		Port:    parsed.Driver.SSHPort,
		User:    user,
		KeyPath: parsed.Driver.SSHKeyPath,
	}, nil
}

func (c *Client) SSHCmd(name string, guestCmd string) hostexec.Cmd {
	return c.cmd("ssh", name, guestCmd)
}

// SSH runs a shell command inside the guest. stdin may be nil.
func (c *Client) SSH(ctx context.Context, name string, guestCmd string, stdin []byte) ([]byte, error) {
	out, err := c.runner.Run(ctx, c.SSHCmd(name, guestCmd).WithStdin(stdin))
	if err != nil {
		return nil, errors.Wrap(err, "run guest command")
	}

	return out, nil
}

func (c *Client) RestartCmd(name string) hostexec.Cmd {
	return c.cmd("restart", name)
}

func (c *Client) Restart(ctx context.Context, name string) error {
	c.logger.Info("Restarting the machine", "machine", name)

	_, err := c.runner.Run(ctx, c.RestartCmd(name))
	if err != nil {
		return errors.Wrap(err, "restart machine")
	}

	return nil
}
