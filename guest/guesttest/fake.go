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

package guesttest

import (
	"context"
	"fmt"
	"sync"
)

type Response struct {
	Stdout string
	Err    error
}

// FakeChannel answers guest commands from per-command queues, like
// hostexectest.FakeRunner does for host commands, and records installed
// files.
type FakeChannel struct {
	mu sync.Mutex

	responses map[string][]Response
	commands  []string
	files     map[string][]byte

	// InstallErr is returned by InstallFile when set.
	InstallErr error
	// OnInstall is called after each successful install.
	OnInstall func(path string)
}

func NewFakeChannel() *FakeChannel {
	return &FakeChannel{
		responses: make(map[string][]Response),
		files:     make(map[string][]byte),
	}
}

func (f *FakeChannel) On(cmd string, resp ...Response) *FakeChannel {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.responses[cmd] = append(f.responses[cmd], resp...)

	return f
}

func (f *FakeChannel) Run(_ context.Context, cmd string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, cmd)

	queue, ok := f.responses[cmd]
	if !ok || len(queue) == 0 {
		return nil, fmt.Errorf("unexpected guest command '%v'", cmd)
	}

	resp := queue[0]
	if len(queue) > 1 {
		f.responses[cmd] = queue[1:]
	}

	return []byte(resp.Stdout), resp.Err
}

func (f *FakeChannel) InstallFile(_ context.Context, path string, content []byte) error {
	f.mu.Lock()
	if f.InstallErr != nil {
		f.mu.Unlock()
		return f.InstallErr
	}

	f.files[path] = append([]byte(nil), content...)
	onInstall := f.OnInstall
	f.mu.Unlock()

	if onInstall != nil {
		onInstall(path)
	}

	return nil
}

func (f *FakeChannel) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.commands...)
}

// File returns the content installed at path.
func (f *FakeChannel) File(path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.files[path]
	return data, ok
}
