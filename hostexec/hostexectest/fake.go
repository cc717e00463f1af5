// Package hostexectest provides a scripted hostexec.Runner for tests.
package hostexectest

import (
	"context"
	"fmt"
	"sync"

	"github.com/machinenfs/docker-machine-nfs/hostexec"
)

type Response struct {
	Stdout string
	Err    error
}

// FakeRunner answers commands by their String() form. Unknown commands fail.
// A command with several queued responses consumes them in order and keeps
// repeating the last one.
type FakeRunner struct {
	mu sync.Mutex

	responses map[string][]Response
	calls     []hostexec.Cmd
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		responses: make(map[string][]Response),
	}
}

func (f *FakeRunner) On(cmd string, stdout string) *FakeRunner {
	return f.OnResponse(cmd, Response{Stdout: stdout})
}

func (f *FakeRunner) OnErr(cmd string, err error) *FakeRunner {
	return f.OnResponse(cmd, Response{Err: err})
}

func (f *FakeRunner) OnResponse(cmd string, resp ...Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.responses[cmd] = append(f.responses[cmd], resp...)

	return f
}

func (f *FakeRunner) Run(_ context.Context, c hostexec.Cmd) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, c)

	key := c.String()
	queue, ok := f.responses[key]
	if !ok || len(queue) == 0 {
		return nil, fmt.Errorf("unexpected command '%v'", key)
	}

	resp := queue[0]
	if len(queue) > 1 {
		f.responses[key] = queue[1:]
	}

	return []byte(resp.Stdout), resp.Err
}

func (f *FakeRunner) Calls() []hostexec.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	ret := make([]hostexec.Cmd, len(f.calls))
	copy(ret, f.calls)

	return ret
}

// CallStrings returns the String() form of every recorded call.
func (f *FakeRunner) CallStrings() []string {
	var ret []string
	for _, c := range f.Calls() {
		ret = append(ret, c.String())
	}

	return ret
}

func (f *FakeRunner) Called(cmd string) bool {
	for _, c := range f.CallStrings() {
		if c == cmd {
			return true
		}
	}

	return false
}
