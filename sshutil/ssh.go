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

package sshutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/machinenfs/docker-machine-nfs/utils"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

func LoadPrivateKeySigner(path string) (ssh.Signer, error) {
	key, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrap(err, "read private key")
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}

	return signer, nil
}

func RunSSHCmd(ctx context.Context, sc *ssh.Client, timeout time.Duration, cmd string) ([]byte, error) {
	return RunSSHCmdWithStdin(ctx, sc, timeout, cmd, nil)
}

// RunSSHCmdWithStdin runs cmd in a new session, feeding it stdin if it
// is not nil, and returns its stdout.
func RunSSHCmdWithStdin(ctx context.Context, sc *ssh.Client, timeout time.Duration, cmd string, stdin []byte) ([]byte, error) {
	var ret []byte
	err := NewSSHSession(ctx, timeout, sc, func(sess *ssh.Session) error {
		stdout := bytes.NewBuffer(nil)
		stderr := bytes.NewBuffer(nil)

		sess.Stdout = stdout
		sess.Stderr = stderr

		if stdin != nil {
			sess.Stdin = bytes.NewReader(stdin)
		}

		err := sess.Run(cmd)
		if err != nil {
			return utils.WrapErrWithLog(err, "run cmd", stderr.String())
		}

		ret = stdout.Bytes()

		return nil
	})

	return ret, err
}

// NewSSHSession opens a session and closes the whole connection if ctx is
// done or the timeout hits before fn returns. A zero timeout disables the
// timeout.
func NewSSHSession(ctx context.Context, timeout time.Duration, sc *ssh.Client, fn func(*ssh.Session) error) error {
	s, err := sc.NewSession()
	if err != nil {
		return errors.Wrap(err, "create new ssh session")
	}

	defer func() { _ = s.Close() }()

	done := make(chan struct{})
	defer close(done)

	var timeoutCh <-chan time.Time
	if timeout != 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timeoutCh = t.C
	}

	timedOut := make(chan struct{}, 1)

	// Start a thread to handle context cancelation and the timeout.
	go func() {
		select {
		case <-ctx.Done():
		case <-timeoutCh:
		case <-done:
			return
		}

		timedOut <- struct{}{}
		_ = sc.Close()
	}()

	err = fn(s)

	select {
	case <-timedOut:
		return fmt.Errorf("timed out (%w)", err)
	default:
	}

	return err
}
