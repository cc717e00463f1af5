package guest

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/machinenfs/docker-machine-nfs/hostexec/hostexectest"
	"github.com/machinenfs/docker-machine-nfs/machine"
	"github.com/machinenfs/docker-machine-nfs/sshutil/sshutiltest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func TestInstallCmd(t *testing.T) {
	assert.Equal(t,
		"sudo tee /var/lib/boot2docker/bootlocal.sh > /dev/null && sudo chmod +x /var/lib/boot2docker/bootlocal.sh && sync",
		InstallCmd("/var/lib/boot2docker/bootlocal.sh"))
	assert.Equal(t,
		"sudo tee '/tmp/my script.sh' > /dev/null && sudo chmod +x '/tmp/my script.sh' && sync",
		InstallCmd("/tmp/my script.sh"))
}

func TestCLIChannel(t *testing.T) {
	client := machine.NewClient(testLogger, nil)
	installCmd := client.SSHCmd("test", InstallCmd("/var/lib/boot2docker/bootlocal.sh")).String()

	runner := hostexectest.NewFakeRunner().
		On(client.SSHCmd("test", "mount").String(), "tmpfs on / type tmpfs (rw)\n").
		On(installCmd, "")

	ch := NewCLIChannel(testLogger, machine.NewClient(testLogger, runner), "test")

	out, err := ch.Run(context.Background(), "mount")
	require.NoError(t, err)
	assert.Equal(t, "tmpfs on / type tmpfs (rw)\n", string(out))

	require.NoError(t, ch.InstallFile(context.Background(), "/var/lib/boot2docker/bootlocal.sh", []byte("#!/bin/sh\n")))

	calls := runner.Calls()
	require.Len(t, calls, 2)
	assert.Nil(t, calls[0].Stdin)
	assert.Equal(t, []byte("#!/bin/sh\n"), calls[1].Stdin)
}

func TestCLIChannelInstallError(t *testing.T) {
	client := machine.NewClient(testLogger, nil)
	runner := hostexectest.NewFakeRunner().
		OnErr(client.SSHCmd("test", InstallCmd("/x")).String(), errors.New("exit status 1"))

	err := NewCLIChannel(testLogger, machine.NewClient(testLogger, runner), "test").InstallFile(context.Background(), "/x", []byte("y"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipe file into guest")
}

func TestSSHChannelRun(t *testing.T) {
	srv := sshutiltest.NewServer(t, func(cmd string, _ io.Reader, stdout io.Writer, _ io.Writer) uint32 {
		if cmd != "mount" {
			return 127
		}

		_, _ = io.WriteString(stdout, "192.168.56.1:/Users on /Users type nfs (rw)\n")
		return 0
	})

	ch, err := NewSSHChannel(testLogger, machine.SSHDetails{
		Host:    srv.Host,
		Port:    srv.Port,
		User:    srv.User,
		KeyPath: srv.KeyPath,
	}, time.Second*5)
	require.NoError(t, err)

	// Each call dials again, as the machine restarts in between.
	for i := 0; i < 2; i++ {
		out, err := ch.Run(context.Background(), "mount")
		require.NoError(t, err)
		assert.Contains(t, string(out), "192.168.56.1:/Users on /Users")
	}

	_, err = ch.Run(context.Background(), "reboot")
	assert.Error(t, err)
}

func TestNewSSHChannelMissingKey(t *testing.T) {
	_, err := NewSSHChannel(testLogger, machine.SSHDetails{
		Host:    "127.0.0.1",
		Port:    22,
		User:    "docker",
		KeyPath: filepath.Join(t.TempDir(), "id_rsa"),
	}, 0)
	assert.Error(t, err)
}

// scpSink acknowledges a single "scp -qt" upload and discards the content.
func scpSink(stdin io.Reader, stdout io.Writer) uint32 {
	r := bufio.NewReader(stdin)

	header, err := r.ReadString('\n')
	if err != nil || !strings.HasPrefix(header, "C") {
		return 1
	}

	fields := strings.Fields(header)
	if len(fields) != 3 {
		return 1
	}

	size, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 1
	}
	_, _ = stdout.Write([]byte{0})

	_, err = io.CopyN(io.Discard, r, size+1)
	if err != nil {
		return 1
	}
	_, _ = stdout.Write([]byte{0})

	return 0
}

func TestSSHChannelInstallFileCleansUpStagingOnMoveFailure(t *testing.T) {
	srv := sshutiltest.NewServer(t, func(cmd string, stdin io.Reader, stdout io.Writer, stderr io.Writer) uint32 {
		switch {
		case strings.HasPrefix(cmd, "scp -qt "):
			return scpSink(stdin, stdout)
		case strings.HasPrefix(cmd, "sudo mv "):
			_, _ = io.WriteString(stderr, "mv: cannot move: Read-only file system\n")
			return 1
		case strings.HasPrefix(cmd, "rm -f "):
			return 0
		default:
			return 127
		}
	})

	ch, err := NewSSHChannel(testLogger, machine.SSHDetails{
		Host:    srv.Host,
		Port:    srv.Port,
		User:    srv.User,
		KeyPath: srv.KeyPath,
	}, time.Second*5)
	require.NoError(t, err)

	err = ch.InstallFile(context.Background(), "/var/lib/boot2docker/bootlocal.sh", []byte("#!/bin/sh\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "move staged file into place")

	cmds := srv.Commands()
	require.Len(t, cmds, 3)

	mvFields := strings.Fields(cmds[1])
	require.GreaterOrEqual(t, len(mvFields), 3)
	stagingPath := mvFields[2]
	assert.True(t, strings.HasPrefix(stagingPath, "/tmp/docker-machine-nfs-"))
	assert.Contains(t, cmds[0], stagingPath)
	assert.Equal(t, "rm -f "+stagingPath, cmds[2])
}
