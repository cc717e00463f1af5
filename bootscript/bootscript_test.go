package bootscript

import (
	"context"
	"log/slog"
	"net"
	"os"
	"testing"

	"github.com/machinenfs/docker-machine-nfs/exports"
	"github.com/machinenfs/docker-machine-nfs/guest/guesttest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func TestRender(t *testing.T) {
	script := Render(Params{
		DefaultMountPoint: "/Users",
		HostIP:            net.ParseIP("192.168.56.1"),
		Folders: []exports.SharedFolder{
			{Path: "/Users", HostPath: "/System/Volumes/Data/Users"},
			{Path: "/opt/my src", HostPath: "/opt/my src"},
		},
		MountOptions: "noacl,async",
	})

	assert.Equal(t, `#!/bin/sh
sudo umount /Users
sudo mkdir -p /Users
sudo mkdir -p '/opt/my src'
sudo /usr/local/etc/init.d/nfs-client start
sudo mount -t nfs -o noacl,async 192.168.56.1:/System/Volumes/Data/Users /Users
sudo mount -t nfs -o noacl,async '192.168.56.1:/opt/my src' '/opt/my src'
`, script)
}

func TestMountSource(t *testing.T) {
	assert.Equal(t, "10.211.55.2:/home", MountSource(net.ParseIP("10.211.55.2"), exports.SharedFolder{Path: "/home", HostPath: "/home"}))
}

type fakeRestarter struct {
	restarted []string
	err       error
}

func (r *fakeRestarter) Restart(_ context.Context, machineName string) error {
	r.restarted = append(r.restarted, machineName)
	return r.err
}

func TestInstallerInstallsThenRestarts(t *testing.T) {
	ch := guesttest.NewFakeChannel()
	restarter := &fakeRestarter{}

	var installedBeforeRestart bool
	ch.OnInstall = func(string) {
		installedBeforeRestart = len(restarter.restarted) == 0
	}

	err := NewInstaller(testLogger, ch, restarter, "/var/lib/boot2docker/bootlocal.sh").Install(context.Background(), "test", "#!/bin/sh\n")
	require.NoError(t, err)

	data, ok := ch.File("/var/lib/boot2docker/bootlocal.sh")
	require.True(t, ok)
	assert.Equal(t, "#!/bin/sh\n", string(data))
	assert.True(t, installedBeforeRestart)
	assert.Equal(t, []string{"test"}, restarter.restarted)
}

func TestInstallerDoesNotRestartOnInstallFailure(t *testing.T) {
	ch := guesttest.NewFakeChannel()
	ch.InstallErr = errors.New("read-only file system")
	restarter := &fakeRestarter{}

	err := NewInstaller(testLogger, ch, restarter, "/x").Install(context.Background(), "test", "#!/bin/sh\n")
	require.Error(t, err)
	assert.Empty(t, restarter.restarted)
}
