package verify

import (
	"context"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"github.com/machinenfs/docker-machine-nfs/exports"
	"github.com/machinenfs/docker-machine-nfs/guest/guesttest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))

var (
	testHostIP  = net.ParseIP("192.168.56.1")
	testFolders = []exports.SharedFolder{
		{Path: "/Users", HostPath: "/Users"},
		{Path: "/opt", HostPath: "/opt"},
	}
)

const (
	tableNoNFS   = "tmpfs on / type tmpfs (rw,relatime)\nvboxsf on /Users type vboxsf (rw)\n"
	tablePartial = tableNoNFS + "192.168.56.1:/Users on /Users type nfs (rw,vers=3)\n"
	tableFull    = tablePartial + "192.168.56.1:/opt on /opt type nfs (rw,vers=3)\n"
)

type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return nil
}

func TestWaitGivesUpAfterAttempts(t *testing.T) {
	ch := guesttest.NewFakeChannel().On(mountTableCmd, guesttest.Response{Stdout: tableNoNFS})
	rec := &sleepRecorder{}

	attempts, err := NewVerifier(testLogger, ch, 10, time.Second, rec.sleep).Wait(context.Background(), testHostIP, testFolders)
	assert.ErrorIs(t, err, ErrMountTimeout)
	assert.Equal(t, 10, attempts)
	assert.Len(t, ch.Commands(), 10)
	assert.Len(t, rec.calls, 9)
	for _, d := range rec.calls {
		assert.Equal(t, time.Second, d)
	}
}

func TestWaitStopsWhenMounted(t *testing.T) {
	ch := guesttest.NewFakeChannel().On(mountTableCmd,
		guesttest.Response{Err: errors.New("connection refused")},
		guesttest.Response{Stdout: tablePartial},
		guesttest.Response{Stdout: tableFull},
	)
	rec := &sleepRecorder{}

	attempts, err := NewVerifier(testLogger, ch, 10, time.Second, rec.sleep).Wait(context.Background(), testHostIP, testFolders)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Len(t, ch.Commands(), 3)
	assert.Len(t, rec.calls, 2)
}

func TestWaitContextCanceled(t *testing.T) {
	ch := guesttest.NewFakeChannel().On(mountTableCmd, guesttest.Response{Stdout: tableNoNFS})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewVerifier(testLogger, ch, 10, time.Second, func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	}).Wait(ctx, testHostIP, testFolders)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, ch.Commands(), 1)
}

func TestMissingMounts(t *testing.T) {
	assert.Equal(t, testFolders, MissingMounts(tableNoNFS, testHostIP, testFolders))
	assert.Equal(t, testFolders[1:], MissingMounts(tablePartial, testHostIP, testFolders))
	assert.Empty(t, MissingMounts(tableFull, testHostIP, testFolders))

	// Mounted from another host IP does not count.
	assert.Len(t, MissingMounts(tableFull, net.ParseIP("10.0.0.1"), testFolders), 2)
}

func TestAllNFSMounted(t *testing.T) {
	assert.False(t, AllNFSMounted(tableNoNFS, testHostIP, testFolders))
	assert.False(t, AllNFSMounted(tablePartial, testHostIP, testFolders))
	assert.True(t, AllNFSMounted(tableFull, testHostIP, testFolders))
	assert.False(t, AllNFSMounted(tableFull, testHostIP, nil))

	// A mount served from another host IP is stale.
	assert.False(t, AllNFSMounted(tableFull, net.ParseIP("192.168.57.1"), testFolders))
	assert.True(t, AllNFSMounted("10.0.0.1:/Users on /Users type nfs (rw)\n", net.ParseIP("10.0.0.1"), testFolders[:1]))
}
