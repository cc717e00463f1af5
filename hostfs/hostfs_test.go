package hostfs

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/machinenfs/docker-machine-nfs/hostexec/hostexectest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFiles() *HostFiles {
	return NewHostFiles(slog.New(slog.NewTextHandler(os.Stderr, nil)), hostexectest.NewFakeRunner())
}

func TestReadFileMissing(t *testing.T) {
	_, err := newTestFiles().ReadFile(context.Background(), filepath.Join(t.TempDir(), "exports"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteFileKeepsMode(t *testing.T) {
	hf := newTestFiles()
	path := filepath.Join(t.TempDir(), "exports")

	require.NoError(t, hf.WriteFile(context.Background(), path, []byte("first\n")))
	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), stat.Mode().Perm())

	require.NoError(t, os.Chmod(path, 0o600))
	require.NoError(t, hf.WriteFile(context.Background(), path, []byte("second\n")))

	data, err := hf.ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))

	stat, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), stat.Mode().Perm())
}

func TestCopyFileAndExists(t *testing.T) {
	hf := newTestFiles()
	dir := t.TempDir()
	src, dst := filepath.Join(dir, "nfs.conf"), filepath.Join(dir, "nfs.conf.bak")

	require.NoError(t, os.WriteFile(src, []byte("nfs.server.verbose = 1\n"), 0o644))

	exists, err := hf.Exists(dst)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, hf.CopyFile(context.Background(), src, dst))

	exists, err = hf.Exists(dst)
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "nfs.server.verbose = 1\n", string(data))
}
