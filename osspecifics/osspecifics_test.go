package osspecifics

import (
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSupportedHost(t *testing.T) {
	want := runtime.GOOS == "darwin" || runtime.GOOS == "linux"
	assert.Equal(t, want, CheckSupportedHost())
	assert.False(t, IsMacOS() && IsLinux())
}

func TestGetInvokingUserIDsWithoutSudo(t *testing.T) {
	t.Setenv("SUDO_USER", "")

	uid, gid := GetInvokingUserIDs()
	assert.Equal(t, os.Getuid(), uid)
	assert.Equal(t, os.Getgid(), gid)
}

func TestGetInvokingUserIDsUnknownSudoUser(t *testing.T) {
	t.Setenv("SUDO_USER", "no-such-user-docker-machine-nfs")

	uid, gid := GetInvokingUserIDs()
	assert.Equal(t, os.Getuid(), uid)
	assert.Equal(t, os.Getgid(), gid)
}

func TestAtoiOr(t *testing.T) {
	assert.Equal(t, 501, atoiOr("501", 0))
	assert.Equal(t, 7, atoiOr("S-1-5-21", 7))
}
