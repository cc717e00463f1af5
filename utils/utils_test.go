package utils

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapErrWithLog(t *testing.T) {
	assert.NoError(t, WrapErrWithLog(nil, "run", "some output"))

	base := errors.New("exit status 1")

	err := WrapErrWithLog(base, "run cmd", "  \n")
	require.Error(t, err)
	assert.Equal(t, "run cmd: exit status 1", err.Error())
	assert.True(t, errors.Is(err, base))

	err = WrapErrWithLog(base, "run cmd", "\x1b[31mpermission denied\x1b[0m\nsecond line\n")
	require.Error(t, err)
	assert.Equal(t, `run cmd (log: 'permission denied\nsecond line'): exit status 1`, err.Error())
}

func TestGetLogErrMsgTrimsLongLogs(t *testing.T) {
	msg := GetLogErrMsg(strings.Repeat("a", maxLogLen+10), "stderr")
	assert.True(t, strings.HasPrefix(msg, "(stderr: '[10 chars trimmed]"))
	assert.Equal(t, len("(stderr: '[10 chars trimmed]")+maxLogLen+len("')"), len(msg))
}

func TestClearUnprintableChars(t *testing.T) {
	assert.Equal(t, "abc", ClearUnprintableChars("a\x00b\tc", false))
	assert.Equal(t, "a\nb", ClearUnprintableChars("a\nb", true))
	assert.Equal(t, "ab", ClearUnprintableChars("a\nb", false))
	assert.Equal(t, "red", ClearUnprintableChars("\x1b[31mred\x1b[0m", false))
}

func TestValidations(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) bool
		in   string
		want bool
	}{
		{"machine name simple", ValidateMachineName, "default", true},
		{"machine name dotted", ValidateMachineName, "dev-1.local", true},
		{"machine name empty", ValidateMachineName, "", false},
		{"machine name space", ValidateMachineName, "my machine", false},
		{"machine name leading dash", ValidateMachineName, "-x", false},
		{"machine name marker injection", ValidateMachineName, "a #", false},
		{"mount opts default", ValidateMountOptions, "noacl,async", true},
		{"mount opts values", ValidateMountOptions, "nfsvers=3,rsize=65536,actimeo=1", true},
		{"mount opts empty", ValidateMountOptions, "", false},
		{"mount opts space", ValidateMountOptions, "noacl, async", false},
		{"mount opts shell", ValidateMountOptions, "noacl;reboot", false},
		{"export opts bsd", ValidateExportOptions, "-alldirs -mapall=501:20", true},
		{"export opts linux", ValidateExportOptions, "rw,async,no_subtree_check", true},
		{"export opts blank", ValidateExportOptions, "  ", false},
		{"export opts newline", ValidateExportOptions, "-alldirs\n/etc", false},
		{"export opts comment", ValidateExportOptions, "-alldirs # x", false},
		{"folder path plain", ValidateSharedFolderPath, "/Users/me/My Projects", true},
		{"folder path newline", ValidateSharedFolderPath, "/tmp/x\n/ *(rw)", false},
		{"folder path quote", ValidateSharedFolderPath, `/tmp/a"b`, false},
	}

	for _, tt := range tests {
		test := tt
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, test.fn(test.in))
		})
	}
}

func TestIDMapOptions(t *testing.T) {
	assert.Equal(t, "-mapall=501:20", MapAllOption(501, 20))
	assert.Equal(t, "-mapall=-2:-2", MapAllOption(int32(-2), int32(-2)))
	assert.Equal(t, "anonuid=1000,anongid=1000", AnonIDOptions(1000, 1000))
}

func TestHostPort(t *testing.T) {
	assert.Equal(t, "127.0.0.1:2222", HostPort("127.0.0.1", uint16(2222)))
	assert.Equal(t, "[::1]:22", HostPort("::1", uint16(22)))
}

func TestIPv4NetworkPrefix(t *testing.T) {
	prefix, err := IPv4NetworkPrefix(net.ParseIP("192.168.99.100"))
	require.NoError(t, err)
	assert.Equal(t, "192.168.99", prefix)

	_, err = IPv4NetworkPrefix(net.ParseIP("fe80::1"))
	assert.Error(t, err)

	assert.True(t, IsIPv4IP(net.ParseIP("10.0.0.1")))
	assert.False(t, IsIPv4IP(net.ParseIP("::1")))
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
}
