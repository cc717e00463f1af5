package osspecifics

import "runtime"

// For some reason, `runtime` package does not provide this while
// "goconst" linter complains about us not using constants in
// expressions like `runtime.GOOS == "darwin"`. And it is
// not wrong, accidentally misspelling these OS IDs is a
// matter of time.

func IsMacOS() bool {
	return runtime.GOOS == "darwin"
}

func IsLinux() bool {
	return runtime.GOOS == "linux"
}

// CheckSupportedHost reports whether NFS exports can be managed on this host.
func CheckSupportedHost() bool {
	return IsMacOS() || IsLinux()
}
