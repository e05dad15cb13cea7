//go:build !nosandbox && (!linux || !(amd64 || arm64))

package sandbox

import (
	"fmt"
	"runtime"
)

// Enabled reports whether Install confines the process on this build.
const Enabled = false

// Install always fails on platforms without a seccomp allow-list.
func Install() error {
	return fmt.Errorf("%w: %s/%s", ErrUnsupported, runtime.GOOS, runtime.GOARCH)
}
