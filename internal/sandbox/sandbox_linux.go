//go:build linux && (amd64 || arm64) && !nosandbox

package sandbox

import (
	"fmt"
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// seccomp(2) operation, not exported by x/sys/unix
const seccompSetModeFilter = 1

// Enabled reports whether Install confines the process on this build.
const Enabled = true

// Install loads the allow-list filter for every thread of the process.
// It is irreversible; on error the caller must not continue.
func Install() error {
	filter, err := Assemble(Program(auditArch, allowList))
	if err != nil {
		return fmt.Errorf("assemble seccomp filter: %w", err)
	}
	prog := unix.SockFprog{
		Len:    uint16(len(filter)),
		Filter: &filter[0],
	}

	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return fmt.Errorf("prctl(PR_SET_NO_NEW_PRIVS): %w", err)
	}

	tid, _, errno := unix.Syscall(unix.SYS_SECCOMP,
		seccompSetModeFilter,
		unix.SECCOMP_FILTER_FLAG_TSYNC,
		uintptr(unsafe.Pointer(&prog)))
	runtime.KeepAlive(filter)
	if errno != 0 {
		return fmt.Errorf("seccomp(SECCOMP_SET_MODE_FILTER): %w", errno)
	}
	// With TSYNC a positive return names a thread that could not be synchronized
	if tid != 0 {
		return fmt.Errorf("seccomp: thread %d could not be synchronized", tid)
	}
	return nil
}
