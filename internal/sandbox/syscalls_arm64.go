//go:build linux

package sandbox

import "golang.org/x/sys/unix"

const auditArch = unix.AUDIT_ARCH_AARCH64

var allowList = []uint32{
	// file I/O
	unix.SYS_OPENAT,
	unix.SYS_CLOSE,
	unix.SYS_READ,
	unix.SYS_READV,
	unix.SYS_PREAD64,
	unix.SYS_WRITE,
	unix.SYS_WRITEV,
	unix.SYS_LSEEK,
	unix.SYS_FSTAT,
	unix.SYS_NEWFSTATAT,
	unix.SYS_FCNTL,
	unix.SYS_IOCTL,
	unix.SYS_GETDENTS64,

	// memory
	unix.SYS_MMAP,
	unix.SYS_MUNMAP,
	unix.SYS_MADVISE,
	unix.SYS_MREMAP,
	unix.SYS_MPROTECT,
	unix.SYS_BRK,

	// time
	unix.SYS_CLOCK_GETTIME,
	unix.SYS_GETTIMEOFDAY,
	unix.SYS_NANOSLEEP,
	unix.SYS_CLOCK_NANOSLEEP,

	// runtime scheduler, threads and signals
	unix.SYS_FUTEX,
	unix.SYS_SCHED_YIELD,
	unix.SYS_SCHED_GETAFFINITY,
	unix.SYS_CLONE,
	unix.SYS_CLONE3,
	unix.SYS_GETTID,
	unix.SYS_GETPID,
	unix.SYS_TGKILL,
	unix.SYS_RT_SIGACTION,
	unix.SYS_RT_SIGPROCMASK,
	unix.SYS_RT_SIGRETURN,
	unix.SYS_SIGALTSTACK,
	unix.SYS_EPOLL_CREATE1,
	unix.SYS_EPOLL_CTL,
	unix.SYS_EPOLL_PWAIT,
	unix.SYS_EVENTFD2,
	unix.SYS_PIPE2,
	unix.SYS_GETRANDOM,

	// threads started by the C library when cgo is linked
	unix.SYS_SET_ROBUST_LIST,
	unix.SYS_RSEQ,

	// exit
	unix.SYS_EXIT,
	unix.SYS_EXIT_GROUP,
}
