//go:build linux

// Package sandbox confines the process to a fixed set of system calls before
// any untrusted input is read.
//
// The filter is a classic BPF program evaluated by the kernel's seccomp
// facility against struct seccomp_data. Calls outside the allow-list kill the
// whole process.
package sandbox

import (
	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"
)

// Offsets into struct seccomp_data
const (
	offsetNr   = 0
	offsetArch = 4
)

// Filter return values
const (
	RetAllow = unix.SECCOMP_RET_ALLOW
	RetKill  = unix.SECCOMP_RET_KILL_PROCESS
)

// Program returns the filter admitting exactly the syscall numbers in allowed
// for the given audit architecture. Any other architecture or syscall is
// answered with RetKill.
func Program(arch uint32, allowed []uint32) []bpf.Instruction {
	prog := make([]bpf.Instruction, 0, 5+2*len(allowed))
	prog = append(prog,
		bpf.LoadAbsolute{Off: offsetArch, Size: 4},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: arch, SkipTrue: 1},
		bpf.RetConstant{Val: RetKill},
		bpf.LoadAbsolute{Off: offsetNr, Size: 4},
	)
	for _, nr := range allowed {
		prog = append(prog,
			bpf.JumpIf{Cond: bpf.JumpEqual, Val: nr, SkipFalse: 1},
			bpf.RetConstant{Val: RetAllow},
		)
	}
	return append(prog, bpf.RetConstant{Val: RetKill})
}

// Assemble converts a filter program into the kernel's sock_filter layout.
func Assemble(prog []bpf.Instruction) ([]unix.SockFilter, error) {
	raw, err := bpf.Assemble(prog)
	if err != nil {
		return nil, err
	}
	filter := make([]unix.SockFilter, len(raw))
	for i, ins := range raw {
		filter[i] = unix.SockFilter{Code: ins.Op, Jt: ins.Jt, Jf: ins.Jf, K: ins.K}
	}
	return filter, nil
}
