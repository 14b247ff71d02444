//go:build darwin

package rawreader

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mach trap numbers used to acquire and read through a task port. These
// are Mach RPCs, not BSD syscalls, so golang.org/x/sys/unix does not wrap
// them; we invoke them directly the same way x/sys/unix does internally
// for traps it hasn't wrapped yet.
const (
	machTaskSelfTrap      = 28
	machTaskForPidTrap    = 45
	machVMReadOverwrite   = 29
	machPortDeallocate    = 46
)

// taskPortReader is the Task-port reader of §4.1: one port acquired at
// init, one mach_vm_read_overwrite-style call per Read.
type taskPortReader struct {
	base
	pid  int
	task uintptr // mach task port for pid
}

func open(pid int) (Reader, error) {
	task, err := taskForPid(pid)
	if err != nil {
		return nil, &PermissionDeniedError{Pid: pid, Cause: err}
	}
	return &taskPortReader{pid: pid, task: task}, nil
}

func machTaskSelf() uintptr {
	self, _, _ := unix.Syscall(machTaskSelfTrap, 0, 0, 0)
	return self
}

func taskForPid(pid int) (uintptr, error) {
	var task uintptr
	r1, _, errno := unix.Syscall(machTaskForPidTrap, machTaskSelf(), uintptr(pid), uintptr(unsafe.Pointer(&task)))
	if r1 != 0 || errno != 0 {
		return 0, fmt.Errorf("task_for_pid(%d): kern_return_t=%d errno=%v (requires task_for_pid-allow entitlement or root)", pid, r1, errno)
	}
	return task, nil
}

func (r *taskPortReader) Read(addr Address, buf []byte) {
	guardedRead(&r.base, addr, buf, r.osRead)
}

func (r *taskPortReader) osRead(addr Address, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	var outsize uintptr
	r1, _, errno := unix.Syscall6(machVMReadOverwrite,
		r.task, uintptr(addr), uintptr(len(buf)),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&outsize)), 0)
	if r1 != 0 || errno != 0 {
		return fmt.Errorf("mach_vm_read_overwrite(%s, %d): kern_return_t=%d errno=%v", addr, len(buf), r1, errno)
	}
	if outsize != uintptr(len(buf)) {
		return fmt.Errorf("mach_vm_read_overwrite(%s, %d): short read (%d bytes)", addr, len(buf), outsize)
	}
	return nil
}

func (r *taskPortReader) Close() error {
	// Mach ports are reference counted; explicitly deallocate ours for
	// prompt cleanup rather than waiting on process exit.
	unix.Syscall(machPortDeallocate, machTaskSelf(), r.task, 0)
	return nil
}
