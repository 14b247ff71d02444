//go:build windows

package rawreader

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// handleReader is the Handle reader of §4.1: a typed read per scalar
// over a process handle pinned to the Process for its lifetime.
type handleReader struct {
	base
	pid    int
	handle windows.Handle
}

func open(pid int) (Reader, error) {
	h, err := windows.OpenProcess(windows.PROCESS_VM_READ|windows.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return nil, &PermissionDeniedError{Pid: pid, Cause: err}
	}
	return &handleReader{pid: pid, handle: h}, nil
}

func (r *handleReader) Read(addr Address, buf []byte) {
	guardedRead(&r.base, addr, buf, r.osRead)
}

func (r *handleReader) osRead(addr Address, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	var nRead uintptr
	err := windows.ReadProcessMemory(r.handle, uintptr(addr), &buf[0], uintptr(len(buf)), &nRead)
	if err != nil {
		return fmt.Errorf("ReadProcessMemory(%s, %d): %w", addr, len(buf), err)
	}
	if nRead != uintptr(len(buf)) {
		return fmt.Errorf("ReadProcessMemory(%s, %d): short read (%d bytes)", addr, len(buf), nRead)
	}
	return nil
}

func (r *handleReader) Close() error {
	return windows.CloseHandle(r.handle)
}
