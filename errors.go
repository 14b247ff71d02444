// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reader

import "fmt"

// ProcessNotFoundError is a Setup error (§7): pid does not name a
// running process.
type ProcessNotFoundError struct {
	Pid int
}

func (e *ProcessNotFoundError) Error() string {
	return fmt.Sprintf("process %d not found", e.Pid)
}

// PermissionDeniedError is a Setup error: pid exists but this process
// lacks the OS capability needed to attach to it. Fatal at New; no
// further calls are attempted (§7 scenario 6).
type PermissionDeniedError struct {
	Pid   int
	Cause error
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied attaching to process %d: %v", e.Pid, e.Cause)
}

func (e *PermissionDeniedError) Unwrap() error { return e.Cause }

// PlatformUnsupportedError is a Setup error: this OS has no supported
// memory-read primitive for attaching to pid at all.
type PlatformUnsupportedError struct{}

func (e *PlatformUnsupportedError) Error() string {
	return "reader: this platform has no supported memory-read primitive"
}

// RuntimeNotFoundError is a Setup error: neither M-RT's nor A-RT's
// signature was found in the target's address space.
type RuntimeNotFoundError struct{}

func (e *RuntimeNotFoundError) Error() string { return "no managed runtime found in target process" }

// UnknownVersionError is a Setup error: the runtime was found but no
// OffsetProfile matches closely enough to trust.
type UnknownVersionError struct {
	Runtime string
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("%s: version could not be resolved to a known offset profile", e.Runtime)
}

// FaultedError wraps the error that moved a Process into the Faulted
// state; ReadPath, TypeFields, ReadClass, ReadGenericInstance and
// ReadDictionary return it from then on until the Process is recreated
// (§4.10). ListAssemblies and ListTypes have no error result and do not
// check the state.
type FaultedError struct {
	Cause error
}

func (e *FaultedError) Error() string { return fmt.Sprintf("process faulted: %v", e.Cause) }
func (e *FaultedError) Unwrap() error { return e.Cause }

// DisposedError is returned by ReadPath, TypeFields, ReadClass,
// ReadGenericInstance and ReadDictionary when called after Close.
type DisposedError struct{}

func (e *DisposedError) Error() string { return "process: already disposed" }
