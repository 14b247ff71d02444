package rawreader

import "fmt"

// PermissionDeniedError is returned from Open when the caller lacks the
// OS capability needed to attach to pid (missing entitlement on macOS,
// insufficient privilege on Windows). It is surfaced once at init and
// never retried (§4.1).
type PermissionDeniedError struct {
	Pid   int
	Cause error
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied attaching to pid %d: %v", e.Pid, e.Cause)
}

func (e *PermissionDeniedError) Unwrap() error { return e.Cause }

// PlatformUnsupportedError is returned from Open on any OS for which
// neither the task-port nor the handle reader applies.
type PlatformUnsupportedError struct{}

func (e *PlatformUnsupportedError) Error() string {
	return "rawreader: this platform has no supported memory-read primitive"
}
