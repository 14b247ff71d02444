package rawreader

import "sync"

// Reader is the OS-specific primitive: read n bytes at an address in a
// target process. On failure it returns a zero-filled buffer of the
// requested length and records the failure locally; callers must not
// treat an all-zero result as success without corroboration (§4.1).
//
// Implementations are pinned to a single target process for their
// entire lifetime. Close releases whatever OS resource (task port,
// process handle) backs the reader.
type Reader interface {
	// Read copies len(buf) bytes starting at addr into buf. It never
	// returns an error to the caller: a failed read zero-fills buf and
	// is recorded via LastError/FailureCount instead, per §4.1's soft-
	// failure policy (§7).
	Read(addr Address, buf []byte)

	// LastError returns the most recently recorded read failure, or nil.
	LastError() error

	// FailureCount returns the number of reads that have failed so far.
	FailureCount() int64

	// Close releases the OS resource backing the reader.
	Close() error
}

// Open acquires a Reader for pid using whatever primitive this platform
// supports. It returns PermissionDenied if the caller lacks the
// necessary OS capability, or PlatformUnsupported on platforms with no
// implementation. This is the only entry point upper layers should use;
// it is reported once at init and never retried (§4.1, §4.10).
func Open(pid int) (Reader, error) {
	return open(pid)
}

// base provides the shared bookkeeping (failure recording, low-guard
// enforcement) that both platform readers embed.
type base struct {
	mu      sync.Mutex
	lastErr error
	nFail   int64
}

func (b *base) recordFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastErr = err
	b.nFail++
}

func (b *base) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

func (b *base) FailureCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nFail
}

// guardedRead is a helper platform implementations use to enforce the
// low-guard invariant before issuing any OS call.
func guardedRead(b *base, addr Address, buf []byte, osRead func(Address, []byte) error) {
	for i := range buf {
		buf[i] = 0
	}
	if !addr.Valid() {
		b.recordFailure(errLowGuard(addr))
		return
	}
	if err := osRead(addr, buf); err != nil {
		for i := range buf {
			buf[i] = 0
		}
		b.recordFailure(err)
	}
}

func errLowGuard(addr Address) error {
	return &LowGuardError{Addr: addr}
}

// LowGuardError is recorded when a caller attempts to read below LowGuard.
type LowGuardError struct {
	Addr Address
}

func (e *LowGuardError) Error() string {
	return "rawreader: address " + e.Addr.String() + " is below the low guard"
}
