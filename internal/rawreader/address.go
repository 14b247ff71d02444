// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rawreader implements the lowest layer of the decoder: reading
// raw bytes out of the address space of a remote, live process. Nothing
// above this package is allowed to issue an OS-level read; every other
// component composes on top of Reader.
package rawreader

import "fmt"

// Address is an opaque machine-word-sized identifier into the target
// process's address space. It is always untrusted: nothing guarantees
// it points at mapped, readable, or even sane memory.
type Address uint64

func (a Address) String() string {
	return fmt.Sprintf("%#x", uint64(a))
}

// Add returns a + off, where off may be negative.
func (a Address) Add(off int64) Address {
	return Address(int64(a) + off)
}

// Sub returns a - b.
func (a Address) Sub(b Address) int64 {
	return int64(a) - int64(b)
}

// LowGuard is the platform-independent floor below which no address is
// ever dereferenced. It is deliberately generous: the first 64KiB of a
// process's address space is never mapped on any of the platforms this
// package targets, so any pointer value below it is corrupt metadata or
// an unset/zero field, not a legitimate heap address.
const LowGuard Address = 0x10000

// Valid reports whether a clears the low-guard. It does not imply a is
// actually mapped — only Reader.Read can determine that.
func (a Address) Valid() bool {
	return a >= LowGuard
}
