// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package primitive interprets byte spans read through rawreader.Reader
// as scalars, pointers, NUL-terminated ASCII strings, and the runtime's
// length-prefixed UTF-16 managed strings (§4.2). It is the only layer
// above rawreader allowed to issue reads; everything above calls through
// here.
package primitive

import (
	"encoding/binary"
	"math"
	"unicode/utf16"

	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

const (
	asciiCap  = 1024  // §4.2 read_ascii cap
	stringCap = 10000 // §4.2 read_managed_string cap
)

// Decoder wraps a rawreader.Reader with the scalar/string decoding
// operations every upper component depends on. All reads are
// little-endian, per §4.2.
type Decoder struct {
	r       rawreader.Reader
	ptrSize int64
}

// New returns a Decoder reading through r. ptrSize is 8 for every target
// this decoder supports (§3 Process.arch is always 64-bit).
func New(r rawreader.Reader, ptrSize int64) *Decoder {
	return &Decoder{r: r, ptrSize: ptrSize}
}

// PtrSize returns the size in bytes of a pointer in the target.
func (d *Decoder) PtrSize() int64 { return d.ptrSize }

func (d *Decoder) readN(addr rawreader.Address, n int) []byte {
	buf := make([]byte, n)
	d.r.Read(addr, buf)
	return buf
}

func (d *Decoder) ReadU8(addr rawreader.Address) uint8 {
	return d.readN(addr, 1)[0]
}

func (d *Decoder) ReadI8(addr rawreader.Address) int8 {
	return int8(d.ReadU8(addr))
}

func (d *Decoder) ReadU16(addr rawreader.Address) uint16 {
	return binary.LittleEndian.Uint16(d.readN(addr, 2))
}

func (d *Decoder) ReadI16(addr rawreader.Address) int16 {
	return int16(d.ReadU16(addr))
}

func (d *Decoder) ReadU32(addr rawreader.Address) uint32 {
	return binary.LittleEndian.Uint32(d.readN(addr, 4))
}

func (d *Decoder) ReadI32(addr rawreader.Address) int32 {
	return int32(d.ReadU32(addr))
}

func (d *Decoder) ReadU64(addr rawreader.Address) uint64 {
	return binary.LittleEndian.Uint64(d.readN(addr, 8))
}

func (d *Decoder) ReadI64(addr rawreader.Address) int64 {
	return int64(d.ReadU64(addr))
}

func (d *Decoder) ReadF32(addr rawreader.Address) float32 {
	return math.Float32frombits(d.ReadU32(addr))
}

func (d *Decoder) ReadF64(addr rawreader.Address) float64 {
	return math.Float64frombits(d.ReadU64(addr))
}

// ReadPtr reads a machine-word pointer at addr.
func (d *Decoder) ReadPtr(addr rawreader.Address) rawreader.Address {
	if d.ptrSize == 4 {
		return rawreader.Address(d.ReadU32(addr))
	}
	return rawreader.Address(d.ReadU64(addr))
}

// ReadAscii reads up to asciiCap bytes until the first NUL. It returns
// false if addr fails the low guard before any byte is read.
func (d *Decoder) ReadAscii(addr rawreader.Address) (string, bool) {
	if !addr.Valid() {
		return "", false
	}
	buf := make([]byte, 0, 64)
	for i := 0; i < asciiCap; i++ {
		b := d.ReadU8(addr.Add(int64(i)))
		if b == 0 {
			return string(buf), true
		}
		buf = append(buf, b)
	}
	return string(buf), true
}

// ReadManagedString reads the runtime's UTF-16 managed string layout: a
// 32-bit length at offset lenOff, characters at offset charsOff, both
// relative to addr. Lengths above stringCap are rejected. Malformed
// UTF-16 yields ok=false.
func (d *Decoder) ReadManagedString(addr rawreader.Address, lenOff, charsOff int64) (string, bool) {
	if !addr.Valid() {
		return "", false
	}
	n := d.ReadU32(addr.Add(lenOff))
	if n > stringCap {
		return "", false
	}
	if n == 0 {
		return "", true
	}
	units := make([]uint16, n)
	base := addr.Add(charsOff)
	for i := uint32(0); i < n; i++ {
		units[i] = d.ReadU16(base.Add(int64(i) * 2))
	}
	return string(utf16.Decode(units)), true
}
