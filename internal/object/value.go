// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package object decodes a live object's field values given its
// TypeInfo, dispatching on TypeCode the same way gocore's typeObject
// switches on Kind (§4.7). Every read is soft: a failure anywhere below
// yields Null rather than an error, consistent with rawreader's
// zero-fill-on-failure contract.
//
// ObjectDecoder never recursively expands a reference field beyond one
// level (§9 "Cyclic graphs"): decoding a Class/Object/GenericInst field
// yields a Pointer stub rather than descending into it. Only the very
// first address DecodeField is called on — the object PathEvaluator
// actually asked for — gets expanded; everything that address's own
// fields point to is stubbed. PathEvaluator is the only component that
// walks further, one explicit step at a time, via ResolveObject.
package object

import (
	"github.com/mtgatool/mtga-reader-sub000/internal/metadata"
	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

// Kind tags which arm of Value is populated.
type Kind int

const (
	KNull Kind = iota
	KBool
	KInt
	KUint
	KF32
	KF64
	KString
	KPointer
	KObject
	KArray
	KDict
)

// Value is the tagged union §3's DecodedValue describes. Exactly one
// field beyond Kind is meaningful at a time.
type Value struct {
	Kind Kind

	Bool bool
	Int  int64
	Uint uint64
	F32  float32
	F64  float64
	Str  string

	PointerAddr      rawreader.Address
	PointerClassName string

	Fields map[string]Value // KObject
	Elems  []Value          // KArray

	DictEntries     []DictEntry // KDict
	DictTruncated   bool
	DictOriginalLen int
}

// DictEntry is one live key/value pair decoded out of a managed
// dictionary's backing entry array.
type DictEntry struct {
	Key   Value
	Value Value
}

func Null() Value { return Value{Kind: KNull} }

// Decoder decodes field values given their TypeInfo.
type Decoder struct {
	Ctx *metadata.Context
}

func New(ctx *metadata.Context) *Decoder {
	return &Decoder{Ctx: ctx}
}

// managedStringLenOffset/managedStringCharsOffset are the fixed string
// layout offsets shared by both runtimes (§4.2): a 32-bit length, then
// UTF-16 code units, both measured from the string object's own start
// address, so they include the object header in front of the length.
const (
	managedStringLenOffset   = 0x10
	managedStringCharsOffset = 0x14
)

// DecodeField decodes the value stored at addr, whose static type is
// ti. If it names a reference type, the single object it points to is
// expanded one level (its own reference-typed fields are stubbed). The
// read_class(addr) entry point, which takes the object's own address
// rather than a field holding a pointer to it, is DecodeClass.
func (d *Decoder) DecodeField(addr rawreader.Address, ti metadata.TypeInfo) Value {
	return d.decode(addr, ti, true)
}

// decode is the direct analogue of gocore's typeObject dispatch
// (internal/gocore/type.go), switched on TypeCode instead of Kind. top
// is true only for the caller's original address; every nested field
// decode passes false so reference fields become Pointer stubs instead
// of being followed.
func (d *Decoder) decode(addr rawreader.Address, ti metadata.TypeInfo, top bool) Value {
	if !addr.Valid() {
		return Null()
	}
	dec := d.Ctx.Dec

	switch ti.Code {
	case metadata.End, metadata.Void:
		return Null()

	case metadata.Boolean:
		return Value{Kind: KBool, Bool: dec.ReadU8(addr) != 0}

	case metadata.Char:
		return Value{Kind: KUint, Uint: uint64(dec.ReadU16(addr))}

	case metadata.I1:
		return Value{Kind: KInt, Int: int64(dec.ReadI8(addr))}
	case metadata.U1:
		return Value{Kind: KUint, Uint: uint64(dec.ReadU8(addr))}
	case metadata.I2:
		return Value{Kind: KInt, Int: int64(dec.ReadI16(addr))}
	case metadata.U2:
		return Value{Kind: KUint, Uint: uint64(dec.ReadU16(addr))}
	case metadata.I4:
		return Value{Kind: KInt, Int: int64(dec.ReadI32(addr))}
	case metadata.U4:
		return Value{Kind: KUint, Uint: uint64(dec.ReadU32(addr))}
	case metadata.I8:
		return Value{Kind: KInt, Int: dec.ReadI64(addr)}
	case metadata.U8:
		return Value{Kind: KUint, Uint: dec.ReadU64(addr)}
	case metadata.I, metadata.Ptr, metadata.FnPtr:
		if dec.PtrSize() == 4 {
			return Value{Kind: KInt, Int: int64(int32(dec.ReadU32(addr)))}
		}
		return Value{Kind: KInt, Int: dec.ReadI64(addr)}
	case metadata.U:
		return Value{Kind: KUint, Uint: uint64(dec.ReadPtr(addr))}

	case metadata.R4:
		return Value{Kind: KF32, F32: dec.ReadF32(addr)}
	case metadata.R8:
		return Value{Kind: KF64, F64: dec.ReadF64(addr)}

	case metadata.String:
		strPtr := dec.ReadPtr(addr)
		if !strPtr.Valid() {
			return Null()
		}
		s, ok := dec.ReadManagedString(strPtr, managedStringLenOffset, managedStringCharsOffset)
		if !ok {
			return Null()
		}
		return Value{Kind: KString, Str: s}

	case metadata.Enum:
		return d.decode(addr, metadata.TypeInfo{Code: metadata.I4}, top)

	case metadata.ValueType:
		return d.decodeValueType(addr, ti)

	case metadata.Class, metadata.Object, metadata.GenericInst:
		ptr := dec.ReadPtr(addr)
		if !ptr.Valid() {
			return Null()
		}
		if !top {
			return d.pointerStub(ptr)
		}
		return d.decodeClassPointer(ptr)

	case metadata.SzArray, metadata.Array:
		return d.decodeArray(dec.ReadPtr(addr), ti)

	case metadata.Var, metadata.MVar:
		if len(ti.GenericArgs) > 0 {
			return d.decode(addr, ti.GenericArgs[0], top)
		}
		return Null()

	default:
		return Null()
	}
}

// ResolveObject dereferences a field's value down to an addressable
// struct base plus its dynamic TypeDef, without decoding any of its
// fields — the lazy counterpart to decodeObjectFields, used by the path
// evaluator to step through a chain one field at a time instead of
// materializing the whole reachable graph up front.
func (d *Decoder) ResolveObject(addr rawreader.Address, ti metadata.TypeInfo) (rawreader.Address, *metadata.TypeDef, bool) {
	switch ti.Code {
	case metadata.ValueType:
		if !ti.Data.Valid() {
			return 0, nil, false
		}
		td, err := d.Ctx.ReadTypeDef(ti.Data)
		if err != nil {
			return 0, nil, false
		}
		return addr, td, true

	case metadata.Class, metadata.Object, metadata.GenericInst:
		instance := d.Ctx.Dec.ReadPtr(addr)
		base, td, ok := d.resolveInstance(instance)
		return base, td, ok

	default:
		return 0, nil, false
	}
}

// DecodeClass expands the object at instance one level, the same
// expansion DecodeField performs for a Class/Object/GenericInst field —
// the `read_class(addr)`/`read_generic_instance(addr)` entry points §6
// names take an object's own address directly rather than a field that
// holds a pointer to it.
func (d *Decoder) DecodeClass(instance rawreader.Address) Value {
	return d.decodeClassPointer(instance)
}

// ResolveInstanceTypeDef resolves instance down to its addressable base
// and dynamic TypeDef without decoding any fields — the same lookup
// ResolveObject/DecodeClass use internally, exported for callers (e.g.
// read_dictionary) that need the TypeDef's GenericArgs (its key/value
// TypeInfo pair, for a Dictionary<K,V>) before invoking DecodeDict.
func (d *Decoder) ResolveInstanceTypeDef(instance rawreader.Address) (rawreader.Address, *metadata.TypeDef, bool) {
	return d.resolveInstance(instance)
}

func (d *Decoder) resolveInstance(instance rawreader.Address) (rawreader.Address, *metadata.TypeDef, bool) {
	if !instance.Valid() {
		return 0, nil, false
	}
	classAddr, ok := d.classPointer(instance)
	if !ok {
		return 0, nil, false
	}
	td, err := d.Ctx.ReadTypeDef(classAddr)
	if err != nil {
		return 0, nil, false
	}
	base := instance
	if td.IsValueType {
		base = instance.Add(valueTypePayloadAdjust * int64(d.Ctx.Dec.PtrSize()))
	}
	return base, td, true
}

// classPointer reads an object instance's class pointer (spec.md:147):
// M-RT objects carry a vtable pointer at offset 0 and the class sits one
// more indirection past it (instance -> vtable -> class); A-RT objects
// store the class pointer directly at offset 0, no vtable step.
func (d *Decoder) classPointer(instance rawreader.Address) (rawreader.Address, bool) {
	dec := d.Ctx.Dec
	if d.Ctx.Profile.Kind == offsets.ART {
		classAddr := dec.ReadPtr(instance)
		return classAddr, classAddr.Valid()
	}
	vtable := dec.ReadPtr(instance)
	if !vtable.Valid() {
		return 0, false
	}
	classAddr := dec.ReadPtr(vtable)
	return classAddr, classAddr.Valid()
}

// valueTypePayloadAdjust is the "-2*ptr_size" boxed-value-type offset
// §9 calls out as an open calibration item: a boxed value type's field
// data starts two pointer-widths past its class header.
const valueTypePayloadAdjust = -2

// decodeValueType descends into an embedded struct's fields in place
// (no indirection) — unboxed value types carry no header, so no offset
// adjustment applies here; it only applies when unboxing a Class-typed
// pointer, handled in decodeClassPointer/resolveInstance.
func (d *Decoder) decodeValueType(addr rawreader.Address, ti metadata.TypeInfo) Value {
	if !ti.Data.Valid() {
		return Null()
	}
	td, err := d.Ctx.ReadTypeDef(ti.Data)
	if err != nil {
		return Null()
	}
	return d.decodeObjectFields(addr, td)
}

// decodeClassPointer expands the one object DecodeField's caller asked
// for: ptr=read_ptr(addr), then the runtime-specific class lookup
// classPointer performs (M-RT: vtable=read_ptr(ptr), class=read_ptr(vtable);
// A-RT: class=read_ptr(ptr)).
func (d *Decoder) decodeClassPointer(instance rawreader.Address) Value {
	base, td, ok := d.resolveInstance(instance)
	if !ok {
		return Value{Kind: KPointer, PointerAddr: instance}
	}
	return d.decodeObjectFields(base, td)
}

// pointerStub renders a reference-typed field encountered one level
// below the object DecodeField was asked to expand — the cycle cut
// §9 requires.
func (d *Decoder) pointerStub(ptr rawreader.Address) Value {
	className := ""
	if classAddr, ok := d.classPointer(ptr); ok {
		if td, err := d.Ctx.ReadTypeDef(classAddr); err == nil {
			className = td.Name
		}
	}
	return Value{Kind: KPointer, PointerAddr: ptr, PointerClassName: className}
}

// decodeObjectFields decodes every non-static field of td at base into
// a KObject value. Every field decode passes top=false: one expansion
// per DecodeField/ResolveObject call is the limit.
func (d *Decoder) decodeObjectFields(base rawreader.Address, td *metadata.TypeDef) Value {
	fields := make(map[string]Value)
	for _, fa := range td.FieldAddresses(d.Ctx, base) {
		fd, err := d.Ctx.ReadFieldDef(fa)
		if err != nil || fd.Type.IsStatic {
			continue
		}
		fields[fd.Name] = d.decode(base.Add(int64(fd.Offset)), fd.Type, false)
	}
	return Value{Kind: KObject, Fields: fields}
}
