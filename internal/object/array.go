package object

import (
	"github.com/mtgatool/mtga-reader-sub000/internal/metadata"
	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

// maxArrayLen caps array decoding against a corrupt length field, the
// same way read_managed_string caps string length (§4.7).
const maxArrayLen = 1 << 20

// decodeArray reads a managed array object: a length field, then a
// packed run of elements whose TypeInfo is derived from the array's own
// class metadata (read_managed_array in managed.rs), not ti.GenericArgs —
// GenericArgs is only ever populated when TypeInfo.Code is GenericInst
// (see typeinfo.go), never for SzArray/Array, so every array field would
// otherwise decode with the same hardcoded element type regardless of
// what it actually holds.
func (d *Decoder) decodeArray(arrayObj rawreader.Address, ti metadata.TypeInfo) Value {
	if !arrayObj.Valid() {
		return Null()
	}
	dec := d.Ctx.Dec
	var lenOff, elemOff, elemClassOff int64
	switch d.Ctx.Profile.Kind {
	case offsets.MRT:
		lenOff = int64(d.Ctx.Profile.Mono.ArrayLength)
		elemOff = int64(d.Ctx.Profile.Mono.ArrayElements)
		elemClassOff = int64(d.Ctx.Profile.Mono.ClassElementClass)
	case offsets.ART:
		lenOff = int64(d.Ctx.Profile.Il2Cpp.ArrayLength)
		elemOff = int64(d.Ctx.Profile.Il2Cpp.ArrayElements)
		elemClassOff = int64(d.Ctx.Profile.Il2Cpp.ClassElementClass)
	default:
		return Null()
	}

	length := dec.ReadU32(arrayObj.Add(lenOff))
	if length > maxArrayLen {
		return Null()
	}

	elemType := d.arrayElementType(arrayObj, elemClassOff)
	stride := elementStride(elemType, dec.PtrSize())

	base := arrayObj.Add(elemOff)
	elems := make([]Value, 0, length)
	for i := uint32(0); i < length; i++ {
		elems = append(elems, d.decode(base.Add(int64(i)*stride), elemType, false))
	}
	return Value{Kind: KArray, Elems: elems}
}

// arrayElementType resolves an array's element TypeInfo the way
// read_managed_array does: read the array object's own class (same
// instance->class lookup every other object uses), then the element
// class pointer out of that class record's element_class slot, then
// classify it — primitive System.* types decode by name, enums fold to
// I4, other value types embed in place, everything else is a pointer.
func (d *Decoder) arrayElementType(arrayObj rawreader.Address, elemClassOff int64) metadata.TypeInfo {
	fallback := metadata.TypeInfo{Code: metadata.Class}

	classAddr, ok := d.classPointer(arrayObj)
	if !ok {
		return fallback
	}
	elemClassAddr := d.Ctx.Dec.ReadPtr(classAddr.Add(elemClassOff))
	if !elemClassAddr.Valid() {
		return fallback
	}
	td, err := d.Ctx.ReadTypeDef(elemClassAddr)
	if err != nil {
		return fallback
	}
	if td.Namespace == "System" {
		if code, ok := primitiveCodeByName[td.Name]; ok {
			return metadata.TypeInfo{Code: code}
		}
	}
	if td.IsEnum {
		return metadata.TypeInfo{Code: metadata.I4}
	}
	if td.IsValueType {
		return metadata.TypeInfo{Code: metadata.ValueType, Data: elemClassAddr}
	}
	return metadata.TypeInfo{Code: metadata.Class}
}

// primitiveCodeByName maps the BCL's unboxed scalar types to their
// TypeCode, since an array's element class carries only a name/namespace
// pair for these, not a MonoType/Il2CppType this decoder can read
// directly.
var primitiveCodeByName = map[string]metadata.TypeCode{
	"Boolean": metadata.Boolean,
	"Char":    metadata.Char,
	"SByte":   metadata.I1,
	"Byte":    metadata.U1,
	"Int16":   metadata.I2,
	"UInt16":  metadata.U2,
	"Int32":   metadata.I4,
	"UInt32":  metadata.U4,
	"Int64":   metadata.I8,
	"UInt64":  metadata.U8,
	"Single":  metadata.R4,
	"Double":  metadata.R8,
	"String":  metadata.String,
}

func elementStride(ti metadata.TypeInfo, ptrSize int64) int64 {
	switch ti.Code {
	case metadata.Boolean, metadata.I1, metadata.U1:
		return 1
	case metadata.Char, metadata.I2, metadata.U2:
		return 2
	case metadata.I4, metadata.U4, metadata.R4:
		return 4
	case metadata.I8, metadata.U8, metadata.R8:
		return 8
	default:
		return ptrSize
	}
}
