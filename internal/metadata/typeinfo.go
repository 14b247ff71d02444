package metadata

import (
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

// TypeInfo is the decoded MonoType/Il2CppType record every FieldDef and
// generic argument carries (§3). Addr is zero for A-RT TypeInfo values
// synthesized directly from an Il2CppClass rather than read from a
// standalone Il2CppType record.
type TypeInfo struct {
	Addr      rawreader.Address
	Data      rawreader.Address
	IsStatic  bool
	IsConst   bool
	Code      TypeCode
	GenericArgs []TypeInfo
}

// ReadTypeInfo decodes a MonoType/Il2CppType record at addr (§3):
//
//	data  = read_ptr(addr)
//	attrs = read_u32(addr + ptrSize)
//	is_static = attrs & 0x10
//	is_const  = attrs & 0x40
//	type_code = (attrs >> 16) & 0xff
//
// Both runtimes share this exact layout (type_info.rs is the canonical
// source; A-RT's Il2CppType mirrors it field-for-field).
func (c *Context) ReadTypeInfo(addr rawreader.Address) (TypeInfo, bool) {
	if !addr.Valid() {
		return TypeInfo{}, false
	}
	data := c.Dec.ReadPtr(addr)
	attrs := c.Dec.ReadU32(addr.Add(int64(c.ptrSize())))
	ti := TypeInfo{
		Addr:     addr,
		Data:     data,
		IsStatic: attrs&0x10 != 0,
		IsConst:  attrs&0x40 != 0,
		Code:     TypeCode((attrs >> 16) & 0xff),
	}
	if ti.Code == GenericInst && data.Valid() {
		ti.GenericArgs = c.readGenericArgs(data)
	}
	return ti, true
}

// SyntheticTypeInfo builds a TypeInfo for A-RT callers that have no
// standalone Il2CppType record to read — e.g. an Il2CppClass's own type,
// synthesized as {data: classAddr, code: VALUETYPE-or-CLASS}.
func (c *Context) SyntheticTypeInfo(classAddr rawreader.Address, isValueType bool) TypeInfo {
	code := Class
	if isValueType {
		code = ValueType
	}
	return TypeInfo{Addr: 0, Data: classAddr, Code: code}
}

// sizeOf returns the in-place byte width get_type_size would report for
// a scalar TypeCode (§4.7). Array decoding computes its stride with the
// object package's own elementStride, and dictionary decoding uses the
// profile's fixed entry layout; neither calls sizeOf.
func sizeOf(code TypeCode, ptrSize int64) int64 {
	switch code {
	case Boolean, I1, U1:
		return 1
	case Char, I2, U2:
		return 2
	case I4, U4, R4:
		return 4
	case I8, U8, R8:
		return 8
	case I, U, Ptr, String, Class, Object, SzArray, Array, GenericInst:
		return ptrSize
	case ValueType, Enum:
		return ptrSize // caller refines using the value type's own Size
	default:
		return ptrSize
	}
}
