package metadata

import (
	"fmt"

	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

// TypeDef is the decoded _MonoClass / Il2CppClass record (§3).
type TypeDef struct {
	Addr         rawreader.Address
	Name         string
	Namespace    string
	ParentAddr   rawreader.Address
	Kind         ClassKind
	IsValueType  bool
	IsEnum       bool
	FieldCount   uint32
	InstanceSize uint32
	VTableAddr   rawreader.Address // M-RT only; zero for A-RT
	StaticFields rawreader.Address // A-RT only; zero for M-RT unresolved vtables
	GenericArgs  []TypeInfo
}

// CorruptMetadataError reports a TypeDef whose field_count or generic
// argc falls outside the sane bounds §4.5 requires every caller to guard
// against, rather than trusting raw memory blindly.
type CorruptMetadataError struct {
	Addr   rawreader.Address
	Reason string
}

func (e *CorruptMetadataError) Error() string {
	return fmt.Sprintf("corrupt metadata at %s: %s", e.Addr, e.Reason)
}

// ReadTypeDef synthesizes a TypeDef at classAddr, branching once on the
// active runtime (§9).
func (c *Context) ReadTypeDef(classAddr rawreader.Address) (*TypeDef, error) {
	if !classAddr.Valid() {
		return nil, &CorruptMetadataError{Addr: classAddr, Reason: "null class pointer"}
	}
	switch c.Profile.Kind {
	case offsets.MRT:
		return c.readMonoTypeDef(classAddr)
	case offsets.ART:
		return c.readIl2CppTypeDef(classAddr)
	default:
		return nil, fmt.Errorf("metadata: unknown runtime")
	}
}

// readMonoTypeDef decodes bit_fields into is_enum/is_value_type via
// 0x8/0x4 masks; vtable is only read when runtime_info is non-null.
func (c *Context) readMonoTypeDef(addr rawreader.Address) (*TypeDef, error) {
	o := c.Profile.Mono
	bits := c.Dec.ReadU32(addr.Add(int64(o.ClassBitFields)))
	isValueType := bits&0x4 != 0
	isEnum := bits&0x8 != 0

	name, _ := c.Dec.ReadAscii(c.Dec.ReadPtr(addr.Add(int64(o.ClassName))))
	namespace, _ := c.Dec.ReadAscii(c.Dec.ReadPtr(addr.Add(int64(o.ClassNamespace))))

	fieldCount := c.Dec.ReadU32(addr.Add(int64(o.ClassFieldCount))) & 0xffffff
	if fieldCount > maxFieldCount {
		return nil, &CorruptMetadataError{Addr: addr, Reason: "field_count out of range"}
	}

	td := &TypeDef{
		Addr:         addr,
		Name:         name,
		Namespace:    namespace,
		ParentAddr:   c.Dec.ReadPtr(addr.Add(int64(o.ClassParent))),
		Kind:         ClassKindFromRaw(byte(c.Dec.ReadU8(addr.Add(int64(o.ClassKind))))),
		IsValueType:  isValueType,
		IsEnum:       isEnum,
		FieldCount:   fieldCount,
		InstanceSize: c.Dec.ReadU32(addr.Add(int64(o.ClassInstanceSize))),
	}

	runtimeInfo := c.Dec.ReadPtr(addr.Add(int64(o.ClassRuntimeInfo)))
	if runtimeInfo.Valid() {
		domainVTables := c.Dec.ReadPtr(runtimeInfo.Add(int64(o.RuntimeInfoDomainVTables)))
		if domainVTables.Valid() {
			td.VTableAddr = c.Dec.ReadPtr(domainVTables)
		}
	}

	byValArg := addr.Add(int64(o.ClassByValArg))
	if ti, ok := c.ReadTypeInfo(byValArg); ok && ti.Code == GenericInst {
		genericClass := c.Dec.ReadPtr(addr.Add(int64(o.ClassGenericClass)))
		td.GenericArgs = c.readGenericArgs(genericClass)
		td.Kind = KindGenericInst
	}

	return td, nil
}

// readIl2CppTypeDef decodes flags into is_value_type/is_enum via
// 0x4/0x8 masks; vtable is not modeled (A-RT has no per-domain vtable
// indirection the decoder needs — static fields are read directly off
// the class, see TypeDef.StaticFieldAddr).
func (c *Context) readIl2CppTypeDef(addr rawreader.Address) (*TypeDef, error) {
	o := c.Profile.Il2Cpp
	flags := c.Dec.ReadU32(addr.Add(int64(o.ClassFlags)))
	isValueType := flags&0x4 != 0
	isEnum := flags&0x8 != 0

	name, _ := c.Dec.ReadAscii(c.Dec.ReadPtr(addr.Add(int64(o.ClassName))))
	namespace, _ := c.Dec.ReadAscii(c.Dec.ReadPtr(addr.Add(int64(o.ClassNamespace))))

	fieldCount := c.Dec.ReadU32(addr.Add(int64(o.ClassFieldCount)))
	if fieldCount > maxFieldCount {
		return nil, &CorruptMetadataError{Addr: addr, Reason: "field_count out of range"}
	}

	td := &TypeDef{
		Addr:         addr,
		Name:         name,
		Namespace:    namespace,
		ParentAddr:   c.Dec.ReadPtr(addr.Add(int64(o.ClassParent))),
		Kind:         KindDef,
		IsValueType:  isValueType,
		IsEnum:       isEnum,
		FieldCount:   fieldCount,
		InstanceSize: c.Dec.ReadU32(addr.Add(int64(o.ClassInstanceSize))),
		StaticFields: c.Dec.ReadPtr(addr.Add(int64(o.ClassStaticFields))),
	}

	genericClass := c.Dec.ReadPtr(addr.Add(int64(o.ClassGenericClass)))
	if genericClass.Valid() {
		td.GenericArgs = c.readGenericArgs(genericClass)
		if len(td.GenericArgs) > 0 {
			td.Kind = KindGenericInst
		}
	}

	return td, nil
}

// FieldAddresses returns the address of each field-definition record in
// the class's fields array, bounded by FieldCount (§4.5); base is not
// used in computing them. M-RT skips a field
// whose type pointer is null; A-RT does not null-check (its layout is
// fixed-stride and dense).
func (td *TypeDef) FieldAddresses(c *Context, base rawreader.Address) []rawreader.Address {
	if td.FieldCount == 0 {
		return nil
	}
	switch c.Profile.Kind {
	case offsets.MRT:
		o := c.Profile.Mono
		first := c.Dec.ReadPtr(td.Addr.Add(int64(o.ClassFields)))
		if !first.Valid() {
			return nil
		}
		out := make([]rawreader.Address, 0, td.FieldCount)
		for i := uint32(0); i < td.FieldCount; i++ {
			fieldAddr := first.Add(int64(i) * int64(o.ClassFieldSize))
			if c.Dec.ReadPtr(fieldAddr).Valid() {
				out = append(out, fieldAddr)
			}
		}
		return out
	case offsets.ART:
		o := c.Profile.Il2Cpp
		first := c.Dec.ReadPtr(td.Addr.Add(int64(o.ClassFields)))
		if !first.Valid() {
			return nil
		}
		out := make([]rawreader.Address, 0, td.FieldCount)
		for i := uint32(0); i < td.FieldCount; i++ {
			out = append(out, first.Add(int64(i)*int64(o.FieldInfoSize)))
		}
		return out
	default:
		return nil
	}
}
