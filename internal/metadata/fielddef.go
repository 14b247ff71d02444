package metadata

import (
	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

// FieldDef is the decoded MonoClassField / Il2CppFieldInfo record (§3).
type FieldDef struct {
	Addr   rawreader.Address
	Name   string
	Type   TypeInfo
	Offset int32
}

// ReadFieldDef decodes the field record at fieldAddr. The layouts differ
// (M-RT: type pointer is the first word, name is the second, offset is
// the fourth; A-RT: name, type, parent, offset as four consecutive
// words).
func (c *Context) ReadFieldDef(fieldAddr rawreader.Address) (*FieldDef, error) {
	switch c.Profile.Kind {
	case offsets.MRT:
		return c.readMonoFieldDef(fieldAddr)
	case offsets.ART:
		return c.readIl2CppFieldDef(fieldAddr)
	default:
		return nil, &CorruptMetadataError{Addr: fieldAddr, Reason: "unknown runtime"}
	}
}

func (c *Context) readMonoFieldDef(addr rawreader.Address) (*FieldDef, error) {
	ptrSize := c.ptrSize()
	typePtr := c.Dec.ReadPtr(addr) // field type is the first word
	namePtr := c.Dec.ReadPtr(addr.Add(ptrSize))
	offset := c.Dec.ReadI32(addr.Add(ptrSize * 3))

	name, _ := c.Dec.ReadAscii(namePtr)
	ti, _ := c.ReadTypeInfo(typePtr)

	return &FieldDef{Addr: addr, Name: name, Type: ti, Offset: offset}, nil
}

func (c *Context) readIl2CppFieldDef(addr rawreader.Address) (*FieldDef, error) {
	o := c.Profile.Il2Cpp
	namePtr := c.Dec.ReadPtr(addr.Add(int64(o.FieldName)))
	typePtr := c.Dec.ReadPtr(addr.Add(int64(o.FieldType)))
	offset := c.Dec.ReadI32(addr.Add(int64(o.FieldOffset)))

	name, _ := c.Dec.ReadAscii(namePtr)
	var ti TypeInfo
	if typePtr.Valid() {
		ti, _ = c.ReadTypeInfo(typePtr)
	}

	return &FieldDef{Addr: addr, Name: name, Type: ti, Offset: offset}, nil
}

// InstanceFieldAddr returns the address of a named field's value within
// an instance at base. Returns (0, false) if no field with that name
// exists among the TypeDef's fields.
func (td *TypeDef) InstanceFieldAddr(c *Context, base rawreader.Address, name string) (rawreader.Address, *FieldDef, bool) {
	for _, fa := range td.FieldAddresses(c, base) {
		fd, err := c.ReadFieldDef(fa)
		if err != nil || fd.Name != name {
			continue
		}
		if fd.Type.IsStatic {
			continue
		}
		return base.Add(int64(fd.Offset)), fd, true
	}
	return 0, nil, false
}

// StaticFieldAddr returns the address of a named static field's value.
// M-RT keeps static storage inside the type's MonoVTable; A-RT keeps it
// in a dedicated static-fields block pointed to by the class (§4.5).
func (td *TypeDef) StaticFieldAddr(c *Context, name string) (rawreader.Address, *FieldDef, bool) {
	for _, fa := range td.FieldAddresses(c, td.Addr) {
		fd, err := c.ReadFieldDef(fa)
		if err != nil || fd.Name != name || !fd.Type.IsStatic {
			continue
		}
		switch c.Profile.Kind {
		case offsets.MRT:
			if !td.VTableAddr.Valid() {
				return 0, nil, false
			}
			o := c.Profile.Mono
			return td.VTableAddr.Add(int64(o.VTableVTable) + int64(fd.Offset)), fd, true
		case offsets.ART:
			if !td.StaticFields.Valid() {
				return 0, nil, false
			}
			return td.StaticFields.Add(int64(fd.Offset)), fd, true
		}
	}
	return 0, nil, false
}
