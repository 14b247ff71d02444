package metadata

import (
	"testing"

	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

func TestReadFieldDefMono(t *testing.T) {
	f := rawreader.NewFake()
	addr := rawreader.Address(rawreader.LowGuard)
	namePtr := rawreader.LowGuard + 0x1000
	typePtr := rawreader.LowGuard + 0x2000
	pokeAsciiZ(f, namePtr, "health")

	f.PokePtr(addr, typePtr)         // type pointer, first word
	f.PokePtr(addr.Add(8), namePtr)  // name, second word
	f.PokeU32(addr.Add(24), 0x10)    // offset, fourth word

	attrs := uint32(byte(I4)) << 16
	f.PokePtr(typePtr, 0)
	f.PokeU32(typePtr.Add(8), attrs)

	c := newMonoContext(f)
	fd, err := c.ReadFieldDef(addr)
	if err != nil {
		t.Fatalf("ReadFieldDef error: %v", err)
	}
	if fd.Name != "health" || fd.Offset != 0x10 || fd.Type.Code != I4 {
		t.Errorf("fd = %+v, want Name=health Offset=0x10 Type.Code=I4", fd)
	}
}

func TestReadFieldDefIl2Cpp(t *testing.T) {
	f := rawreader.NewFake()
	o := offsets.Il2CppFor("2021.x")
	addr := rawreader.Address(rawreader.LowGuard)
	namePtr := rawreader.LowGuard + 0x1000
	pokeAsciiZ(f, namePtr, "mana")

	f.PokePtr(addr.Add(int64(o.FieldName)), namePtr)
	f.PokePtr(addr.Add(int64(o.FieldType)), 0)
	f.PokeU32(addr.Add(int64(o.FieldOffset)), 0x20)

	c := newIl2CppContext(f)
	fd, err := c.ReadFieldDef(addr)
	if err != nil {
		t.Fatalf("ReadFieldDef error: %v", err)
	}
	if fd.Name != "mana" || fd.Offset != 0x20 {
		t.Errorf("fd = %+v, want Name=mana Offset=0x20", fd)
	}
}

func TestInstanceFieldAddrFindsFieldAndRejectsMissing(t *testing.T) {
	f := rawreader.NewFake()
	o := offsets.Il2CppFor("2021.x")
	classAddr := rawreader.Address(rawreader.LowGuard)
	fieldsArray := rawreader.LowGuard + 0x2000
	namePtr := rawreader.LowGuard + 0x3000
	pokeAsciiZ(f, namePtr, "level")

	f.PokePtr(classAddr.Add(int64(o.ClassFields)), fieldsArray)
	fieldAddr := fieldsArray
	f.PokePtr(fieldAddr.Add(int64(o.FieldName)), namePtr)
	f.PokePtr(fieldAddr.Add(int64(o.FieldType)), 0)
	f.PokeU32(fieldAddr.Add(int64(o.FieldOffset)), 0x30)

	td := &TypeDef{Addr: classAddr, FieldCount: 1}
	c := newIl2CppContext(f)

	addr, fd, ok := td.InstanceFieldAddr(c, classAddr, "level")
	if !ok || fd.Name != "level" || addr != classAddr.Add(0x30) {
		t.Fatalf("InstanceFieldAddr = %v, %+v, %v, want classAddr+0x30, level, true", addr, fd, ok)
	}

	if _, _, ok := td.InstanceFieldAddr(c, classAddr, "missing"); ok {
		t.Error("InstanceFieldAddr(missing field) = true, want false")
	}
}

func TestStaticFieldAddrIl2Cpp(t *testing.T) {
	f := rawreader.NewFake()
	o := offsets.Il2CppFor("2021.x")
	classAddr := rawreader.Address(rawreader.LowGuard)
	fieldsArray := rawreader.LowGuard + 0x2000
	staticFields := rawreader.LowGuard + 0x4000
	namePtr := rawreader.LowGuard + 0x3000
	fieldTypePtr := rawreader.LowGuard + 0x5000
	pokeAsciiZ(f, namePtr, "maxHealth")

	f.PokePtr(classAddr.Add(int64(o.ClassFields)), fieldsArray)
	f.PokePtr(classAddr.Add(int64(o.ClassStaticFields)), staticFields)
	f.PokePtr(fieldsArray.Add(int64(o.FieldName)), namePtr)
	f.PokePtr(fieldsArray.Add(int64(o.FieldType)), fieldTypePtr)
	f.PokeU32(fieldsArray.Add(int64(o.FieldOffset)), 0x8)

	// attrs & 0x10 marks the field static, per ReadTypeInfo's decode.
	f.PokePtr(fieldTypePtr, 0)
	f.PokeU32(fieldTypePtr.Add(8), uint32(byte(I4))<<16|0x10)

	td := &TypeDef{Addr: classAddr, FieldCount: 1, StaticFields: staticFields}
	c := newIl2CppContext(f)

	addr, fd, ok := td.StaticFieldAddr(c, "maxHealth")
	if !ok || fd.Name != "maxHealth" || addr != staticFields.Add(0x8) {
		t.Fatalf("StaticFieldAddr = %v, %+v, %v, want staticFields+0x8, maxHealth, true", addr, fd, ok)
	}
}
