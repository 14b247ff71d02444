package object

import (
	"testing"

	"github.com/mtgatool/mtga-reader-sub000/internal/metadata"
	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

// buildElementClass writes a minimal class record for an array's element
// type: name/namespace and the value-type/enum flag bits decodeArray's
// element classification switches on, with no fields.
func buildElementClass(f *rawreader.FakeReader, o offsets.Il2CppOffsets, classAddr, namePtr rawreader.Address, namespace, name string, flags uint32) {
	namespacePtr := namePtr.Add(0x400)
	pokeAsciiZ(f, namePtr, name)
	pokeAsciiZ(f, namespacePtr, namespace)
	f.PokePtr(classAddr.Add(int64(o.ClassName)), namePtr)
	f.PokePtr(classAddr.Add(int64(o.ClassNamespace)), namespacePtr)
	f.PokeU32(classAddr.Add(int64(o.ClassFieldCount)), 0)
	f.PokeU32(classAddr.Add(int64(o.ClassFlags)), flags)
}

func TestDecodeArrayOfInts(t *testing.T) {
	f := rawreader.NewFake()
	o := offsets.Il2CppFor("2021.x")

	arrayObj := rawreader.Address(rawreader.LowGuard)
	arrayClass := rawreader.LowGuard + 0x10000
	elemClass := rawreader.LowGuard + 0x20000
	namePtr := rawreader.LowGuard + 0x30000

	// A-RT: the array object's class pointer sits directly at offset 0.
	f.PokePtr(arrayObj, arrayClass)
	f.PokePtr(arrayClass.Add(int64(o.ClassElementClass)), elemClass)
	buildElementClass(f, o, elemClass, namePtr, "System", "Int32", 0x4)

	f.PokeU32(arrayObj.Add(0x18), 3) // ArrayLength offset for 2021.x/2021.3
	elemBase := arrayObj.Add(0x20)
	for i, v := range []uint32{10, 20, 30} {
		f.PokeU32(elemBase.Add(int64(i)*4), v)
	}

	d := New(newIl2CppCtx(f))
	v := d.decodeArray(arrayObj, metadata.TypeInfo{Code: metadata.SzArray})
	if v.Kind != KArray || len(v.Elems) != 3 {
		t.Fatalf("decodeArray Kind/len = %v/%d, want KArray/3", v.Kind, len(v.Elems))
	}
	for i, want := range []int64{10, 20, 30} {
		if v.Elems[i].Int != want {
			t.Errorf("Elems[%d].Int = %d, want %d", i, v.Elems[i].Int, want)
		}
	}
}

func TestDecodeArrayRejectsOversizedLength(t *testing.T) {
	f := rawreader.NewFake()
	arrayObj := rawreader.Address(rawreader.LowGuard)
	f.PokeU32(arrayObj.Add(0x18), maxArrayLen+1)

	d := New(newIl2CppCtx(f))
	v := d.decodeArray(arrayObj, metadata.TypeInfo{Code: metadata.SzArray})
	if v.Kind != KNull {
		t.Fatalf("decodeArray(oversized) Kind = %v, want KNull", v.Kind)
	}
}

func TestDecodeArrayNullObject(t *testing.T) {
	d := New(newIl2CppCtx(rawreader.NewFake()))
	v := d.decodeArray(0, metadata.TypeInfo{Code: metadata.SzArray})
	if v.Kind != KNull {
		t.Fatalf("decodeArray(null) Kind = %v, want KNull", v.Kind)
	}
}

func TestDecodeArrayDefaultsElementTypeToClassOnResolutionFailure(t *testing.T) {
	f := rawreader.NewFake()
	arrayObj := rawreader.Address(rawreader.LowGuard)
	f.PokeU32(arrayObj.Add(0x18), 1)
	// The array object's own class pointer is left null, so
	// arrayElementType cannot resolve an element class and falls back to
	// Class: stride = ptr size, and since top=false the element decodes
	// to a Pointer stub (or Null if the pointer is itself null, as here).
	d := New(newIl2CppCtx(f))
	v := d.decodeArray(arrayObj, metadata.TypeInfo{Code: metadata.SzArray})
	if v.Kind != KArray || len(v.Elems) != 1 {
		t.Fatalf("decodeArray = %+v, want one element", v)
	}
	if v.Elems[0].Kind != KNull {
		t.Errorf("Elems[0].Kind = %v, want KNull (null class pointer)", v.Elems[0].Kind)
	}
}

func TestElementStrideScalars(t *testing.T) {
	cases := []struct {
		code metadata.TypeCode
		want int64
	}{
		{metadata.Boolean, 1},
		{metadata.I2, 2},
		{metadata.I4, 4},
		{metadata.I8, 8},
		{metadata.Class, 8},
	}
	for _, c := range cases {
		if got := elementStride(metadata.TypeInfo{Code: c.code}, 8); got != c.want {
			t.Errorf("elementStride(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}
