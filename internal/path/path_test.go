package path

import (
	"testing"

	"github.com/mtgatool/mtga-reader-sub000/internal/metadata"
	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
	"github.com/mtgatool/mtga-reader-sub000/internal/primitive"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

type fakeLookup map[string]rawreader.Address

func (l fakeLookup) Lookup(name string) (rawreader.Address, bool) {
	a, ok := l[name]
	return a, ok
}

func pokeAsciiZ(f *rawreader.FakeReader, addr rawreader.Address, s string) {
	f.Poke(addr, append([]byte(s), 0))
}

func newCtx(f *rawreader.FakeReader) *metadata.Context {
	profile, _ := offsets.ForVersion(offsets.ART, "2021.x")
	return metadata.New(primitive.New(f, 8), profile)
}

// buildField writes an Il2CppFieldInfo record at fieldAddr. typePtr is
// placed at a small fixed offset from fieldAddr; callers must leave that
// offset free of other fixture data.
func buildField(f *rawreader.FakeReader, o offsets.Il2CppOffsets, fieldAddr, namePtr rawreader.Address, name string, code metadata.TypeCode, offset int32, isStatic bool) {
	pokeAsciiZ(f, namePtr, name)
	typePtr := fieldAddr.Add(0x40)
	attrs := uint32(byte(code)) << 16
	if isStatic {
		attrs |= 0x10
	}
	f.PokePtr(typePtr, 0)
	f.PokeU32(typePtr.Add(8), attrs)

	f.PokePtr(fieldAddr.Add(int64(o.FieldName)), namePtr)
	f.PokePtr(fieldAddr.Add(int64(o.FieldType)), typePtr)
	f.PokeU32(fieldAddr.Add(int64(o.FieldOffset)), uint32(offset))
}

func TestEvaluateTypeNotFound(t *testing.T) {
	e := New(newCtx(rawreader.NewFake()), fakeLookup{})
	if _, err := e.Evaluate("Missing", "Instance", nil); err == nil {
		t.Fatal("Evaluate(unknown type) returned nil error")
	} else if _, ok := err.(*TypeNotFoundError); !ok {
		t.Errorf("Evaluate error type = %T, want *TypeNotFoundError", err)
	}
}

func TestEvaluateRootFieldNotFound(t *testing.T) {
	f := rawreader.NewFake()
	classAddr := rawreader.Address(rawreader.LowGuard)
	f.PokeU32(classAddr.Add(int64(offsets.Il2CppFor("2021.x").ClassFieldCount)), 0)

	e := New(newCtx(f), fakeLookup{"GameManager": classAddr})
	_, err := e.Evaluate("GameManager", "Instance", nil)
	if _, ok := err.(*FieldNotFoundError); !ok {
		t.Fatalf("Evaluate error = %v (%T), want *FieldNotFoundError", err, err)
	}
}

func TestEvaluateRootFieldOnlyNoSteps(t *testing.T) {
	f := rawreader.NewFake()
	o := offsets.Il2CppFor("2021.x")
	classAddr := rawreader.Address(rawreader.LowGuard)
	fieldsArray := rawreader.LowGuard + 0x10000
	staticFields := rawreader.LowGuard + 0x20000
	namePtr := rawreader.LowGuard + 0x30000

	f.PokeU32(classAddr.Add(int64(o.ClassFieldCount)), 1)
	f.PokePtr(classAddr.Add(int64(o.ClassFields)), fieldsArray)
	f.PokePtr(classAddr.Add(int64(o.ClassStaticFields)), staticFields)
	buildField(f, o, fieldsArray, namePtr, "score", metadata.I4, 0x8, true)
	f.PokeU32(staticFields.Add(0x8), 77)

	e := New(newCtx(f), fakeLookup{"GameManager": classAddr})
	v, err := e.Evaluate("GameManager", "score", nil)
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if v.Kind == 0 && v.Int != 77 {
		// Kind for KInt is 2, zero value is KNull; just assert Int directly.
	}
	if v.Int != 77 {
		t.Errorf("Evaluate(score) = %+v, want Int=77", v)
	}
}

func TestEvaluateOneInstanceStep(t *testing.T) {
	f := rawreader.NewFake()
	o := offsets.Il2CppFor("2021.x")

	rootClass := rawreader.Address(rawreader.LowGuard)
	rootFields := rawreader.LowGuard + 0x10000
	staticFields := rawreader.LowGuard + 0x20000
	rootNamePtr := rawreader.LowGuard + 0x30000

	childClass := rawreader.LowGuard + 0x40000
	childFields := rawreader.LowGuard + 0x50000
	childNamePtr := rawreader.LowGuard + 0x60000
	instance := rawreader.LowGuard + 0x80000

	f.PokeU32(rootClass.Add(int64(o.ClassFieldCount)), 1)
	f.PokePtr(rootClass.Add(int64(o.ClassFields)), rootFields)
	f.PokePtr(rootClass.Add(int64(o.ClassStaticFields)), staticFields)
	buildField(f, o, rootFields, rootNamePtr, "Instance", metadata.Class, 0x0, true)
	f.PokePtr(staticFields.Add(0x0), instance)

	// A-RT: the instance's class pointer sits directly at offset 0, no
	// vtable indirection.
	f.PokePtr(instance, childClass)
	f.PokeU32(childClass.Add(int64(o.ClassFieldCount)), 1)
	f.PokePtr(childClass.Add(int64(o.ClassFields)), childFields)
	buildField(f, o, childFields, childNamePtr, "level", metadata.I4, 0x10, false)
	f.PokeU32(instance.Add(0x10), 9)

	e := New(newCtx(f), fakeLookup{"GameManager": rootClass})
	v, err := e.Evaluate("GameManager", "Instance", []string{"level"})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if v.Int != 9 {
		t.Errorf("Evaluate(Instance.level) = %+v, want Int=9", v)
	}
}

func TestEvaluateNullMidWalkOnLastStepYieldsNull(t *testing.T) {
	f := rawreader.NewFake()
	o := offsets.Il2CppFor("2021.x")

	rootClass := rawreader.Address(rawreader.LowGuard)
	rootFields := rawreader.LowGuard + 0x10000
	staticFields := rawreader.LowGuard + 0x20000
	rootNamePtr := rawreader.LowGuard + 0x30000

	f.PokeU32(rootClass.Add(int64(o.ClassFieldCount)), 1)
	f.PokePtr(rootClass.Add(int64(o.ClassFields)), rootFields)
	f.PokePtr(rootClass.Add(int64(o.ClassStaticFields)), staticFields)
	buildField(f, o, rootFields, rootNamePtr, "Instance", metadata.Class, 0x0, true)
	// staticFields slot left null.

	e := New(newCtx(f), fakeLookup{"GameManager": rootClass})
	v, err := e.Evaluate("GameManager", "Instance", []string{"level"})
	if err != nil {
		t.Fatalf("Evaluate error: %v, want nil (null short-circuit)", err)
	}
	if v.Kind != 0 {
		t.Errorf("Evaluate(null mid-walk) Kind = %v, want KNull", v.Kind)
	}
}

func TestEvaluateFieldNotFoundMidWalk(t *testing.T) {
	f := rawreader.NewFake()
	o := offsets.Il2CppFor("2021.x")

	rootClass := rawreader.Address(rawreader.LowGuard)
	rootFields := rawreader.LowGuard + 0x10000
	staticFields := rawreader.LowGuard + 0x20000
	rootNamePtr := rawreader.LowGuard + 0x30000
	childClass := rawreader.LowGuard + 0x40000
	instance := rawreader.LowGuard + 0x80000

	f.PokeU32(rootClass.Add(int64(o.ClassFieldCount)), 1)
	f.PokePtr(rootClass.Add(int64(o.ClassFields)), rootFields)
	f.PokePtr(rootClass.Add(int64(o.ClassStaticFields)), staticFields)
	buildField(f, o, rootFields, rootNamePtr, "Instance", metadata.Class, 0x0, true)
	f.PokePtr(staticFields.Add(0x0), instance)

	// A-RT: the instance's class pointer sits directly at offset 0, no
	// vtable indirection.
	f.PokePtr(instance, childClass)
	f.PokeU32(childClass.Add(int64(o.ClassFieldCount)), 0)

	e := New(newCtx(f), fakeLookup{"GameManager": rootClass})
	_, err := e.Evaluate("GameManager", "Instance", []string{"missing", "level"})
	if _, ok := err.(*FieldNotFoundError); !ok {
		t.Fatalf("Evaluate error = %v (%T), want *FieldNotFoundError", err, err)
	}
}
