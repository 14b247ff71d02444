package metadata

import (
	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
	"github.com/mtgatool/mtga-reader-sub000/internal/primitive"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

// maxFieldCount bounds field_count against memory corruption (§4.5: "a
// field_count outside 0..50000 is treated as corrupt metadata, not a
// panic").
const maxFieldCount = 50000

// Context carries everything a TypeDef/FieldDef/TypeInfo synthesis needs:
// the decoder to read through and the active OffsetProfile. Every method
// on TypeDef/FieldDef below takes a *Context and branches once on
// ctx.Profile.Kind, rather than dispatching through a per-runtime type
// hierarchy (§9).
type Context struct {
	Dec     *primitive.Decoder
	Profile offsets.Profile
}

func New(dec *primitive.Decoder, profile offsets.Profile) *Context {
	return &Context{Dec: dec, Profile: profile}
}

func (c *Context) ptrSize() int64 { return c.Dec.PtrSize() }

// readGenericArgs walks the generic-class -> generic-context ->
// generic-instance -> argc/argv chain shared, modulo per-runtime offset
// names, by both runtimes: identical shape, different struct layouts.
func (c *Context) readGenericArgs(genericClassPtr rawreader.Address) []TypeInfo {
	if !genericClassPtr.Valid() {
		return nil
	}
	var contextOff, argcOff, argvOff int64
	switch c.Profile.Kind {
	case offsets.MRT:
		// MonoGenericClass.context.class_inst lives one word in, per
		// constants.rs; the instance itself then holds argc/argv.
		contextOff = int64(c.ptrSize())
		argcOff = 0
		argvOff = int64(c.ptrSize())
	case offsets.ART:
		contextOff = int64(c.Profile.Il2Cpp.GenericClassContext)
		argcOff = int64(c.Profile.Il2Cpp.GenericInstArgc)
		argvOff = int64(c.Profile.Il2Cpp.GenericInstArgv)
	default:
		return nil
	}
	classInst := c.Dec.ReadPtr(genericClassPtr.Add(contextOff))
	if !classInst.Valid() {
		return nil
	}
	argc := c.Dec.ReadU32(classInst.Add(argcOff))
	if argc == 0 || argc > 1024 {
		return nil
	}
	argv := c.Dec.ReadPtr(classInst.Add(argvOff))
	if !argv.Valid() {
		return nil
	}
	args := make([]TypeInfo, 0, argc)
	for i := uint32(0); i < argc; i++ {
		typePtr := c.Dec.ReadPtr(argv.Add(int64(i) * int64(c.ptrSize())))
		if !typePtr.Valid() {
			continue
		}
		ti, ok := c.ReadTypeInfo(typePtr)
		if ok {
			args = append(args, ti)
		}
	}
	return args
}
