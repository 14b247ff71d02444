package locator

import (
	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

// GlobalPointers is the resolved A-RT global pointer table (§4.3): the
// four pointers GameAssembly exposes for metadata registration, code
// registration, the global-metadata.dat blob, and the type-info table
// the object decoder walks for every live Il2CppClass pointer.
type GlobalPointers struct {
	MetadataRegistration rawreader.Address
	CodeRegistration     rawreader.Address
	MetadataBlob         rawreader.Address
	TypeInfoTable        rawreader.Address
}

// sampleSize and passThreshold implement the "≥10/30 plausible class
// names" validation heuristic (§4.3): when a profile's global pointer
// offsets don't match the running binary's actual layout (common across
// Unity point releases), reading through them yields garbage pointers
// whose classes fail a basic name-plausibility check almost every time.
const (
	sampleSize    = 30
	passThreshold = 10
)

// LocateGlobalPointers resolves the A-RT global pointer table from the
// second writable data segment of GameAssembly, validating the supplied
// offsets table against the observed image before trusting it. dataSeg
// is the already-identified base of that segment (module/segment
// discovery is a platform concern handled by the caller, per §4.1 — this
// function only ever reads through already-resolved addresses).
func (l *Locator) LocateGlobalPointers(dataSeg rawreader.Address, o offsets.Il2CppOffsets) (GlobalPointers, error) {
	gp := GlobalPointers{
		MetadataRegistration: l.Dec.ReadPtr(dataSeg.Add(int64(o.GlobalMetadataRegistration))),
		CodeRegistration:     l.Dec.ReadPtr(dataSeg.Add(int64(o.GlobalCodeRegistration))),
		MetadataBlob:         l.Dec.ReadPtr(dataSeg.Add(int64(o.GlobalMetadataBlob))),
		TypeInfoTable:        l.Dec.ReadPtr(dataSeg.Add(int64(o.GlobalTypeInfoTable))),
	}
	if l.validateTypeInfoTable(gp.TypeInfoTable, o) {
		return gp, nil
	}
	return GlobalPointers{}, &NotFoundError{What: "A-RT global pointer table"}
}

// validateTypeInfoTable samples the first sampleSize entries of a
// candidate type-info table and counts how many resolve to a class
// record with a plausible (non-empty, printable-ASCII, length<256) name.
func (l *Locator) validateTypeInfoTable(table rawreader.Address, o offsets.Il2CppOffsets) bool {
	if !table.Valid() {
		return false
	}
	ptrSize := l.Dec.PtrSize()
	pass := 0
	for i := 0; i < sampleSize; i++ {
		classPtr := l.Dec.ReadPtr(table.Add(int64(i) * ptrSize))
		if !classPtr.Valid() {
			continue
		}
		namePtr := l.Dec.ReadPtr(classPtr.Add(int64(o.ClassName)))
		name, ok := l.Dec.ReadAscii(namePtr)
		if ok && isPlausibleIdentifier(name) {
			pass++
		}
	}
	return pass >= passThreshold
}

func isPlausibleIdentifier(s string) bool {
	if len(s) == 0 || len(s) > 255 {
		return false
	}
	for _, r := range s {
		if r < 0x20 || r > 0x7e {
			return false
		}
	}
	return true
}
