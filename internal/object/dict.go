package object

import (
	"github.com/mtgatool/mtga-reader-sub000/internal/metadata"
	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
	"github.com/mtgatool/mtga-reader-sub000/internal/primitive"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

// maxDictEntries caps how many live entries a single DecodeDict call
// ever returns; DictOriginalLen still reports the dictionary's real
// Count so callers can tell a result was truncated (§4.7).
const maxDictEntries = 5000

// DecodeDict reads a Dictionary<TKey,TValue> instance's backing entry
// array. Two candidate entries-field offsets are probed in turn — real
// C# Dictionary internals have shifted their field order across BCL
// versions embedded by different Unity releases. Count is read from one
// fixed offset; candidate A is used when plausibleEntries accepts the
// hash codes of its first entries, otherwise candidate B is used without
// that check. An entry is considered live when
// hashCode >= 0 and key != 0, matching the managed implementation's own
// free-list convention (a removed entry gets hashCode = -1).
func (d *Decoder) DecodeDict(dictObj rawreader.Address, keyType, valueType metadata.TypeInfo) Value {
	if !dictObj.Valid() {
		return Null()
	}
	dec := d.Ctx.Dec

	var countOff, entrySize, hashOff, keyOff, valOff int64
	var candidateA, candidateB int64
	switch d.Ctx.Profile.Kind {
	case offsets.MRT:
		o := d.Ctx.Profile.Mono
		countOff, entrySize = int64(o.DictCount), int64(o.DictEntrySize)
		hashOff, keyOff, valOff = int64(o.DictEntryHashCode), int64(o.DictEntryKey), int64(o.DictEntryValue)
		candidateA, candidateB = int64(o.DictEntriesCandidateA), int64(o.DictEntriesCandidateB)
	case offsets.ART:
		o := d.Ctx.Profile.Il2Cpp
		countOff, entrySize = int64(o.DictCount), int64(o.DictEntrySize)
		hashOff, keyOff, valOff = int64(o.DictEntryHashCode), int64(o.DictEntryKey), int64(o.DictEntryValue)
		candidateA, candidateB = int64(o.DictEntriesCandidateA), int64(o.DictEntriesCandidateB)
	default:
		return Null()
	}

	count := dec.ReadU32(dictObj.Add(countOff))
	if count == 0 {
		return Value{Kind: KDict, DictOriginalLen: 0}
	}

	entries := dec.ReadPtr(dictObj.Add(candidateA))
	if !d.plausibleEntries(entries, count, entrySize, hashOff, keyOff) {
		entries = dec.ReadPtr(dictObj.Add(candidateB))
	}
	if !entries.Valid() {
		return Value{Kind: KDict, DictOriginalLen: int(count)}
	}

	out := make([]DictEntry, 0, count)
	truncated := false
	for i := uint32(0); i < count; i++ {
		if len(out) >= maxDictEntries {
			truncated = true
			break
		}
		entryAddr := entries.Add(int64(i) * entrySize)
		hashCode := dec.ReadI32(entryAddr.Add(hashOff))
		keyAddr := entryAddr.Add(keyOff)
		if hashCode < 0 || rawKeyIsZero(dec, keyAddr, keyType) {
			continue
		}
		out = append(out, DictEntry{
			Key:   d.decode(keyAddr, keyType, false),
			Value: d.decode(entryAddr.Add(valOff), valueType, false),
		})
	}

	return Value{
		Kind:            KDict,
		DictEntries:     out,
		DictTruncated:   truncated,
		DictOriginalLen: int(count),
	}
}

// plausibleEntries spot-checks the first few slots of a candidate
// entries pointer: a wrong offset usually yields garbage whose hashCode
// is neither a small non-negative int nor -1.
func (d *Decoder) plausibleEntries(entries rawreader.Address, count uint32, entrySize, hashOff, keyOff int64) bool {
	if !entries.Valid() {
		return false
	}
	n := count
	if n > 8 {
		n = 8
	}
	sane := 0
	for i := uint32(0); i < n; i++ {
		h := d.Ctx.Dec.ReadI32(entries.Add(int64(i)*entrySize + hashOff))
		if h == -1 || (h >= 0 && h < 1<<28) {
			sane++
		}
	}
	return sane == int(n)
}

// rawKeyIsZero reads a key slot at its natural width (per §9's open
// question: "whether the dictionary key > 0 liveness test is correct for
// signed key types — source assumes unsigned", parameterized here by
// key TypeCode rather than assumed) and reports whether it is the zero
// value for that type.
func rawKeyIsZero(dec *primitive.Decoder, addr rawreader.Address, keyType metadata.TypeInfo) bool {
	switch keyType.Code {
	case metadata.Boolean, metadata.I1, metadata.U1:
		return dec.ReadU8(addr) == 0
	case metadata.Char, metadata.I2, metadata.U2:
		return dec.ReadU16(addr) == 0
	case metadata.I4, metadata.U4:
		return dec.ReadU32(addr) == 0
	case metadata.I8, metadata.U8:
		return dec.ReadU64(addr) == 0
	default:
		return !dec.ReadPtr(addr).Valid()
	}
}
