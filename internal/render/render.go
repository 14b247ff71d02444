// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render turns a decoded object.Value into the canonical JSON
// shape a caller receives from a query (§4.9). Unsigned 64-bit values
// outside JSON's safe integer range are emitted as decimal strings
// rather than numbers, since encoding/json's float64-backed number type
// silently loses precision above 2^53.
package render

import (
	"encoding/json"
	"strconv"

	"github.com/mtgatool/mtga-reader-sub000/internal/object"
)

// maxSafeInteger is the largest integer a JSON number can round-trip
// through a float64 decoder without loss (2^53).
const maxSafeInteger = 1 << 53

// ToJSON renders v as indented JSON.
func ToJSON(v object.Value) ([]byte, error) {
	return json.MarshalIndent(toJSONValue(v), "", "  ")
}

func toJSONValue(v object.Value) interface{} {
	switch v.Kind {
	case object.KNull:
		return nil
	case object.KBool:
		return v.Bool
	case object.KInt:
		return v.Int
	case object.KUint:
		if v.Uint > maxSafeInteger {
			return strconv.FormatUint(v.Uint, 10)
		}
		return v.Uint
	case object.KF32:
		return v.F32
	case object.KF64:
		return v.F64
	case object.KString:
		return v.Str
	case object.KPointer:
		return map[string]interface{}{
			"type":       "pointer",
			"address":    v.PointerAddr.String(),
			"class_name": v.PointerClassName,
		}
	case object.KObject:
		out := make(map[string]interface{}, len(v.Fields))
		for name, fv := range v.Fields {
			out[name] = toJSONValue(fv)
		}
		return out
	case object.KArray:
		out := make([]interface{}, len(v.Elems))
		for i, ev := range v.Elems {
			out[i] = toJSONValue(ev)
		}
		return out
	case object.KDict:
		entries := make([]interface{}, len(v.DictEntries))
		for i, e := range v.DictEntries {
			entries[i] = map[string]interface{}{
				"key":   toJSONValue(e.Key),
				"value": toJSONValue(e.Value),
			}
		}
		return map[string]interface{}{
			"entries":      entries,
			"truncated":    v.DictTruncated,
			"original_len": v.DictOriginalLen,
		}
	default:
		return nil
	}
}
