package locator

import (
	"strconv"
	"strings"

	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
)

// EngineVersion is a parsed Unity "year.version.subversion" engine version,
// as reported by a build's file-version resource (e.g. "2021.3.14f1").
type EngineVersion struct {
	Year  uint32
	Minor uint32
	Patch uint32
	Raw   string
}

// ParseEngineVersion parses a Unity version string like "2021.3.14f1" or
// "2021.3.14". It trims any trailing release-type letters ("f1", "p1", ...)
// before splitting the remaining digits-and-dots prefix, the same loose
// grammar UnityVersion::parse applies.
func ParseEngineVersion(s string) (EngineVersion, bool) {
	cut := len(s)
	for i, r := range s {
		if !(r >= '0' && r <= '9') && r != '.' {
			cut = i
			break
		}
	}
	cleaned := s[:cut]

	parts := strings.Split(cleaned, ".")
	if len(parts) < 2 {
		return EngineVersion{}, false
	}

	year, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return EngineVersion{}, false
	}
	minor, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return EngineVersion{}, false
	}
	var patch uint64
	if len(parts) >= 3 {
		patch, err = strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			return EngineVersion{}, false
		}
	}

	return EngineVersion{Year: uint32(year), Minor: uint32(minor), Patch: uint32(patch), Raw: s}, true
}

// CoarseTag maps a parsed engine version to the coarse OffsetProfile tag
// internal/offsets indexes its tables by, mirroring unity_version.rs's
// for_version: years at or above 2022 fall forward to the newest table,
// 2019/2020 get their own table, and anything else (including years older
// than 2019) falls back to the 2021 table — the same "defaulting to
// 2021.3.14 offsets" branch the original takes for an unrecognized year.
func CoarseTag(kind offsets.Runtime, v EngineVersion) string {
	switch {
	case v.Year >= 2022:
		if kind == offsets.ART {
			return "2022.x"
		}
		return "2022.3"
	case v.Year == 2019 || v.Year == 2020:
		return "19-20.x"
	default:
		if kind == offsets.ART {
			return "2021.x"
		}
		return "2021.3"
	}
}
