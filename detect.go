package reader

import (
	"github.com/mtgatool/mtga-reader-sub000/internal/locator"
	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

// DetectRuntime probes pid's loaded modules for the Mono or IL2CPP
// module-name signature, the way a caller can fill in Options.Runtime
// and Options.ModuleBase without already knowing which runtime the
// target embeds. This auto-detects *which* runtime is present, never
// its exact version — choosing an OffsetProfile still requires
// Options.Version, per the version-autodetection Non-goal.
//
// Module enumeration is only wired for Windows today (via a Toolhelp32
// snapshot); on every other platform this returns RuntimeNotFoundError
// and the caller must supply Options.Runtime and Options.ModuleBase
// directly.
func DetectRuntime(pid int) (offsets.Runtime, rawreader.Address, error) {
	modules, err := rawreader.ListModules(pid)
	if err != nil {
		return offsets.RuntimeUnknown, 0, &RuntimeNotFoundError{}
	}
	kind, base, ok := locator.DetectRuntime(modules)
	if !ok {
		return offsets.RuntimeUnknown, 0, &RuntimeNotFoundError{}
	}
	return kind, base, nil
}

// SniffVersion best-effort reads pid's own executable's file-version
// resource and maps it to one of the coarse OffsetProfile tags
// internal/offsets already enumerates (it never invents a new table — it
// only chooses among "19-20.x", "2021.3"/"2021.x" and "2022.3"/"2022.x").
// Like DetectRuntime, this only has a real implementation on Windows (a
// PE version resource is a Windows/PE concept); elsewhere, and whenever
// the resource can't be read or parsed, ok is false and the caller should
// fall back to a version it already knows or to ForVersion's default.
func SniffVersion(pid int, kind offsets.Runtime) (version string, ok bool) {
	raw, found := locator.SniffEngineVersion(pid)
	if !found {
		return "", false
	}
	parsed, valid := locator.ParseEngineVersion(raw)
	if !valid {
		return "", false
	}
	return locator.CoarseTag(kind, parsed), true
}
