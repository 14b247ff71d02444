package locator

import (
	"strings"

	"github.com/mtgatool/mtga-reader-sub000/internal/offsets"
	"github.com/mtgatool/mtga-reader-sub000/internal/rawreader"
)

// monoModuleNames and il2cppModuleNames are the module-name substrings
// detect_runtime's per-OS branches each check, collapsed into one
// OS-agnostic list since ListModules already normalizes to a flat
// name+base pair regardless of platform.
var (
	monoModuleNames   = []string{"mono-2.0", "libmono"}
	il2cppModuleNames = []string{"gameassembly"}
)

// DetectRuntime scans modules for the Mono or IL2CPP runtime signature
// by module name, the same substring match detect_runtime's Windows and
// Linux branches use (mono-2.0-bdwgc.dll / libmono*.so vs
// GameAssembly.dll / GameAssembly.so). Mono is checked first since a
// process could in principle carry both a generic "mono" library and an
// unrelated assembly named similarly; Mono's name is the more specific
// signature.
func DetectRuntime(modules []rawreader.ModuleInfo) (offsets.Runtime, rawreader.Address, bool) {
	for _, m := range modules {
		name := strings.ToLower(m.Name)
		for _, sig := range monoModuleNames {
			if strings.Contains(name, sig) {
				return offsets.MRT, m.Base, true
			}
		}
	}
	for _, m := range modules {
		name := strings.ToLower(m.Name)
		for _, sig := range il2cppModuleNames {
			if strings.Contains(name, sig) {
				return offsets.ART, m.Base, true
			}
		}
	}
	return offsets.RuntimeUnknown, 0, false
}
