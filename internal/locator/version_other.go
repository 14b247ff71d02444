//go:build !windows

package locator

// SniffEngineVersion reads pid's executable's file-version resource. Like
// ListModules, the real implementation only exists for Windows today (PE
// version resources are a Windows/PE concept); elsewhere the caller must
// supply Options.Version directly.
func SniffEngineVersion(pid int) (string, bool) {
	return "", false
}
