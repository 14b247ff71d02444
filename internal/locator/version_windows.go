//go:build windows

package locator

import (
	"github.com/saferwall/pe"
	"golang.org/x/sys/windows"
)

// SniffEngineVersion reads pid's own executable off disk and returns its
// FileVersion (falling back to ProductVersion) string resource, the same
// two keys get_unity_version_from_exe checks, preferring FileVersion.
// Unlike ListModules/DetectRuntime, this needs the file on disk rather than
// a remote-memory copy, since the version resource lives in a data
// directory the running image may not map in full.
func SniffEngineVersion(pid int) (string, bool) {
	path, err := exeImagePath(pid)
	if err != nil {
		return "", false
	}

	f, err := pe.New(path, &pe.Options{})
	if err != nil {
		return "", false
	}
	defer f.Close()

	if err := f.Parse(); err != nil {
		return "", false
	}

	strs, err := f.ParseVersionResources()
	if err != nil {
		return "", false
	}
	if v, ok := strs["FileVersion"]; ok && v != "" {
		return v, true
	}
	if v, ok := strs["ProductVersion"]; ok && v != "" {
		return v, true
	}
	return "", false
}

func exeImagePath(pid int) (string, error) {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return "", err
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return "", err
	}
	return windows.UTF16ToString(buf[:size]), nil
}
