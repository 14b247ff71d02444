//go:build windows

package rawreader

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// ListModules enumerates pid's loaded modules via a Toolhelp32 snapshot
// — the mainstream Win32 equivalent of the proc_mem module lookup the
// detection logic this mirrors uses.
func ListModules(pid int) ([]ModuleInfo, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, uint32(pid))
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(snap)

	var me windows.ModuleEntry32
	me.Size = uint32(unsafe.Sizeof(me))
	if err := windows.Module32First(snap, &me); err != nil {
		return nil, err
	}

	var out []ModuleInfo
	for {
		out = append(out, ModuleInfo{
			Name: windows.UTF16ToString(me.Module[:]),
			Base: Address(me.ModBaseAddr),
		})
		if err := windows.Module32Next(snap, &me); err != nil {
			break
		}
	}
	return out, nil
}
