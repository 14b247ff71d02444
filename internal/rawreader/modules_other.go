//go:build !windows

package rawreader

// ListModules enumerates pid's loaded modules. On macOS, the real
// equivalent requires walking the target's dyld_all_image_infos list
// through its task port — a further Mach RPC surface beyond the
// task_for_pid/mach_vm_read_overwrite traps this reader already issues
// — so module-name auto-detection is Windows-only for now; a caller on
// macOS must still supply Options.Runtime explicitly.
func ListModules(pid int) ([]ModuleInfo, error) {
	return nil, &PlatformUnsupportedError{}
}
