package rawreader

// ModuleInfo names one module loaded into a process's address space, as
// reported by ListModules.
type ModuleInfo struct {
	Name string
	Base Address
}
