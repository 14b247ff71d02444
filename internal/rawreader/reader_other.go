//go:build !darwin && !windows

package rawreader

// open reports PlatformUnsupported everywhere neither the task-port nor
// the handle reader applies. The two mainstream managed-runtime games
// this decoder targets only ship on macOS and Windows (§4.1); a Linux or
// BSD build can still be compiled (e.g. to run the test suite) but can
// never actually attach to a target.
func open(pid int) (Reader, error) {
	return nil, &PlatformUnsupportedError{}
}
