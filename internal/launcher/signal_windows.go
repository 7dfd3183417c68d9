//go:build windows

package launcher

import "os"

// terminate kills p; Windows has no SIGTERM for console children.
func terminate(p *os.Process) error {
	return p.Kill()
}
