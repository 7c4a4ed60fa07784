//go:build windows

package process

import "os"

// Windows processes always exit with a code.
func signalOf(*os.ProcessState) os.Signal {
	return nil
}
