//go:build !windows

package process

import (
	"os"
	"syscall"
)

func signalOf(state *os.ProcessState) os.Signal {
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return nil
	}
	return ws.Signal()
}
