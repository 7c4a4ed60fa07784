//go:build !windows

package process

import (
	"os"
	"syscall"
)

// TermSignal is the signal Terminate delivers.
var TermSignal os.Signal = syscall.SIGTERM

// Terminate delivers SIGTERM to pid. A nil error means the signal was
// delivered, not that the process has exited.
func Terminate(pid int) error {
	if err := validPID(pid); err != nil {
		return &SignalError{PID: pid, Signal: TermSignal, Err: err}
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return &SignalError{PID: pid, Signal: TermSignal, Err: err}
	}
	return nil
}
