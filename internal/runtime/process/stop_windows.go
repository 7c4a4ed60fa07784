//go:build windows

package process

import "os"

// TermSignal is the signal Terminate delivers. Windows offers no graceful
// signal for arbitrary processes, so termination is immediate.
var TermSignal = os.Kill

// Terminate ends pid.
func Terminate(pid int) error {
	if err := validPID(pid); err != nil {
		return &SignalError{PID: pid, Signal: TermSignal, Err: err}
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return &SignalError{PID: pid, Signal: TermSignal, Err: err}
	}
	defer proc.Release()
	if err := proc.Kill(); err != nil {
		return &SignalError{PID: pid, Signal: TermSignal, Err: err}
	}
	return nil
}
