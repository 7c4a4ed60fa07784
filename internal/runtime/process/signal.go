package process

import (
	"fmt"
	"math"
	"os"
	"syscall"
)

// SignalError reports that a signal could not be delivered to a process.
type SignalError struct {
	PID    int
	Signal os.Signal
	Err    error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("signal %v to pid %d failed: %v", e.Signal, e.PID, e.Err)
}

func (e *SignalError) Unwrap() error {
	return e.Err
}

// validPID rejects ids the kernel would treat as group or broadcast targets.
func validPID(pid int) error {
	if pid <= 0 || int64(pid) > math.MaxInt32 {
		return syscall.EINVAL
	}
	return nil
}
