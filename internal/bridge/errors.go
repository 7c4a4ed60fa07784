package bridge

import (
	stdcontext "context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Paintersrp/sockscope/internal/locator"
	"github.com/Paintersrp/sockscope/internal/runtime/process"
)

// ErrorKind tags the failure classes a bridge operation can produce.
type ErrorKind string

const (
	KindNone       ErrorKind = ""
	KindResolution ErrorKind = "resolution"
	KindSpawn      ErrorKind = "spawn"
	KindExecution  ErrorKind = "execution"
	KindSignal     ErrorKind = "signal"
	KindCanceled   ErrorKind = "canceled"
	KindUnknown    ErrorKind = "unknown"
)

// ExecutionError reports that the artifact ran but did not exit cleanly.
type ExecutionError struct {
	Name string
	// ExitCode is -1 when the artifact was terminated by a signal.
	ExitCode int
	Signal   os.Signal
	Stdout   string
	Stderr   string
}

// HasExitCode reports whether the artifact exited with a code.
func (e *ExecutionError) HasExitCode() bool {
	return e.ExitCode >= 0
}

func (e *ExecutionError) Error() string {
	var b strings.Builder
	if e.HasExitCode() {
		fmt.Fprintf(&b, "%s exited with code %d", e.Name, e.ExitCode)
	} else {
		signal := "unknown"
		if e.Signal != nil {
			signal = e.Signal.String()
		}
		fmt.Fprintf(&b, "%s exited with no exit code (signal: %s)", e.Name, signal)
	}
	fmt.Fprintf(&b, "\nstdout: %s\nstderr: %s", e.Stdout, e.Stderr)
	return b.String()
}

// Kind classifies err.
func Kind(err error) ErrorKind {
	var (
		resErr   *locator.ResolutionError
		spawnErr *process.SpawnError
		execErr  *ExecutionError
		sigErr   *process.SignalError
	)
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &resErr):
		return KindResolution
	case errors.As(err, &spawnErr):
		return KindSpawn
	case errors.As(err, &execErr):
		return KindExecution
	case errors.As(err, &sigErr):
		return KindSignal
	case errors.Is(err, stdcontext.Canceled), errors.Is(err, stdcontext.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnknown
	}
}

// Message renders err for presentation to a user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
