package process

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultInterpreter runs the scanner artifact.
const DefaultInterpreter = "python3"

// Outcome captures how a launched child terminated.
type Outcome struct {
	// ExitCode is -1 when the child was terminated by a signal.
	ExitCode int
	// Signal is set only when the child was terminated by a signal.
	Signal   os.Signal
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Exited reports whether the child exited normally with a code.
func (o *Outcome) Exited() bool {
	return o.ExitCode >= 0
}

// Success reports whether the child exited normally with code 0.
func (o *Outcome) Success() bool {
	return o.ExitCode == 0
}

// SpawnError reports that the operating system could not create a process.
type SpawnError struct {
	Command string
	Args    []string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s failed: %v", e.commandLine(), e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

func (e *SpawnError) commandLine() string {
	if len(e.Args) == 0 {
		return e.Command
	}
	return e.Command + " " + strings.Join(e.Args, " ")
}

// Launcher runs artifacts through an interpreter.
type Launcher struct {
	Interpreter string
}

// NewLauncher constructs a Launcher. An empty interpreter selects
// DefaultInterpreter.
func NewLauncher(interpreter string) *Launcher {
	return &Launcher{Interpreter: interpreter}
}

func (l *Launcher) interpreter() string {
	if l == nil || strings.TrimSpace(l.Interpreter) == "" {
		return DefaultInterpreter
	}
	return l.Interpreter
}

// Run executes path with the interpreter and blocks until the child exits.
// A non-zero exit is reported through the Outcome, not as an error. ctx is
// only consulted to kill the child when the host shuts down.
func (l *Launcher) Run(ctx context.Context, path string) (*Outcome, error) {
	interp := l.interpreter()
	cmd := exec.CommandContext(ctx, interp, path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Command: interp, Args: []string{path}, Err: err}
	}

	waitErr := cmd.Wait()
	state := cmd.ProcessState
	if state == nil {
		return nil, &SpawnError{Command: interp, Args: []string{path}, Err: waitErr}
	}

	return &Outcome{
		ExitCode: state.ExitCode(),
		Signal:   signalOf(state),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(started),
	}, nil
}
