//go:build !windows

package cli

import (
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/Paintersrp/sockscope/internal/api"
	"github.com/Paintersrp/sockscope/internal/runtime/process"
)

func TestKillTerminatesProcess(t *testing.T) {
	env := newCLIEnv(t, "echo unused\n")

	child := exec.Command("sleep", "30")
	if err := child.Start(); err != nil {
		t.Fatalf("start sleep: %v", err)
	}
	waitErr := make(chan error, 1)
	go func() { waitErr <- child.Wait() }()

	stdout, _, err := env.run(t, "kill", strconv.Itoa(child.Process.Pid))
	if err != nil {
		t.Fatalf("kill returned error: %v", err)
	}
	if !strings.Contains(stdout, "pid "+strconv.Itoa(child.Process.Pid)) {
		t.Fatalf("unexpected output %q", stdout)
	}

	select {
	case <-waitErr:
	case <-time.After(5 * time.Second):
		_ = child.Process.Kill()
		t.Fatalf("process did not exit after kill")
	}
	status, ok := child.ProcessState.Sys().(syscall.WaitStatus)
	if !ok || !status.Signaled() || status.Signal() != syscall.SIGTERM {
		t.Fatalf("expected SIGTERM termination, got %v", child.ProcessState)
	}
}

func TestKillRejectsMalformedPID(t *testing.T) {
	env := newCLIEnv(t, "echo unused\n")

	_, _, err := env.run(t, "kill", "abc")
	if !errors.Is(err, api.ErrInvalidPID) {
		t.Fatalf("expected ErrInvalidPID, got %v", err)
	}
}

func TestKillRejectsNonPositivePID(t *testing.T) {
	env := newCLIEnv(t, "echo unused\n")

	_, _, err := env.run(t, "kill", "0")
	var sigErr *process.SignalError
	if !errors.As(err, &sigErr) {
		t.Fatalf("expected SignalError, got %v", err)
	}
	if !errors.Is(err, syscall.EINVAL) {
		t.Fatalf("expected EINVAL, got %v", err)
	}
}
