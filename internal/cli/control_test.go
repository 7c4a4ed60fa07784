package cli

import (
	stdcontext "context"
	"errors"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/sockscope/internal/bridge"
	sslog "github.com/Paintersrp/sockscope/internal/log"
	"github.com/Paintersrp/sockscope/internal/runtime/process"
)

type stubResolver struct{}

func (stubResolver) Resolve(name string) (string, error) {
	return "/opt/sockscope/" + name, nil
}

type stubRunner struct {
	release chan struct{}
	outcome *process.Outcome
}

func (r *stubRunner) Run(ctx stdcontext.Context, path string) (*process.Outcome, error) {
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.outcome, nil
}

func TestControlAPIScan(t *testing.T) {
	runner := &stubRunner{outcome: &process.Outcome{ExitCode: 0, Stdout: []byte("OK\n")}}
	control := NewControlAPI(stdcontext.Background(), bridge.New(stubResolver{}, runner))

	result, err := control.Scan(stdcontext.Background())
	if err != nil {
		t.Fatalf("scan returned error: %v", err)
	}
	if result.Output != "OK\n" || result.Resource != "resources/scanner.py" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.CompletedAt.IsZero() {
		t.Fatalf("expected completion time")
	}
}

func TestControlAPIScanExecutionError(t *testing.T) {
	runner := &stubRunner{outcome: &process.Outcome{ExitCode: 2, Stderr: []byte("boom")}}
	control := NewControlAPI(stdcontext.Background(), bridge.New(stubResolver{}, runner))

	_, err := control.Scan(stdcontext.Background())
	var execErr *bridge.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected execution error, got %v", err)
	}
	if execErr.ExitCode != 2 || execErr.Stderr != "boom" {
		t.Fatalf("unexpected execution error %+v", execErr)
	}
}

func TestControlAPIScanCallerGoesAway(t *testing.T) {
	runner := &stubRunner{
		release: make(chan struct{}),
		outcome: &process.Outcome{ExitCode: 0, Stdout: []byte("late\n")},
	}
	control := NewControlAPI(stdcontext.Background(), bridge.New(stubResolver{}, runner))

	reqCtx, cancel := stdcontext.WithCancel(stdcontext.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := control.Scan(reqCtx)
		errCh <- err
	}()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, stdcontext.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("scan did not return after caller cancelled")
	}
	close(runner.release)
}

func TestControlAPIKill(t *testing.T) {
	var got int
	b := bridge.New(stubResolver{}, &stubRunner{}, bridge.WithTerminator(func(pid int) error {
		got = pid
		return nil
	}))
	control := NewControlAPI(stdcontext.Background(), b)

	result, err := control.Kill(stdcontext.Background(), 4242)
	if err != nil {
		t.Fatalf("kill returned error: %v", err)
	}
	if got != 4242 || result.PID != 4242 {
		t.Fatalf("unexpected pid: terminator=%d result=%d", got, result.PID)
	}
	if result.Signal != process.TermSignal.String() {
		t.Fatalf("unexpected signal %q", result.Signal)
	}
}

func TestControlAPIKillReportsDeliveredSignalAfterCancel(t *testing.T) {
	ctx, cancel := stdcontext.WithCancel(stdcontext.Background())
	defer cancel()
	calls := 0
	b := bridge.New(stubResolver{}, &stubRunner{}, bridge.WithTerminator(func(int) error {
		calls++
		cancel()
		return nil
	}))
	control := NewControlAPI(stdcontext.Background(), b)

	result, err := control.Kill(ctx, 1234)
	if err != nil {
		t.Fatalf("delivered signal reported as failure: %v", err)
	}
	if calls != 1 || result == nil || result.PID != 1234 {
		t.Fatalf("unexpected result %+v after %d terminator calls", result, calls)
	}
}

func TestControlAPIKillSkipsCanceledRequest(t *testing.T) {
	ctx, cancel := stdcontext.WithCancel(stdcontext.Background())
	cancel()
	b := bridge.New(stubResolver{}, &stubRunner{}, bridge.WithTerminator(func(int) error {
		t.Fatalf("terminator called for canceled request")
		return nil
	}))

	_, err := NewControlAPI(stdcontext.Background(), b).Kill(ctx, 1234)
	if !errors.Is(err, stdcontext.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestControlAPIKillPropagatesSignalError(t *testing.T) {
	sigErr := &process.SignalError{PID: 7, Signal: process.TermSignal, Err: syscall.ESRCH}
	b := bridge.New(stubResolver{}, &stubRunner{}, bridge.WithTerminator(func(int) error { return sigErr }))
	control := NewControlAPI(stdcontext.Background(), b)

	_, err := control.Kill(stdcontext.Background(), 7)
	if !errors.Is(err, syscall.ESRCH) {
		t.Fatalf("expected ESRCH, got %v", err)
	}
	if bridge.Kind(err) != bridge.KindSignal {
		t.Fatalf("expected signal kind, got %s", bridge.Kind(err))
	}
}

func TestNewControlAPIRequiresBridge(t *testing.T) {
	if NewControlAPI(stdcontext.Background(), nil) != nil {
		t.Fatalf("expected nil control API without a bridge")
	}
}

func TestControlAPILogsThroughBaseContext(t *testing.T) {
	var logs strings.Builder
	base := sslog.WithLogger(stdcontext.Background(), sslog.New(&logs, "info"))
	b := bridge.New(stubResolver{}, &stubRunner{}, bridge.WithTerminator(func(int) error { return nil }))

	if _, err := NewControlAPI(base, b).Kill(stdcontext.Background(), 55); err != nil {
		t.Fatalf("kill returned error: %v", err)
	}
	if !strings.Contains(logs.String(), "signal sent") || !strings.Contains(logs.String(), "pid=55") {
		t.Fatalf("expected kill logged through base context logger, got %q", logs.String())
	}
}

func TestCommandContextCarriesLogger(t *testing.T) {
	logger := sslog.Discard()
	ctx := &context{logger: logger}

	got := sslog.FromContext(ctx.commandContext(&cobra.Command{}))
	if got != logger {
		t.Fatalf("expected command context to carry the host logger")
	}
}
