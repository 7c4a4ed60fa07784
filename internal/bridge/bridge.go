// Package bridge exposes the two operations a host shell invokes: scan runs
// the located scanner artifact and returns its output, kill sends a graceful
// termination signal to a process id.
//
// The operations are independent. Scan never reports the id of the process
// it starts, and kill accepts any id; it is a general-purpose signal
// primitive rather than a way to cancel a scan. Neither operation logs,
// queues or deduplicates, so overlapping calls run fully in parallel.
package bridge

import (
	stdcontext "context"

	"github.com/Paintersrp/sockscope/internal/locator"
	"github.com/Paintersrp/sockscope/internal/runtime/process"
)

// Resolver maps a resource name to an existing path.
type Resolver interface {
	Resolve(name string) (string, error)
}

// Runner launches a resolved artifact and waits for it.
type Runner interface {
	Run(ctx stdcontext.Context, path string) (*process.Outcome, error)
}

// Bridge wires the locator, launcher and terminator together.
type Bridge struct {
	resource  string
	resolver  Resolver
	runner    Runner
	terminate func(pid int) error
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithResource selects the artifact to scan with.
func WithResource(name string) Option {
	return func(b *Bridge) {
		if name != "" {
			b.resource = name
		}
	}
}

// WithTerminator replaces the signal primitive used by Kill.
func WithTerminator(fn func(pid int) error) Option {
	return func(b *Bridge) {
		if fn != nil {
			b.terminate = fn
		}
	}
}

// New constructs a Bridge.
func New(resolver Resolver, runner Runner, opts ...Option) *Bridge {
	b := &Bridge{
		resource:  locator.DefaultResource,
		resolver:  resolver,
		runner:    runner,
		terminate: process.Terminate,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Resource returns the artifact name scans resolve.
func (b *Bridge) Resource() string {
	return b.resource
}

// Scan locates the artifact, runs it to completion and returns its stdout.
// The calling goroutine is blocked for the artifact's whole lifetime.
func (b *Bridge) Scan(ctx stdcontext.Context) (string, error) {
	path, err := b.resolver.Resolve(b.resource)
	if err != nil {
		return "", err
	}
	outcome, err := b.runner.Run(ctx, path)
	if err != nil {
		return "", err
	}
	return Classify(b.resource, outcome)
}

// Kill sends the termination signal to pid. Success means the signal was
// delivered; the process may still be running.
func (b *Bridge) Kill(ctx stdcontext.Context, pid int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.terminate(pid)
}
