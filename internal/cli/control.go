package cli

import (
	stdcontext "context"
	"errors"
	"log/slog"
	"time"

	units "github.com/docker/go-units"

	"github.com/Paintersrp/sockscope/internal/api"
	"github.com/Paintersrp/sockscope/internal/bridge"
	sslog "github.com/Paintersrp/sockscope/internal/log"
	"github.com/Paintersrp/sockscope/internal/metrics"
	"github.com/Paintersrp/sockscope/internal/runtime/process"
)

// ControlAPI exposes bridge operations for the HTTP control plane.
type ControlAPI struct {
	base   stdcontext.Context
	bridge *bridge.Bridge
	logger *slog.Logger
}

// NewControlAPI constructs a ControlAPI around b. Scans run under base, so
// cancelling base (host shutdown) is the only thing that kills a running
// scanner. The logger is taken from base.
func NewControlAPI(base stdcontext.Context, b *bridge.Bridge) *ControlAPI {
	if b == nil {
		return nil
	}
	if base == nil {
		base = stdcontext.Background()
	}
	return &ControlAPI{base: base, bridge: b, logger: sslog.FromContext(base)}
}

// Scan runs the scanner. If ctx ends first the caller gets ctx.Err() while
// the scan keeps running to completion in the background.
func (c *ControlAPI) Scan(ctx stdcontext.Context) (*api.ScanResult, error) {
	if c == nil || c.bridge == nil {
		return nil, errors.New("control API unavailable")
	}
	if ctx == nil {
		ctx = stdcontext.Background()
	}
	done := metrics.ScanStarted()
	start := time.Now()
	results := c.bridge.ScanAsync(c.base)
	select {
	case res := <-results:
		kind := bridge.Kind(res.Err)
		done(string(kind))
		if res.Err != nil {
			c.logger.Warn("scan failed", "resource", c.bridge.Resource(), "kind", kind, "err", res.Err)
			return nil, res.Err
		}
		c.logger.Info("scan complete", "resource", c.bridge.Resource(), "elapsed", units.HumanDuration(time.Since(start)))
		return &api.ScanResult{
			Resource:    c.bridge.Resource(),
			Output:      res.Output,
			CompletedAt: time.Now().UTC(),
		}, nil
	case <-ctx.Done():
		go func() {
			res := <-results
			done(string(bridge.Kind(res.Err)))
		}()
		c.logger.Debug("scan caller went away", "resource", c.bridge.Resource())
		return nil, ctx.Err()
	}
}

// Kill sends the termination signal to pid.
func (c *ControlAPI) Kill(ctx stdcontext.Context, pid int) (*api.KillResult, error) {
	if c == nil || c.bridge == nil {
		return nil, errors.New("control API unavailable")
	}
	if ctx == nil {
		ctx = stdcontext.Background()
	}
	// Signal delivery is a single syscall; once dispatched its result is
	// reported even if ctx ends meanwhile.
	err := c.bridge.Kill(ctx, pid)
	metrics.ObserveKill(string(bridge.Kind(err)))
	if err != nil {
		return nil, err
	}
	c.logger.Info("signal sent", "pid", pid)
	return &api.KillResult{
		PID:    pid,
		Signal: process.TermSignal.String(),
		SentAt: time.Now().UTC(),
	}, nil
}

var _ api.Controller = (*ControlAPI)(nil)
