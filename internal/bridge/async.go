package bridge

import stdcontext "context"

// ScanResult carries the result of an asynchronous scan.
type ScanResult struct {
	Output string
	Err    error
}

// ScanAsync runs Scan on its own goroutine. The channel receives exactly one
// result and is then closed, so an event loop can select on it instead of
// blocking.
func (b *Bridge) ScanAsync(ctx stdcontext.Context) <-chan ScanResult {
	ch := make(chan ScanResult, 1)
	go func() {
		defer close(ch)
		out, err := b.Scan(ctx)
		ch <- ScanResult{Output: out, Err: err}
	}()
	return ch
}

// KillAsync runs Kill on its own goroutine.
func (b *Bridge) KillAsync(ctx stdcontext.Context, pid int) <-chan error {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		ch <- b.Kill(ctx, pid)
	}()
	return ch
}
