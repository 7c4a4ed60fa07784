// Package process launches the scanner artifact and signals processes by id.
//
// A launch is a single blocking unit: the child is spawned, its stdout and
// stderr are collected in full, and Run returns once the operating system
// reports that it terminated. Nothing is tracked between launches, so the
// pids later passed to Terminate carry no ownership relationship with the
// processes started here.
//
// Terminate uses the native signal API. On Unix it delivers SIGTERM, which
// the target may handle or ignore. Windows has no graceful termination
// signal for arbitrary processes, so Terminate there ends the process
// outright; callers that need clean shutdown on Windows must arrange it
// with the target through other means.
package process
