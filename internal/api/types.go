package api

import (
	stdcontext "context"
	"errors"
	"time"
)

// ErrInvalidPID reports a request whose pid is not a positive integer.
var ErrInvalidPID = errors.New("invalid pid")

// ScanResult carries the scanner output returned to API consumers.
type ScanResult struct {
	Resource    string    `json:"resource"`
	Output      string    `json:"output"`
	CompletedAt time.Time `json:"completed_at"`
}

// KillResult captures the outcome of a termination request.
type KillResult struct {
	PID    int       `json:"pid"`
	Signal string    `json:"signal"`
	SentAt time.Time `json:"sent_at"`
}

// Controller exposes the bridge operations required by control servers.
type Controller interface {
	Scan(stdcontext.Context) (*ScanResult, error)
	Kill(stdcontext.Context, int) (*KillResult, error)
}
