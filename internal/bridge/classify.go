package bridge

import (
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/Paintersrp/sockscope/internal/runtime/process"
)

// Classify turns a finished launch into the scan payload or an
// ExecutionError. Only a normal exit with code 0 succeeds.
func Classify(name string, outcome *process.Outcome) (string, error) {
	if outcome.Success() {
		return decodeLossy(outcome.Stdout), nil
	}
	return "", &ExecutionError{
		Name:     name,
		ExitCode: outcome.ExitCode,
		Signal:   outcome.Signal,
		Stdout:   decodeLossy(outcome.Stdout),
		Stderr:   decodeLossy(outcome.Stderr),
	}
}

// decodeLossy replaces invalid UTF-8 with U+FFFD and never fails.
func decodeLossy(b []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(out)
}
