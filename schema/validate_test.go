package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestReportProblemsUseDottedPaths(t *testing.T) {
	doc := map[string]any{
		"listeners": []any{
			map[string]any{"process": "a", "proto": "TCP", "port": 22},
			map[string]any{"process": "b", "proto": "UDP", "port": 53},
			map[string]any{"process": "c", "proto": "TCP", "port": 70000},
		},
	}

	err := Report.Validate(doc)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Problems) != 1 {
		t.Fatalf("expected one problem, got %+v", verr.Problems)
	}
	if got := verr.Problems[0].Path; got != "listeners[2].port" {
		t.Fatalf("unexpected path %q", got)
	}
	if !strings.HasPrefix(err.Error(), "schema validation failed:\n- listeners[2].port: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestConfigAcceptsYAMLStyleIntegers(t *testing.T) {
	doc := map[string]any{
		"interpreter": "python3",
		"api":         map[string]any{"addr": "127.0.0.1:7664"},
	}
	if err := Config.Validate(doc); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestConfigRootProblemsNameTheDocument(t *testing.T) {
	err := Config.Validate(map[string]any{"interpeter": "python3"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Problems[0].Path != "config" {
		t.Fatalf("expected root path config, got %q", verr.Problems[0].Path)
	}
	if !strings.Contains(verr.Problems[0].Message, "interpeter") {
		t.Fatalf("expected unknown key in message, got %q", verr.Problems[0].Message)
	}
}

func TestReportRequiresListeners(t *testing.T) {
	err := Report.Validate(map[string]any{"host": "lab"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Problems[0].Path != "report" {
		t.Fatalf("expected root path report, got %q", verr.Problems[0].Path)
	}
}
