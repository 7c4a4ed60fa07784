// Package report decodes the listener inventory printed by the scanner
// artifact and compares it against a saved baseline.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/go-connections/nat"

	sockschema "github.com/Paintersrp/sockscope/schema"
)

// Risk tags emitted by the scanner.
const (
	RiskUncommonPort   = "uncommon_port"
	RiskEphemeral      = "ephemeral"
	RiskSuspiciousPath = "suspicious_path"
	RiskWorldWritable  = "ww-exe"

	// RiskOK counts listeners carrying no risk tag.
	RiskOK = "ok"
)

// KnownRisks lists the tags in display order.
var KnownRisks = []string{RiskOK, RiskUncommonPort, RiskEphemeral, RiskSuspiciousPath, RiskWorldWritable}

// Report is the scanner's output document.
type Report struct {
	Host      string     `json:"host" yaml:"host"`
	OS        string     `json:"os" yaml:"os"`
	Listeners []Listener `json:"listeners" yaml:"listeners"`
}

// Listener is a single listening socket.
type Listener struct {
	Process string `json:"process" yaml:"process"`
	PID     int    `json:"pid" yaml:"pid"`
	Proto   string `json:"proto" yaml:"proto"`
	Port    int    `json:"port" yaml:"port"`
	Exe     string `json:"exe" yaml:"exe"`
	Risk    string `json:"risk" yaml:"risk"`
}

// Key identifies a listener across scans. The pid is excluded so restarted
// services still match their baseline entry.
func (l Listener) Key() string {
	return fmt.Sprintf("%s|%s|%s|%d", l.Process, l.Exe, l.Proto, l.Port)
}

// NatPort returns the listener's port in port/proto form.
func (l Listener) NatPort() (nat.Port, error) {
	return nat.NewPort(strings.ToLower(l.Proto), strconv.Itoa(l.Port))
}

// Endpoint renders the port for display, e.g. "8080/tcp".
func (l Listener) Endpoint() string {
	port, err := l.NatPort()
	if err != nil {
		return fmt.Sprintf("%s/%d", l.Proto, l.Port)
	}
	return string(port)
}

// Risks splits the listener's risk tags.
func (l Listener) Risks() []string {
	var tags []string
	for _, tag := range strings.Split(l.Risk, "+") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Risky reports whether the listener carries any risk tag.
func (l Listener) Risky() bool {
	return len(l.Risks()) > 0
}

// Parse decodes and validates scanner output.
func Parse(data []byte) (*Report, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("parse report: empty scanner output")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}

	if err := sockschema.Report.Validate(raw); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}

	var doc Report
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &doc, nil
}
