//go:build !windows

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Paintersrp/sockscope/internal/config"
	sslog "github.com/Paintersrp/sockscope/internal/log"
)

const scannerReport = `{"host": "lab", "os": "Linux", "listeners": [
  {"process": "sshd", "pid": 812, "proto": "TCP", "port": 22, "exe": "/usr/sbin/sshd", "risk": ""},
  {"process": "miner", "pid": 9001, "proto": "TCP", "port": 4444, "exe": "/tmp/miner", "risk": "uncommon_port+suspicious_path"}
]}`

type cliEnv struct {
	dir      string
	baseline string
}

// newCLIEnv writes a shell scanner under a development root and returns the
// paths a test needs to drive the CLI against it.
func newCLIEnv(t *testing.T, script string) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	resources := filepath.Join(dir, "resources")
	if err := os.MkdirAll(resources, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(resources, "scanner.sh"), []byte(script), 0o644); err != nil {
		t.Fatalf("write scanner: %v", err)
	}
	return &cliEnv{dir: dir, baseline: filepath.Join(dir, "state", "baseline.yaml")}
}

func (e *cliEnv) config(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.Interpreter = "/bin/sh"
	cfg.Resource = "resources/scanner.sh"
	cfg.DevRoot = &e.dir
	cfg.BundleDir = filepath.Join(e.dir, "bundle")
	cfg.Baseline = e.baseline
	return cfg
}

func (e *cliEnv) run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd, ctx := newRootCommand()
	ctx.cfg = e.config(t)
	ctx.logger = sslog.Discard()

	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func reportScript(body string) string {
	return "cat <<'JSON'\n" + body + "\nJSON\n"
}
