package config

import (
	"fmt"
	"net"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/Paintersrp/sockscope/internal/locator"
	"github.com/Paintersrp/sockscope/internal/runtime/process"
)

const (
	DefaultLogLevel          = "info"
	DefaultAPIAddr           = "127.0.0.1:7664"
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

var logLevels = map[string]struct{}{
	"trace": {},
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() error {
	if strings.TrimSpace(c.Interpreter) == "" {
		c.Interpreter = process.DefaultInterpreter
	}
	if strings.TrimSpace(c.Resource) == "" {
		c.Resource = locator.DefaultResource
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.Baseline == "" {
		c.Baseline = defaultBaselinePath()
	}
	if c.API.Addr == "" {
		c.API.Addr = DefaultAPIAddr
	}
	if !c.API.ReadHeaderTimeout.IsSet() {
		c.API.ReadHeaderTimeout.Duration = DefaultReadHeaderTimeout
	}
	if !c.API.ShutdownTimeout.IsSet() {
		c.API.ShutdownTimeout.Duration = DefaultShutdownTimeout
	}
	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if strings.ContainsAny(c.Interpreter, "\n\r") {
		return fmt.Errorf("%s: must be a single command", fieldPath("interpreter"))
	}
	if err := validateResource(c.Resource); err != nil {
		return fmt.Errorf("%s: %w", fieldPath("resource"), err)
	}
	if _, ok := logLevels[c.LogLevel]; !ok {
		return fmt.Errorf("%s: unknown level %q", fieldPath("logLevel"), c.LogLevel)
	}
	if _, _, err := net.SplitHostPort(c.API.Addr); err != nil {
		return fmt.Errorf("%s: %w", fieldPath("api", "addr"), err)
	}
	if c.API.ReadHeaderTimeout.Duration < 0 {
		return fmt.Errorf("%s: must not be negative", fieldPath("api", "readHeaderTimeout"))
	}
	if c.API.ShutdownTimeout.Duration < 0 {
		return fmt.Errorf("%s: must not be negative", fieldPath("api", "shutdownTimeout"))
	}
	return nil
}

func validateResource(name string) error {
	slashed := filepath.ToSlash(name)
	if path.IsAbs(slashed) || filepath.IsAbs(name) {
		return fmt.Errorf("%q must be relative", name)
	}
	clean := path.Clean(slashed)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%q escapes the resource root", name)
	}
	return nil
}

func defaultBaselinePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "sockscope-baseline.yaml"
	}
	return filepath.Join(dir, "sockscope", "baseline.yaml")
}
