package config

import (
	"os"
	"strings"
)

// Environment variables that override file values.
const (
	EnvInterpreter = "SOCKSCOPE_INTERPRETER"
	EnvResource    = "SOCKSCOPE_RESOURCE"
	EnvDevRoot     = "SOCKSCOPE_DEV_ROOT"
	EnvBundleDir   = "SOCKSCOPE_BUNDLE_DIR"
	EnvLogLevel    = "SOCKSCOPE_LOG_LEVEL"
	EnvBaseline    = "SOCKSCOPE_BASELINE"
	EnvAPIAddr     = "SOCKSCOPE_API_ADDR"
)

// ApplyEnv overlays SOCKSCOPE_* variables onto c. SOCKSCOPE_DEV_ROOT may be
// set to an empty value to disable the development override.
func (c *Config) ApplyEnv() {
	if value := strings.TrimSpace(os.Getenv(EnvInterpreter)); value != "" {
		c.Interpreter = value
	}
	if value := strings.TrimSpace(os.Getenv(EnvResource)); value != "" {
		c.Resource = value
	}
	if value, ok := os.LookupEnv(EnvDevRoot); ok {
		root := strings.TrimSpace(value)
		c.DevRoot = &root
	}
	if value := strings.TrimSpace(os.Getenv(EnvBundleDir)); value != "" {
		c.BundleDir = value
	}
	if value := strings.TrimSpace(os.Getenv(EnvLogLevel)); value != "" {
		c.LogLevel = strings.ToLower(value)
	}
	if value := strings.TrimSpace(os.Getenv(EnvBaseline)); value != "" {
		c.Baseline = value
	}
	if value := strings.TrimSpace(os.Getenv(EnvAPIAddr)); value != "" {
		c.API.Addr = value
	}
}
