package config

import (
	"fmt"
	"time"
)

// DefaultFile is the configuration file read when no path is given.
const DefaultFile = "sockscope.yaml"

// Duration wraps time.Duration for YAML unmarshalling.
type Duration struct {
	time.Duration
	explicit bool
}

// UnmarshalText parses a textual duration, accepting empty strings.
func (d *Duration) UnmarshalText(text []byte) error {
	d.explicit = true
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = dur
	return nil
}

// MarshalText renders the duration using time.Duration formatting.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// IsSet reports whether the duration was explicitly provided or non-zero.
func (d Duration) IsSet() bool {
	return d.explicit || d.Duration != 0
}

// Config mirrors the sockscope.yaml document structure.
type Config struct {
	Interpreter string `yaml:"interpreter"`
	Resource    string `yaml:"resource"`
	// DevRoot is nil when unset, and an empty string disables the
	// development override.
	DevRoot   *string `yaml:"devRoot"`
	BundleDir string  `yaml:"bundleDir"`
	LogLevel  string  `yaml:"logLevel"`
	Baseline  string  `yaml:"baseline"`
	API       APISpec `yaml:"api"`
}

// APISpec configures the HTTP control API.
type APISpec struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"readHeaderTimeout"`
	ShutdownTimeout   Duration `yaml:"shutdownTimeout"`
}

func fieldPath(parts ...string) string {
	path := ""
	for i, part := range parts {
		if i > 0 {
			path += "."
		}
		path += part
	}
	return path
}
