package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type baselineFile struct {
	Listeners []Listener `yaml:"listeners"`
}

// LoadBaseline reads a saved baseline. A missing file is an empty baseline.
func LoadBaseline(path string) ([]Listener, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("load baseline: %w", err)
	}
	var doc baselineFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: decode baseline: %w", path, err)
	}
	return doc.Listeners, nil
}

// SaveBaseline replaces the baseline at path.
func SaveBaseline(path string, listeners []Listener) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("save baseline: %w", err)
	}
	data, err := yaml.Marshal(baselineFile{Listeners: listeners})
	if err != nil {
		return fmt.Errorf("save baseline: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("save baseline: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("save baseline: %w", err)
	}
	return nil
}

// ClearBaseline removes the baseline at path.
func ClearBaseline(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear baseline: %w", err)
	}
	return nil
}
