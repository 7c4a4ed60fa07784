// Package locator resolves logical resource names to files on disk.
//
// A copy found under the source tree the binary was built from always wins
// over the copy packaged next to the executable, so local edits to a resource
// take effect without rebuilding the bundle.
package locator

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// DefaultResource is the scanner artifact shipped with sockscope.
const DefaultResource = "resources/scanner.py"

// SourceRoot overrides the build-time source tree location. It is meant to be
// set with -ldflags "-X github.com/Paintersrp/sockscope/internal/locator.SourceRoot=...".
var SourceRoot string

// ErrNotBundled reports that the packaged bundle does not contain a resource.
var ErrNotBundled = errors.New("resource not bundled")

// ResolutionError reports that a resource could not be found in either layout.
type ResolutionError struct {
	Name string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve resource %s failed: %v", e.Name, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Bundle resolves resource names against a packaged-resource namespace.
type Bundle interface {
	Resolve(name string) (string, error)
}

// DevRoot returns the source tree the binary was built from.
func DevRoot() string {
	if SourceRoot != "" {
		return SourceRoot
	}
	_, file, _, ok := goruntime.Caller(0)
	if !ok || !filepath.IsAbs(file) {
		// Built with -trimpath; there is no source tree to prefer.
		return ""
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

// Locator resolves resources, preferring the development tree.
type Locator struct {
	devRoot string
	dev     billy.Filesystem
	bundle  Bundle
}

// Option configures a Locator.
type Option func(*Locator)

// WithDevRoot replaces the build-time source tree with root. An empty root
// disables the development override.
func WithDevRoot(root string) Option {
	return func(l *Locator) {
		l.devRoot = root
		l.dev = nil
		if root != "" {
			l.dev = osfs.New(root)
		}
	}
}

// WithDevFilesystem serves the development tree from fs, reporting paths
// under root.
func WithDevFilesystem(root string, fs billy.Filesystem) Option {
	return func(l *Locator) {
		l.devRoot = root
		l.dev = fs
	}
}

// New constructs a Locator that falls back to bundle.
func New(bundle Bundle, opts ...Option) *Locator {
	l := &Locator{bundle: bundle}
	WithDevRoot(DevRoot())(l)
	for _, opt := range opts {
		opt(l)
	}
	if l.devRoot != "" {
		if abs, err := filepath.Abs(l.devRoot); err == nil {
			l.devRoot = abs
		}
	}
	return l
}

// Resolve returns an existing path for name.
func (l *Locator) Resolve(name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", &ResolutionError{Name: name, Err: err}
	}

	if l.dev != nil {
		if _, err := l.dev.Stat(clean); err == nil {
			return filepath.Join(l.devRoot, filepath.FromSlash(clean)), nil
		}
	}

	if l.bundle == nil {
		return "", &ResolutionError{Name: name, Err: errors.New("no resource bundle configured")}
	}
	resolved, err := l.bundle.Resolve(clean)
	if err != nil {
		return "", &ResolutionError{Name: name, Err: err}
	}
	return resolved, nil
}

func cleanName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errors.New("empty resource name")
	}
	slashed := filepath.ToSlash(trimmed)
	if path.IsAbs(slashed) || filepath.IsAbs(trimmed) {
		return "", fmt.Errorf("resource name %q must be relative", name)
	}
	clean := path.Clean(slashed)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("resource name %q escapes its root", name)
	}
	return clean, nil
}

func statExisting(fs billy.Filesystem, name string) error {
	_, err := fs.Stat(name)
	switch {
	case err == nil:
		return nil
	case os.IsNotExist(err):
		return fmt.Errorf("%w: %s", ErrNotBundled, name)
	default:
		return fmt.Errorf("stat %s: %w", name, err)
	}
}
