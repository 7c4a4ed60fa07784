package locator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// DirBundle resolves resources relative to a directory.
type DirBundle struct {
	root string
	fs   billy.Filesystem
}

// NewDirBundle returns a bundle rooted at dir on the host filesystem.
func NewDirBundle(dir string) (*DirBundle, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve bundle dir: %w", err)
	}
	return &DirBundle{root: root, fs: osfs.New(root)}, nil
}

// NewFSBundle returns a bundle served from fs, reporting paths under root.
func NewFSBundle(root string, fs billy.Filesystem) *DirBundle {
	return &DirBundle{root: root, fs: fs}
}

// ExecutableBundle returns the bundle installed alongside the running binary.
func ExecutableBundle() (*DirBundle, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return NewDirBundle(filepath.Dir(exe))
}

// Root returns the bundle directory.
func (b *DirBundle) Root() string {
	return b.root
}

// Resolve implements Bundle.
func (b *DirBundle) Resolve(name string) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if err := statExisting(b.fs, clean); err != nil {
		return "", err
	}
	return filepath.Join(b.root, filepath.FromSlash(clean)), nil
}
