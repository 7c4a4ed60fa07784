package locator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

func writeResource(t *testing.T, fs billy.Filesystem, name string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, name, []byte("print('ok')\n"), 0o644))
}

func TestResolvePrefersDevelopmentTree(t *testing.T) {
	t.Parallel()

	dev := memfs.New()
	bundled := memfs.New()
	writeResource(t, dev, DefaultResource)
	writeResource(t, bundled, DefaultResource)

	loc := New(NewFSBundle("/opt/sockscope", bundled), WithDevFilesystem("/src/sockscope", dev))

	got, err := loc.Resolve(DefaultResource)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/src/sockscope", "resources", "scanner.py"), got)
}

func TestResolveFallsBackToBundle(t *testing.T) {
	t.Parallel()

	bundled := memfs.New()
	writeResource(t, bundled, DefaultResource)

	loc := New(NewFSBundle("/opt/sockscope", bundled), WithDevFilesystem("/src/sockscope", memfs.New()))

	got, err := loc.Resolve(DefaultResource)
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/opt/sockscope", "resources", "scanner.py"), got)
}

func TestResolveMissingEverywhere(t *testing.T) {
	t.Parallel()

	loc := New(NewFSBundle("/opt/sockscope", memfs.New()), WithDevFilesystem("/src/sockscope", memfs.New()))

	_, err := loc.Resolve(DefaultResource)
	require.Error(t, err)

	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	require.Equal(t, DefaultResource, resErr.Name)
	require.ErrorIs(t, err, ErrNotBundled)
	require.Contains(t, err.Error(), "resolve resource resources/scanner.py failed")
}

func TestResolveWithoutBundle(t *testing.T) {
	t.Parallel()

	loc := New(nil, WithDevRoot(""))
	_, err := loc.Resolve(DefaultResource)

	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
}

func TestResolveRejectsEscapingNames(t *testing.T) {
	t.Parallel()

	bundled := memfs.New()
	loc := New(NewFSBundle("/opt/sockscope", bundled), WithDevRoot(""))

	for _, name := range []string{"", "   ", "../scanner.py", "resources/../../x", "/etc/passwd"} {
		_, err := loc.Resolve(name)
		var resErr *ResolutionError
		require.Truef(t, errors.As(err, &resErr), "expected resolution error for %q, got %v", name, err)
	}
}

func TestResolveOnHostFilesystem(t *testing.T) {
	t.Parallel()

	devDir := t.TempDir()
	bundleDir := t.TempDir()
	for _, dir := range []string{devDir, bundleDir} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "resources"), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(bundleDir, "resources", "scanner.py"), []byte("x"), 0o644))

	bundle, err := NewDirBundle(bundleDir)
	require.NoError(t, err)

	loc := New(bundle, WithDevRoot(devDir))
	got, err := loc.Resolve(DefaultResource)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(bundleDir, "resources", "scanner.py"), got)

	require.NoError(t, os.WriteFile(filepath.Join(devDir, "resources", "scanner.py"), []byte("x"), 0o644))
	got, err = loc.Resolve(DefaultResource)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(devDir, "resources", "scanner.py"), got)
}

func TestDevRootHonoursLinkerOverride(t *testing.T) {
	orig := SourceRoot
	t.Cleanup(func() { SourceRoot = orig })

	SourceRoot = "/build/tree"
	require.Equal(t, "/build/tree", DevRoot())
}

func TestDefaultResourceShipsInSourceTree(t *testing.T) {
	root := DevRoot()
	if root == "" {
		t.Skip("built without a source tree")
	}

	got, err := New(nil).Resolve(DefaultResource)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "resources", "scanner.py"), got)
}
