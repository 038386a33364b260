package dest

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fulmenhq/resgen/pkg/manifest"
	"github.com/fulmenhq/resgen/pkg/safeio"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFs records MkdirAll calls.
type countingFs struct {
	afero.Fs
	calls atomic.Int32
	mu    sync.Mutex
	paths []string
}

func (c *countingFs) MkdirAll(path string, perm os.FileMode) error {
	c.calls.Add(1)
	c.mu.Lock()
	c.paths = append(c.paths, path)
	c.mu.Unlock()
	return c.Fs.MkdirAll(path, perm)
}

// failingFs rejects MkdirAll for selected directories.
type failingFs struct {
	afero.Fs
	fail map[string]bool
}

func (f *failingFs) MkdirAll(path string, perm os.FileMode) error {
	if f.fail[path] {
		return &os.PathError{Op: "mkdir", Path: path, Err: fs.ErrPermission}
	}
	return f.Fs.MkdirAll(path, perm)
}

func TestPathFor(t *testing.T) {
	a := manifest.RequiredAsset{Platform: "android", ResourceCategory: "icon", Name: "icon.png"}
	assert.Equal(t, "resources/android/icon/icon.png", PathFor("resources", a))
}

func TestDirectories(t *testing.T) {
	paths := []string{
		"resources/android/icon/a.png",
		"resources/android/icon/b.png",
		"resources/ios/icon/c.png",
		"resources/android/icon/d.png",
		"resources/ios/icon/e.png",
	}
	assert.Equal(t, []string{"resources/android/icon", "resources/ios/icon"}, Directories(paths))
	assert.Empty(t, Directories(nil))
}

func TestPrepare_DedupsByDirectory(t *testing.T) {
	fsys := &countingFs{Fs: afero.NewMemMapFs()}
	paths := []string{
		"resources/android/icon/a.png",
		"resources/android/icon/b.png",
		"resources/android/icon/c.png",
		"resources/ios/splash/d.png",
		"resources/ios/splash/e.png",
	}

	dirs, err := NewPreparer(fsys, "resources", 4).Prepare(context.Background(), paths)
	require.NoError(t, err)
	assert.Len(t, dirs, 2)
	assert.EqualValues(t, 2, fsys.calls.Load())
	assert.ElementsMatch(t, []string{"resources/android/icon", "resources/ios/splash"}, fsys.paths)

	for _, dir := range dirs {
		ok, err := afero.DirExists(fsys, dir)
		require.NoError(t, err)
		assert.True(t, ok, "directory %s should exist", dir)
	}
}

func TestPrepare_Idempotent(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("resources/android/icon", 0o755))

	p := NewPreparer(fsys, "resources", 0)
	for i := 0; i < 2; i++ {
		_, err := p.Prepare(context.Background(), []string{"resources/android/icon/icon.png"})
		require.NoError(t, err)
	}
}

func TestPrepare_FailureIsFatal(t *testing.T) {
	fsys := &failingFs{Fs: afero.NewMemMapFs(), fail: map[string]bool{"resources/ios/icon": true}}

	_, err := NewPreparer(fsys, "resources", 2).Prepare(context.Background(), []string{
		"resources/android/icon/a.png",
		"resources/ios/icon/b.png",
	})
	require.Error(t, err)

	var prepErr *DestinationPrepError
	require.ErrorAs(t, err, &prepErr)
	assert.Equal(t, "resources/ios/icon", prepErr.Path)
	assert.True(t, errors.Is(err, fs.ErrPermission))
}

func TestPrepare_FileInTheWay(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "android"), []byte("not a dir"), 0o644))

	_, err := NewPreparer(fsys, root, 1).Prepare(context.Background(), []string{filepath.Join(root, "android", "icon", "icon.png")})
	var prepErr *DestinationPrepError
	require.ErrorAs(t, err, &prepErr)
	assert.Equal(t, filepath.Join(root, "android", "icon"), prepErr.Path)
}

func TestPrepare_RejectsEscapingPaths(t *testing.T) {
	fsys := &countingFs{Fs: afero.NewMemMapFs()}
	a := manifest.RequiredAsset{Platform: "android", ResourceCategory: "icon", Name: "../../../escape.png"}

	_, err := NewPreparer(fsys, "resources", 1).Prepare(context.Background(), []string{PathFor("resources", a)})
	var prepErr *DestinationPrepError
	require.ErrorAs(t, err, &prepErr)
	assert.ErrorIs(t, err, safeio.ErrOutsideBase)
	assert.EqualValues(t, 0, fsys.calls.Load())
}

func TestCheck_ListsWithoutCreating(t *testing.T) {
	fsys := &countingFs{Fs: afero.NewMemMapFs()}
	icon := manifest.RequiredAsset{Platform: "ios", ResourceCategory: "icon", Name: "icon-40.png"}
	splash := manifest.RequiredAsset{Platform: "ios", ResourceCategory: "splash", Name: "Default.png"}

	dirs, err := NewPreparer(fsys, "resources", 1).Check([]string{PathFor("resources", icon), PathFor("resources", splash)})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("resources", "ios", "icon"), filepath.Join("resources", "ios", "splash")}, dirs)
	assert.EqualValues(t, 0, fsys.calls.Load())
}

func TestCheck_RejectsEscapingPaths(t *testing.T) {
	a := manifest.RequiredAsset{Platform: "android", ResourceCategory: "icon", Name: "../../../escape.png"}

	_, err := NewPreparer(afero.NewMemMapFs(), "resources", 1).Check([]string{PathFor("resources", a)})
	assert.ErrorIs(t, err, safeio.ErrOutsideBase)
}
