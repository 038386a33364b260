// Package dest derives destination paths for required assets and creates the
// directories they live in.
package dest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/fulmenhq/resgen/pkg/logger"
	"github.com/fulmenhq/resgen/pkg/manifest"
	"github.com/fulmenhq/resgen/pkg/safeio"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// DestinationPrepError reports a directory that could not be created.
type DestinationPrepError struct {
	Path string
	Err  error
}

func (e *DestinationPrepError) Error() string {
	return fmt.Sprintf("prepare destination %s: %v", e.Path, e.Err)
}

func (e *DestinationPrepError) Unwrap() error { return e.Err }

// PathFor returns resourceDir/<platform>/<category>/<name>.
func PathFor(resourceDir string, a manifest.RequiredAsset) string {
	return filepath.Join(resourceDir, a.Platform, a.ResourceCategory, a.Name)
}

// Directories returns the distinct parent directories of paths in first-seen
// order.
func Directories(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	var dirs []string
	for _, p := range paths {
		dir := filepath.Dir(p)
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		dirs = append(dirs, dir)
	}
	return dirs
}

// Preparer creates destination directories under a resource root.
type Preparer struct {
	fs          afero.Fs
	root        string
	concurrency int
}

// NewPreparer creates a preparer. Every directory it creates must resolve
// inside root.
func NewPreparer(fsys afero.Fs, root string, concurrency int) *Preparer {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Preparer{fs: fsys, root: root, concurrency: concurrency}
}

// Check returns the directories Prepare would create without touching the
// filesystem. A directory outside the root is a *DestinationPrepError.
func (p *Preparer) Check(paths []string) ([]string, error) {
	dirs := Directories(paths)
	for _, dir := range dirs {
		if err := safeio.Contained(p.root, dir); err != nil {
			return nil, &DestinationPrepError{Path: dir, Err: err}
		}
	}
	return dirs, nil
}

// Prepare creates the parent directory of every path, once per directory,
// concurrently. Existing directories are fine; any other failure is a
// *DestinationPrepError. All observed failures are joined. The created
// directory list is returned in first-seen order.
func (p *Preparer) Prepare(ctx context.Context, paths []string) ([]string, error) {
	dirs, err := p.Check(paths)
	if err != nil {
		return nil, err
	}

	errs := make([]error, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, dir := range dirs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			if err := p.fs.MkdirAll(dir, 0o755); err != nil {
				errs[i] = &DestinationPrepError{Path: dir, Err: err}
				return errs[i]
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug("Destination directories ready", logger.Int("directories", len(dirs)))
	return dirs, nil
}
