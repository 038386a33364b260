package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"

	"github.com/fulmenhq/resgen/pkg/ignore"
	"github.com/fulmenhq/resgen/pkg/logger"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// SourceScanError reports a directory listing failure other than the
// directory not existing.
type SourceScanError struct {
	Path string
	Err  error
}

func (e *SourceScanError) Error() string {
	return fmt.Sprintf("scan source images in %s: %v", e.Path, e.Err)
}

func (e *SourceScanError) Unwrap() error { return e.Err }

// Options configures a Scanner.
type Options struct {
	// ResourceDir is the shared resource root; platform overrides live in
	// ResourceDir/<platform>.
	ResourceDir string
	// Exclude holds doublestar globs matched against paths relative to
	// ResourceDir.
	Exclude []string
	// Ignore holds .resgenignore patterns; nil ignores nothing.
	Ignore *ignore.Matcher
	// Concurrency caps parallel listings (0 = runtime.NumCPU()).
	Concurrency int
}

// Scanner lists candidate source images.
type Scanner struct {
	fs   afero.Fs
	opts Options
}

// NewScanner creates a scanner over fsys.
func NewScanner(fsys afero.Fs, opts Options) *Scanner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	return &Scanner{fs: fsys, opts: opts}
}

// Locations returns the resource root followed by one override directory per
// platform, in that order.
func (s *Scanner) Locations(platforms []string) []Location {
	locs := make([]Location, 0, len(platforms)+1)
	locs = append(locs, Location{Platform: GlobalScope, Dir: s.opts.ResourceDir})
	for _, p := range platforms {
		locs = append(locs, Location{Platform: p, Dir: filepath.Join(s.opts.ResourceDir, p)})
	}
	return locs
}

// Scan lists every location concurrently and returns the surviving candidates
// in location order, then file name order. Missing directories contribute no
// candidates; other failures are returned as *SourceScanError values joined
// together. No precedence is applied here.
func (s *Scanner) Scan(ctx context.Context, platforms, categories []string) ([]Candidate, error) {
	locs := s.Locations(platforms)
	cls := newClassifier(categories, s.opts.Exclude, s.opts.Ignore)

	found := make([][]Candidate, len(locs))
	errs := make([]error, len(locs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, loc := range locs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			candidates, err := s.scanLocation(loc, cls)
			if err != nil {
				errs[i] = err
				return err
			}
			found[i] = candidates
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

	var out []Candidate
	for _, candidates := range found {
		out = append(out, candidates...)
	}
	logger.Debug("Source scan complete", logger.Int("locations", len(locs)), logger.Int("candidates", len(out)))
	return out, nil
}

func (s *Scanner) scanLocation(loc Location, cls *classifier) ([]Candidate, error) {
	entries, err := afero.ReadDir(s.fs, loc.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Trace("Source directory absent", logger.String("path", loc.Dir))
			return nil, nil
		}
		return nil, &SourceScanError{Path: loc.Dir, Err: err}
	}

	var out []Candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if c, ok := cls.classify(loc, relPath(loc, name), name); ok {
			out = append(out, c)
		}
	}
	return out, nil
}
