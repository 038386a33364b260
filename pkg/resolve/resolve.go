// Package resolve binds every required asset to its best source image.
//
// Precedence is strict: a candidate from the asset's own platform directory
// always wins; a candidate from the shared resource root is used only when no
// platform candidate exists. Ties inside one pass go to the extension listed
// first in source.SupportedExtensions, then to the lexically smaller path.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fulmenhq/resgen/pkg/dest"
	"github.com/fulmenhq/resgen/pkg/manifest"
	"github.com/fulmenhq/resgen/pkg/source"
)

// Job is a generation job: one required asset, its source image (empty when
// unresolved) and the path the generated image is written to.
type Job struct {
	Asset           manifest.RequiredAsset `json:"asset"`
	SourcePath      string                 `json:"source_path"`
	DestinationPath string                 `json:"destination_path"`
}

// Resolved reports whether a source image was found.
func (j Job) Resolved() bool {
	return j.SourcePath != ""
}

// UnresolvedAssetsError lists every asset for which no source image exists.
type UnresolvedAssetsError struct {
	Assets []manifest.RequiredAsset
}

func (e *UnresolvedAssetsError) Error() string {
	keys := make([]string, 0, len(e.Assets))
	for _, a := range e.Assets {
		keys = append(keys, a.Key())
	}
	return fmt.Sprintf("%d asset(s) have no source image: %s", len(e.Assets), strings.Join(keys, ", "))
}

// IsUnresolved checks if an error is an unresolved-assets diagnostic
func IsUnresolved(err error) bool {
	var unresolvedErr *UnresolvedAssetsError
	return errors.As(err, &unresolvedErr)
}

// Resolver turns required assets into generation jobs.
type Resolver struct {
	// Destination computes the output path of an asset.
	Destination func(manifest.RequiredAsset) string
}

// New creates a resolver writing destinations under resourceDir.
func New(resourceDir string) *Resolver {
	return &Resolver{
		Destination: func(a manifest.RequiredAsset) string {
			return dest.PathFor(resourceDir, a)
		},
	}
}

// Resolve produces one job per asset, in input order. Assets without a
// matching candidate get an empty source; once every asset has been tried
// they are reported together in an *UnresolvedAssetsError. The job slice is
// complete even when the error is returned.
func (r *Resolver) Resolve(assets []manifest.RequiredAsset, candidates []source.Candidate) ([]Job, error) {
	jobs := make([]Job, 0, len(assets))
	var unresolved []manifest.RequiredAsset
	for _, a := range assets {
		job := Job{Asset: a, DestinationPath: r.Destination(a)}
		if c, ok := Select(a, candidates); ok {
			job.SourcePath = c.Path
		} else {
			unresolved = append(unresolved, a)
		}
		jobs = append(jobs, job)
	}
	if len(unresolved) > 0 {
		return jobs, &UnresolvedAssetsError{Assets: unresolved}
	}
	return jobs, nil
}

// Select picks the best candidate for a single asset.
func Select(a manifest.RequiredAsset, candidates []source.Candidate) (source.Candidate, bool) {
	var exact, global *source.Candidate
	for i := range candidates {
		c := &candidates[i]
		if c.ResourceCategory != a.ResourceCategory {
			continue
		}
		switch c.Platform {
		case a.Platform:
			if exact == nil || better(c, exact) {
				exact = c
			}
		case source.GlobalScope:
			if global == nil || better(c, global) {
				global = c
			}
		}
	}
	if exact != nil {
		return *exact, true
	}
	if global != nil {
		return *global, true
	}
	return source.Candidate{}, false
}

func better(c, than *source.Candidate) bool {
	rc, rt := source.ExtensionRank(c.Extension), source.ExtensionRank(than.Extension)
	if rc != rt {
		return rc < rt
	}
	return c.Path < than.Path
}
