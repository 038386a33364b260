// Package source discovers candidate source images in a project's resource
// directory and its per-platform override subdirectories.
package source

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/resgen/pkg/ignore"
)

// GlobalScope marks candidates found directly in the resource root.
const GlobalScope = "global"

// SupportedExtensions lists the accepted source formats. Order is the
// tie-break precedence when several candidates qualify for the same asset.
var SupportedExtensions = []string{"psd", "ai", "png"}

// Candidate is a source image eligible to feed one or more required assets.
type Candidate struct {
	Extension        string `json:"extension"`
	Platform         string `json:"platform"`
	ResourceCategory string `json:"resource_category"`
	Path             string `json:"path"`
}

// IsGlobal reports whether the candidate came from the shared resource root.
func (c Candidate) IsGlobal() bool {
	return c.Platform == GlobalScope
}

// ExtensionRank returns the precedence of ext (lower wins), or -1 when the
// extension is not supported.
func ExtensionRank(ext string) int {
	return slices.Index(SupportedExtensions, strings.ToLower(strings.TrimPrefix(ext, ".")))
}

// Location is one directory the scanner lists.
type Location struct {
	Platform string
	Dir      string
}

// classifier turns directory entry names into candidates, dropping anything
// the run cannot use.
type classifier struct {
	categories map[string]struct{}
	exclude    []string
	ignore     *ignore.Matcher
}

func newClassifier(categories, exclude []string, ign *ignore.Matcher) *classifier {
	set := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return &classifier{categories: set, exclude: exclude, ignore: ign}
}

// classify maps a file name within loc to a candidate. rel is the path of the
// file relative to the resource root, used for exclude globs.
func (c *classifier) classify(loc Location, rel, name string) (Candidate, bool) {
	ext := filepath.Ext(name)
	if ext == "" || ExtensionRank(ext) < 0 {
		return Candidate{}, false
	}
	category := strings.TrimSuffix(name, ext)
	if _, ok := c.categories[category]; !ok {
		return Candidate{}, false
	}
	for _, pattern := range c.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return Candidate{}, false
		}
	}
	if c.ignore.IsIgnored(rel, false) {
		return Candidate{}, false
	}
	return Candidate{
		Extension:        strings.ToLower(strings.TrimPrefix(ext, ".")),
		Platform:         loc.Platform,
		ResourceCategory: category,
		Path:             filepath.Join(loc.Dir, name),
	}, true
}

func relPath(loc Location, name string) string {
	if loc.Platform == GlobalScope {
		return name
	}
	return path.Join(loc.Platform, name)
}
