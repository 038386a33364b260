// Package ignore filters source images with gitignore-style patterns read
// from a .resgenignore file at the root of the resources directory.
package ignore

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/spf13/afero"
)

// FileName is the ignore file looked up in the resources directory.
const FileName = ".resgenignore"

// Matcher provides gitignore-based source filtering
type Matcher struct {
	matcher  gitignore.Matcher
	patterns int
}

// New builds a matcher from gitignore-syntax lines. Blank lines and
// comments are skipped.
func New(lines []string) *Matcher {
	var patterns []gitignore.Pattern
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return &Matcher{matcher: gitignore.NewMatcher(patterns), patterns: len(patterns)}
}

// Load reads resourceDir/.resgenignore. A missing file yields a matcher that
// ignores nothing.
func Load(fsys afero.Fs, resourceDir string) (*Matcher, error) {
	path := filepath.Join(resourceDir, FileName)
	content, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return New(lines), nil
}

// Len returns the number of active patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return m.patterns
}

// IsIgnored reports whether rel, a slash-separated path relative to the
// resources directory, is excluded. A nil matcher ignores nothing.
func (m *Matcher) IsIgnored(rel string, isDir bool) bool {
	if m == nil || m.patterns == 0 {
		return false
	}
	parts := splitPath(rel)
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, isDir)
}

// splitPath converts a slash-separated path into components for go-git matching
func splitPath(path string) []string {
	if path == "" || path == "." {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
