// Package project inspects a Cordova-style project: where its resources live
// and which platforms have been added.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fulmenhq/resgen/pkg/logger"
	"github.com/spf13/afero"
)

// ErrNotCordovaProject is wrapped by ProjectError when config.xml is missing.
var ErrNotCordovaProject = errors.New("does not appear to exist; ensure that this is a cordova project")

// ProjectError reports a project layout problem.
type ProjectError struct {
	Path string
	Err  error
}

func (e *ProjectError) Error() string {
	return fmt.Sprintf("%s %v", e.Path, e.Err)
}

func (e *ProjectError) Unwrap() error { return e.Err }

// Layout names the project root and its well-known entries. Relative entries
// are resolved against Root.
type Layout struct {
	Root         string
	ResourceDir  string
	PlatformsDir string
	ConfigXML    string
}

// Project is the introspected state handed to the engine.
type Project struct {
	Root          string   `json:"root"`
	ResourceDir   string   `json:"resource_dir"`
	PlatformsDir  string   `json:"platforms_dir"`
	ConfigXMLPath string   `json:"config_xml"`
	Platforms     []string `json:"platforms"`
}

// Introspect resolves the layout and lists installed platforms. A missing
// config.xml is a *ProjectError; a missing platforms directory yields no
// platforms.
func Introspect(fsys afero.Fs, layout Layout) (*Project, error) {
	p := &Project{
		Root:          layout.Root,
		ResourceDir:   under(layout.Root, layout.ResourceDir),
		PlatformsDir:  under(layout.Root, layout.PlatformsDir),
		ConfigXMLPath: under(layout.Root, layout.ConfigXML),
	}

	if _, err := fsys.Stat(p.ConfigXMLPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ProjectError{Path: p.ConfigXMLPath, Err: ErrNotCordovaProject}
		}
		return nil, &ProjectError{Path: p.ConfigXMLPath, Err: err}
	}

	platforms, err := InstalledPlatforms(fsys, p.PlatformsDir)
	if err != nil {
		return nil, err
	}
	p.Platforms = platforms

	logger.Debug("Project introspected",
		logger.String("root", p.Root),
		logger.Int("platforms", len(platforms)))
	return p, nil
}

// InstalledPlatforms lists subdirectories of dir, sorted by name.
func InstalledPlatforms(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &ProjectError{Path: dir, Err: err}
	}
	var platforms []string
	for _, entry := range entries {
		if entry.IsDir() {
			platforms = append(platforms, entry.Name())
		}
	}
	return platforms, nil
}

// ReadConfigXML returns the raw contents of the project's config.xml.
func (p *Project) ReadConfigXML(fsys afero.Fs) ([]byte, error) {
	data, err := afero.ReadFile(fsys, p.ConfigXMLPath)
	if err != nil {
		return nil, &ProjectError{Path: p.ConfigXMLPath, Err: err}
	}
	return data, nil
}

func under(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
