package cmd

import (
	"github.com/fulmenhq/resgen/pkg/config"
	"github.com/fulmenhq/resgen/pkg/exitcode"
	"github.com/fulmenhq/resgen/pkg/logger"
	"github.com/fulmenhq/resgen/pkg/manifest"
	"github.com/fulmenhq/resgen/pkg/project"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// addConfigFlags registers the flags shared by commands that open a project.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to a resgen.yaml config file")
	cmd.Flags().String("project", ".", "Cordova project directory")
	cmd.Flags().String("manifest", "", "Resource manifest (JSON or YAML); defaults to the built-in manifest")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return nil, exitcode.Wrap(exitcode.ConfigError, err)
	}
	return cfg, nil
}

// loadManifest reads path, or the embedded manifest when path is empty.
func loadManifest(fsys afero.Fs, path string) (*manifest.Manifest, error) {
	var (
		m   *manifest.Manifest
		err error
	)
	if path == "" {
		m, err = manifest.Default()
	} else {
		m, err = manifest.Load(fsys, path)
	}
	if err != nil {
		return nil, exitcode.Wrap(exitcode.ConfigError, err)
	}
	logger.Debug("Manifest loaded",
		logger.String("manifest", manifestName(path)),
		logger.Strings("platforms", m.PlatformNames()))
	return m, nil
}

func openProject(fsys afero.Fs, cfg *config.Config) (*project.Project, error) {
	proj, err := project.Introspect(fsys, project.Layout{
		Root:         cfg.ProjectDir,
		ResourceDir:  cfg.ResourceDir,
		PlatformsDir: cfg.PlatformsDir,
		ConfigXML:    cfg.ConfigXML,
	})
	if err != nil {
		return nil, exitcode.Wrap(exitcode.ValidationError, err)
	}
	return proj, nil
}

func manifestName(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}
