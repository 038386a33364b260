package cmd

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/fulmenhq/resgen/pkg/platform"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type platformsReport struct {
	Installed []string `json:"installed"`
	Manifest  []string `json:"manifest"`
	Active    []string `json:"active"`
}

func newPlatformsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "Show installed platforms and which ones resources are planned for",
		Args:  cobra.NoArgs,
		RunE:  runPlatforms,
	}
	addConfigFlags(cmd)
	cmd.Flags().String("format", "text", "Output format: text|json")
	return cmd
}

func runPlatforms(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	fsys := afero.NewOsFs()
	proj, err := openProject(fsys, cfg)
	if err != nil {
		return err
	}
	m, err := loadManifest(fsys, cfg.Manifest)
	if err != nil {
		return err
	}

	r := platformsReport{
		Installed: nonNil(proj.Platforms),
		Manifest:  m.PlatformNames(),
	}
	// An empty intersection is reported, not treated as a failure here.
	active, _ := platform.Active(r.Manifest, r.Installed)
	r.Active = nonNil(active)

	out := cmd.OutOrStdout()
	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %v", err)
		}
		_, _ = fmt.Fprintln(out, string(data))
		return nil
	}

	for _, name := range union(r.Manifest, r.Installed) {
		status := "not installed"
		switch {
		case slices.Contains(r.Active, name):
			status = "active"
		case !slices.Contains(r.Manifest, name):
			status = "installed, not in manifest"
		}
		_, _ = fmt.Fprintf(out, "%-12s %s\n", name, status)
	}
	if len(r.Active) == 0 {
		_, _ = fmt.Fprintln(out, "No platforms available; add one with `cordova platform add <platform>`")
	}
	return nil
}

func union(a, b []string) []string {
	out := append([]string{}, a...)
	for _, s := range b {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
