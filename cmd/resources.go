package cmd

import (
	"context"
	"errors"

	"github.com/fulmenhq/resgen/pkg/dest"
	"github.com/fulmenhq/resgen/pkg/exitcode"
	"github.com/fulmenhq/resgen/pkg/logger"
	"github.com/fulmenhq/resgen/pkg/manifest"
	"github.com/fulmenhq/resgen/pkg/plan"
	"github.com/fulmenhq/resgen/pkg/platform"
	"github.com/fulmenhq/resgen/pkg/report"
	"github.com/fulmenhq/resgen/pkg/resolve"
	"github.com/fulmenhq/resgen/pkg/source"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newResourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Plan icon and splash screen generation",
		Long: `Scan the project's resources directory for source images (psd, ai, png),
match them to every image the manifest requires for the installed platforms,
create the destination directories and print the resulting job list.

A platform-specific source (resources/<platform>/<category>.<ext>) wins over
a global one (resources/<category>.<ext>).`,
		Args: cobra.NoArgs,
		RunE: runResources,
	}

	addConfigFlags(cmd)
	cmd.Flags().BoolP("icon", "i", false, "Generate icon resources")
	cmd.Flags().BoolP("splash", "s", false, "Generate splash screen resources")
	cmd.Flags().String("format", "text", "Output format: text|json|markdown")
	cmd.Flags().String("unresolved", "fail", "Policy for assets without a source image: fail|skip")
	cmd.Flags().Int("concurrency", 0, "Maximum parallel filesystem operations (0 = number of CPUs)")
	cmd.Flags().StringSlice("exclude", nil, "Glob patterns (relative to the resources directory) to ignore")
	return cmd
}

func runResources(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	formatName, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigError, err)
	}
	policy, err := plan.ParsePolicy(cfg.Unresolved)
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigError, err)
	}
	noOp, _ := cmd.Flags().GetBool("no-op")

	fsys := afero.NewOsFs()
	proj, err := openProject(fsys, cfg)
	if err != nil {
		return err
	}
	m, err := loadManifest(fsys, cfg.Manifest)
	if err != nil {
		return err
	}

	engine := plan.NewEngine(fsys, m, proj, plan.Options{
		Categories:  requestedCategories(cmd),
		Unresolved:  policy,
		Exclude:     cfg.Exclude,
		Concurrency: cfg.Concurrency,
		NoOp:        noOp,
	})

	out := cmd.OutOrStdout()
	p, err := engine.Run(cmd.Context(), &report.Handoff{W: out, Format: format})
	if err != nil {
		// Show which assets are missing before failing.
		if p != nil && resolve.IsUnresolved(err) {
			if renderErr := report.Render(out, p, format); renderErr != nil {
				logger.Warn("Unable to render plan", logger.Err(renderErr))
			}
		}
		return classifyRunError(err)
	}
	return nil
}

// requestedCategories maps --icon/--splash to categories. Neither flag, or
// both, selects every default category.
func requestedCategories(cmd *cobra.Command) []string {
	icon, _ := cmd.Flags().GetBool("icon")
	splash, _ := cmd.Flags().GetBool("splash")
	switch {
	case icon && !splash:
		return []string{"icon"}
	case splash && !icon:
		return []string{"splash"}
	default:
		return plan.DefaultCategories
	}
}

// classifyRunError attaches the exit code for an engine failure.
func classifyRunError(err error) error {
	var (
		scanErr *source.SourceScanError
		prepErr *dest.DestinationPrepError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return exitcode.Wrap(exitcode.Canceled, err)
	case manifest.IsShapeError(err):
		return exitcode.Wrap(exitcode.ConfigError, err)
	case platform.IsNoPlatformsAvailable(err), resolve.IsUnresolved(err):
		return exitcode.Wrap(exitcode.ValidationError, err)
	case errors.As(err, &scanErr), errors.As(err, &prepErr):
		return exitcode.Wrap(exitcode.FileSystemError, err)
	default:
		return exitcode.Wrap(exitcode.GeneralError, err)
	}
}
