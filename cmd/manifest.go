package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fulmenhq/resgen/pkg/exitcode"
	"github.com/fulmenhq/resgen/pkg/manifest"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newManifestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect and validate resource manifests",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	show := &cobra.Command{
		Use:   "show [FILE]",
		Short: "Print the required images of a manifest (built-in when FILE is omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runManifestShow,
	}
	show.Flags().String("format", "text", "Output format: text|json")

	validate := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a manifest against the manifest schema",
		Args:  cobra.ExactArgs(1),
		RunE:  runManifestValidate,
	}

	cmd.AddCommand(show, validate)
	return cmd
}

func manifestArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func runManifestShow(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(afero.NewOsFs(), manifestArg(args))
	if err != nil {
		return err
	}
	assets, err := manifest.Flatten(m)
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigError, err)
	}

	out := cmd.OutOrStdout()
	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		data, err := json.MarshalIndent(assets, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %v", err)
		}
		_, _ = fmt.Fprintln(out, string(data))
		return nil
	}

	for _, a := range assets {
		density := a.Density
		if density == "" {
			density = "-"
		}
		_, _ = fmt.Fprintf(out, "%-40s %5dx%-5d %s\n", a.Key(), a.Width, a.Height, density)
	}
	_, _ = fmt.Fprintf(out, "%d image(s)\n", len(assets))
	return nil
}

func runManifestValidate(cmd *cobra.Command, args []string) error {
	m, err := loadManifest(afero.NewOsFs(), args[0])
	if err != nil {
		return err
	}
	assets, err := manifest.Flatten(m)
	if err != nil {
		return exitcode.Wrap(exitcode.ConfigError, err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (%d platform(s), %d image(s))\n",
		args[0], len(m.Platforms), len(assets))
	return nil
}
