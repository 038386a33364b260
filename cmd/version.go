/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/fulmenhq/resgen/internal/assets"
	"github.com/fulmenhq/resgen/pkg/buildinfo"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show resgen version and build information",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().Bool("extended", false, "Show detailed build information")
	cmd.Flags().String("format", "text", "Output format: text|json")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	format, _ := cmd.Flags().GetString("format")
	info := buildinfo.Current()
	out := cmd.OutOrStdout()

	if format == "json" {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %v", err)
		}
		_, _ = fmt.Fprintln(out, string(data))
		return nil
	}

	_, _ = fmt.Fprintf(out, "resgen %s\n", info.Version)
	if extended {
		if info.ModuleVersion != "" {
			_, _ = fmt.Fprintf(out, "Module: %s\n", info.ModuleVersion)
		}
		if info.Commit != "" {
			_, _ = fmt.Fprintf(out, "Commit: %s\n", info.Commit)
		}
		_, _ = fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
		_, _ = fmt.Fprintf(out, "Platform: %s\n", info.Platform)
		_, _ = fmt.Fprintln(out, "Embedded assets:")
		for _, a := range assets.Registry {
			_, _ = fmt.Fprintf(out, "  %-10s %-9s %s\n", a.Family, a.Version, a.Path)
		}
	}
	return nil
}
