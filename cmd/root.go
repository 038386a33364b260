/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/resgen/internal/ops"
	"github.com/fulmenhq/resgen/pkg/buildinfo"
	"github.com/fulmenhq/resgen/pkg/exitcode"
	"github.com/fulmenhq/resgen/pkg/logger"
	"github.com/spf13/cobra"
)

// newRootCommand creates a fresh root command instance wired to reg.
// Tests pass their own registry to get isolated command trees.
func newRootCommand(reg *ops.Registry) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resgen",
		Short: "Icon and splash screen resource planner for Cordova projects",
		Long: `Resgen matches the source images of a Cordova project against a resource
manifest and plans every icon and splash screen the installed platforms need.

Examples:
   resgen resources              # Plan icons and splash screens
   resgen resources --icon       # Icons only
   resgen platforms              # Show installed and supported platforms
   resgen manifest validate FILE # Check a custom manifest`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().Bool("no-op", false, "Plan without creating any directories")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("resgen {{.Version}}\n")

	// Grouped help in ops.Groups() order
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if c != cmd {
			c.Println(c.Long)
			c.Println()
			c.Print(c.UsageString())
			return
		}
		c.Println(c.Long)
		c.Println()
		for _, group := range ops.Groups() {
			commands := reg.GetCommandsByGroup(group)
			if len(commands) == 0 {
				continue
			}
			c.Printf("%s:\n", group.Title())
			for _, r := range commands {
				c.Printf("  %-12s %s\n", r.Name, r.Description)
			}
			c.Println()
		}
		c.Println("Flags:")
		c.Print(c.LocalFlags().FlagUsages())
	})

	return cmd
}

// registerSubcommands adds and classifies every subcommand.
func registerSubcommands(root *cobra.Command, reg *ops.Registry) error {
	subcommands := []struct {
		group ops.CommandGroup
		cmd   *cobra.Command
	}{
		{ops.GroupResources, newResourcesCommand()},
		{ops.GroupResources, newPlatformsCommand()},
		{ops.GroupManifest, newManifestCommand()},
		{ops.GroupSupport, newVersionCommand()},
	}
	for _, s := range subcommands {
		if err := reg.Register(s.group, s.cmd); err != nil {
			return err
		}
		root.AddCommand(s.cmd)
	}
	return nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand(ops.GetRegistry())

func init() {
	if err := registerSubcommands(rootCmd, ops.GetRegistry()); err != nil {
		panic(fmt.Sprintf("Failed to register commands: %v", err))
	}
}

// Execute runs the root command and exits with the code carried by the
// returned error. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		code := exitcode.Code(err)
		logger.Debug("Command execution failed", logger.Err(err), logger.Int("exit_code", code))
		os.Exit(code)
	}
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	noOp, _ := cmd.Flags().GetBool("no-op")

	logLevel, known := logger.ParseLevel(logLevelStr)

	config := logger.Config{
		Level:     logLevel,
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "resgen",
		NoOp:      noOp,
	}

	if err := logger.Initialize(config); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
	if !known {
		logger.Warn("Unknown log level, using info", logger.String("level", logLevelStr))
	}
}
