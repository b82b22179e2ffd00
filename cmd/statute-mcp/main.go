package main

import (
	"context"
	"os"

	"github.com/sha1n/mcp-statute-server/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Version is injected at build time
	Version = "dev"
	// Build is injected at build time
	Build = "unknown"
	// ProgramName is injected at build time
	ProgramName = "statute-mcp"
)

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(Version, Build, ProgramName, args[1:]); err != nil {
		exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing
func Execute(version, build, programName string, args []string) error {
	rootCmd := &cobra.Command{
		Use:     programName,
		Short:   "Statute MCP Server",
		Long:    "Serves section lookups, definitions, penalties, search and compliance checks over a statute text",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithFlags(cmd.Flags(), version)
		},
	}

	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	app.RegisterFlags(rootCmd.Flags())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

func newExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Write the parsed statute knowledge base to a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunExport(cmd.Context(), app.DefaultExportParams(), cmd.Flags(), args[0], format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: json or yaml (default: from file extension)")
	app.RegisterStatuteFlags(cmd.Flags())
	return cmd
}

func runWithFlags(flags *pflag.FlagSet, version string) error {
	return app.RunWithDeps(context.Background(), app.DefaultRunParams(), flags, version)
}
