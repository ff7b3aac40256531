// Package cli builds the root formflow command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/internal/commands/shared"
)

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for formflow
func NewRootCommand() *cobra.Command {
	v, c, b := shared.GetVersion()
	cmd := &cobra.Command{
		Use:   "formflow",
		Short: "formflow - multi-step form compiler and navigator",
		Long: `formflow compiles multi-step form flows into per-step data schemas,
presentation schemas and portable navigation expressions.

Flows are YAML or JSON documents. Use 'formflow lint' while authoring,
'formflow compile' or 'formflow export' to produce schemas, 'formflow run'
to walk a flow in the terminal and 'formflow serve' to expose the compiler
over HTTP.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", v, c, b),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	config, logLevel, logFormat, preset := shared.RegisterFlagPointers()
	cmd.PersistentFlags().StringVar(config, "config", "", "Path to config file (YAML)")
	cmd.PersistentFlags().StringVar(logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(logFormat, "log-format", "", "Log format: text, json")
	cmd.PersistentFlags().StringVar(preset, "preset", "", "Preset document applied to flows before compiling")

	return cmd
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
