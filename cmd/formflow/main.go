package main

import (
	"github.com/goliatone/go-formflow/internal/cli"
	compilecmd "github.com/goliatone/go-formflow/internal/commands/compile"
	"github.com/goliatone/go-formflow/internal/commands/export"
	"github.com/goliatone/go-formflow/internal/commands/expr"
	"github.com/goliatone/go-formflow/internal/commands/lint"
	"github.com/goliatone/go-formflow/internal/commands/openapi"
	"github.com/goliatone/go-formflow/internal/commands/run"
	"github.com/goliatone/go-formflow/internal/commands/serve"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	rootCmd := cli.NewRootCommand()

	// Authoring commands
	rootCmd.AddCommand(lint.NewCommand())
	rootCmd.AddCommand(compilecmd.NewCommand())
	rootCmd.AddCommand(expr.NewCommand())

	// Output commands
	rootCmd.AddCommand(export.NewCommand())
	rootCmd.AddCommand(openapi.NewCommand())

	// Runtime commands
	rootCmd.AddCommand(run.NewCommand())
	rootCmd.AddCommand(serve.NewCommand())

	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
