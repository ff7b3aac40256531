// Package serve implements the 'formflow serve' command.
package serve

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/internal/commands/shared"
	"github.com/goliatone/go-formflow/internal/server"
)

type options struct {
	addr        string
	interpreter string
}

// NewCommand creates the serve command
func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compiler and navigator over HTTP",
		Long: `Serve starts an HTTP API exposing step compilation, answer validation,
next-step resolution, expression evaluation and whole-flow compile, lint,
export and OpenAPI generation under /api/v1.

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Example: `  formflow serve --addr :9090
  FORMFLOW_LOG_FORMAT=json formflow serve`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.interpreter, "interpreter", "", "Default expression interpreter: cel, expr")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	env, err := shared.LoadEnv(cmd)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		env.Config.Server.Addr = opts.addr
	}
	if opts.interpreter != "" {
		env.Config.Interpreter = opts.interpreter
	}
	if err := env.Config.Validate(); err != nil {
		return err
	}

	srv, err := server.New(env.Config, env.Logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
