// Package export implements the 'formflow export' command.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/internal/commands/shared"
	flowlog "github.com/goliatone/go-formflow/internal/log"
	"github.com/goliatone/go-formflow/internal/watch"
	flowexport "github.com/goliatone/go-formflow/pkg/export"
	"github.com/goliatone/go-formflow/pkg/flowio"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
)

type options struct {
	out     string
	format  string
	version string
	watch   bool
}

// NewCommand creates the export command
func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "export <flow>",
		Short: "Export a flow with every step's compiled schemas",
		Long: `Export writes a single document holding the flow metadata, every step
with its compiled schemas, and summary metadata (step and field counts and
the field types in use).

With --watch the export is rewritten every time the flow file changes.`,
		Example: `  formflow export onboarding.yaml -o onboarding.export.json
  formflow export onboarding.yaml -o onboarding.export.json --watch`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write output to file instead of stdout")
	cmd.Flags().StringVar(&opts.format, "format", "json", "Output format: json, yaml")
	cmd.Flags().StringVar(&opts.version, "version", flowexport.DefaultVersion, "Version recorded in the export")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-export when the flow file changes (requires --out)")

	return cmd
}

func run(cmd *cobra.Command, location string, opts *options) error {
	env, err := shared.LoadEnv(cmd)
	if err != nil {
		return err
	}
	orch, err := env.Orchestrator()
	if err != nil {
		return err
	}
	req, err := shared.Request(location, "")
	if err != nil {
		return err
	}

	if !opts.watch {
		return exportOnce(cmd, orch, req, opts)
	}

	if opts.out == "" || opts.out == "-" {
		return errors.New("--watch requires --out")
	}
	if req.Source.Kind() != flowio.SourceKindFile {
		return errors.New("--watch only supports local files")
	}
	return watchAndExport(cmd, env, orch, req, opts)
}

func exportOnce(cmd *cobra.Command, orch *orchestrator.Orchestrator, req orchestrator.Request, opts *options) error {
	doc, err := orch.Export(cmd.Context(), req, flowexport.WithVersion(opts.version))
	if err != nil {
		return fmt.Errorf("export %s: %w", req.Source.Location(), err)
	}
	data, err := shared.Marshal(doc, opts.format)
	if err != nil {
		return err
	}
	return shared.WriteOutput(cmd, opts.out, data)
}

func watchAndExport(cmd *cobra.Command, env *shared.Env, orch *orchestrator.Orchestrator, req orchestrator.Request, opts *options) error {
	logger := flowlog.WithComponent(env.Logger, "export")
	w, err := watch.New(req.Source.Location(), watch.WithLogger(env.Logger))
	if err != nil {
		return err
	}

	if err := exportOnce(cmd, orch, req, opts); err != nil {
		logger.Error("initial export failed", flowlog.Error(err))
	} else {
		logger.Info("export written", slog.String("out", opts.out))
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", w.Path())
	return w.Run(ctx, func(event watch.Event) error {
		if err := exportOnce(cmd, orch, req, opts); err != nil {
			return err
		}
		logger.Info("export written", slog.String("out", opts.out), slog.String("change", event.Type))
		return nil
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
