// Package run implements the 'formflow run' command.
package run

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/internal/commands/shared"
	flowlog "github.com/goliatone/go-formflow/internal/log"
	"github.com/goliatone/go-formflow/pkg/navigation/interp"
	"github.com/goliatone/go-formflow/pkg/runtime"
	"github.com/goliatone/go-formflow/pkg/runtime/tui"
)

// InterpreterNative resolves navigation with the built-in decision table.
const InterpreterNative = "native"

type options struct {
	interpreter string
	context     string
	out         string
	format      string

	driver tui.PromptDriver
}

// NewCommand creates the run command
func NewCommand() *cobra.Command {
	return newCommand(nil)
}

func newCommand(driver tui.PromptDriver) *cobra.Command {
	opts := &options{driver: driver}

	cmd := &cobra.Command{
		Use:   "run <flow>",
		Short: "Walk a flow interactively in the terminal",
		Long: `Run prompts for every visible field of the current step, validates the
step, and follows its navigation rule until the flow completes or ends.
The answers of the visited steps are printed when the flow finishes.

Template defaults such as "#user.name" are resolved from --context.`,
		Example: `  formflow run onboarding.yaml
  formflow run onboarding.yaml --context '{"user":{"name":"Ada"}}' --interpreter cel`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.interpreter, "interpreter", InterpreterNative, "Navigation resolution: native, cel, expr")
	cmd.Flags().StringVar(&opts.context, "context", "", "Template context (JSON/YAML or @file)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write collected answers to file instead of stdout")
	cmd.Flags().StringVar(&opts.format, "format", "json", "Output format: json, yaml")

	return cmd
}

func run(cmd *cobra.Command, location string, opts *options) error {
	env, err := shared.LoadEnv(cmd)
	if err != nil {
		return err
	}
	f, err := env.ResolveFlow(cmd.Context(), location)
	if err != nil {
		return err
	}

	var sessionOpts []runtime.Option
	if opts.interpreter != InterpreterNative {
		interpreter, err := interp.ByName(opts.interpreter)
		if err != nil {
			return err
		}
		sessionOpts = append(sessionOpts, runtime.WithInterpreter(interpreter))
	}
	if opts.context != "" {
		values, err := parseContext(opts.context)
		if err != nil {
			return err
		}
		sessionOpts = append(sessionOpts, runtime.WithContext(values))
	}

	runnerOpts := []tui.Option{
		tui.WithOutput(cmd.ErrOrStderr()),
		tui.WithSessionOptions(sessionOpts...),
	}
	if opts.driver != nil {
		runnerOpts = append(runnerOpts, tui.WithPromptDriver(opts.driver))
	}

	logger := flowlog.WithFlow(env.Logger, f.Name)
	logger.Debug("running flow", "interpreter", opts.interpreter, "steps", len(f.Steps))

	collected, err := tui.New(runnerOpts...).Run(cmd.Context(), f)
	if err != nil {
		if errors.Is(err, tui.ErrAborted) {
			return errors.New("aborted")
		}
		return fmt.Errorf("run %s: %w", location, err)
	}
	logger.Debug("flow finished", "visited", len(collected))

	data, err := shared.Marshal(collected, opts.format)
	if err != nil {
		return err
	}
	return shared.WriteOutput(cmd, opts.out, data)
}

func parseContext(raw string) (map[string]any, error) {
	data := []byte(raw)
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read context: %w", err)
		}
		data = content
	}
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse context: %w", err)
	}
	return values, nil
}
