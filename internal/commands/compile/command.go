// Package compile implements the 'formflow compile' command.
package compile

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/internal/commands/shared"
	"github.com/goliatone/go-formflow/pkg/compiler"
)

type options struct {
	step   string
	out    string
	format string
}

// compiledStep is the per-step output record.
type compiledStep struct {
	Step string `json:"step"`
	compiler.Result
}

// NewCommand creates the compile command
func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "compile <flow>",
		Short: "Compile flow steps into data and presentation schemas",
		Long: `Compile loads a flow and prints, for every step, the data schema,
presentation schema, initial answer record and action descriptor.

With --step only the named step (by name or id) is compiled and the result
is printed without the surrounding list.`,
		Example: `  # Compile every step
  formflow compile onboarding.yaml

  # Compile one step as YAML
  formflow compile onboarding.yaml --step Profile --format yaml`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.step, "step", "", "Compile only this step (name or id)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write output to file instead of stdout")
	cmd.Flags().StringVar(&opts.format, "format", "json", "Output format: json, yaml")

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
	req, err := shared.Request(location, opts.step)
	if err != nil {
		return err
	}

	results, err := orch.Compile(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("compile %s: %w", location, err)
	}

	steps := make([]compiledStep, len(results))
	for idx, result := range results {
		steps[idx] = compiledStep{Step: result.Step, Result: result.Result}
	}

	var payload any = steps
	if opts.step != "" {
		payload = steps[0]
	}
	data, err := shared.Marshal(payload, opts.format)
	if err != nil {
		return err
	}
	return shared.WriteOutput(cmd, opts.out, data)
}
