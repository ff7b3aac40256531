// Package expr implements the 'formflow expr' command.
package expr

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/internal/commands/shared"
	"github.com/goliatone/go-formflow/pkg/formdata"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/navigation/interp"
)

type options struct {
	step        string
	answers     string
	interpreter string
	jsonOutput  bool
}

// Report is the structured output of the command.
type Report struct {
	Step        string              `json:"step"`
	Expression  string              `json:"expression"`
	Interpreter string              `json:"interpreter,omitempty"`
	Target      string              `json:"target,omitempty"`
	Outcome     *navigation.Outcome `json:"outcome,omitempty"`
}

// NewCommand creates the expr command
func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "expr <flow>",
		Short: "Print or evaluate a step's navigation expression",
		Long: `Expr prints the portable navigation expression of a step. When answers
are supplied the expression is evaluated with the chosen interpreter and the
resolved target and outcome are printed as well.

Answers are a JSON or YAML object, given inline or as @path.`,
		Example: `  formflow expr onboarding.yaml --step Profile
  formflow expr onboarding.yaml --step Profile --answers '{"color":"Blue"}'
  formflow expr onboarding.yaml --step Blues --answers @answers.yaml --interpreter expr`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.step, "step", "", "Step name or id (required)")
	cmd.Flags().StringVar(&opts.answers, "answers", "", "Answers to evaluate against (JSON/YAML or @file)")
	cmd.Flags().StringVar(&opts.interpreter, "interpreter", "", "Expression interpreter: cel, expr (default from config)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the report as JSON")
	_ = cmd.MarkFlagRequired("step")

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

	idx := stepIndex(f, opts.step)
	if idx < 0 {
		return fmt.Errorf("step %q not found in %s", opts.step, location)
	}
	step := f.Steps[idx]
	decision := navigation.Plan(step.NavigationRule, step.Fields)
	report := Report{Step: step.Name, Expression: decision.Expression()}

	if opts.answers != "" {
		answers, err := parseAnswers(opts.answers)
		if err != nil {
			return err
		}
		answers = formdata.Normalize(step.Fields, answers)

		name := opts.interpreter
		if name == "" {
			name = env.Config.Interpreter
		}
		interpreter, err := interp.ByName(name)
		if err != nil {
			return err
		}
		target, err := interpreter.Eval(report.Expression, answers)
		if err != nil {
			return fmt.Errorf("evaluate: %w", err)
		}
		outcome := navigation.Resolve(target, f.Steps, idx)
		report.Interpreter = interpreter.Name()
		report.Target = target
		report.Outcome = &outcome
	}

	if opts.jsonOutput {
		data, err := shared.Marshal(report, "json")
		if err != nil {
			return err
		}
		return shared.WriteOutput(cmd, "", data)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Expression)
	if report.Outcome != nil {
		fmt.Fprintf(out, "target:  %s (%s)\n", report.Target, report.Interpreter)
		fmt.Fprintf(out, "outcome: %s\n", report.Outcome)
	}
	return nil
}

func parseAnswers(raw string) (model.Answers, error) {
	data := []byte(raw)
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read answers: %w", err)
		}
		data = content
	}
	var answers model.Answers
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("parse answers: %w", err)
	}
	if answers == nil {
		return nil, errors.New("parse answers: expected an object")
	}
	return answers, nil
}

func stepIndex(f model.Flow, ref string) int {
	if idx := f.StepIndex(ref); idx >= 0 {
		return idx
	}
	for idx, step := range f.Steps {
		if step.ID == ref {
			return idx
		}
	}
	return -1
}
