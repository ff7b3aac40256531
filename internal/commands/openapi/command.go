// Package openapi implements the 'formflow openapi' command.
package openapi

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/internal/commands/shared"
	flowopenapi "github.com/goliatone/go-formflow/pkg/openapi"
)

type options struct {
	out        string
	format     string
	apiVersion string
}

// NewCommand creates the openapi command
func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "openapi <flow>",
		Short: "Describe a flow's step submissions as an OpenAPI document",
		Long: `OpenAPI generates an OpenAPI 3 document with one POST operation per step.
Each request body is the step's compiled data schema and the response is the
navigation outcome. The document is validated before it is written.`,
		Example: `  formflow openapi onboarding.yaml --format yaml -o onboarding.openapi.yaml`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write output to file instead of stdout")
	cmd.Flags().StringVar(&opts.format, "format", "json", "Output format: json, yaml")
	cmd.Flags().StringVar(&opts.apiVersion, "api-version", "1.0", "info.version of the generated document")

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

	doc, err := orch.OpenAPI(cmd.Context(), req, flowopenapi.WithAPIVersion(opts.apiVersion))
	if err != nil {
		return fmt.Errorf("openapi %s: %w", location, err)
	}
	data, err := shared.Marshal(doc, opts.format)
	if err != nil {
		return err
	}
	return shared.WriteOutput(cmd, opts.out, data)
}
