// Package lint implements the 'formflow lint' command.
package lint

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/internal/commands/shared"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
	"github.com/goliatone/go-formflow/pkg/validation"
)

type options struct {
	jsonOutput    bool
	maxFileSizeMB float64
}

// NewCommand creates the lint command
func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "lint <flow>...",
		Short: "Check flows for authoring mistakes",
		Long: `Lint loads each flow and reports authoring mistakes: missing titles or
options, duplicate ids and step names, file size limits above the ceiling,
navigation rules naming unknown fields or steps, and dependsOn references
to missing fields.

Exits with status 2 when any issue is found.`,
		Example: `  formflow lint onboarding.yaml
  formflow lint flows/*.yaml --json`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print issues as JSON")
	cmd.Flags().Float64Var(&opts.maxFileSizeMB, "max-file-size", 0, "Override the file size ceiling in MB")

	return cmd
}

type fileReport struct {
	File   string             `json:"file"`
	Issues []validation.Issue `json:"issues"`
}

func run(cmd *cobra.Command, paths []string, opts *options) error {
	env, err := shared.LoadEnv(cmd)
	if err != nil {
		return err
	}
	var extra []orchestrator.Option
	if opts.maxFileSizeMB > 0 {
		extra = append(extra, orchestrator.WithLintOptions(validation.WithMaxFileSize(opts.maxFileSizeMB)))
	}
	orch, err := env.Orchestrator(extra...)
	if err != nil {
		return err
	}

	reports := make([]fileReport, 0, len(paths))
	total := 0
	for _, path := range paths {
		req, err := shared.Request(path, "")
		if err != nil {
			return err
		}
		issues, err := orch.Lint(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("lint %s: %w", path, err)
		}
		if issues == nil {
			issues = []validation.Issue{}
		}
		total += len(issues)
		reports = append(reports, fileReport{File: path, Issues: issues})
	}

	if opts.jsonOutput {
		data, err := shared.Marshal(reports, "json")
		if err != nil {
			return err
		}
		if err := shared.WriteOutput(cmd, "", data); err != nil {
			return err
		}
	} else {
		printReports(cmd.OutOrStdout(), reports, total)
	}

	if total > 0 {
		return shared.NewInvalidFlowError("lint failed", fmt.Errorf("%d issue(s)", total))
	}
	return nil
}

func printReports(w io.Writer, reports []fileReport, total int) {
	for _, report := range reports {
		issues := append([]validation.Issue(nil), report.Issues...)
		sort.SliceStable(issues, func(i, j int) bool { return issues[i].Step < issues[j].Step })
		for _, issue := range issues {
			fmt.Fprintf(w, "%s: %s [%s]\n", report.File, location(issue), issue.Code)
			fmt.Fprintf(w, "  %s\n", issue.Message)
		}
	}
	if total == 0 {
		fmt.Fprintln(w, "No issues found")
		return
	}
	fmt.Fprintf(w, "\n%d issue(s) found\n", total)
}

func location(issue validation.Issue) string {
	switch {
	case issue.Step != "" && issue.Field != "":
		return issue.Step + "/" + issue.Field
	case issue.Step != "":
		return issue.Step
	case issue.Field != "":
		return issue.Field
	default:
		return "flow"
	}
}
