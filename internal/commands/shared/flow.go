package shared

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/internal/config"
	flowlog "github.com/goliatone/go-formflow/internal/log"
	"github.com/goliatone/go-formflow/pkg/flowio"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
)

// RemoteTimeout caps flow downloads from http(s) locations.
const RemoteTimeout = 30 * time.Second

// Env bundles the configuration and logger a command runs with.
type Env struct {
	Config *config.Config
	Logger *slog.Logger
}

// LoadEnv loads configuration from --config and the environment, applies the
// global logging flags and builds a logger writing to the command's stderr.
func LoadEnv(cmd *cobra.Command) (*Env, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, err
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	if logFormatFlag != "" {
		cfg.Log.Format = flowlog.Format(strings.ToLower(logFormatFlag))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Log.Output = cmd.ErrOrStderr()

	return &Env{Config: cfg, Logger: flowlog.New(&cfg.Log)}, nil
}

// Orchestrator builds an orchestrator honouring the config, the --preset flag
// and remote sources.
func (e *Env) Orchestrator(opts ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	base := []orchestrator.Option{
		orchestrator.WithLoader(formflow.NewLoader(flowio.WithHTTPFallback(RemoteTimeout))),
		orchestrator.WithCompilerOptions(e.Config.CompilerOptions()...),
		orchestrator.WithLintOptions(e.Config.LintOptions()...),
		orchestrator.WithLogger(e.Logger),
	}
	if presetFlag != "" {
		data, err := os.ReadFile(presetFlag)
		if err != nil {
			return nil, fmt.Errorf("read preset: %w", err)
		}
		transformer, err := orchestrator.NewPresetTransformer(data)
		if err != nil {
			return nil, err
		}
		base = append(base, orchestrator.WithTransformer(transformer))
	}
	return orchestrator.New(append(base, opts...)...), nil
}

// Request turns a CLI location argument into an orchestrator request.
func Request(location, step string) (orchestrator.Request, error) {
	src, err := flowio.ParseSource(location)
	if err != nil {
		return orchestrator.Request{}, err
	}
	return orchestrator.Request{Source: src, Step: step}, nil
}

// ResolveFlow loads the flow at location.
func (e *Env) ResolveFlow(ctx context.Context, location string) (model.Flow, error) {
	orch, err := e.Orchestrator()
	if err != nil {
		return model.Flow{}, err
	}
	req, err := Request(location, "")
	if err != nil {
		return model.Flow{}, err
	}
	return orch.Flow(ctx, req)
}

// Marshal encodes value as indented JSON or, for yaml/yml, YAML with the key
// order of the JSON encoding.
func Marshal(value any, format string) ([]byte, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	parsed, err := flowio.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if parsed != flowio.FormatYAML {
		return append(data, '\n'), nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	clearStyle(&node)
	return yaml.Marshal(&node)
}

// clearStyle drops the flow style yaml.v3 keeps from JSON input.
func clearStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		clearStyle(child)
	}
}

// WriteOutput writes data to path, or to the command's stdout when path is
// empty or "-".
func WriteOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
