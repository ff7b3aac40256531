// Package export snapshots a whole flow into a single JSON document that
// carries every compiled step plus flow level metadata.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/goliatone/go-formflow/pkg/compiler"
	"github.com/goliatone/go-formflow/pkg/model"
)

// DefaultVersion is stamped on documents unless WithVersion overrides it.
const DefaultVersion = "1.0"

// Document is the flow export payload.
type Document struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Version     string    `json:"version"`
	Created     time.Time `json:"created"`
	Steps       []Step    `json:"steps"`
	Metadata    Metadata  `json:"metadata"`
}

// Step is a compiled step entry. Order is the one-based position of the step
// in the flow.
type Step struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Order       int             `json:"order"`
	Schemas     compiler.Result `json:"schemas"`
}

// Metadata summarises the flow.
type Metadata struct {
	TotalSteps  int          `json:"totalSteps"`
	TotalFields int          `json:"totalFields"`
	FieldTypes  []model.Kind `json:"fieldTypes"`
}

// Option customises an export.
type Option func(*options)

type options struct {
	clock    func() time.Time
	version  string
	compiler []compiler.Option
}

// WithClock injects the clock used for the created timestamp.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithVersion overrides the document version.
func WithVersion(version string) Option {
	return func(o *options) {
		if version != "" {
			o.version = version
		}
	}
}

// WithCompilerOptions forwards options to every step compilation.
func WithCompilerOptions(opts ...compiler.Option) Option {
	return func(o *options) {
		o.compiler = append(o.compiler, opts...)
	}
}

// Export builds the document for flow.
func Export(flow model.Flow, opts ...Option) Document {
	cfg := options{clock: time.Now, version: DefaultVersion}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	steps := make([]Step, 0, len(flow.Steps))
	for idx, step := range flow.Steps {
		steps = append(steps, Step{
			ID:          step.ID,
			Name:        step.Name,
			Description: step.Description,
			Order:       idx + 1,
			Schemas:     compiler.Compile(step, cfg.compiler...),
		})
	}

	kinds := flow.Kinds()
	if kinds == nil {
		kinds = []model.Kind{}
	}

	return Document{
		Name:        flow.Name,
		Description: flow.Description,
		Version:     cfg.version,
		Created:     cfg.clock().UTC(),
		Steps:       steps,
		Metadata: Metadata{
			TotalSteps:  len(flow.Steps),
			TotalFields: flow.FieldCount(),
			FieldTypes:  kinds,
		},
	}
}

// Marshal exports flow and encodes it as indented JSON.
func Marshal(flow model.Flow, opts ...Option) ([]byte, error) {
	payload, err := json.MarshalIndent(Export(flow, opts...), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: encode: %w", err)
	}
	return payload, nil
}
