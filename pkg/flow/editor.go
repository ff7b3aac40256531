// Package flow implements the editing operations of a flow. Every operation
// takes a flow and returns a new one; the input is never mutated, so callers
// can keep earlier snapshots for undo or diffing.
package flow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mohae/deepcopy"

	"github.com/goliatone/go-formflow/pkg/model"
)

var (
	ErrStepNotFound    = errors.New("step not found")
	ErrFieldNotFound   = errors.New("field not found")
	ErrLastStep        = errors.New("cannot remove the last step")
	ErrDuplicateField  = errors.New("duplicate field id")
	ErrInvalidKind     = errors.New("invalid field kind")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// DefaultStepName is the name prefix of generated steps.
const DefaultStepName = "Step"

// Option configures an Editor.
type Option func(*Editor)

// WithClock overrides the clock used for CreatedAt/UpdatedAt.
func WithClock(clock func() time.Time) Option {
	return func(e *Editor) {
		if clock != nil {
			e.now = clock
		}
	}
}

// WithIDGenerator overrides the identifier source for steps and fields.
func WithIDGenerator(gen func() string) Option {
	return func(e *Editor) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// Editor applies copy-on-write edits to flows.
type Editor struct {
	now   func() time.Time
	newID func() string
}

// NewEditor constructs an Editor using uuid identifiers and time.Now.
func NewEditor(options ...Option) *Editor {
	e := &Editor{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Default is the Editor used by the package level helpers.
var Default = NewEditor()

// New returns an empty flow with a single default step.
func New(name string) model.Flow {
	return Default.New(name)
}

// New returns an empty flow with a single default step.
func (e *Editor) New(name string) model.Flow {
	now := e.now().UTC()
	return model.Flow{
		ID:        e.newID(),
		Name:      name,
		Steps:     []model.Step{e.step(DefaultStepName + " 1")},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AssignIDs fills in missing flow, step and field identifiers.
func (e *Editor) AssignIDs(f model.Flow) model.Flow {
	out := e.clone(f)
	if out.ID == "" {
		out.ID = e.newID()
	}
	for idx := range out.Steps {
		if out.Steps[idx].ID == "" {
			out.Steps[idx].ID = e.newID()
		}
		for fieldIdx := range out.Steps[idx].Fields {
			if out.Steps[idx].Fields[fieldIdx].ID == "" {
				out.Steps[idx].Fields[fieldIdx].ID = e.fieldID(out.Steps[idx], string(out.Steps[idx].Fields[fieldIdx].Kind))
			}
		}
	}
	return out
}

// IDDecorator returns a decorator that runs AssignIDs in place.
func (e *Editor) IDDecorator() model.Decorator {
	return model.DecoratorFunc(func(f *model.Flow) error {
		*f = e.AssignIDs(*f)
		return nil
	})
}

func (e *Editor) step(name string) model.Step {
	return model.Step{
		ID:     e.newID(),
		Name:   name,
		Fields: []model.Field{},
	}
}

// clone deep copies f.
func (e *Editor) clone(f model.Flow) model.Flow {
	return Clone(f)
}

// Clone returns a deep copy of f that shares no steps, fields or answer
// values with it.
func Clone(f model.Flow) model.Flow {
	copied, ok := deepcopy.Copy(f).(model.Flow)
	if !ok {
		return f
	}
	return copied
}

func (e *Editor) touch(f *model.Flow) {
	f.UpdatedAt = e.now().UTC()
}

func stepIndex(f model.Flow, stepID string) (int, error) {
	for idx, step := range f.Steps {
		if step.ID == stepID {
			return idx, nil
		}
	}
	return -1, fmt.Errorf("flow: %w: %s", ErrStepNotFound, stepID)
}

func fieldIndex(step model.Step, fieldID string) (int, error) {
	idx := step.FieldIndex(fieldID)
	if idx < 0 {
		return -1, fmt.Errorf("flow: %w: %s in step %s", ErrFieldNotFound, fieldID, step.Name)
	}
	return idx, nil
}

// uniqueStepName returns base, or base suffixed with a counter, so that it
// does not collide with an existing step name.
func uniqueStepName(steps []model.Step, base string) string {
	if model.StepIndexByName(steps, base) < 0 {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + " " + strconv.Itoa(n)
		if model.StepIndexByName(steps, candidate) < 0 {
			return candidate
		}
	}
}

func (e *Editor) fieldID(step model.Step, prefix string) string {
	if prefix == "" {
		prefix = "field"
	}
	for {
		id := prefix + "_" + strings.ReplaceAll(e.newID(), "-", "")[:8]
		if step.FieldIndex(id) < 0 {
			return id
		}
	}
}

func move[T any](items []T, from, to int) ([]T, error) {
	if to < 0 || to >= len(items) {
		return nil, fmt.Errorf("flow: %w: %d", ErrIndexOutOfRange, to)
	}
	out := make([]T, 0, len(items))
	item := items[from]
	rest := append(append([]T{}, items[:from]...), items[from+1:]...)
	out = append(out, rest[:to]...)
	out = append(out, item)
	out = append(out, rest[to:]...)
	return out, nil
}
