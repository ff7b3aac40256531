// Package runtime drives a flow interactively. A Session keeps one answer
// record per step, applies field visibility, blocks navigation until the
// current step validates, and resolves the next step from its navigation
// rule.
//
// A Session is not safe for concurrent use; it is owned by the single
// goroutine driving the user interaction.
package runtime

import (
	"fmt"

	"github.com/goliatone/go-formflow/pkg/formdata"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/navigation/interp"
	"github.com/goliatone/go-formflow/pkg/templateref"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Option configures a Session.
type Option func(*Session)

// WithContext supplies the external context used to resolve template
// defaults.
func WithContext(ctx map[string]any) Option {
	return func(s *Session) {
		s.context = ctx
	}
}

// WithEvaluator overrides the visibility evaluator.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(s *Session) {
		if evaluator != nil {
			s.visibility = evaluator
		}
	}
}

// WithInterpreter resolves navigation by evaluating the compiled navigation
// expression with interpreter instead of the native decision table.
func WithInterpreter(interpreter interp.Interpreter) Option {
	return func(s *Session) {
		s.interpreter = interpreter
	}
}

// Session is the live state of one pass through a flow.
type Session struct {
	flow        model.Flow
	answers     []model.Answers
	index       int
	history     []int
	last        navigation.Outcome
	finished    bool
	context     map[string]any
	visibility  visibility.Evaluator
	interpreter interp.Interpreter
}

// New starts a session on the first step of flow.
func New(flow model.Flow, options ...Option) (*Session, error) {
	if len(flow.Steps) == 0 {
		return nil, ErrEmptyFlow
	}
	s := &Session{
		flow:       flow,
		visibility: visibility.Default,
		last:       navigation.Outcome{Index: -1},
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	s.answers = make([]model.Answers, len(flow.Steps))
	for idx, step := range flow.Steps {
		record := formdata.Synthesize(step.Fields)
		if s.context != nil {
			record = templateref.ResolveAnswers(record, s.context)
		}
		s.answers[idx] = record
	}
	return s, nil
}

// Flow returns the flow driven by the session.
func (s *Session) Flow() model.Flow { return s.flow }

// Index returns the current step index.
func (s *Session) Index() int { return s.index }

// Current returns the current step.
func (s *Session) Current() model.Step { return s.flow.Steps[s.index] }

// Finished reports whether the flow has completed or ended.
func (s *Session) Finished() bool { return s.finished }

// Last returns the outcome of the most recent Submit.
func (s *Session) Last() navigation.Outcome { return s.last }

// History returns the indices of the steps visited before the current one.
func (s *Session) History() []int { return append([]int(nil), s.history...) }

// Answers returns a copy of the current step's answer record.
func (s *Session) Answers() model.Answers { return s.answers[s.index].Clone() }

// Answer records value for a field of the current step.
func (s *Session) Answer(fieldID string, value any) error {
	if s.finished {
		return ErrFinished
	}
	field, ok := s.Current().Field(fieldID)
	if !ok || !field.Kind.Answerable() {
		return fmt.Errorf("%w: %s", ErrUnknownField, fieldID)
	}
	if field.IsReadOnly() {
		return fmt.Errorf("%w: %s", ErrReadOnlyField, fieldID)
	}
	s.answers[s.index][fieldID] = value
	return nil
}

// Visible returns the fields of the current step that are visible under the
// current answers.
func (s *Session) Visible() []model.Field {
	return visibility.VisibleFields(s.Current(), s.answers[s.index], s.visibility)
}

// Validate returns the missing answers of the current step.
func (s *Session) Validate() []validation.Issue {
	return validation.ValidateStepWith(s.Current(), s.answers[s.index], s.visibility)
}

// Submit validates the current step and moves according to its navigation
// rule. A target that names no step is returned as an error and the session
// stays where it is.
func (s *Session) Submit() (navigation.Outcome, error) {
	if s.finished {
		return s.last, ErrFinished
	}
	step := s.Current()
	answers := s.answers[s.index]

	if issues := s.Validate(); len(issues) > 0 {
		return navigation.Outcome{Index: -1}, &ValidationError{Step: step.Name, Issues: issues}
	}
	if err := navigation.CheckDriver(step, answers); err != nil {
		return navigation.Outcome{Index: -1}, err
	}

	outcome, err := s.next(step, answers)
	if err != nil {
		return navigation.Outcome{Index: -1}, err
	}
	s.last = outcome

	switch {
	case outcome.Kind == navigation.OutcomeTargetNotFound:
		return outcome, fmt.Errorf("%w: %q", ErrTargetNotFound, outcome.Target)
	case outcome.Moves():
		s.history = append(s.history, s.index)
		s.index = outcome.Index
	case outcome.Finished():
		s.finished = true
	}
	return outcome, nil
}

func (s *Session) next(step model.Step, answers model.Answers) (navigation.Outcome, error) {
	if s.interpreter == nil {
		return navigation.Next(step, answers, s.flow.Steps, s.index), nil
	}
	expression := navigation.BuildExpression(step.NavigationRule, step.Fields)
	target, err := s.interpreter.Eval(expression, answers)
	if err != nil {
		return navigation.Outcome{}, fmt.Errorf("runtime: evaluate navigation of %s: %w", step.Name, err)
	}
	return navigation.Resolve(target, s.flow.Steps, s.index), nil
}

// Back returns to the previously visited step. Answers are kept.
func (s *Session) Back() error {
	if len(s.history) == 0 {
		return ErrNoHistory
	}
	last := len(s.history) - 1
	s.index = s.history[last]
	s.history = s.history[:last]
	s.finished = false
	s.last = navigation.Outcome{Index: -1}
	return nil
}

// StepAnswers is the visible answer record of one visited step.
type StepAnswers struct {
	Step    string        `json:"step"`
	Answers model.Answers `json:"answers"`
}

// Collected returns the visible answers of every step on the visited path,
// in visiting order.
func (s *Session) Collected() []StepAnswers {
	path := append(s.History(), s.index)
	out := make([]StepAnswers, 0, len(path))
	for _, idx := range path {
		step := s.flow.Steps[idx]
		record := model.Answers{}
		for _, field := range visibility.VisibleFields(step, s.answers[idx], s.visibility) {
			if !field.Kind.Answerable() {
				continue
			}
			record[field.ID] = s.answers[idx][field.ID]
		}
		out = append(out, StepAnswers{Step: step.Name, Answers: record.Clone()})
	}
	return out
}
