package navigation

import (
	"fmt"

	"github.com/goliatone/go-formflow/pkg/model"
)

// OutcomeKind enumerates the results of next-step resolution.
type OutcomeKind string

const (
	// OutcomeContinue advances to the next step in sequence.
	OutcomeContinue OutcomeKind = "continue"
	// OutcomeComplete finishes the flow.
	OutcomeComplete OutcomeKind = "complete"
	// OutcomeEnded terminates the flow early.
	OutcomeEnded OutcomeKind = "ended"
	// OutcomeSkippedToLast jumps to the final step.
	OutcomeSkippedToLast OutcomeKind = "skipped_to_last"
	// OutcomeJump moves to the step named by the rule.
	OutcomeJump OutcomeKind = "jump"
	// OutcomeTargetNotFound reports a target that names no step. Navigation
	// must not happen.
	OutcomeTargetNotFound OutcomeKind = "target_not_found"
)

// Outcome is the result of Next. Index is the destination step index for
// Continue, SkippedToLast and Jump, and -1 otherwise.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Index  int         `json:"index"`
	Target string      `json:"target,omitempty"`
}

// Moves reports whether the outcome lands on another step.
func (o Outcome) Moves() bool {
	switch o.Kind {
	case OutcomeContinue, OutcomeSkippedToLast, OutcomeJump:
		return true
	default:
		return false
	}
}

// Finished reports whether the outcome ends the flow.
func (o Outcome) Finished() bool {
	return o.Kind == OutcomeComplete || o.Kind == OutcomeEnded
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeContinue, OutcomeSkippedToLast, OutcomeJump:
		return fmt.Sprintf("%s(%d)", o.Kind, o.Index)
	case OutcomeTargetNotFound:
		return fmt.Sprintf("%s(%q)", o.Kind, o.Target)
	default:
		return string(o.Kind)
	}
}

// Next resolves the step that follows steps[current] for answers. Callers
// validate the step first; see CheckDriver.
func Next(step model.Step, answers model.Answers, steps []model.Step, current int) Outcome {
	target := Plan(step.NavigationRule, step.Fields).Target(answers)
	return Resolve(target, steps, current)
}

// Resolve maps a target name (step name or sentinel) to an outcome.
func Resolve(target string, steps []model.Step, current int) Outcome {
	switch target {
	case "", model.TargetContinue:
		next := current + 1
		if next >= len(steps) {
			return Outcome{Kind: OutcomeComplete, Index: -1, Target: model.TargetContinue}
		}
		return Outcome{Kind: OutcomeContinue, Index: next, Target: model.TargetContinue}
	case model.TargetEnd:
		return Outcome{Kind: OutcomeEnded, Index: -1, Target: target}
	case model.TargetSkip:
		if len(steps) == 0 {
			return Outcome{Kind: OutcomeComplete, Index: -1, Target: target}
		}
		return Outcome{Kind: OutcomeSkippedToLast, Index: len(steps) - 1, Target: target}
	}

	if idx := model.StepIndexByName(steps, target); idx >= 0 {
		return Outcome{Kind: OutcomeJump, Index: idx, Target: target}
	}
	return Outcome{Kind: OutcomeTargetNotFound, Index: -1, Target: target}
}

// IsSentinel reports whether target is one of the reserved navigation targets.
func IsSentinel(target string) bool {
	switch target {
	case model.TargetContinue, model.TargetEnd, model.TargetSkip:
		return true
	default:
		return false
	}
}
