package navigation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/formdata"
	"github.com/goliatone/go-formflow/pkg/model"
)

// AnswersVariable is the identifier expressions use for the answer record.
const AnswersVariable = "answers"

// ErrDriverUnanswered reports that the driver field of an active rule has no
// answer, so the next step cannot be decided yet.
var ErrDriverUnanswered = errors.New("navigation: driver field has no answer")

// Branch is one ordered row of a decision table.
type Branch struct {
	Value  string `json:"value"`
	Target string `json:"target"`
}

// Decision is the normalised form of a navigation rule. An inactive decision
// always yields the continuation marker.
type Decision struct {
	Active     bool     `json:"active"`
	DriverID   string   `json:"driverId,omitempty"`
	Membership bool     `json:"membership,omitempty"`
	Branches   []Branch `json:"branches,omitempty"`
	Fallback   string   `json:"fallback"`
}

// Plan builds the decision table for rule against the fields of its step.
func Plan(rule *model.NavigationRule, fields []model.Field) Decision {
	inactive := Decision{Fallback: model.TargetContinue}
	if rule == nil || len(rule.Conditions) == 0 {
		return inactive
	}
	var driver *model.Field
	for idx := range fields {
		if fields[idx].ID == rule.FieldID {
			driver = &fields[idx]
			break
		}
	}
	if driver == nil {
		return inactive
	}

	branches := make([]Branch, 0, len(rule.Conditions))
	for _, condition := range rule.Conditions {
		branches = append(branches, Branch{Value: condition.Value, Target: condition.NextStepName})
	}
	return Decision{
		Active:     true,
		DriverID:   driver.ID,
		Membership: driver.Kind == model.KindCheckbox,
		Branches:   branches,
		Fallback:   rule.Fallback(),
	}
}

// Matches reports whether answer satisfies branch under the decision's
// matching policy: membership for checkbox drivers, equality otherwise.
func (d Decision) Matches(branch Branch, answer any) bool {
	if d.Membership {
		return formdata.Contains(answer, branch.Value)
	}
	value, ok := formdata.Project(answer).(string)
	return ok && value == branch.Value
}

// Target returns the target name selected by answers. Branches are tested in
// order and the first match wins; no match yields the fallback.
func (d Decision) Target(answers model.Answers) string {
	if !d.Active {
		return model.TargetContinue
	}
	answer := answers[d.DriverID]
	for _, branch := range d.Branches {
		if d.Matches(branch, answer) {
			return branch.Target
		}
	}
	return d.Fallback
}

// Expression renders the decision as a portable conditional expression.
func (d Decision) Expression() string {
	if !d.Active {
		return Quote(model.TargetContinue)
	}

	var b strings.Builder
	for idx, branch := range d.Branches {
		if idx > 0 {
			b.WriteString("(")
		}
		b.WriteString(d.test(branch))
		b.WriteString(" ? ")
		b.WriteString(Quote(branch.Target))
		b.WriteString(" : ")
	}
	b.WriteString(Quote(d.Fallback))
	if len(d.Branches) > 1 {
		b.WriteString(strings.Repeat(")", len(d.Branches)-1))
	}
	return b.String()
}

func (d Decision) test(branch Branch) string {
	driver := fmt.Sprintf("%s[%s]", AnswersVariable, Quote(d.DriverID))
	if d.Membership {
		return Quote(branch.Value) + " in " + driver
	}
	return driver + " == " + Quote(branch.Value)
}

// BuildExpression renders the navigation rule of a step as a portable
// expression string. Identical inputs always yield identical strings.
func BuildExpression(rule *model.NavigationRule, fields []model.Field) string {
	return Plan(rule, fields).Expression()
}

// CheckDriver reports ErrDriverUnanswered when step has an active rule whose
// driver answer is missing or empty.
func CheckDriver(step model.Step, answers model.Answers) error {
	decision := Plan(step.NavigationRule, step.Fields)
	if !decision.Active {
		return nil
	}
	if formdata.IsEmpty(answers[decision.DriverID]) {
		return fmt.Errorf("%w: %s", ErrDriverUnanswered, decision.DriverID)
	}
	return nil
}

// Quote renders s as a single-quoted string literal accepted by both CEL and
// expr-lang.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\x%02x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
