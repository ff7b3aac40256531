package templateref

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
)

func sampleContext() map[string]any {
	return map[string]any{
		"workOrder": map[string]any{
			"number": "WO-1001",
			"client": map[string]any{
				"name":  "Acme",
				"email": "",
			},
			"priority": 3,
		},
		"technician": map[string]string{"name": "Jo"},
		"empty":      nil,
	}
}

func TestResolveWalksDottedPath(t *testing.T) {
	t.Parallel()

	ctx := sampleContext()
	cases := map[string]any{
		"#workOrder.number":      "WO-1001",
		"#workOrder.client.name": "Acme",
		"#workOrder.priority":    3,
		"#technician.name":       "Jo",
	}
	for template, want := range cases {
		if diff := cmp.Diff(want, Resolve(template, ctx)); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", template, diff)
		}
	}
}

func TestResolveFallsBackToTemplate(t *testing.T) {
	t.Parallel()

	ctx := sampleContext()
	for _, template := range []string{
		"#workOrder.missing",
		"#workOrder.number.deeper",
		"#workOrder.client.email",
		"#empty",
		"#empty.child",
		"#",
		"#nothing",
	} {
		if got := Resolve(template, ctx); got != template {
			t.Fatalf("%s: expected unresolved template, got %#v", template, got)
		}
	}

	if got := Resolve("#workOrder.number", nil); got != "#workOrder.number" {
		t.Fatalf("nil context should leave template unresolved, got %#v", got)
	}
}

func TestResolveLeavesNonTemplatesUntouched(t *testing.T) {
	t.Parallel()

	ctx := sampleContext()
	for _, value := range []any{"plain", "", 42, []string{"#a"}, nil} {
		if diff := cmp.Diff(value, Resolve(value, ctx)); diff != "" {
			t.Fatalf("value changed (-want +got):\n%s", diff)
		}
	}
}

func TestResolveIsIdempotentOnResolvedValues(t *testing.T) {
	t.Parallel()

	ctx := sampleContext()
	once := Resolve("#workOrder.client.name", ctx)
	twice := Resolve(once, ctx)
	if once != "Acme" || twice != once {
		t.Fatalf("expected stable resolution, got %#v then %#v", once, twice)
	}
}

func TestResolveAnswersCopiesRecord(t *testing.T) {
	t.Parallel()

	record := model.Answers{
		"client": "#workOrder.client.name",
		"other":  "#workOrder.unknown",
		"tags":   []string{"a"},
	}
	got := ResolveAnswers(record, sampleContext())

	want := model.Answers{
		"client": "Acme",
		"other":  "#workOrder.unknown",
		"tags":   []string{"a"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("resolved record mismatch (-want +got):\n%s", diff)
	}
	if record["client"] != "#workOrder.client.name" {
		t.Fatalf("input record was mutated")
	}
}
