// Package testsupport holds fixture and golden-file helpers shared by the
// package tests.
package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/flowio"
	"github.com/goliatone/go-formflow/pkg/model"
)

// LoadFlow reads a JSON or YAML flow fixture. Testing helpers fail the test on
// error to keep table tests concise.
func LoadFlow(t *testing.T, path string) model.Flow {
	t.Helper()

	flow, err := LoadFlowFromPath(path)
	if err != nil {
		t.Fatalf("load flow: %v", err)
	}
	return flow
}

// LoadFlowFromPath returns a Flow without requiring testing.T.
func LoadFlowFromPath(path string) (model.Flow, error) {
	if path == "" {
		return model.Flow{}, errors.New("testsupport: flow path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Flow{}, fmt.Errorf("testsupport: read flow: %w", err)
	}
	flow, err := flowio.Decode(data)
	if err != nil {
		return model.Flow{}, fmt.Errorf("testsupport: decode flow: %w", err)
	}
	return flow, nil
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// CompareJSON marshals got and compares it with the golden JSON document at
// path. Both sides are decoded into generic values so formatting and key
// order do not matter.
func CompareJSON(t *testing.T, path string, got any) string {
	t.Helper()

	WriteGolden(t, path, got)

	payload, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	var gotValue any
	if err := json.Unmarshal(payload, &gotValue); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	var wantValue any
	if err := json.Unmarshal(MustReadGolden(t, path), &wantValue); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
	return cmp.Diff(wantValue, gotValue)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
