package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goliatone/go-formflow/pkg/export"
	"github.com/goliatone/go-formflow/pkg/flow"
	"github.com/goliatone/go-formflow/pkg/flowio"
	"github.com/goliatone/go-formflow/pkg/orchestrator"
)

// snapshotTime keeps regenerated exports byte-stable.
var snapshotTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func main() {
	var (
		flowPath  = flag.String("flow", "examples/flows/onboarding.yaml", "flow document")
		outputDir = flag.String("output", "examples/flows/snapshots", "directory for the generated snapshots")
	)
	flag.Parse()

	if err := run(*flowPath, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "generate snapshots: %v\n", err)
		os.Exit(1)
	}
}

func run(flowPath, outputDir string) error {
	ctx := context.Background()

	counter := 0
	editor := flow.NewEditor(
		flow.WithClock(func() time.Time { return snapshotTime }),
		flow.WithIDGenerator(func() string {
			counter++
			return fmt.Sprintf("snapshot-%04d", counter)
		}),
	)
	orch := orchestrator.New(orchestrator.WithEditor(editor), orchestrator.WithStrict(true))
	req := orchestrator.Request{Source: flowio.SourceFromFile(flowPath)}

	doc, err := orch.Export(ctx, req, export.WithClock(func() time.Time { return snapshotTime }))
	if err != nil {
		return err
	}
	apiDoc, err := orch.OpenAPI(ctx, req)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	base := trimExt(filepath.Base(flowPath))
	if err := writeJSON(filepath.Join(outputDir, base+".export.json"), doc); err != nil {
		return err
	}
	return writeJSON(filepath.Join(outputDir, base+".openapi.json"), apiDoc)
}

func writeJSON(path string, value any) error {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
