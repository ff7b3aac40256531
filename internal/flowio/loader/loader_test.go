package loader_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-formflow/internal/flowio/loader"
	"github.com/goliatone/go-formflow/pkg/flowio"
)

const payload = `{"name":"Demo","steps":[{"id":"s1","name":"Page 1","fields":[{"id":"q","type":"text","title":"Q"}]}]}`

func TestLoaderFileSource(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "flow.json")
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	l := loader.New(flowio.NewLoaderOptions())
	flow, err := flowio.LoadFlow(context.Background(), l, flowio.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if flow.Name != "Demo" || len(flow.Steps) != 1 {
		t.Fatalf("unexpected flow: %+v", flow)
	}
}

func TestLoaderFSSource(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{"flows/demo.json": {Data: []byte(payload)}}
	l := loader.New(flowio.NewLoaderOptions(flowio.WithFileSystem(files)))

	doc, err := l.Load(context.Background(), flowio.SourceFromFS("flows/demo.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Location() != "flows/demo.json" {
		t.Fatalf("unexpected location %q", doc.Location())
	}

	if _, err := l.Load(context.Background(), flowio.SourceFromFS("missing.json")); err == nil {
		t.Fatal("expected error for missing fs entry")
	}
}

func TestLoaderFSRequiresFileSystem(t *testing.T) {
	t.Parallel()

	l := loader.New(flowio.NewLoaderOptions())
	if _, err := l.Load(context.Background(), flowio.SourceFromFS("demo.json")); err == nil {
		t.Fatal("expected error without filesystem")
	}
}

func TestLoaderHTTPSource(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)

	disabled := loader.New(flowio.NewLoaderOptions())
	src, err := flowio.SourceFromURL(server.URL + "/flow.json")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if _, err := disabled.Load(context.Background(), src); !errors.Is(err, loader.ErrHTTPDisabled) {
		t.Fatalf("expected http to be disabled by default, got %v", err)
	}

	l := loader.New(flowio.NewLoaderOptions(flowio.WithHTTPFallback(2 * time.Second)))
	flow, err := flowio.LoadFlow(context.Background(), l, src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if flow.Steps[0].Fields[0].ID != "q" {
		t.Fatalf("unexpected flow: %+v", flow)
	}

	missing, _ := flowio.SourceFromURL(server.URL + "/missing")
	if _, err := l.Load(context.Background(), missing); err == nil {
		t.Fatal("expected status error")
	}
}

func TestLoaderHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := fstest.MapFS{"demo.json": {Data: []byte(payload)}}
	l := loader.New(flowio.NewLoaderOptions(flowio.WithFileSystem(files)))
	if _, err := l.Load(ctx, flowio.SourceFromFS("demo.json")); err == nil {
		t.Fatal("expected context error")
	}
}

const yamlPayload = `
name: Demo
steps:
  - id: s1
    name: Page 1
    fields:
      - id: q
        type: text
        title: Q
`

func TestLoaderDetectsFormat(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write([]byte(yamlPayload))
	}))
	t.Cleanup(server.Close)

	files := fstest.MapFS{
		"flows/demo.yml":    {Data: []byte(yamlPayload)},
		"flows/broken.json": {Data: []byte(yamlPayload)},
		"flows/demo":        {Data: []byte(yamlPayload)},
	}
	l := loader.New(flowio.NewLoaderOptions(flowio.WithFileSystem(files), flowio.WithHTTPFallback(2*time.Second)))

	cases := []struct {
		name string
		src  func(t *testing.T) flowio.Source
		want flowio.Format
	}{
		{name: "extension", src: func(*testing.T) flowio.Source { return flowio.SourceFromFS("flows/demo.yml") }, want: flowio.FormatYAML},
		{name: "unknown", src: func(*testing.T) flowio.Source { return flowio.SourceFromFS("flows/demo") }, want: ""},
		{name: "content type", src: func(t *testing.T) flowio.Source {
			src, err := flowio.SourceFromURL(server.URL + "/flows/latest")
			if err != nil {
				t.Fatalf("source: %v", err)
			}
			return src
		}, want: flowio.FormatYAML},
	}
	for _, tc := range cases {
		doc, err := l.Load(context.Background(), tc.src(t))
		if err != nil {
			t.Fatalf("%s: load: %v", tc.name, err)
		}
		if doc.Format() != tc.want {
			t.Fatalf("%s: format = %q, want %q", tc.name, doc.Format(), tc.want)
		}
		flow, err := doc.Flow()
		if err != nil || flow.Name != "Demo" {
			t.Fatalf("%s: decode: %+v %v", tc.name, flow, err)
		}
	}

	doc, err := l.Load(context.Background(), flowio.SourceFromFS("flows/broken.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := doc.Flow(); err == nil {
		t.Fatal("expected YAML labelled as JSON to be rejected")
	}
}
