package flowio

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies where a flow document originated so loaders can operate
// on files, fs.FS entries, or URLs without leaking implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() SourceKind { return SourceKindFile }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() SourceKind { return SourceKindFS }

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }
func (s urlSource) Kind() SourceKind { return SourceKindURL }

// SourceFromURL parses raw and returns a URL Source.
func SourceFromURL(raw string) (Source, error) {
	if raw == "" {
		return nil, errors.New("flowio: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("flowio: invalid URL %q: %w", raw, err)
	}
	return urlSource{raw: raw}, nil
}

// ParseSource picks a URL source for http(s) locations and a file source
// otherwise.
func ParseSource(raw string) (Source, error) {
	location := strings.TrimSpace(raw)
	if location == "" {
		return nil, errors.New("flowio: source location is required")
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return SourceFromURL(location)
	}
	return SourceFromFile(location), nil
}

// Document wraps a raw flow payload, its origin and its format when known.
type Document struct {
	source Source
	raw    []byte
	format Format
}

// NewDocument constructs a Document, inferring the format from the source
// location.
func NewDocument(src Source, raw []byte) (Document, error) {
	if src == nil {
		return Document{}, errors.New("flowio: source is required")
	}
	return NewDocumentWithFormat(src, raw, DetectFormat(src.Location(), ""))
}

// NewDocumentWithFormat constructs a Document whose payload is decoded as
// format. An empty format lets Flow try JSON and then YAML.
func NewDocumentWithFormat(src Source, raw []byte, format Format) (Document, error) {
	if src == nil {
		return Document{}, errors.New("flowio: source is required")
	}
	if len(raw) == 0 {
		return Document{}, errors.New("flowio: raw document is empty")
	}
	return Document{source: src, raw: append([]byte(nil), raw...), format: format}, nil
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source { return d.source }

// Raw returns a copy of the payload.
func (d Document) Raw() []byte { return append([]byte(nil), d.raw...) }

// Format reports the payload format, or "" when it is unknown.
func (d Document) Format() Format { return d.format }

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Flow decodes the document payload.
func (d Document) Flow() (Flow, error) {
	flow, err := DecodeFormat(d.raw, d.format)
	if err != nil {
		return Flow{}, fmt.Errorf("flowio: %s: %w", d.Location(), err)
	}
	return flow, nil
}
