// Package flowio loads and encodes flow documents. Documents may be JSON or
// YAML; decoded fields are normalised so kind-scoped attributes and default
// value shapes hold regardless of what the document contained.
package flowio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Flow aliases model.Flow for callers that only import flowio.
type Flow = model.Flow

// Format names an encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a name or file extension to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("flowio: unsupported format %q", name)
	}
}

// Decode parses a JSON or YAML flow document, trying JSON first.
func Decode(data []byte) (model.Flow, error) {
	return DecodeFormat(data, "")
}

// DecodeFormat parses a flow document in a known format. An empty format
// tries JSON and then YAML.
func DecodeFormat(data []byte, format Format) (model.Flow, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.Flow{}, errors.New("flowio: document is empty")
	}

	var flow model.Flow
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &flow); err != nil {
			return model.Flow{}, fmt.Errorf("flowio: invalid JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &flow); err != nil {
			return model.Flow{}, fmt.Errorf("flowio: invalid YAML: %w", err)
		}
	case "":
		jsonErr := json.Unmarshal(data, &flow)
		if jsonErr != nil {
			flow = model.Flow{}
			if err := yaml.Unmarshal(data, &flow); err != nil {
				return model.Flow{}, fmt.Errorf("flowio: invalid JSON or YAML: %w", errors.Join(jsonErr, err))
			}
		}
	default:
		return model.Flow{}, fmt.Errorf("flowio: unsupported format %q", format)
	}

	if err := check(flow); err != nil {
		return model.Flow{}, err
	}
	flow.Normalize()
	return flow, nil
}

// DetectFormat infers a document format from a media type or, failing that,
// from the extension of location. Locations may be paths or URLs. An empty
// result means the format is unknown.
func DetectFormat(location, contentType string) Format {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch {
		case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
			return FormatJSON
		case strings.HasSuffix(mediaType, "/yaml") || strings.HasSuffix(mediaType, "/x-yaml") || strings.HasSuffix(mediaType, "+yaml"):
			return FormatYAML
		}
	}

	if parsed, err := url.Parse(location); err == nil && parsed.Scheme != "" && parsed.Host != "" {
		location = parsed.Path
	}
	switch strings.ToLower(path.Ext(location)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

// Encode writes flow in the requested format.
func Encode(flow model.Flow, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(flow); err != nil {
			return nil, fmt.Errorf("flowio: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("flowio: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		payload, err := json.MarshalIndent(flow, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("flowio: encode json: %w", err)
		}
		return payload, nil
	default:
		return nil, fmt.Errorf("flowio: unsupported format %q", format)
	}
}

// check rejects documents whose fields lack identity or use unknown kinds.
func check(flow model.Flow) error {
	for stepIdx, step := range flow.Steps {
		for fieldIdx, field := range step.Fields {
			if strings.TrimSpace(field.ID) == "" {
				return fmt.Errorf("flowio: step %d field %d: id is required", stepIdx+1, fieldIdx+1)
			}
			if !field.Kind.Valid() {
				return fmt.Errorf("flowio: step %d field %q: unknown type %q", stepIdx+1, field.ID, field.Kind)
			}
		}
	}
	return nil
}
