// Package loader fetches flow documents for flowio.Loader. Payloads carry
// their format, taken from the response Content-Type or the location's
// extension, so a document labelled JSON is never parsed as YAML.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-formflow/pkg/flowio"
)

// ErrHTTPDisabled is returned for URL sources when no HTTP client is
// configured.
var ErrHTTPDisabled = errors.New("flow loader: http support disabled")

// Loader resolves file, fs.FS and URL sources into flowio documents.
type Loader struct {
	files   fs.FS
	client  *http.Client
	timeout time.Duration
}

var _ flowio.Loader = (*Loader)(nil)

// New constructs a Loader. URL sources are only served when options carry an
// HTTP client or enable the HTTP fallback.
func New(options flowio.LoaderOptions) flowio.Loader {
	return &Loader{
		files:   options.FileSystem,
		client:  httpClient(options),
		timeout: options.RequestTimeout,
	}
}

func httpClient(options flowio.LoaderOptions) *http.Client {
	if options.HTTPClient != nil {
		clone := *options.HTTPClient
		if options.RequestTimeout > 0 && clone.Timeout == 0 {
			clone.Timeout = options.RequestTimeout
		}
		return &clone
	}
	if options.AllowHTTPFallback {
		return &http.Client{Timeout: options.RequestTimeout}
	}
	return nil
}

// Load fetches src and wraps the payload with its detected format.
func (l *Loader) Load(ctx context.Context, src flowio.Source) (flowio.Document, error) {
	if src == nil {
		return flowio.Document{}, errors.New("flow loader: source is nil")
	}
	fetched, err := l.fetch(ctx, src)
	if err != nil {
		return flowio.Document{}, err
	}
	format := flowio.DetectFormat(src.Location(), fetched.contentType)
	return flowio.NewDocumentWithFormat(src, fetched.data, format)
}

func (l *Loader) fetch(ctx context.Context, src flowio.Source) (payload, error) {
	switch src.Kind() {
	case flowio.SourceKindFile:
		return loadFile(ctx, src.Location())
	case flowio.SourceKindFS:
		return loadFromFS(ctx, l.files, src.Location())
	case flowio.SourceKindURL:
		if l.client == nil {
			return payload{}, ErrHTTPDisabled
		}
		return loadHTTP(ctx, l.client, src.Location(), l.timeout)
	default:
		return payload{}, fmt.Errorf("flow loader: unsupported source kind %q", src.Kind())
	}
}
