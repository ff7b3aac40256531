package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
)

// maxRemoteBytes bounds remote payloads.
const maxRemoteBytes = 16 << 20

// payload is a fetched document. contentType is only set for HTTP sources.
type payload struct {
	data        []byte
	contentType string
}

func loadFile(ctx context.Context, path string) (payload, error) {
	if path == "" {
		return payload{}, errors.New("flow loader: file path is required")
	}
	if err := ctx.Err(); err != nil {
		return payload{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return payload{}, fmt.Errorf("flow loader: read %s: %w", path, err)
	}
	return payload{data: data}, nil
}

func loadFromFS(ctx context.Context, filesystem fs.FS, name string) (payload, error) {
	if filesystem == nil {
		return payload{}, errors.New("flow loader: filesystem is not configured")
	}
	if name == "" {
		return payload{}, errors.New("flow loader: fs path is required")
	}
	if err := ctx.Err(); err != nil {
		return payload{}, err
	}

	data, err := fs.ReadFile(filesystem, name)
	if err != nil {
		return payload{}, fmt.Errorf("flow loader: read %s: %w", name, err)
	}
	return payload{data: data}, nil
}

func loadHTTP(ctx context.Context, client *http.Client, rawURL string, timeout time.Duration) (payload, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return payload{}, fmt.Errorf("flow loader: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return payload{}, fmt.Errorf("flow loader: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return payload{}, fmt.Errorf("flow loader: fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBytes+1))
	if err != nil {
		return payload{}, fmt.Errorf("flow loader: read body: %w", err)
	}
	if len(data) > maxRemoteBytes {
		return payload{}, fmt.Errorf("flow loader: fetch %s: body exceeds %d bytes", rawURL, maxRemoteBytes)
	}
	return payload{data: data, contentType: resp.Header.Get("Content-Type")}, nil
}
