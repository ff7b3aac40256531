package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formflow/internal/log"
	"github.com/goliatone/go-formflow/pkg/validation"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"FORMFLOW_DEBUG", "FORMFLOW_LOG_LEVEL", "FORMFLOW_LOG_FORMAT", "FORMFLOW_ADDR", "FORMFLOW_INTERPRETER"} {
		t.Setenv(key, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "cel", cfg.Interpreter)
	assert.Equal(t, validation.DefaultMaxFileSizeMB, cfg.Lint.MaxFileSizeMB)
	assert.Equal(t, 4, cfg.Compile.TextareaRows)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "formflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
  format: json
server:
  addr: 127.0.0.1:9090
  readTimeout: 2s
compile:
  submitText: Next
lint:
  maxFileSizeMB: 25
interpreter: expr
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, log.FormatJSON, cfg.Log.Format)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "Next", cfg.Compile.SubmitText)
	assert.Equal(t, 25.0, cfg.Lint.MaxFileSizeMB)
	assert.Equal(t, "expr", cfg.Interpreter)
	assert.Len(t, cfg.CompilerOptions(), 2)
	assert.Len(t, cfg.LintOptions(), 1)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("FORMFLOW_ADDR", ":7070")
	t.Setenv("FORMFLOW_INTERPRETER", "EXPR")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "expr", cfg.Interpreter)
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\ninterpreter: lua\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "interpreter")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
