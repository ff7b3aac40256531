package tui

import (
	"io"

	"github.com/goliatone/go-formflow/pkg/runtime"
)

// Theme captures optional message prefixes.
type Theme struct {
	StepPrefix  string
	InfoPrefix  string
	ErrorPrefix string
}

// DefaultTheme is applied unless WithTheme overrides it.
var DefaultTheme = Theme{StepPrefix: "==", InfoPrefix: "  ", ErrorPrefix: "!"}

// FileReader reads the file at path for file fields.
type FileReader func(path string) ([]byte, error)

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutput sets where the default survey driver prints messages.
func WithOutput(out io.Writer) Option {
	return func(r *Runner) {
		if out != nil {
			r.out = out
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithFileReader overrides how file answers are read from disk.
func WithFileReader(reader FileReader) Option {
	return func(r *Runner) {
		if reader != nil {
			r.readFile = reader
		}
	}
}

// WithSessionOptions forwards options to the underlying runtime.Session.
func WithSessionOptions(opts ...runtime.Option) Option {
	return func(r *Runner) {
		r.session = append(r.session, opts...)
	}
}
