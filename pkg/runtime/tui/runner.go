// Package tui runs a flow in the terminal. Each visible field of the current
// step is prompted in order; the step is re-prompted until it validates and
// the navigation rule then picks the next step.
package tui

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-formflow/pkg/formdata"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/runtime"
	"github.com/goliatone/go-formflow/pkg/sanitize"
	"github.com/goliatone/go-formflow/pkg/validation"
	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Runner drives a runtime.Session through a PromptDriver.
type Runner struct {
	driver   PromptDriver
	out      io.Writer
	theme    Theme
	readFile FileReader
	session  []runtime.Option
}

// New constructs a Runner. Without WithPromptDriver it prompts on the
// controlling terminal through survey.
func New(options ...Option) *Runner {
	r := &Runner{
		out:      os.Stdout,
		theme:    DefaultTheme,
		readFile: os.ReadFile,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(r.out)
	}
	return r
}

// Run walks flow until it completes or ends and returns the answers of the
// visited steps.
func (r *Runner) Run(ctx context.Context, flow model.Flow) ([]runtime.StepAnswers, error) {
	session, err := runtime.New(flow, r.session...)
	if err != nil {
		return nil, err
	}

	for !session.Finished() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step := session.Current()
		if err := r.header(ctx, step); err != nil {
			return nil, err
		}
		if err := r.promptStep(ctx, session); err != nil {
			return nil, err
		}

		outcome, err := session.Submit()
		var verr *runtime.ValidationError
		switch {
		case errors.As(err, &verr):
			if err := r.problems(ctx, validation.Messages(verr.Issues)); err != nil {
				return nil, err
			}
			continue
		case errors.Is(err, navigation.ErrDriverUnanswered):
			if err := r.problems(ctx, []string{"An answer is required to continue"}); err != nil {
				return nil, err
			}
			continue
		case err != nil:
			return nil, err
		}

		if outcome.Kind == navigation.OutcomeEnded {
			if err := r.driver.Info(ctx, r.theme.InfoPrefix+"Flow ended early"); err != nil {
				return nil, err
			}
		}
	}
	return session.Collected(), nil
}

func (r *Runner) header(ctx context.Context, step model.Step) error {
	if err := r.driver.Info(ctx, strings.TrimSpace(r.theme.StepPrefix+" "+step.Name)); err != nil {
		return err
	}
	if desc := strings.TrimSpace(sanitize.Strip(step.Description)); desc != "" {
		return r.driver.Info(ctx, r.theme.InfoPrefix+desc)
	}
	return nil
}

func (r *Runner) problems(ctx context.Context, messages []string) error {
	for _, msg := range messages {
		if err := r.driver.Info(ctx, r.theme.ErrorPrefix+" "+msg); err != nil {
			return err
		}
	}
	return nil
}

// promptStep asks every field that is visible at the time it is reached, so
// answers given earlier in the step can reveal later fields.
func (r *Runner) promptStep(ctx context.Context, session *runtime.Session) error {
	step := session.Current()
	for _, field := range step.Fields {
		answers := session.Answers()
		if !visibility.IsVisible(field, step.Fields, answers) {
			continue
		}

		switch {
		case field.Kind == model.KindTitle:
			if err := r.driver.Info(ctx, sanitize.Strip(field.Title)); err != nil {
				return err
			}
			continue
		case field.IsReadOnly():
			value, _ := formdata.AsString(answers[field.ID])
			if err := r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.InfoPrefix, field.Title, value)); err != nil {
				return err
			}
			continue
		}

		value, err := r.prompt(ctx, field, answers[field.ID])
		if err != nil {
			return err
		}
		if err := session.Answer(field.ID, value); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) prompt(ctx context.Context, field model.Field, current any) (any, error) {
	message := field.Title
	if message == "" {
		message = field.ID
	}
	if field.Required {
		message += " *"
	}

	switch field.Kind {
	case model.KindTextarea:
		value, _ := formdata.AsString(current)
		return r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: value})
	case model.KindRadio, model.KindSelect:
		value, _ := formdata.AsString(current)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      field.Options,
			DefaultIndex: indexOf(field.Options, value),
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(field.Options) {
			return nil, fmt.Errorf("%w: %s", ErrNoSelection, field.ID)
		}
		return field.Options[idx], nil
	case model.KindCheckbox:
		values, _ := formdata.AsStrings(current)
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  field.Options,
			Defaults: indicesOf(field.Options, values),
		})
		if err != nil {
			return nil, err
		}
		selected := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(field.Options) {
				selected = append(selected, field.Options[idx])
			}
		}
		return selected, nil
	case model.KindFile:
		return r.promptFile(ctx, field, message)
	default:
		value, _ := formdata.AsString(current)
		return r.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   value,
			Validator: requiredValidator(field),
		})
	}
}

func (r *Runner) promptFile(ctx context.Context, field model.Field, message string) (any, error) {
	help := "Path to a file"
	if field.Multiple {
		help = "Comma separated paths"
	}
	if len(field.AcceptedFileTypes) > 0 {
		help += " (" + strings.Join(field.AcceptedFileTypes, ", ") + ")"
	}

	for {
		raw, err := r.driver.Input(ctx, InputConfig{Message: message, Help: help, Validator: requiredValidator(field)})
		if err != nil {
			return nil, err
		}
		value, err := r.readFiles(field, raw)
		var ferr *FileError
		if errors.As(err, &ferr) {
			if err := r.problems(ctx, []string{ferr.Path + ": " + ferr.Reason}); err != nil {
				return nil, err
			}
			continue
		}
		return value, err
	}
}

func (r *Runner) readFiles(field model.Field, raw string) (any, error) {
	var paths []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	if !field.Multiple && len(paths) > 1 {
		paths = paths[:1]
	}

	descriptors := make([]model.FileDescriptor, 0, len(paths))
	for _, path := range paths {
		desc, err := r.describeFile(path, field)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, desc)
	}

	if field.Multiple {
		return descriptors, nil
	}
	if len(descriptors) == 0 {
		return nil, nil
	}
	return &descriptors[0], nil
}

func (r *Runner) describeFile(path string, field model.Field) (model.FileDescriptor, error) {
	data, err := r.readFile(path)
	if err != nil {
		return model.FileDescriptor{}, &FileError{Path: path, Reason: "cannot be read", Err: err}
	}
	if field.MaxFileSize > 0 && float64(len(data)) > field.MaxFileSize*1024*1024 {
		return model.FileDescriptor{}, &FileError{Path: path, Reason: fmt.Sprintf("exceeds %g MB", field.MaxFileSize)}
	}
	mediaType := mime.TypeByExtension(filepath.Ext(path))
	if mediaType == "" {
		mediaType = http.DetectContentType(data)
	}
	name := filepath.Base(path)
	if !acceptsFile(field.AcceptedFileTypes, name, mediaType) {
		return model.FileDescriptor{}, &FileError{
			Path:   path,
			Reason: "must be one of " + strings.Join(field.AcceptedFileTypes, ", "),
		}
	}
	return model.FileDescriptor{
		Name:    name,
		Type:    mediaType,
		Size:    int64(len(data)),
		DataURL: "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}

// acceptsFile matches a file against accept patterns: extensions (".pdf"),
// media types ("application/pdf") and type wildcards ("image/*"). No patterns
// accept everything.
func acceptsFile(patterns []string, name, mediaType string) bool {
	if len(patterns) == 0 {
		return true
	}
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	mediaType = strings.ToLower(mediaType)
	ext := strings.ToLower(filepath.Ext(name))
	for _, pattern := range patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		switch {
		case pattern == "":
			continue
		case strings.HasPrefix(pattern, "."):
			if ext == pattern {
				return true
			}
		case strings.HasSuffix(pattern, "/*"):
			if strings.HasPrefix(mediaType, strings.TrimSuffix(pattern, "*")) {
				return true
			}
		case pattern == mediaType:
			return true
		}
	}
	return false
}

func requiredValidator(field model.Field) func(string) error {
	if !field.Required {
		return nil
	}
	label := field.Title
	if label == "" {
		label = field.ID
	}
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}
