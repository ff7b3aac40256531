package tui

import (
	"errors"
	"fmt"
)

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoSelection is returned when a choice prompt yields no option.
	ErrNoSelection = errors.New("tui: no option selected")
)

// FileError reports a file answer the runner refused. The field is prompted
// again rather than aborting the run.
type FileError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("tui: %s: %s", e.Path, e.Reason)
}

func (e *FileError) Unwrap() error { return e.Err }
