package shared

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitExecutionFailed = 1
	ExitInvalidFlow     = 2
)

// ExitError carries a process exit code alongside the error message.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil && e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Cause }

// NewInvalidFlowError reports a flow that failed lint or validation.
func NewInvalidFlowError(message string, cause error) *ExitError {
	return &ExitError{Code: ExitInvalidFlow, Message: message, Cause: cause}
}

// HandleExitError prints err and exits with its code.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	os.Exit(printExitError(os.Stderr, err))
}

func printExitError(w io.Writer, err error) int {
	fmt.Fprintln(w, "Error:", err.Error())

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitExecutionFailed
}
