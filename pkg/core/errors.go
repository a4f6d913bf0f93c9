package core

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// Code is an enumerated failure class carried by every SystemError.
type Code string

const (
	CodeInvalidRepository     Code = "INVALID_REPOSITORY"
	CodeRepositoryNotFound    Code = "REPOSITORY_NOT_FOUND"
	CodeGitOperationFailed    Code = "GIT_OPERATION_FAILED"
	CodeThemeValidationFailed Code = "THEME_VALIDATION_FAILED"
	CodeThemeNotFound         Code = "THEME_NOT_FOUND"
	CodeThemeLoadFailed       Code = "THEME_LOAD_FAILED"
	CodeExportFailed          Code = "EXPORT_FAILED"
	CodeInvalidFormat         Code = "INVALID_FORMAT"
	CodeFileWriteFailed       Code = "FILE_WRITE_FAILED"
	CodeValidationError       Code = "VALIDATION_ERROR"
	CodeMissingParameter      Code = "MISSING_PARAMETER"
	CodeUnknownError          Code = "UNKNOWN_ERROR"
	CodeInternalError         Code = "INTERNAL_ERROR"
)

// Component names used in SystemError envelopes.
const (
	ComponentClassifier = "ChangeClassifier"
	ComponentTheme      = "ThemeRegistry"
	ComponentGenerator  = "NarrativeGenerator"
	ComponentExporter   = "DocumentExporter"
	ComponentSource     = "CommitSource"
)

// Common errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrNilDocument       = errors.New("export requires a document")
	ErrNoCommitSource    = errors.New("no commit source configured")
)

// CodedError wraps an error with an explicit code.
// The reporter keeps that code instead of guessing one.
type CodedError struct {
	Code  Code
	Cause error
}

// WithCode attaches a code to err.
func WithCode(err error, code Code) error {
	if err == nil {
		return nil
	}
	return &CodedError{Code: code, Cause: err}
}

func (e *CodedError) Error() string { return e.Cause.Error() }

func (e *CodedError) Unwrap() error { return e.Cause }

// ErrorCode reports the attached code.
func (e *CodedError) ErrorCode() Code { return e.Code }

// ValidationError describes the first rule an input violated.
type ValidationError struct {
	// Subject is what was validated, e.g. "theme" or "commit".
	Subject string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Subject == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("%s validation failed: %s", e.Subject, e.Reason)
}

// SystemError is the uniform envelope for failures crossing a component boundary.
type SystemError struct {
	ID        string         `json:"id"`
	Code      Code           `json:"code"`
	Message   string         `json:"message"`
	Component string         `json:"component"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`

	cause error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Component, e.Message)
}

// Unwrap exposes the original failure, if it was an error value.
func (e *SystemError) Unwrap() error { return e.cause }

// ErrorCode reports the envelope code.
func (e *SystemError) ErrorCode() Code { return e.Code }

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		if c, ok := err.(interface{ ErrorCode() Code }); ok && c.ErrorCode() == code {
			return true
		}
		err = errors.UnwrapOnce(err)
	}
	return false
}
