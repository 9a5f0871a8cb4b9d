package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// Error types for the displayname system
type ErrorType string

const (
	// Transform errors
	ErrorTypeTransform   ErrorType = "transform"
	ErrorTypeParse       ErrorType = "parse"
	ErrorTypeUnsupported ErrorType = "unsupported"

	// Hook errors
	ErrorTypeHook ErrorType = "hook"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// ErrUnsupportedNode is matched by every UnsupportedNodeError via errors.Is
var ErrUnsupportedNode = stderrors.New("unsupported declaration node")

// TransformError represents an error while annotating a single source unit
type TransformError struct {
	Type       ErrorType
	FilePath   string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewTransformError creates a new transform error with context
func NewTransformError(op string, err error) *TransformError {
	return &TransformError{
		Type:       ErrorTypeTransform,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile adds file information to the error
func (e *TransformError) WithFile(path string) *TransformError {
	e.FilePath = path
	return e
}

// Error implements the error interface
func (e *TransformError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *TransformError) Unwrap() error {
	return e.Underlying
}

// ParseError represents a syntax error reported by the parser
type ParseError struct {
	Type       ErrorType
	FilePath   string
	Line       int
	Column     int
	Token      string
	Underlying error
	Timestamp  time.Time
}

// NewParseError creates a new parse error
func NewParseError(path string, line, column int, token string, err error) *ParseError {
	return &ParseError{
		Type:       ErrorTypeParse,
		FilePath:   path,
		Line:       line,
		Column:     column,
		Token:      token,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile adds file information to the error
func (e *ParseError) WithFile(path string) *ParseError {
	e.FilePath = path
	return e
}

// Error implements the error interface
func (e *ParseError) Error() string {
	path := e.FilePath
	if path == "" {
		path = "<source>"
	}
	return fmt.Sprintf("parse error at %s:%d:%d (near token %q): %v",
		path, e.Line, e.Column, e.Token, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// UnsupportedNodeError signals that a classified declaration could not be
// resolved to a binding. It aborts processing of the whole tree.
type UnsupportedNodeError struct {
	Type      ErrorType
	Kind      string
	Line      int
	Column    int
	Reason    string
	Timestamp time.Time
}

// NewUnsupportedNodeError creates a new unsupported node error
func NewUnsupportedNodeError(kind string, line, column int, reason string) *UnsupportedNodeError {
	return &UnsupportedNodeError{
		Type:      ErrorTypeUnsupported,
		Kind:      kind,
		Line:      line,
		Column:    column,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("unsupported %s at %d:%d: %s", e.Kind, e.Line, e.Column, e.Reason)
}

// Is reports ErrUnsupportedNode as a match
func (e *UnsupportedNodeError) Is(target error) bool {
	return target == ErrUnsupportedNode
}

// HookError represents a failure loading or calling a renaming hook
type HookError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewHookError creates a new hook error
func NewHookError(op, path string, err error) *HookError {
	return &HookError{
		Type:       ErrorTypeHook,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *HookError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("rename hook %s failed: %v", e.Operation, e.Underlying)
	}
	return fmt.Sprintf("rename hook %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *HookError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// isPermissionError checks if the error is a permission error
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return errStr == "permission denied" || errStr == "access denied"
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Suggestion string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithSuggestion attaches the closest known field name
func (e *ConfigError) WithSuggestion(suggestion string) *ConfigError {
	e.Suggestion = suggestion
	return e
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
