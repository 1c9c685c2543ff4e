package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeRecord represents a malformed input record
	ErrorTypeRecord ErrorType = "record"
	// ErrorTypeIntent represents an invalid write-intent request
	ErrorTypeIntent ErrorType = "intent"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeConfig represents configuration and input errors that abort a run
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Record Errors

// ErrRecordSkipped is returned when a single input record cannot be processed.
// Index is -1 when the whole document had an unrecognized shape.
type ErrRecordSkipped struct {
	*BaseError
	Source string
	Index  int
	Field  string
}

func NewRecordSkipped(source string, index int, field, reason string) *ErrRecordSkipped {
	return &ErrRecordSkipped{
		BaseError: NewBaseError(ErrorTypeRecord, fmt.Sprintf("%s record %d skipped: %s: %s", source, index, field, reason), nil),
		Source:    source,
		Index:     index,
		Field:     field,
	}
}

// Intent Errors

// ErrInvalidIntent is returned when the builder refuses a write request
type ErrInvalidIntent struct {
	*BaseError
	Reason string
}

func NewInvalidIntent(reason string) *ErrInvalidIntent {
	return &ErrInvalidIntent{
		BaseError: NewBaseError(ErrorTypeIntent, "invalid write intent: "+reason, nil),
		Reason:    reason,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrWriteFailed is returned when the store rejects one write intent
type ErrWriteFailed struct {
	*BaseError
	Index     int
	Statement string
}

func NewWriteFailed(index int, statement string, err error) *ErrWriteFailed {
	return &ErrWriteFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("write %d failed", index), err),
		Index:     index,
		Statement: statement,
	}
}

// Config Errors

// ErrInputUnreadable is returned when an input document cannot be opened or decoded
type ErrInputUnreadable struct {
	*BaseError
	Path string
}

func NewInputUnreadable(path string, err error) *ErrInputUnreadable {
	return &ErrInputUnreadable{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("cannot read input: %s", path), err),
		Path:      path,
	}
}

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// Helper functions

// IsErrorType checks if an error, or any error it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	var typed interface{ errorType() ErrorType }
	if errors.As(err, &typed) {
		return typed.errorType() == errType
	}
	return false
}

func (e *BaseError) errorType() ErrorType {
	return e.Type
}

// IsFatal reports whether err must abort a build run before processing
func IsFatal(err error) bool {
	return IsErrorType(err, ErrorTypeConfig)
}
