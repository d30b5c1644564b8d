// Package errors provides custom error types for sheetsync.
// These errors let callers tell row-level failures apart from pass-level
// failures and configuration problems without string matching.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As re-export the standard library helpers so callers need only
// one errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Common sentinel errors.
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates the remote rejected the credentials
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates that the API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrTrackerUnavailable indicates the issue tracker is temporarily unavailable
	ErrTrackerUnavailable = errors.New("tracker unavailable")

	// ErrPassInProgress is returned when a reconciliation pass is requested
	// while another one is still running.
	ErrPassInProgress = errors.New("reconciliation pass already in progress")
)

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an error returned by a remote API (GitHub, Google Sheets).
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Endpoint   string
	// RateLimited is set when the response carried exhausted rate-limit headers
	// even though the status was not 429.
	RateLimited bool
	Err         error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Service, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests || e.RateLimited:
		return target == ErrRateLimited
	case e.StatusCode == http.StatusUnauthorized:
		return target == ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return target == ErrNotFound
	case e.StatusCode >= 500:
		return target == ErrTrackerUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConfigError represents a configuration error.
// Missing lists every required setting that was absent so they can be
// reported together.
type ConfigError struct {
	Component string
	Message   string
	Missing   []string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := e.Message
	if len(e.Missing) > 0 {
		if msg != "" {
			msg += ": "
		}
		msg += strings.Join(e.Missing, "; ")
	}
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, msg)
	}
	return fmt.Sprintf("configuration error: %s", msg)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// RowError records a failure while reconciling a single row.
// Row errors never abort a pass.
type RowError struct {
	RowID     string
	Operation string // "transform", "lookup", "create", "update", "link"
	Err       error
}

// Error implements the error interface
func (e *RowError) Error() string {
	return fmt.Sprintf("row %s: %s failed: %v", e.RowID, e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *RowError) Unwrap() error {
	return e.Err
}

// NewRowError creates a new RowError
func NewRowError(rowID, operation string, err error) *RowError {
	return &RowError{RowID: rowID, Operation: operation, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsUnauthorized checks if the remote rejected our credentials
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsTrackerUnavailable checks if an error indicates tracker unavailability
func IsTrackerUnavailable(err error) bool {
	return errors.Is(err, ErrTrackerUnavailable)
}

// IsPassInProgress checks if an error was caused by the overlap guard
func IsPassInProgress(err error) bool {
	return errors.Is(err, ErrPassInProgress)
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "rename", "delete"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "update", "fetch", "search"
	Resource  string // "issue", "rows", "headers", "repository"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapAPI wraps an error as an APIError
func WrapAPI(service string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}
