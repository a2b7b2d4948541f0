// Package errors provides custom error types for the specfuse system.
// These errors enable programmatic error checking across the reconciliation
// pipeline and its storage backends.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the specfuse system
var (
	// ErrNotFound indicates that a requested record was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedSource indicates a raw payload could not be adapted
	// into a source record
	ErrMalformedSource = errors.New("malformed source payload")

	// ErrSchemaMismatch indicates a value could not be coerced to the
	// canonical field kind
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrAmbiguousReconciliation indicates a field conflict that the
	// configured priorities cannot resolve deterministically
	ErrAmbiguousReconciliation = errors.New("ambiguous reconciliation")

	// ErrVersionConflict indicates concurrent writes for the same
	// product type and date slipped past the store's locking
	ErrVersionConflict = errors.New("version conflict")

	// ErrReadOnly indicates an attempt to modify a read-only store
	ErrReadOnly = errors.New("read only")
)

// NotFoundError represents an error when a record is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// MalformedSourceError represents a raw payload that cannot be adapted
// into a SourceRecord. The pipeline skips the offending source and
// continues with the remaining sources for the unit of work.
type MalformedSourceError struct {
	SourceID string
	Reason   string
	Err      error
}

// Error implements the error interface
func (e *MalformedSourceError) Error() string {
	if e.SourceID != "" {
		return fmt.Sprintf("malformed payload from source %s: %s", e.SourceID, e.Reason)
	}
	return fmt.Sprintf("malformed source payload: %s", e.Reason)
}

// Unwrap implements errors.Unwrap
func (e *MalformedSourceError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *MalformedSourceError) Is(target error) bool {
	return target == ErrMalformedSource
}

// NewMalformedSourceError creates a new MalformedSourceError
func NewMalformedSourceError(sourceID, reason string, err error) *MalformedSourceError {
	return &MalformedSourceError{SourceID: sourceID, Reason: reason, Err: err}
}

// SchemaMismatchError represents a value whose coerced type cannot satisfy
// the canonical field's expected kind. Dropped per-field, never fatal.
type SchemaMismatchError struct {
	Field    string
	Kind     string
	Value    any
	SourceID string
	Err      error
}

// Error implements the error interface
func (e *SchemaMismatchError) Error() string {
	if e.SourceID != "" {
		return fmt.Sprintf("field %s from %s: value %v does not satisfy kind %s", e.Field, e.SourceID, e.Value, e.Kind)
	}
	return fmt.Sprintf("field %s: value %v does not satisfy kind %s", e.Field, e.Value, e.Kind)
}

// Unwrap implements errors.Unwrap
func (e *SchemaMismatchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// NewSchemaMismatchError creates a new SchemaMismatchError
func NewSchemaMismatchError(field, kind string, value any, sourceID string, err error) *SchemaMismatchError {
	return &SchemaMismatchError{Field: field, Kind: kind, Value: value, SourceID: sourceID, Err: err}
}

// AmbiguousReconciliationError represents a field conflict between sources
// with identical priority and configuration order. Unreachable under valid
// configuration; exists as a defensive check. The affected field is omitted
// from the record rather than guessed.
type AmbiguousReconciliationError struct {
	Field   string
	Sources []string
}

// Error implements the error interface
func (e *AmbiguousReconciliationError) Error() string {
	return fmt.Sprintf("ambiguous reconciliation for field %s between sources %v", e.Field, e.Sources)
}

// Is implements errors.Is support
func (e *AmbiguousReconciliationError) Is(target error) bool {
	return target == ErrAmbiguousReconciliation
}

// NewAmbiguousReconciliationError creates a new AmbiguousReconciliationError
func NewAmbiguousReconciliationError(field string, sources []string) *AmbiguousReconciliationError {
	return &AmbiguousReconciliationError{Field: field, Sources: sources}
}

// VersionConflictError represents concurrent puts for the same
// (product_type, date) key detected outside the store's mutual exclusion.
// Fatal to that write; the caller must retry the whole unit of work.
type VersionConflictError struct {
	ProductType string
	Date        string
}

// Error implements the error interface
func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("concurrent write detected for %s/%s", e.ProductType, e.Date)
}

// Is implements errors.Is support
func (e *VersionConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}

// NewVersionConflictError creates a new VersionConflictError
func NewVersionConflictError(productType, date string) *VersionConflictError {
	return &VersionConflictError{ProductType: productType, Date: date}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
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
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "csv"
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
	Operation string // "read", "write", "create", "delete"
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

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMalformedSource checks if an error is a malformed source error
func IsMalformedSource(err error) bool {
	return errors.Is(err, ErrMalformedSource)
}

// IsSchemaMismatch checks if an error is a schema mismatch error
func IsSchemaMismatch(err error) bool {
	return errors.Is(err, ErrSchemaMismatch)
}

// IsAmbiguousReconciliation checks if an error is an ambiguous reconciliation error
func IsAmbiguousReconciliation(err error) bool {
	return errors.Is(err, ErrAmbiguousReconciliation)
}

// IsVersionConflict checks if an error is a version conflict error
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
