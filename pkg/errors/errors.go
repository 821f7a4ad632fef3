// Package errors provides custom error types for the assetnotify system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the assetnotify system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransportUnavailable indicates that the mail transport could not be reached
	ErrTransportUnavailable = errors.New("transport unavailable")

	// ErrRecipientRefused indicates that the transport refused a recipient address
	ErrRecipientRefused = errors.New("recipient refused")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
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
	Format  string // "yaml", "xlsx", etc.
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
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open", "close"
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

// DeliveryError represents a transport refusal of one target address.
// The remaining targets of the same message are unaffected.
type DeliveryError struct {
	Recipient string
	Code      int
	Message   string
	Err       error
}

// Error implements the error interface
func (e *DeliveryError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("delivery to %s refused: %d - %s", e.Recipient, e.Code, e.Message)
	}
	return fmt.Sprintf("delivery to %s failed: %s", e.Recipient, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *DeliveryError) Is(target error) bool {
	return target == ErrRecipientRefused
}

// NewDeliveryError creates a new DeliveryError
func NewDeliveryError(recipient string, code int, message string, err error) *DeliveryError {
	return &DeliveryError{
		Recipient: recipient,
		Code:      code,
		Message:   message,
		Err:       err,
	}
}

// TransportError represents a failure to open or hold the mail session.
// It is fatal for the remaining dispatch loop.
type TransportError struct {
	Host    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("mail transport %s unavailable: %s", e.Host, e.Message)
	}
	return fmt.Sprintf("mail transport unavailable: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *TransportError) Is(target error) bool {
	return target == ErrTransportUnavailable
}

// NewTransportError creates a new TransportError
func NewTransportError(host, message string, err error) *TransportError {
	return &TransportError{
		Host:    host,
		Message: message,
		Err:     err,
	}
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

// IsTransportUnavailable checks if an error is fatal for the dispatch loop
func IsTransportUnavailable(err error) bool {
	return errors.Is(err, ErrTransportUnavailable)
}

// IsRecipientRefused checks if an error is a per-recipient refusal
func IsRecipientRefused(err error) bool {
	return errors.Is(err, ErrRecipientRefused)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

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

// WrapTransport wraps an error as a TransportError
func WrapTransport(host string, err error) error {
	if err == nil {
		return nil
	}
	return NewTransportError(host, err.Error(), err)
}
