package polyjson

import (
	"fmt"
	"reflect"
)

// ConfigError reports an invalid declaration: a malformed type group
// descriptor, a variant that is not a struct type, or a duplicate
// discriminator discovered while compiling a resolution.
type ConfigError struct {
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "polyjson: " + e.Reason
}

func configErrorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// UnsupportedTypeError reports an encode of a value whose runtime type was
// never declared as a variant of the requested base type. Undeclared types
// are never coerced to the base type's plain shape.
type UnsupportedTypeError struct {
	Base reflect.Type
	Type reflect.Type
}

// Error implements the error interface.
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("polyjson: %s is not a declared variant of %s", e.Type, e.Base)
}

// FormatError reports a decode failure: malformed JSON, a missing or unknown
// discriminator, or a required member absent after the variant was matched.
type FormatError struct {
	Reason string
	cause  error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.cause != nil {
		return "polyjson: " + e.Reason + ": " + e.cause.Error()
	}
	return "polyjson: " + e.Reason
}

// Unwrap returns the underlying cause, if any.
func (e *FormatError) Unwrap() error {
	return e.cause
}

func formatErrorf(format string, args ...interface{}) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

func wrapFormatError(cause error, format string, args ...interface{}) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...), cause: cause}
}
