// Package errors provides structured error handling for cohortdata with
// error categorization, key-value context and stack traces.
//
// # Overview
//
// Loading a roster file can fail in a few distinct ways: the file is missing,
// it cannot be read, or a line does not have exactly five fields. Each case
// gets its own ErrorType so callers (and the CLI) can react to it without
// string matching:
//
//	ds, err := roster.Load(ctx, "cohort_data.txt")
//	if errors.IsNotFound(err) {
//	    // no such file
//	}
//	if errors.IsType(err, errors.ErrorTypeData) {
//	    // malformed line; see the "line" detail
//	}
//
// Query results that are simply absent (an unknown student name) are not
// errors and never use this package.
//
// # Thread Safety
//
// Error instances are not safe for concurrent modification. Finish adding
// details before sharing an error across goroutines.
package errors

import (
	"errors"
	"runtime"

	stringpool "github.com/ajitpratap0/cohortdata/pkg/strings"
)

// ErrorType represents the category of an error.
type ErrorType string

const (
	// ErrorTypeInternal represents internal system errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation represents invalid arguments or URIs
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound represents a missing file or object
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeTimeout represents a cancelled or expired operation
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeConnection represents failures talking to remote storage
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypePermission represents access denied errors
	ErrorTypePermission ErrorType = "permission"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeData represents malformed record data
	ErrorTypeData ErrorType = "data"
	// ErrorTypeFile represents file operation errors
	ErrorTypeFile ErrorType = "file"
	// ErrorTypeQuery represents query execution errors
	ErrorTypeQuery ErrorType = "query"
)

// Error represents a structured error with context.
//
// Fields:
//   - Type: Categorizes the error for handling strategies
//   - Message: Human-readable error description
//   - Cause: The underlying error that caused this error
//   - Details: Key-value pairs providing additional context
//   - Stack: Call stack at the point of error creation
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack.
type StackFrame struct {
	Function string // Fully qualified function name
	File     string // Source file path
	Line     int    // Line number in source file
}

// Error implements the error interface, returning the type, message and
// cause (if present).
func (e *Error) Error() string {
	if e.Cause != nil {
		return stringpool.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return stringpool.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error. It can be chained.
//
// Example:
//
//	err := errors.New(errors.ErrorTypeData, "malformed record").
//	    WithDetail("line", 12).
//	    WithDetail("fields", 4)
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Detail returns the value stored under key, if any.
func (e *Error) Detail(key string) (interface{}, bool) {
	v, ok := e.Details[key]
	return v, ok
}

// New creates a new error with the given type and message, capturing the
// call stack at the point of creation.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context, preserving the
// original error as the cause. If err is already a structured Error, its
// stack trace is kept. Returns nil if err is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsRetryable returns true if the error is worth retrying. Timeouts and
// connection failures against remote storage are retryable; missing files
// and malformed data are not.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	switch e.Type {
	case ErrorTypeTimeout, ErrorTypeConnection:
		return true
	default:
		return false
	}
}

// IsType reports whether the outermost structured error in err's chain has
// the given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// HasType reports whether any structured error in err's chain has the given
// type. Unlike IsType it looks past wrapping layers.
func HasType(err error, errType ErrorType) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Type == errType {
			return true
		}
		err = e.Cause
	}
	return false
}

// IsNotFound reports whether err (or anything it wraps) is a not-found error.
func IsNotFound(err error) bool {
	return HasType(err, ErrorTypeNotFound)
}

// Is reports whether any error in err's chain matches target. It forwards to
// the standard library so callers need only one errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As forwards to the standard library errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// captureStack captures the current call stack up to maxFrames deep,
// skipping the given number of frames.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
