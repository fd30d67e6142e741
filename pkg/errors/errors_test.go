package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapturesStack(t *testing.T) {
	err := New(ErrorTypeValidation, "empty bucket")

	require.NotEmpty(t, err.Stack)
	assert.Contains(t, err.Stack[0].Function, "TestNewCapturesStack")
	assert.Equal(t, "validation: empty bucket", err.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeFile, "unused"))
}

func TestWrapPreservesStack(t *testing.T) {
	inner := New(ErrorTypeData, "bad line")
	outer := Wrap(inner, ErrorTypeFile, "parse failed")

	assert.Equal(t, inner.Stack, outer.Stack)
	assert.Same(t, inner, outer.Unwrap())
}

func TestWrapForeignError(t *testing.T) {
	err := Wrap(io.ErrUnexpectedEOF, ErrorTypeFile, "read failed")

	assert.True(t, Is(err, io.ErrUnexpectedEOF))
	assert.NotEmpty(t, err.Stack)
	assert.Equal(t, "file: read failed: unexpected EOF", err.Error())
}

func TestDetails(t *testing.T) {
	err := New(ErrorTypeData, "malformed record").
		WithDetail("line", 7).
		WithDetail("fields", 3)

	v, ok := err.Detail("line")
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	_, ok = err.Detail("missing")
	assert.False(t, ok)
}

func TestTypeChecks(t *testing.T) {
	notFound := Wrap(fmt.Errorf("open x: no such file"), ErrorTypeNotFound, "data file not found")
	wrapped := Wrap(notFound, ErrorTypeQuery, "houses failed")

	assert.True(t, IsType(notFound, ErrorTypeNotFound))
	assert.False(t, IsType(wrapped, ErrorTypeNotFound))
	assert.True(t, HasType(wrapped, ErrorTypeNotFound))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNotFound(io.EOF))
	assert.False(t, IsType(io.EOF, ErrorTypeFile))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errType  ErrorType
		expected bool
	}{
		{ErrorTypeConnection, true},
		{ErrorTypeTimeout, true},
		{ErrorTypeNotFound, false},
		{ErrorTypeData, false},
		{ErrorTypeFile, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			assert.Equal(t, tt.expected, IsRetryable(New(tt.errType, "x")))
		})
	}

	assert.False(t, IsRetryable(io.EOF))
}

func TestAs(t *testing.T) {
	var target *Error
	err := fmt.Errorf("outer: %w", New(ErrorTypeConfig, "bad format"))

	require.True(t, As(err, &target))
	assert.Equal(t, ErrorTypeConfig, target.Type)
}
