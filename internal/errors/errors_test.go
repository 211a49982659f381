package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := ValidationError("invalid input")

	assert.Equal(t, TypeValidation, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Nil(t, err.Cause)
	assert.NotNil(t, err.Context)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
	assert.Contains(t, err.Error(), "validation")
	assert.Contains(t, err.Error(), "invalid input")
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("product not found")

	assert.Equal(t, TypeNotFound, err.Type)
	assert.Equal(t, "product not found", err.Message)
	assert.Nil(t, err.Cause)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus())
	assert.Contains(t, err.Error(), "not_found")
	assert.Contains(t, err.Error(), "product not found")
}

func TestInternalError(t *testing.T) {
	cause := fmt.Errorf("database connection failed")
	err := InternalError("failed to load catalog", cause)

	assert.Equal(t, TypeInternal, err.Type)
	assert.Equal(t, cause, err.Cause)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
	assert.Contains(t, err.Error(), "internal")
	assert.Contains(t, err.Error(), "failed to load catalog")
	assert.Contains(t, err.Error(), "database connection failed")
}

func TestInternalErrorWithoutCause(t *testing.T) {
	err := InternalError("something went wrong", nil)

	assert.Equal(t, TypeInternal, err.Type)
	assert.Nil(t, err.Cause)
	assert.NotContains(t, err.Error(), "<nil>")
}

func TestExternalError(t *testing.T) {
	cause := fmt.Errorf("redis timeout")
	err := ExternalError("failed to reach journal", cause)

	assert.Equal(t, TypeExternal, err.Type)
	assert.Equal(t, cause, err.Cause)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
	assert.Contains(t, err.Error(), "external")
}

func TestWithFieldChaining(t *testing.T) {
	err := NotFoundError("product not found").
		WithField("product_id", "kb1").
		WithField("category", "keyboards")

	assert.Len(t, err.Context, 2)
	assert.Equal(t, "kb1", err.Context["product_id"])
	assert.Equal(t, "keyboards", err.Context["category"])
}

func TestWithFieldNilMap(t *testing.T) {
	err := &Error{Type: TypeValidation, Message: "test", Context: nil}

	err = err.WithField("key", "value")

	assert.NotNil(t, err.Context)
	assert.Equal(t, "value", err.Context["key"])
}

func TestWithFieldOverwrite(t *testing.T) {
	err := ValidationError("test").
		WithField("field", "original").
		WithField("field", "overwritten")

	assert.Equal(t, "overwritten", err.Context["field"])
}

func TestToResponse(t *testing.T) {
	err := ValidationError("invalid direction").
		WithField("direction", "sideways")

	resp := err.ToResponse()

	assert.Equal(t, "invalid direction", resp.Error)
	assert.Equal(t, TypeValidation, resp.Type)
	assert.Equal(t, "sideways", resp.Context["direction"])
}

func TestToResponseEmptyContext(t *testing.T) {
	err := NotFoundError("product not found")

	resp := err.ToResponse()

	assert.Equal(t, "product not found", resp.Error)
	assert.NotNil(t, resp.Context)
	assert.Empty(t, resp.Context)
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := InternalError("wrapped", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestErrorsIs(t *testing.T) {
	rootCause := fmt.Errorf("root")
	wrapped := InternalError("wrapped", rootCause)

	assert.True(t, errors.Is(wrapped, rootCause))
}

func TestAsStructuredErrorWithStructuredError(t *testing.T) {
	original := ValidationError("original")
	result := AsStructuredError(original)

	assert.Equal(t, original, result)
}

func TestAsStructuredErrorWithStandardError(t *testing.T) {
	original := fmt.Errorf("standard error")
	result := AsStructuredError(original)

	require.NotNil(t, result)
	assert.Equal(t, TypeInternal, result.Type)
	assert.Equal(t, "internal server error", result.Message)
	assert.Equal(t, original, result.Cause)
}

func TestAsStructuredErrorWithNil(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))
}

func TestAsStructuredErrorWithWrappedStructuredError(t *testing.T) {
	original := NotFoundError("product not found")
	wrapped := fmt.Errorf("wrapped: %w", original)

	result := AsStructuredError(wrapped)

	require.NotNil(t, result)
	assert.Equal(t, TypeNotFound, result.Type)
	assert.Equal(t, "product not found", result.Message)
}

func TestHTTPStatusAllTypes(t *testing.T) {
	tests := []struct {
		name       string
		errorType  ErrorType
		wantStatus int
	}{
		{"validation", TypeValidation, http.StatusBadRequest},
		{"not_found", TypeNotFound, http.StatusNotFound},
		{"internal", TypeInternal, http.StatusInternalServerError},
		{"external", TypeExternal, http.StatusBadGateway},
		{"unknown", ErrorType("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &Error{Type: tt.errorType}
			assert.Equal(t, tt.wantStatus, err.HTTPStatus())
		})
	}
}
