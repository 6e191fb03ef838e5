package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsComparesCodeAndMessage(t *testing.T) {
	notFound := NewError(http.StatusNotFound, "call not found")
	wrapped := fmt.Errorf("lookup: %w", NewError(http.StatusNotFound, "call not found"))

	assert.True(t, errors.Is(wrapped, notFound))
	assert.False(t, errors.Is(wrapped, NewError(http.StatusNotFound, "objection not found")))
	assert.False(t, errors.Is(wrapped, NewError(http.StatusBadRequest, "call not found")))
}

func TestValidationErrorKeepsFirstReasonPerField(t *testing.T) {
	verr := NewValidationError()
	require.NoError(t, verr.Err())

	verr.Add("title", "is required")
	verr.Add("title", "must be at most 255 characters")
	verr.Add("duration", "must be greater than or equal to 0")

	err := verr.Err()
	require.Error(t, err)

	var target *ValidationError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "is required", target.Fields["title"])
	assert.Equal(t, "invalid input: duration must be greater than or equal to 0; title is required", err.Error())
}

func TestValidationErrorMerge(t *testing.T) {
	a := NewValidationError()
	a.Add("content", "is required")

	b := NewValidationError()
	b.Add("content", "other")
	b.Add("confidence_score", "must be between 0 and 1")

	a.Merge(b)
	a.Merge(nil)

	assert.Len(t, a.Fields, 2)
	assert.Equal(t, "is required", a.Fields["content"])
}

func TestStorageErrorWrapsOnce(t *testing.T) {
	cause := errors.New("connection refused")

	err := NewStorageError("create_call", cause)
	again := NewStorageError("commit", err)

	assert.Same(t, err, again)
	assert.ErrorIs(t, again, cause)
	assert.Nil(t, NewStorageError("noop", nil))

	var se *StorageError
	require.ErrorAs(t, again, &se)
	assert.Equal(t, "create_call", se.Op)
}
