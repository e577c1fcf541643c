package apperrors

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	err := NewValidationError("title too long", "301 characters")
	assert.True(t, IsValidation(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, http.StatusBadRequest, err.Code)
	assert.Contains(t, err.Error(), "title too long")
	assert.Contains(t, err.Error(), "301 characters")

	assert.Equal(t, http.StatusNotFound, NewNotFoundError("ticket not found").Code)
	assert.Equal(t, http.StatusConflict, NewConflictError("duplicate").Code)
	assert.Equal(t, http.StatusInternalServerError, NewInternalError("boom").Code)
}

func TestGetUnwrapsStack(t *testing.T) {
	wrapped := errors.Wrap(NewNotFoundError("ticket not found"), "fetch")
	appErr := Get(wrapped)
	assert.NotNil(t, appErr)
	assert.Equal(t, ErrorTypeNotFound, appErr.Type)

	assert.Nil(t, Get(errors.New("plain")))
}
