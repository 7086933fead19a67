package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stockError struct{}

func (stockError) Error() string { return "out of stock" }

func (stockError) AppError() *AppError {
	return NewConflictError("out of stock")
}

func TestGetAppError(t *testing.T) {
	t.Run("app error passes through wrapping", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", NewNotFoundError("Sale"))
		appErr := GetAppError(err)
		assert.Equal(t, http.StatusNotFound, appErr.Code)
		assert.Equal(t, "Sale not found", appErr.Message)
	})

	t.Run("converter is used", func(t *testing.T) {
		appErr := GetAppError(fmt.Errorf("commit: %w", stockError{}))
		assert.Equal(t, http.StatusConflict, appErr.Code)
	})

	t.Run("unknown errors are hidden", func(t *testing.T) {
		appErr := GetAppError(errors.New("pq: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, appErr.Code)
		assert.NotContains(t, appErr.Message, "pq")
	})
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(ErrUnauthorized))
	assert.False(t, IsAppError(errors.New("plain")))
}
