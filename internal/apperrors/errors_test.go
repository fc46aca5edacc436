// internal/apperrors/errors_test.go
package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapperHelpers(t *testing.T) {
	err := Validationf("count must be positive, got %d", -3)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "count must be positive, got -3")

	assert.ErrorIs(t, Forbiddenf("not the owner"), ErrForbidden)
	assert.ErrorIs(t, Conflictf("duplicate pending application"), ErrConflict)
	assert.ErrorIs(t, NotFoundf("announcement %s", "abc"), ErrNotFound)

	// Sentinels stay distinct
	assert.NotErrorIs(t, Conflictf("oversell"), ErrValidation)
}

func TestInvalidTransitionError(t *testing.T) {
	err := &InvalidTransitionError{
		Entity:  "announcement",
		Current: "closed",
		Target:  "published",
		Allowed: nil,
	}

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), `"closed"`)
	assert.Contains(t, err.Error(), "none")

	err.Allowed = []string{"closed", "canceled"}
	assert.Contains(t, err.Error(), "closed, canceled")
}

func TestInvalidTransitionErrorThroughWrapping(t *testing.T) {
	inner := &InvalidTransitionError{Entity: "application", Current: "approved", Target: "rejected"}
	wrapped := fmt.Errorf("approve failed: %w", inner)

	assert.ErrorIs(t, wrapped, ErrInvalidTransition)

	var ite *InvalidTransitionError
	assert.True(t, errors.As(wrapped, &ite))
	assert.Equal(t, "approved", ite.Current)
}
