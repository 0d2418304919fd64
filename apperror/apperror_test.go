package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected Kind
	}{
		{name: "not found", err: NotFound("product", "p1"), expected: KindNotFound},
		{name: "validation", err: Field("quantity", "Quantity must be at least 1"), expected: KindValidation},
		{name: "conflict", err: Conflict("Category with this name already exists"), expected: KindConflict},
		{name: "wrapped", err: fmt.Errorf("outer: %w", NotFound("variant", "v1")), expected: KindNotFound},
		{name: "foreign", err: errors.New("boom"), expected: KindInternal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, KindOf(tc.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `product with id "p1" not found`, NotFound("product", "p1").Error())

	cause := errors.New("connection reset")
	internal := Internal(cause)
	assert.Equal(t, "Internal server error: connection reset", internal.Error())
	assert.ErrorIs(t, internal, cause)

	conflict := RetryableConflict("product was modified concurrently", cause)
	assert.True(t, conflict.Retryable)
	assert.Equal(t, "CONFLICT_ERROR", conflict.Kind.String())
}
