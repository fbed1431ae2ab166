package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := Conflict("transaction already processed")

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "transaction already processed", err.Error())
}

func TestError_WrappedKeepsKind(t *testing.T) {
	err := fmt.Errorf("approve topup 7: %w", InsufficientBalance("insufficient balance"))

	assert.True(t, errors.Is(err, ErrInsufficientBalance))

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, ErrInsufficientBalance, kind)
}

func TestError_SentinelsStayDistinct(t *testing.T) {
	errA := Conflict("booking cannot be cancelled")
	errB := Conflict("booking already paid")

	assert.False(t, errors.Is(errA, errB))
	assert.True(t, errors.Is(errA, errA))
}

func TestKindOf_PlainError(t *testing.T) {
	_, ok := KindOf(errors.New("boom"))
	assert.False(t, ok)

	kind, ok := KindOf(ErrForbidden)
	assert.True(t, ok)
	assert.Equal(t, ErrForbidden, kind)
}
