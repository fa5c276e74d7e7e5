package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryAndNum(t *testing.T) {
	err := NewCoded(CodeValidation, 101, "amount must be positive")
	assert.True(t, HasCode(err, CodeValidation))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.Equal(t, 101, Num(err))
	assert.Equal(t, "validation: amount must be positive", err.Error())
}

func TestCategoryOnlyErrorsCarryNoNum(t *testing.T) {
	err := New(CodeConflict, "already configured")
	assert.True(t, Is(err, CodeConflict))
	assert.Zero(t, Num(err))
}

func TestWrapKeepsCauseReachable(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "store invoice")
	require.True(t, HasCode(err, CodeInternal))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHasCodeSeesThroughWrapping(t *testing.T) {
	inner := NewCoded(CodeNotFound, 105, "invoice not found")
	outer := fmt.Errorf("lookup: %w", inner)
	assert.True(t, HasCode(outer, CodeNotFound))
	assert.Equal(t, 105, Num(outer))
}

func TestNonDomainErrors(t *testing.T) {
	err := errors.New("plain")
	assert.False(t, HasCode(err, CodeInternal))
	assert.Zero(t, Num(err))
}
