package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoreError_IsMatchesOnCode(t *testing.T) {
	err := NewError(CodeTokenExpired, "expired at %s", "2026-01-01")
	assert.True(t, errors.Is(err, ErrTokenExpired))
	assert.False(t, errors.Is(err, ErrInvalidToken))

	wrapped := fmt.Errorf("admit: %w", err)
	assert.True(t, errors.Is(wrapped, ErrTokenExpired))
}

func TestCodeOf(t *testing.T) {
	code, ok := CodeOf(fmt.Errorf("save: %w", ErrInvalidSession))
	assert.True(t, ok)
	assert.Equal(t, CodeInvalidSession, code)

	_, ok = CodeOf(errors.New("disk full"))
	assert.False(t, ok)
}

func TestCoreError_Message(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: campaign c-1", NewError(CodeNotFound, "campaign %s", "c-1").Error())
}
