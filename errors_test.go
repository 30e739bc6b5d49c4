package backstop

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeError(t *testing.T) {
	base := errors.New("config file missing")
	err := NewRuntimeError(base)

	assert.True(t, IsRuntimeError(err))
	assert.False(t, IsTestFailureError(err))
	assert.False(t, IsInterruptedError(err))
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "runtime error")
}

func TestRuntimeErrorWrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewRuntimeError(errors.New("inner")))
	assert.True(t, IsRuntimeError(err))
}

func TestTestFailureError(t *testing.T) {
	err := NewTestFailureError("Security Scan")

	assert.True(t, IsTestFailureError(err))
	assert.False(t, IsRuntimeError(err))
	assert.Contains(t, err.Error(), "Security Scan")
}

func TestInterruptedError(t *testing.T) {
	err := NewInterruptedError("security")

	assert.True(t, IsInterruptedError(err))
	assert.False(t, IsRuntimeError(err))
	assert.False(t, IsTestFailureError(err))
	assert.Contains(t, err.Error(), "interrupted")
}

func TestPredicatesOnNil(t *testing.T) {
	assert.False(t, IsRuntimeError(nil))
	assert.False(t, IsTestFailureError(nil))
	assert.False(t, IsInterruptedError(nil))
}
