package geoerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := New(KindInvalidOptions, "missing proximity")
	target := &GeoError{Kind: KindInvalidOptions}

	assert.True(t, errors.Is(err, target))
	assert.False(t, errors.Is(err, &GeoError{Kind: KindCoalesceFailure}))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("native engine unreachable")
	err := Wrap(KindCoalesceFailure, "coalesce failed", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "native engine unreachable")
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(KindProjectionFailure, "x", nil))
}

func TestNewDerivesCategoryAndRetryable(t *testing.T) {
	opt := New(KindInvalidOptions, "missing proximity")
	assert.Equal(t, CategoryValidation, opt.Category)
	assert.False(t, opt.Retryable)

	rng := New(KindIndexOutOfRange, "idx out of range")
	assert.Equal(t, CategoryValidation, rng.Category)
	assert.False(t, rng.Retryable)

	coalesce := New(KindCoalesceFailure, "native call failed")
	assert.Equal(t, CategoryInternal, coalesce.Category)
	assert.True(t, coalesce.Retryable)

	proj := New(KindProjectionFailure, "projection failed")
	assert.Equal(t, CategoryInternal, proj.Category)
	assert.True(t, proj.Retryable)
}

func TestWrapDerivesCategoryAndRetryable(t *testing.T) {
	err := Wrap(KindCoalesceFailure, "native engine unreachable", errors.New("boom"))
	assert.Equal(t, CategoryInternal, err.Category)
	assert.True(t, err.Retryable)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(KindCoalesceFailure, "x")))
	assert.False(t, IsRetryable(New(KindInvalidOptions, "x")))
	assert.False(t, IsRetryable(errors.New("plain error")))
	assert.False(t, IsRetryable(nil))
}
