package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches wrapped domain error", func(t *testing.T) {
		inner := New(CodeSessionExpired, "session expired")
		err := fmt.Errorf("submit: %w", inner)

		assert.True(t, HasCode(err, CodeSessionExpired))
		assert.False(t, HasCode(err, CodeInternal))
	})

	t.Run("walks nested domain errors", func(t *testing.T) {
		inner := New(CodeNotFound, "missing")
		outer := Wrap(inner, CodeInternal, "lookup failed")

		assert.True(t, HasCode(outer, CodeNotFound))
		assert.True(t, Is(outer, CodeInternal))
		assert.False(t, Is(outer, CodeNotFound))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))

	cause := errors.New("dial tcp: refused")
	err := Wrap(cause, CodeUnavailable, "backend unavailable")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "backend unavailable: dial tcp: refused", err.Error())
}
