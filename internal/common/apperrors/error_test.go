package apperrors

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("derived errors match their ancestors", func(t *testing.T) {
		ErrBaseErr := New("base error")
		assert.Equal(t, "base error", ErrBaseErr.Error())
		assert.Equal(t, "msg", ErrBaseErr.New("msg").Error())
		assert.ErrorIs(t, ErrBaseErr, ErrBaseErr)

		ErrFirstLevel := ErrBaseErr.New("first level")
		assert.Equal(t, "first level", ErrFirstLevel.Error())
		assert.ErrorIs(t, ErrFirstLevel, ErrBaseErr)

		ErrAnotherErr := New("another error")
		ErrAnotherErrMsg := ErrAnotherErr.Msg("another error msg")
		ErrWrappedErr := ErrFirstLevel.Err(ErrAnotherErrMsg)
		assert.Equal(t, "first level", ErrWrappedErr.Error())
		assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
		assert.ErrorIs(t, ErrWrappedErr, ErrFirstLevel)
		assert.ErrorIs(t, ErrWrappedErr, ErrAnotherErr)
		assert.ErrorIs(t, ErrWrappedErr, ErrAnotherErrMsg)
	})

	t.Run("foreign errors stay reachable", func(t *testing.T) {
		ErrFirstLevel := New("base").New("first level")
		err := errors.New("error")
		wrapped := ErrFirstLevel.MsgErr("msg", err)
		assert.Equal(t, "msg", wrapped.Error())
		assert.ErrorIs(t, wrapped, ErrFirstLevel)
		assert.ErrorIs(t, wrapped, err)

		goErr := fmt.Errorf("go error")
		assert.ErrorIs(t, ErrFirstLevel.Err(goErr), goErr)
		assert.ErrorIs(t, errors.Wrap(wrapped, "outer"), ErrFirstLevel)
	})

	t.Run("unrelated errors do not match", func(t *testing.T) {
		assert.NotErrorIs(t, New("one").New("child"), New("one"))
	})
}

func TestErrorAll(t *testing.T) {
	ErrFetch := New("sync failed").New("failed to fetch tags").SetExpandError(true)
	cause := fmt.Errorf("connection refused")

	assert.Equal(t, "failed to fetch tags", ErrFetch.ErrorAll())
	assert.Equal(t, "failed to fetch tags: connection refused", ErrFetch.Err(cause).ErrorAll())
	assert.Equal(t, "fetching gear-tech/gear: connection refused", ErrFetch.MsgErr("fetching gear-tech/gear", cause).ErrorAll())
	assert.Equal(t, "gear: failed to fetch tags", ErrFetch.Prefix("gear").Error())

	quiet := New("quiet").Err(cause)
	assert.Equal(t, "quiet", quiet.ErrorAll())
}

func TestExitCode(t *testing.T) {
	ErrRoot := New("root").SetExitCode(4)
	ErrChild := ErrRoot.New("child")

	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 4, ErrRoot.ExitCode())
	assert.Equal(t, 4, ExitCode(ErrChild.Msg("with message")))
	assert.Equal(t, 4, ExitCode(fmt.Errorf("wrapped: %w", ErrChild)))
	assert.Equal(t, 6, ExitCode(ErrChild.SetExitCode(6)))
	assert.Equal(t, ExitGeneric, ExitCode(New("no code")))
	assert.Equal(t, ExitGeneric, ExitCode(fmt.Errorf("plain")))
}

func TestDescribe(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := New("io").SetExpandError(true).MsgErr("writing Cargo.toml", cause)
	assert.Equal(t, "writing Cargo.toml: permission denied", Describe(err))
	assert.Equal(t, "plain", Describe(fmt.Errorf("plain")))
}

type codedError struct{ code int }

func (c *codedError) Error() string { return fmt.Sprintf("code %d", c.code) }

func TestErrorAs(t *testing.T) {
	cause := &codedError{code: 403}
	err := New("fetch").SetExpandError(true).MsgErr("listing tags", cause)

	var target *codedError
	assert.ErrorAs(t, err, &target)
	assert.Equal(t, 403, target.code)
	assert.False(t, errors.As(New("bare"), &target))
}
