package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	t.Run("coded error", func(t *testing.T) {
		err := Errf(CodeTransport, "HTTP %d", 502)
		assert.Equal(t, CodeTransport, CodeOf(err))
		assert.Equal(t, "HTTP 502", err.Error())
	})

	t.Run("wrapped coded error", func(t *testing.T) {
		inner := WrapErr(CodeIO, errors.New("disk full"))
		outer := fmt.Errorf("merge failed: %w", inner)
		assert.Equal(t, CodeIO, CodeOf(outer))
	})

	t.Run("cancellation", func(t *testing.T) {
		assert.Equal(t, CodeCancelled, CodeOf(context.Canceled))
		assert.Equal(t, CodeCancelled, CodeOf(context.DeadlineExceeded))
	})

	t.Run("unknown error", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("whatever")))
	})
}

func TestWrapErrPreservesChain(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := WrapErr(CodeStorage, sentinel)
	assert.True(t, errors.Is(err, sentinel))
}
