package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeConflict, "already claimed")
	assert.True(t, HasCode(err, CodeConflict))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
}

func TestHasCodeThroughWrapping(t *testing.T) {
	inner := New(CodeResourceExhausted, "no moves remaining")
	outer := fmt.Errorf("move player: %w", inner)
	assert.True(t, HasCode(outer, CodeResourceExhausted))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load player")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Contains(t, err.Error(), "failed to load player")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("opaque")))
}

func TestIsMatchesOnCode(t *testing.T) {
	err := Newf(CodeValidation, "identifier %q is empty", "")
	assert.ErrorIs(t, err, New(CodeValidation, "anything"))
}
