package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeNumbering(t *testing.T) {
	want := map[Code]int{
		CodeUnauthorized:         1,
		CodeAlreadyRegistered:    2,
		CodeInvalidDetails:       3,
		CodeNotFound:             4,
		CodeInvalidCertification: 5,
		CodeMaxCollaborators:     6,
		CodeInvalidPercentage:    7,
		CodePaused:               8,
	}
	for code, n := range want {
		assert.Equal(t, n, code.Int(), "code %s", code)
	}
	assert.Equal(t, -1, CodeInternal.Int())
	assert.Equal(t, -1, Code("unknown").Int())
}

func TestErrorFormatting(t *testing.T) {
	err := New(CodeNotFound, "farm not found")
	assert.EqualError(t, err, "not_found: farm not found")

	wrapped := Wrap(errors.New("connection refused"), CodeInternal, "store unavailable")
	assert.EqualError(t, wrapped, "internal: store unavailable: connection refused")
}

func TestUnwrapAndHasCode(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "store unavailable")

	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeInternal))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(cause, CodeInternal))
	assert.False(t, HasCode(nil, CodeInternal))

	// Code carried by a nested domain error is still findable.
	nested := Wrap(New(CodeUnauthorized, "caller is not the owner"), CodeInternal, "operation failed")
	assert.True(t, HasCode(nested, CodeInternal))
	assert.True(t, HasCode(nested, CodeUnauthorized))
}

func TestIsMatchesByCodeAndMessage(t *testing.T) {
	err := New(CodePaused, "registry is paused")

	require.ErrorIs(t, err, New(CodePaused, "registry is paused"))
	assert.NotErrorIs(t, err, New(CodePaused, "different message"))
	assert.NotErrorIs(t, err, New(CodeUnauthorized, "registry is paused"))

	// fmt wrapping preserves matchability.
	assert.ErrorIs(t, fmt.Errorf("handling request: %w", err), New(CodePaused, "registry is paused"))
}

func TestCodeOfAndMessageOf(t *testing.T) {
	err := New(CodeInvalidDetails, "farm name cannot be empty")
	assert.Equal(t, CodeInvalidDetails, CodeOf(err))
	assert.Equal(t, "farm name cannot be empty", MessageOf(err))

	// Outermost code wins when domain errors nest.
	nested := Wrap(New(CodeNotFound, "farm not found"), CodeInternal, "lookup failed")
	assert.Equal(t, CodeInternal, CodeOf(nested))
	assert.Equal(t, "lookup failed", MessageOf(nested))

	plain := errors.New("boom")
	assert.Equal(t, CodeInternal, CodeOf(plain))
	assert.Equal(t, "internal error", MessageOf(plain))
}
