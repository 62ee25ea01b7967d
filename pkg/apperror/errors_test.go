package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := New(KindNotFound, "book not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflictingLogin))

	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, "book not found", MessageOf(wrapped))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindUploadFailed, "upload failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Equal(t, "upload failed: connection reset", err.Error())
}

func TestOrphanCarriesIdentifiers(t *testing.T) {
	err := Orphan("asset record not saved", "library/abc", "", errors.New("db down"))

	var ae *Error
	assert.True(t, errors.As(err, &ae))
	assert.Equal(t, KindPartialFailure, ae.Kind)
	assert.Equal(t, "library/abc", ae.RemoteID)
	assert.ErrorIs(t, err, ErrPartialFailure)
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "plain", MessageOf(errors.New("plain")))
	assert.Equal(t, "", MessageOf(nil))
	assert.Equal(t, "no_image_set", KindNoImageSet.String())
}
