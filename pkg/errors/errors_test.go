package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(ErrSlotTaken, ErrSlotTaken.Code))
	assert.True(t, HasCode(Clone(ErrSlotTaken, "another tutee got there first"), ErrSlotTaken.Code))
	assert.True(t, HasCode(fmt.Errorf("accept failed: %w", ErrSlotTaken), ErrSlotTaken.Code))

	assert.False(t, HasCode(ErrSlotTaken, ErrNotFound.Code))
	assert.False(t, HasCode(fmt.Errorf("plain error"), ErrSlotTaken.Code))
	assert.False(t, HasCode(nil, ErrSlotTaken.Code))
	assert.False(t, HasCode(ErrSlotTaken, ""))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, wrapped.Code)

	typed := FromError(fmt.Errorf("cancel: %w", ErrTooLateToCancel))
	assert.Equal(t, ErrTooLateToCancel.Code, typed.Code)
}

func TestCloneKeepsOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "day of week out of range")
	assert.Equal(t, "day of week out of range", clone.Message)
	assert.Equal(t, ErrValidation.Code, clone.Code)
	assert.Equal(t, "validation failed", ErrValidation.Message)
}
