package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	wrapped := fmt.Errorf("checkout: %w", Clone(ErrSessionFull, "session s1 is full"))

	appErr := FromError(wrapped)

	assert.Equal(t, ErrSessionFull.Code, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "session s1 is full", appErr.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(stdErrors.New("boom"))

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrInvalidArgument, "horizon must not be negative")

	assert.Equal(t, "invalid argument", ErrInvalidArgument.Message)
	assert.Equal(t, "horizon must not be negative", clone.Error())
}

func TestWrapUnwrapsCause(t *testing.T) {
	root := stdErrors.New("connection refused")
	err := Wrap(root, ErrPaymentGateway.Code, ErrPaymentGateway.Status, "failed to create payment intent")

	assert.ErrorIs(t, err, root)
	assert.Equal(t, "failed to create payment intent: connection refused", err.Error())
}
