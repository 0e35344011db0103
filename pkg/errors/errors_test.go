package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("load sheet: %w", Clone(ErrNotReleased, "first term results are not out yet"))

	assert.ErrorIs(t, err, ErrNotReleased)
	assert.NotErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "first term results are not out yet", FromError(err).Message)
	assert.Equal(t, "results not released", ErrNotReleased.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestRetryable(t *testing.T) {
	assert.True(t, ErrRunInProgress.Retryable())
	assert.True(t, ErrRunInterrupted.Retryable())
	assert.True(t, Wrap(errors.New("db down"), ErrInternal.Code, ErrInternal.Status, "x").Retryable())
	assert.False(t, ErrConfiguration.Retryable())
	assert.False(t, ErrInvalidScore.Retryable())
}
