package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrEmptyQuestion.HTTPStatus)
	assert.Equal(t, http.StatusUnauthorized, ErrInvalidCredentials.HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, ErrIngestionFailed.HTTPStatus)
	assert.Equal(t, http.StatusServiceUnavailable, ErrServiceUnavailable.HTTPStatus)
}

func TestWithDetailDoesNotMutateShared(t *testing.T) {
	e := ErrInvalidParam.WithDetail("date_of_event is required")
	assert.Equal(t, "date_of_event is required", e.Detail)
	assert.Empty(t, ErrInvalidParam.Detail)
}

func TestAsAppErrorUnwrapsChain(t *testing.T) {
	base := Wrap(stderrors.New("dial tcp: refused"), CodeDatabaseError, "database unavailable")
	wrapped := fmt.Errorf("ingest: %w", base)

	assert.True(t, IsAppError(wrapped))
	assert.Equal(t, CodeDatabaseError, AsAppError(wrapped).Code)
	assert.Equal(t, CodeUnknown, AsAppError(stderrors.New("plain")).Code)
	assert.Contains(t, base.Error(), "dial tcp: refused")
}
