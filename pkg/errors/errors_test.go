package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_WrapsUnknownError(t *testing.T) {
	de := ToDomainError(errors.New("boom"))

	require.NotNil(t, de)
	assert.Equal(t, KindInternal, de.Kind)
	assert.Equal(t, CodeUnknown, de.Code)
	assert.Equal(t, "boom", de.Details["original_error"])
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
}

func TestToDomainError_PassesThroughDomainError(t *testing.T) {
	orig := NotFound(CodeStoryNotFound, "story not found")

	de := ToDomainError(orig)
	assert.Same(t, orig, de)

	// 被 fmt.Errorf 包装后仍能解出
	wrapped := fmt.Errorf("loading story: %w", orig)
	assert.Same(t, orig, ToDomainError(wrapped))
}

func TestToDomainError_Nil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestKindToHTTPStatus(t *testing.T) {
	tests := []struct {
		err    *DomainError
		status int
	}{
		{Validation(CodeInvalidParam, "bad"), http.StatusBadRequest},
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Forbidden("denied"), http.StatusForbidden},
		{NotFound(CodeUserNotFound, "missing"), http.StatusNotFound},
		{Conflict(CodeEmailAlreadyExists, "dup"), http.StatusConflict},
		{BusinessRule(CodeStoryStatusInvalid, "archived"), http.StatusUnprocessableEntity},
		{ExternalService(CodeProviderError, "upstream"), http.StatusBadGateway},
		{Internal("broken"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Kind), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestShouldLog(t *testing.T) {
	assert.False(t, ShouldLog(Validation(CodeInvalidParam, "bad")))
	assert.False(t, ShouldLog(ErrStoryNotFound))
	assert.True(t, ShouldLog(Conflict(CodeEmailAlreadyExists, "dup")))
	assert.True(t, ShouldLog(BusinessRule(CodeNoProviderAvailable, "none")))
	assert.True(t, ShouldLog(ExternalService(CodeProviderError, "down")))
	assert.True(t, ShouldLog(Internal("broken")))
	assert.True(t, ShouldLog(errors.New("boom")))
}

func TestWithDetail_DoesNotMutateOriginal(t *testing.T) {
	base := Validation(CodeInvalidParam, "bad input")
	derived := base.WithDetail("field", "prompt")

	assert.Nil(t, base.Details)
	assert.Equal(t, "prompt", derived.Details["field"])
	assert.Equal(t, base.Code, derived.Code)
}

func TestWithContext_SetsTimestamp(t *testing.T) {
	de := ErrChoiceAlreadyChosen.WithContext(Context{ChoiceID: "c-1"})

	require.NotNil(t, de.Context)
	assert.Equal(t, "c-1", de.Context.ChoiceID)
	assert.False(t, de.Context.Timestamp.IsZero())
	assert.Nil(t, ErrChoiceAlreadyChosen.Context)
}

func TestToHTTPBody_Envelope(t *testing.T) {
	status, body := ToHTTPBody(Conflict(CodeChoiceAlreadyChosen, "choice has already been selected"))

	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, body.Success)
	assert.Equal(t, CodeChoiceAlreadyChosen, body.Error.Code)
	assert.Equal(t, "choice has already been selected", body.Error.Message)
	assert.False(t, body.Error.Timestamp.IsZero())
}

func TestToHTTPBody_UnknownError(t *testing.T) {
	status, body := ToHTTPBody(errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, CodeUnknown, body.Error.Code)
	assert.Equal(t, "boom", body.Error.Details["original_error"])
}

func TestErrorString(t *testing.T) {
	plain := NotFound(CodeUserNotFound, "user not found")
	assert.Equal(t, "[3001] user not found", plain.Error())

	wrapped := Wrap(errors.New("pq: connection refused"), KindInternal, CodeDatabaseError, "failed to load user")
	assert.Contains(t, wrapped.Error(), "connection refused")
	assert.ErrorContains(t, wrapped.Unwrap(), "pq")
}
