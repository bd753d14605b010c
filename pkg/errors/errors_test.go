package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New(CodeTaskNotFound, "task not found")
	assert.Equal(t, "[TASK_001] task not found", e.Error())

	withDetail := e.WithDetail("id=42")
	assert.Equal(t, "[TASK_001] task not found: id=42", withDetail.Error())
	// Original is not mutated.
	assert.Empty(t, e.Detail)
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeDatabaseError, "query failed"))
}

func TestWrap_PreservesCodeOnUnknown(t *testing.T) {
	inner := New(CodeProjectNotFound, "project not found")
	wrapped := Wrap(inner, CodeUnknown, "while loading memberships")
	assert.Equal(t, CodeProjectNotFound, wrapped.Code)
	assert.True(t, stderrors.Is(wrapped, wrapped))
	assert.True(t, IsCode(wrapped, CodeProjectNotFound))
}

func TestWrap_ChainTraversal(t *testing.T) {
	root := fmt.Errorf("connection refused")
	mid := Wrap(root, CodeDatabaseError, "failed to query tasks")
	outer := Wrap(mid, CodeInternal, "list tasks")

	assert.True(t, IsCode(outer, CodeDatabaseError))
	assert.False(t, IsCode(outer, CodeCacheError))
	assert.ErrorIs(t, outer, root)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(CodeIssueNotFound, "issue not found")))
	assert.True(t, IsNotFound(Wrap(New(CodeUserNotFound, "no such user"), CodeInternal, "resolve assignee")))
	assert.False(t, IsNotFound(New(CodeConflict, "already exists")))
	assert.False(t, IsNotFound(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeTokenExpired, http.StatusUnauthorized},
		{CodeNotProjectMember, http.StatusForbidden},
		{CodeTaskNotFound, http.StatusNotFound},
		{CodeTaskAlreadyClosed, http.StatusConflict},
		{CodeRateLimit, http.StatusTooManyRequests},
		{CodeDatabaseError, http.StatusInternalServerError},
		{ErrorCode("BOGUS"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.code.HTTPStatus(), "code %s", tt.code)
	}

	assert.Equal(t, http.StatusNotFound, HTTPStatus(New(CodeEventNotFound, "event not found")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("plain error")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeCacheError, GetCode(New(CodeCacheError, "cache miss")))
	assert.Equal(t, CodeUnknown, GetCode(fmt.Errorf("plain")))
}
