package apierr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImmutable(t *testing.T) {
	e := New(400, "INVALID_REQUEST", "invalid request: some or all request parameters are invalid")
	changedE := e.Msg("%s", "changed")
	if e.Message == "changed" {
		t.Errorf("Expected immutable error with message not equal to 'changed', got '%s'", e.Message)
	}
	if changedE.Message != "changed" {
		t.Errorf("Expected immutable error with message equal to 'changed', got '%s'", changedE.Message)
	}
}

func TestIsMatchesCopies(t *testing.T) {
	conflict := ErrTimeConflict.WithExtras(Extras{"start": "08:00"})
	assert.True(t, errors.Is(conflict, ErrTimeConflict))
	assert.False(t, errors.Is(conflict, ErrNotFound))
	assert.NotNil(t, conflict.Extras)
	assert.Nil(t, ErrTimeConflict.Extras, "sentinel must not be mutated")
}

func TestInvalidViolationsKeepsSentinel(t *testing.T) {
	e := NewInvalidViolations([]string{"operatorId"})
	assert.Equal(t, CodeInvalidRequest, e.ErrorCode)
	assert.Nil(t, ErrInvalidReq.Extras)
}
