package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(ErrCodeAffairNotFound, "affair not found")
	assert.Equal(t, ErrCodeAffairNotFound, err.Code)
	assert.Equal(t, "[AFF_001] affair not found", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestErrorIncludesDetail(t *testing.T) {
	err := New(ErrCodeValidation, "title required").WithDetail("subject_id=42")
	assert.Equal(t, "[COMMON_010] title required: subject_id=42", err.Error())
}

func TestWrapNilReturnsNil(t *testing.T) {
	var err *AppError = Wrap(nil, CodeDBQueryError, "query failed")
	assert.Nil(t, err)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, CodeDBConnectionError, "failed to connect")
	require.NotNil(t, err)
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, CodeDBConnectionError, err.Code)
}

func TestWrapWithUnknownCodePreservesOriginal(t *testing.T) {
	inner := New(ErrCodeKGRateLimited, "slow down")
	outer := Wrap(inner, CodeUnknown, "fetch claims")
	assert.Equal(t, ErrCodeKGRateLimited, outer.Code)
}

func TestIsCodeTraversesChain(t *testing.T) {
	inner := New(ErrCodeExtractionRateLimited, "429")
	wrapped := fmt.Errorf("phase 2: %w", inner)
	outer := Wrap(wrapped, ErrCodeExternalService, "extraction failed")

	assert.True(t, IsCode(outer, ErrCodeExtractionRateLimited))
	assert.True(t, IsCode(outer, ErrCodeExternalService))
	assert.False(t, IsCode(outer, ErrCodeKGRateLimited))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrCodeAffairNotFound, "gone")))
	assert.True(t, IsNotFound(New(ErrCodeSubjectNotFound, "gone")))
	assert.True(t, IsNotFound(NotFound("gone")))
	assert.True(t, IsNotFound(Wrap(NotFound("gone"), ErrCodeInternal, "lookup")))
	assert.False(t, IsNotFound(New(ErrCodeConflict, "busy")))
	assert.False(t, IsNotFound(stderrors.New("plain")))
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, IsRateLimited(New(ErrCodeKGRateLimited, "429")))
	assert.True(t, IsRateLimited(New(ErrCodeExtractionRateLimited, "429")))
	assert.True(t, IsRateLimited(RateLimit("429")))
	assert.False(t, IsRateLimited(New(ErrCodeTimeout, "slow")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrCodeAffairInvalid, GetCode(New(ErrCodeAffairInvalid, "bad")))
}

func TestWithDetailOnNilReceiver(t *testing.T) {
	var err *AppError
	assert.Nil(t, err.WithDetail("x"))
	assert.Nil(t, err.WithCause(stderrors.New("y")))
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("subject_id", "is required")
	assert.Equal(t, ErrCodeValidation, err.Code)
	assert.Contains(t, err.Message, "subject_id")
}
