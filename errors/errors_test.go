package errors

import (
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewError_CodeAndMessage 测试错误代码与消息
func TestNewError_CodeAndMessage(t *testing.T) {
	err := NewError(ErrCodeUnsupported, "cannot sort non-select query")

	assert.Equal(t, ErrCodeUnsupported, err.Code())
	assert.Equal(t, "cannot sort non-select query", err.Message())
	assert.Contains(t, err.Error(), "UNSUPPORTED_OPERATION")
	assert.Nil(t, err.Cause())
	assert.NotEmpty(t, err.Stack())
}

// TestWrapError_Unwrap 测试包装与解包
func TestWrapError_Unwrap(t *testing.T) {
	cause := stdErrors.New("boom")
	err := WrapError(cause, ErrCodeDatabase, "query failed")

	require.NotNil(t, err)
	assert.Equal(t, cause, err.Cause())
	assert.True(t, stdErrors.Is(err, cause))

	// nil 原因直接返回 nil
	assert.Nil(t, WrapError(nil, ErrCodeDatabase, "ignored"))
}

// TestIsErrorCode 测试错误代码判断
func TestIsErrorCode(t *testing.T) {
	err := NewErrorf(ErrCodeConfiguration, "named query %q not found", "User.findByName")

	assert.True(t, IsConfiguration(err))
	assert.False(t, IsUnsupported(err))
	assert.True(t, IsErrorCode(err, ErrCodeConfiguration))
	assert.False(t, IsErrorCode(nil, ErrCodeConfiguration))
	assert.Equal(t, ErrCodeConfiguration, GetErrorCode(err))

	// 非 AppError 统一视为内部错误
	assert.Equal(t, ErrCodeInternal, GetErrorCode(stdErrors.New("plain")))
}

// TestIsErrorCode_Wrapped 测试多层包装后的代码判断
func TestIsErrorCode_Wrapped(t *testing.T) {
	inner := NewError(ErrCodeInvalidInput, "specification must not be nil")
	outer := WrapError(inner, ErrCodeInvalidInput, "build query")

	assert.True(t, IsInvalidInput(outer))
	assert.True(t, stdErrors.Is(outer, inner))
}
