// Package errors 提供统一的错误代码体系。
//
// 查询派生/改写引擎的失败分类：
//   - 用法错误（空规约、空白查询文本等）→ ErrCodeInvalidInput，立即失败；
//   - 不支持的操作（对非 SELECT 查询排序/派生计数）→ ErrCodeUnsupported；
//   - 配置/解析错误（命名查询找不到、无法确定方言）→ ErrCodeConfiguration，
//     在 AOT 解析阶段暴露，不得推迟到首次调用；
//   - 状态错误（流式查询对象泄漏到调用方）→ ErrCodeState。
//
// 所有错误只向上传播，不重试、不静默降级。
package errors

import (
	stdErrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 预定义错误代码
const (
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnsupported   ErrorCode = "UNSUPPORTED_OPERATION"
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeState         ErrorCode = "STATE_ERROR"
	ErrCodeDatabase      ErrorCode = "DATABASE_ERROR"
)

// IError 错误接口
type IError interface {
	error

	// 获取错误代码
	Code() ErrorCode

	// 获取错误消息
	Message() string

	// 获取原始错误
	Cause() error

	// 获取堆栈信息
	Stack() string

	// 是否为指定类型的错误
	Is(target error) bool
}

// AppError 应用错误实现
type AppError struct {
	code    ErrorCode
	message string
	cause   error
	stack   string
}

// NewError 创建新错误
func NewError(code ErrorCode, message string) IError {
	return &AppError{
		code:    code,
		message: message,
		stack:   captureStack(),
	}
}

// NewErrorf 创建带格式化消息的新错误
func NewErrorf(code ErrorCode, format string, args ...any) IError {
	return &AppError{
		code:    code,
		message: fmt.Sprintf(format, args...),
		stack:   captureStack(),
	}
}

// WrapError 包装错误
func WrapError(err error, code ErrorCode, message string) IError {
	if err == nil {
		return nil
	}

	return &AppError{
		code:    code,
		message: message,
		cause:   err,
		stack:   captureStack(),
	}
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

// Code 获取错误代码
func (e *AppError) Code() ErrorCode {
	return e.code
}

// Message 获取错误消息
func (e *AppError) Message() string {
	return e.message
}

// Cause 获取原始错误
func (e *AppError) Cause() error {
	return e.cause
}

// Stack 获取堆栈信息
func (e *AppError) Stack() string {
	return e.stack
}

// Is 检查是否为指定类型的错误
func (e *AppError) Is(target error) bool {
	if target == nil {
		return false
	}

	if appErr, ok := target.(*AppError); ok {
		return e.code == appErr.code
	}

	if e.cause != nil {
		return stdErrors.Is(e.cause, target)
	}

	return false
}

// Unwrap 解包错误（支持 errors.Unwrap）
func (e *AppError) Unwrap() error {
	return e.cause
}

// IsErrorCode 检查是否为指定错误代码
func IsErrorCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if stdErrors.As(err, &appErr) {
		return appErr.code == code
	}

	return false
}

// IsInvalidInput 检查是否为用法错误
func IsInvalidInput(err error) bool {
	return IsErrorCode(err, ErrCodeInvalidInput)
}

// IsUnsupported 检查是否为不支持的操作错误
func IsUnsupported(err error) bool {
	return IsErrorCode(err, ErrCodeUnsupported)
}

// IsConfiguration 检查是否为配置/解析错误
func IsConfiguration(err error) bool {
	return IsErrorCode(err, ErrCodeConfiguration)
}

// IsState 检查是否为状态错误
func IsState(err error) bool {
	return IsErrorCode(err, ErrCodeState)
}

// GetErrorCode 获取错误代码
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if stdErrors.As(err, &appErr) {
		return appErr.code
	}

	return ErrCodeInternal
}

// captureStack 捕获堆栈信息
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var builder strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		builder.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))

		if !more {
			break
		}
	}

	return builder.String()
}
