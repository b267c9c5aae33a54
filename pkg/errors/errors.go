package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码
type ErrorCode int

const (
	// 0: 成功
	Success ErrorCode = 0

	// 1xxx: 客户端错误
	ErrInvalidParams ErrorCode = 1001 // 参数错误
	ErrNotFound      ErrorCode = 1004 // 资源不存在
	ErrConflict      ErrorCode = 1005 // 资源冲突

	// 2xxx: 业务错误
	ErrReleaseNotFound ErrorCode = 2001 // 发布不存在
	ErrReleaseConflict ErrorCode = 2002 // 发布被并发修改

	// 5xxx: 服务器内部错误
	ErrInternalServer ErrorCode = 5001 // 服务器内部错误
	ErrDatabase       ErrorCode = 5002 // 数据库错误
)

// APIError API错误
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"` // 仅用于日志，不返回给调用方

	cause error
}

// Error 实现error接口
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回被包装的原始错误
func (e *APIError) Unwrap() error {
	return e.cause
}

// Is 按错误码比较，便于 errors.Is(err, ErrReleaseNotFoundMsg)
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建API错误
func New(code ErrorCode, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装底层错误
func Wrap(code ErrorCode, message string, err error) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: err.Error(),
		cause:   err,
	}
}

// As 从错误链中提取APIError
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// 预定义的错误
var (
	ErrInvalidParamsMsg   = New(ErrInvalidParams, "Invalid request parameters")
	ErrNotFoundMsg        = New(ErrNotFound, "Resource not found")
	ErrReleaseNotFoundMsg = New(ErrReleaseNotFound, "Release not found")
	ErrReleaseConflictMsg = New(ErrReleaseConflict, "Release was modified concurrently, please retry")
	ErrInternalServerMsg  = New(ErrInternalServer, "Internal server error")
)

// GetHTTPStatus 获取HTTP状态码
func (e *APIError) GetHTTPStatus() int {
	switch {
	case e.Code >= 1000 && e.Code < 2000:
		switch e.Code {
		case ErrNotFound:
			return http.StatusNotFound
		case ErrConflict:
			return http.StatusConflict
		default:
			return http.StatusBadRequest
		}
	case e.Code >= 2000 && e.Code < 3000:
		switch e.Code {
		case ErrReleaseNotFound:
			return http.StatusNotFound
		case ErrReleaseConflict:
			return http.StatusConflict
		default:
			return http.StatusBadRequest
		}
	default:
		return http.StatusInternalServerError
	}
}
