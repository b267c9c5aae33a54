package response

import (
	"net/http"

	"github.com/bingooyong/release-tracker/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ErrorBody 错误响应结构
type ErrorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// MessageBody 带消息的响应结构
type MessageBody struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// Success 返回200响应，data 原样序列化
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 返回201创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Message 返回带消息的200响应
func Message(c *gin.Context, message, id string) {
	c.JSON(http.StatusOK, MessageBody{Message: message, ID: id})
}

// Error 返回错误响应，Details 不会返回给调用方
func Error(c *gin.Context, err *errors.APIError) {
	c.JSON(err.GetHTTPStatus(), ErrorBody{
		Error: err.Message,
		Code:  int(err.Code),
	})
}

// FromError 将任意错误写为响应，非APIError按500处理
func FromError(c *gin.Context, err error) {
	if apiErr, ok := errors.As(err); ok {
		Error(c, apiErr)
		return
	}
	Error(c, errors.ErrInternalServerMsg)
}

// ErrorWithMessage 返回带自定义消息的错误响应
func ErrorWithMessage(c *gin.Context, code errors.ErrorCode, message string) {
	Error(c, errors.New(code, message))
}

// BadRequest 返回400错误
func BadRequest(c *gin.Context, message string) {
	ErrorWithMessage(c, errors.ErrInvalidParams, message)
}

// NotFound 返回404错误
func NotFound(c *gin.Context, message string) {
	ErrorWithMessage(c, errors.ErrNotFound, message)
}

// InternalServerError 返回500错误
func InternalServerError(c *gin.Context, message string) {
	ErrorWithMessage(c, errors.ErrInternalServer, message)
}
