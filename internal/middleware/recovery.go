package middleware

import (
	"errors"
	"net"
	"os"
	"syscall"

	apierrors "github.com/bingooyong/release-tracker/pkg/errors"
	"github.com/bingooyong/release-tracker/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery 错误恢复中间件，panic 统一返回500；客户端已断开时只记录日志
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			fields := []zap.Field{
				zap.Any("error", rec),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			}

			if brokenPipe(rec) {
				logger.Warn("client connection closed", fields...)
				c.Abort()
				return
			}

			logger.Error("panic recovered", append(fields, zap.Stack("stack"))...)
			response.Error(c, apierrors.ErrInternalServerMsg)
			c.Abort()
		}()

		c.Next()
	}
}

// brokenPipe 判断 panic 是否由写入已关闭的连接引起
func brokenPipe(rec interface{}) bool {
	err, ok := rec.(error)
	if !ok {
		return false
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if errors.As(opErr, &sysErr) {
		return errors.Is(sysErr.Err, syscall.EPIPE) || errors.Is(sysErr.Err, syscall.ECONNRESET)
	}
	return false
}
