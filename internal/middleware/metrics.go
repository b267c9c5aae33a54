package middleware

import (
	"github.com/bingooyong/release-tracker/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics Prometheus指标中间件，skipPath 对应的请求不统计
func Metrics(skipPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == skipPath {
			c.Next()
			return
		}

		done := metrics.RequestStarted()
		c.Next()

		// 使用路由模板作为标签，避免按ID产生大量时间序列
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		done(c.Request.Method, path, c.Writer.Status())
	}
}
