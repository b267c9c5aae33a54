package router

import (
	"net/http"
	"time"

	"github.com/bingooyong/release-tracker/internal/config"
	"github.com/bingooyong/release-tracker/internal/handler"
	"github.com/bingooyong/release-tracker/internal/metrics"
	"github.com/bingooyong/release-tracker/internal/middleware"
	"github.com/bingooyong/release-tracker/internal/version"
	"github.com/bingooyong/release-tracker/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// New 创建Gin引擎并注册中间件与路由
func New(cfg *config.Config, releaseHandler *handler.ReleaseHandler, log *zap.Logger) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics(cfg.Metrics.Path))
		router.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"time":    time.Now().Format(time.RFC3339),
			"version": version.Get(),
		})
	})

	api := router.Group(cfg.Server.BasePath)
	releaseHandler.Register(api)

	router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Route not found")
	})

	return router
}
