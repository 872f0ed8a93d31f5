package api

import (
	"github.com/gin-gonic/gin"

	"github.com/slidesdown/converter/internal/infra/logger"
	"github.com/slidesdown/converter/internal/service/orchestrator"
)

func NewRouter(orch *orchestrator.Orchestrator, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))

	handler := NewHandler(orch, log)

	r.GET("/health", handler.Health)
	r.POST("/convert", handler.Convert)

	return r
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log.Info("request started",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.Next()
		log.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}
