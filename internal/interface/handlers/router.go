package handlers

import (
	"net/http"
	"time"

	"track-wise-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// NewRouter wires every route of the service
func NewRouter(
	containers *ContainerHandler,
	scheduling *SchedulingHandler,
	metricsHandler http.Handler,
	logger logger.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "Healthy")
	})
	r.GET("/metrics", gin.WrapH(metricsHandler))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/containers", containers.Create)
		v1.GET("/containers", containers.List)
		v1.GET("/containers/:id", containers.Get)
		v1.GET("/containers/number/:number", containers.GetByNumber)
		v1.PUT("/containers/:id", containers.Update)
		v1.DELETE("/containers/:id", containers.Delete)

		v1.GET("/search-scheduling", scheduling.Get)
		v1.GET("/poll-runs", containers.ListPollRuns)
	}

	return r
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).String())
	}
}
