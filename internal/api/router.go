package api

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/dipwatch/internal/middleware"
)

// runTimeout bounds one triggered run; it covers every ticker lookup plus both sinks.
const runTimeout = 30 * time.Second

// NewRouter creates the Gin engine for the trigger API.
//
// Global middlewares, in order: RequestID, RequestLogger, RecoveryMiddleware,
// ErrorHandler, RateLimiter, Timeout(runTimeout). Swagger UI is served at
// /swagger/index.html. Health probes are mounted separately by HealthHandler.
func NewRouter(handler *Handler) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(),
		middleware.Timeout(runTimeout),
	)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	v1.POST("/runs", handler.TriggerRun)
	v1.GET("/dips", handler.GetDips)

	return router
}
