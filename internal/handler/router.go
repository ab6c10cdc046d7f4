package handler

import (
	"net/http"
	"runtime/debug"

	"lm-go/internal/controller"
	"lm-go/pkg/mcp"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter wires the REST API under /api/v1 and, when mcpServer is not
// nil, the MCP streamable HTTP endpoint under /mcp.
func SetupRouter(modelController *controller.ModelController, mcpServer *mcp.LanguageModelServer, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(CustomRecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/train", modelController.Train)
		v1.POST("/evaluate", modelController.Evaluate)
		v1.POST("/predict", modelController.Predict)
		v1.GET("/models/:name/stats", modelController.Stats)
		v1.DELETE("/models/:name", modelController.Delete)
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "healthy",
			})
		})
	}

	if mcpServer != nil {
		mcpServer.SetupHTTPRoutes(router)
	}

	return router
}

func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger.Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
		)
		c.Next()
	}
}

func CustomRecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered",
					zap.Any("error", err),
					zap.String("stack", string(debug.Stack())),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
