package report

import (
	"context"
	"time"

	"github.com/xnk3-aplus/360-Base/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// batch runs are bounded so a hung upstream cannot pin a goroutine forever
const batchTimeout = 30 * time.Minute

func newBatchContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), batchTimeout)
}

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	apiToken string,
	logger *zap.Logger,
) {
	reports := r.Group("/reports")
	reports.Use(middleware.AccessToken(apiToken))
	reports.Use(middleware.ContextLogger(logger))
	{
		reports.GET("/:name",
			middleware.RateLimitByIP(3, 10),
			handler.Get,
		)

		reports.GET("/:name/html",
			middleware.RateLimitByIP(3, 10),
			handler.GetHTML,
		)

		reports.POST("/:name/send",
			middleware.RateLimitByIP(0.5, 2),
			handler.Send,
		)

		reports.POST("/run",
			middleware.RateLimitByIP(0.1, 1), // a batch hits every upstream for every employee
			handler.Run,
		)

		reports.POST("/directory/refresh",
			middleware.RateLimitByIP(0.2, 1),
			handler.RefreshDirectory,
		)
	}
}
