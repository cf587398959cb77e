// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tradewindhq/planboard/internal/api/handlers"
	"github.com/tradewindhq/planboard/internal/api/middleware"
	"github.com/tradewindhq/planboard/internal/service"
)

type Services struct {
	AuditService    *service.AuditService
	VarianceService *service.VarianceService
	ImportService   *service.ImportService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.AuditService != nil {
			auditHandler := handlers.NewAuditHandler(services.AuditService)
			auditGroup := apiGroup.Group("/audit")
			{
				auditGroup.GET("/:sku/report", auditHandler.GetReport)
			}
		}

		if services.VarianceService != nil {
			varianceHandler := handlers.NewVarianceHandler(services.VarianceService)
			varianceGroup := apiGroup.Group("/variances")
			{
				varianceGroup.GET("", varianceHandler.ListVariances)
				varianceGroup.POST("/:id/resolve", varianceHandler.ResolveVariance)
				varianceGroup.POST("/batch_resolve", varianceHandler.BatchResolveVariances)
			}
		}

		if services.ImportService != nil {
			importHandler := handlers.NewImportHandler(services.ImportService)
			apiGroup.POST("/forecasts/import", importHandler.ImportForecasts)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
