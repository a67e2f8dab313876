// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pantera/orderprep/backend-go/internal/api/handlers"
	"github.com/pantera/orderprep/backend-go/internal/api/middleware"
	"github.com/pantera/orderprep/backend-go/internal/prefs"
	"github.com/pantera/orderprep/backend-go/internal/service"
)

func NewRouter(snapshots *service.SnapshotService, store prefs.Store, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
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

	snapshotHandler := handlers.NewSnapshotHandler(snapshots)
	snapshotGroup := apiGroup.Group("/snapshot")
	{
		snapshotGroup.GET("/items", snapshotHandler.GetItems)
		snapshotGroup.GET("/status", snapshotHandler.GetStatus)
		snapshotGroup.POST("/reload", snapshotHandler.Reload)
		snapshotGroup.GET("/export", snapshotHandler.Export)
		snapshotGroup.PUT("/items/:key/order_qty", snapshotHandler.SetOrderQty)
	}

	prefsHandler := handlers.NewPrefsHandler(store)
	prefsGroup := apiGroup.Group("/prefs")
	{
		prefsGroup.GET("/theme", prefsHandler.GetTheme)
		prefsGroup.PUT("/theme", prefsHandler.SetTheme)
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
