// Package api exposes the tracker over a local JSON HTTP API for the mobile UI.
package api

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/saadjs/nutrilog/internal/service"
	"github.com/saadjs/nutrilog/internal/stats"
)

// Handler carries the dependencies every route needs. Barcode and Estimator
// may be nil, in which case their routes answer 503.
type Handler struct {
	DB        *sql.DB
	Clock     stats.Clock
	Barcode   service.BarcodeClient
	Estimator service.MealEstimator
	Cache     service.EstimateCache
	Version   string
}

func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowedOrigins
	}
	router.Use(cors.New(corsCfg))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health)

		profile := v1.Group("/profile")
		{
			profile.GET("", h.GetProfile)
			profile.PATCH("", h.UpdateProfile)
			profile.POST("/reset", h.ResetProfile)
			profile.POST("/recalculate", h.RecalculateGoals)
		}

		goals := v1.Group("/goals")
		{
			goals.GET("", h.GetGoals)
			goals.PUT("", h.SetGoals)
			goals.GET("/history", h.GoalHistory)
		}

		entries := v1.Group("/entries")
		{
			entries.GET("", h.ListEntries)
			entries.POST("", h.CreateEntry)
			entries.DELETE("", h.ClearEntries)
			entries.GET("/:id", h.GetEntry)
			entries.PUT("/:id", h.UpdateEntry)
			entries.DELETE("/:id", h.DeleteEntry)
		}

		v1.GET("/today", h.Today)
		v1.GET("/stats", h.Stats)
		v1.GET("/barcode/:code", h.LookupBarcode)
		v1.POST("/estimate", h.Estimate)
	}
	return router
}
