package main

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shiftwise/rostergen-api-go/pkg/auth"
	"github.com/shiftwise/rostergen-api-go/pkg/database"
	"github.com/shiftwise/rostergen-api-go/pkg/engine"
	"github.com/shiftwise/rostergen-api-go/pkg/handlers"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.InitDB()
	_ = auth.EnsureAdminExists(db)

	h := &handlers.Handler{
		DB:     db,
		Log:    logger,
		Engine: engine.New(engineOptions()),
	}

	r := gin.New()
	r.Use(h.RequestLogger(), gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Rostergen Schedule API",
			"version": "1.3.0",
		})
	})

	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Scheduling Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/schedule/generate", h.GenerateSchedule)
		api.POST("/schedule/generate/:storeID/:weekStart", h.GenerateForWeek)
		api.POST("/schedule/validate", h.ValidateInput)
		api.POST("/schedule/accept", h.AcceptSchedule)
		api.GET("/schedule/:storeID/:weekStart", h.GetWeek)
		api.POST("/schedule/export/csv", h.ExportCSV)
		api.POST("/schedule/export/xlsx", h.ExportXLSX)
		api.GET("/usage", h.GetMyUsage)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	logger.Info("server starting", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("could not run server", zap.Error(err))
	}
}

// engineOptions reads the review thresholds from the environment, falling
// back to the engine defaults.
func engineOptions() engine.Options {
	opts := engine.DefaultOptions()
	if v := os.Getenv("WEEKLY_HOUR_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			opts.WeeklyHourLimit = f
		}
	}
	if v := os.Getenv("MAX_CONSECUTIVE_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.MaxConsecutiveDays = n
		}
	}
	return opts
}
