package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rapidpost/backend/internal/middleware"
	"github.com/rapidpost/backend/internal/realtime"
	"github.com/rapidpost/backend/internal/router"
	"github.com/rapidpost/backend/pkg/config"
	"github.com/rapidpost/backend/validators"
)

const cleanupInterval = 24 * time.Hour

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Socket hub; connections authenticate with the same JWTs as the HTTP API
	hub := realtime.NewHub(func(token string) (uint, error) {
		claims, err := middleware.ParseToken(token, cfg.JWTSecret)
		if err != nil {
			return 0, err
		}
		return claims.UserID, nil
	})

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	svcs := router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, hub)

	// Validator
	e.Validator = validators.NewValidator()

	// Periodic notification cleanup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svcs.Cleanup.Schedule(ctx, cleanupInterval)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
