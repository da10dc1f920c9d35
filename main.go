package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fieldops/cmd"
	"fieldops/internal/core/container"
	corelogger "fieldops/internal/core/logger"
	"fieldops/internal/database"
	"fieldops/internal/database/migration"
	"fieldops/internal/middleware"
	"fieldops/pkg/security"
)

func main() {
	// Load .env file, but don't overwrite system environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found, falling back to system environment variables.")
	}

	// Subcommands (migrate) run instead of the server.
	if len(os.Args) > 1 {
		cmd.Execute(context.Background())
		return
	}

	logger := corelogger.NewLogger()
	defer logger.Sync()

	dbURL := os.Getenv("DATABASE_URL")
	var c *container.Container
	if dbURL != "" {
		db, err := database.NewPostgresConnection(dbURL)
		if err != nil {
			logger.Fatal("unable to connect to the database", zap.Error(err))
		}
		defer db.Close()

		if err := migration.Migrate(dbURL, "file://migrations", false, logger); err != nil {
			logger.Fatal("database migration failed", zap.Error(err))
		}

		logger.Info("Connected to the database successfully")
		c = container.NewAppContainer(db, logger)
	} else {
		logger.Warn("DATABASE_URL not set, using the in-memory store; state will not survive restarts")
		c = container.NewAppContainer(nil, logger)
	}

	if err := c.Scheduler.Start(); err != nil {
		logger.Fatal("unable to start activity digest scheduler", zap.Error(err))
	}
	defer c.Scheduler.Stop()

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.TimeoutMiddleware(30 * time.Second))
	router.Use(security.ActorMiddleware())

	c.AssetHandler.RegisterRoutes(router)

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if err := router.Run(os.Getenv("APP_HOST")); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
