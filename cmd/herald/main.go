package main

import (
	"log"

	"github.com/herald-dev/herald/db"
	"github.com/herald-dev/herald/internal/auth"
	"github.com/herald-dev/herald/internal/config"
	"github.com/herald-dev/herald/internal/metrics"
	"github.com/herald-dev/herald/internal/router"
)

func main() {
	cfg, err := config.LoadConfig()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := db.ConnectDatabase(cfg.DatabaseConfig.DSN); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if err := auth.Init(cfg.AuthConfig.JWTSecret); err != nil {
		log.Fatalf("Failed to initialize token issuer: %v", err)
	}

	metrics.Init()

	r := router.NewRouter(cfg)

	if err := r.Run(":" + cfg.ServerConfig.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
