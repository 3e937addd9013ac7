package main

import (
	"context"
	"errors"
	"log"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/madeiras-ouro-preto/sales-api/config"
	"github.com/madeiras-ouro-preto/sales-api/middleware"
	"github.com/madeiras-ouro-preto/sales-api/router"
	"github.com/madeiras-ouro-preto/sales-api/services"
)

func main() {
	log.Println("Starting Madeiras Ouro Preto API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database and migrate models
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	deps := router.Dependencies{
		Renderer: services.NewChromePDFRenderer(cfg.ChromePath),
		UserInfo: services.NewAuth0Service(cfg),
	}
	storage, err := services.NewS3Service(context.Background(), cfg)
	switch {
	case err == nil:
		deps.Storage = storage
	case errors.Is(err, services.ErrStorageNotConfigured):
		log.Println("S3 storage not configured, PDF publishing disabled")
	default:
		log.Fatalf("Failed to initialize S3 storage: %v", err)
	}

	engine := router.Setup(db, cfg, deps, middleware.EnsureValidToken(cfg))

	addr := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
