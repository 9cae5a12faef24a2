package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"takeoff/internal/common/config"
	"takeoff/internal/common/health"
	"takeoff/internal/common/middleware"
	"takeoff/internal/documents/handlers"
	"takeoff/internal/documents/repository"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Documents Service
// ============================================================

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	devUser := flag.String("dev-user", "", "Issue a bearer token for this user at startup (development only)")
	flag.Parse()

	cfg := loadConfig(*configPath)
	if os.Getenv("PORT") == "" && *configPath == "" {
		cfg.Port = "3003"
	}

	db, err := repository.OpenSQLite(cfg.DocumentsDBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background(), cfg.DocumentsMigration); err != nil {
		log.Fatalf("init db: %v", err)
	}

	documentsHandler := handlers.NewDocumentsHandler(repo)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Documents Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check Routes
	// ============================================================

	health.Register(app, map[string]health.Check{
		"sqlite": db.PingContext,
	})

	// ============================================================
	// Document Routes
	// ============================================================

	tokens := middleware.ParseTokens(cfg.APITokens)
	if *devUser != "" {
		if cfg.Environment != "development" {
			log.Fatalf("-dev-user is only allowed with ENV=development (env: %s)", cfg.Environment)
		}
		log.Printf("Dev token for %s: %s", *devUser, tokens.Issue(*devUser))
	}
	if tokens.Len() > 0 {
		log.Printf("Bearer auth enabled (%d tokens)", tokens.Len())
		app.Use("/documents", middleware.Bearer(tokens))
	}
	documentsHandler.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Documents Service on %s (env: %s, db: %s)", addr, cfg.Environment, cfg.DocumentsDBPath)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Load()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return cfg
}
