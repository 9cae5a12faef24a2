package main

import (
	"fmt"
	"log"
	"time"

	"takeoff/internal/common/config"
	"takeoff/internal/common/health"
	"takeoff/internal/common/middleware"
	"takeoff/internal/gateway/handlers"
	"takeoff/internal/gateway/proxy"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// API Gateway
// ============================================================

func main() {
	cfg := config.Load()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "API Gateway",
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
		"documents": health.Upstream(cfg.DocumentsURL),
	})

	// ============================================================
	// Swagger Routes
	// ============================================================

	app.Get("/docs/openapi.yaml", handlers.SwaggerDoc(cfg.OpenAPIPath))
	app.Get("/docs", handlers.SwaggerUI)

	// ============================================================
	// API Routes
	// ============================================================

	api := app.Group("/api/v1")

	api.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "API Gateway v1",
			"status":  "ok",
		})
	})

	// ============================================================
	// Service Routes (Proxy)
	// ============================================================

	proxy.Documents(api, cfg.DocumentsURL)

	// ============================================================
	// Server Start
	// ============================================================

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting API Gateway on %s (env: %s)", addr, cfg.Environment)
	log.Printf("Proxying /api/v1/documents to %s", cfg.DocumentsURL)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
