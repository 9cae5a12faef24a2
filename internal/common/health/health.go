package health

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

// Check сообщает, готова ли зависимость.
type Check func(ctx context.Context) error

// Register вешает /health/live, /health/ready и /health/startup.
func Register(r fiber.Router, checks map[string]Check) {
	r.Get("/health/live", Liveness)
	r.Get("/health/ready", Readiness(checks))
	r.Get("/health/startup", Startup)
}

// Liveness проверяет, что приложение работает
func Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// Readiness прогоняет проверки зависимостей (БД, upstream).
func Readiness(checks map[string]Check) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		failed := fiber.Map{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Printf("[HEALTH] %s not ready: %v", name, err)
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"failed": failed,
			})
		}
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	}
}

// Startup проверяет, что приложение успешно запустилось
func Startup(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "started",
	})
}

// Upstream проверяет, что другой сервис отвечает на /health/live.
func Upstream(baseURL string) Check {
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health/live", nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fiber.NewError(resp.StatusCode, "upstream unhealthy")
		}
		return nil
	}
}
