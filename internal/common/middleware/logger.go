package middleware

import (
	"io"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// ============================================================
// Logger Middleware
// ============================================================

const requestFormat = "[${time}] ${status} - ${latency} ${method} ${url} | ${bytesReceived}B in, ${bytesSent}B out\n"

// Logger возвращает middleware для логирования запросов в stdout.
func Logger() fiber.Handler {
	return LoggerTo(os.Stdout)
}

// LoggerTo пишет журнал запросов в w.
func LoggerTo(w io.Writer) fiber.Handler {
	return logger.New(logger.Config{
		Format:     requestFormat,
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
		Stream:     w,
	})
}
