package proxy

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Proxy Handler
// ============================================================

var upstreamClient = &http.Client{Timeout: 30 * time.Second}

// hopHeaders не копируются из ответа upstream.
var hopHeaders = map[string]bool{
	"Connection":        true,
	"Keep-Alive":        true,
	"Transfer-Encoding": true,
	"Content-Length":    true,
}

// Documents вешает маршруты /documents, проксируя их в documents service.
func Documents(r fiber.Router, baseURL string) {
	baseURL = strings.TrimRight(baseURL, "/")
	r.Post("/documents", ProxyTo(baseURL))
	r.Get("/documents", ProxyTo(baseURL))
	r.Get("/documents/:id", ProxyTo(baseURL))
	r.Patch("/documents/:id", ProxyTo(baseURL))
	r.Put("/documents/:id/name", ProxyTo(baseURL))
	r.Delete("/documents/:id", ProxyTo(baseURL))
}

// ProxyTo прокси запрос к другому сервису, сохраняя путь после группы и query.
func ProxyTo(baseURL string) fiber.Handler {
	return func(c fiber.Ctx) error {
		return Forward(c, baseURL+upstreamPath(c))
	}
}

// Forward проксирует запрос по переданному URL (для динамических путей).
func Forward(c fiber.Ctx, targetURL string) error {
	log.Printf("[PROXY] %s %s -> %s (%d bytes)", c.Method(), c.Path(), targetURL, len(c.Body()))

	var body io.Reader
	if len(c.Body()) > 0 {
		body = bytes.NewReader(c.Body())
	}
	req, err := http.NewRequestWithContext(c.Context(), c.Method(), targetURL, body)
	if err != nil {
		log.Printf("[PROXY] build request error: %v", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "proxy failed"})
	}

	if contentType := c.Get("Content-Type"); contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth := c.Get("Authorization"); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := upstreamClient.Do(req)
	if err != nil {
		log.Printf("[PROXY] Error: %v", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "failed to reach upstream service"})
	}
	defer resp.Body.Close()

	return copyResponse(c, resp)
}

// upstreamPath срезает префикс /api/vN и сохраняет query.
func upstreamPath(c fiber.Ctx) string {
	path := c.Path()
	if i := strings.Index(path, "/documents"); i > 0 {
		path = path[i:]
	}
	if q := string(c.Request().URI().QueryString()); q != "" {
		path += "?" + q
	}
	return path
}

func copyResponse(c fiber.Ctx, resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[PROXY] Read response error: %v", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"error": "invalid upstream response"})
	}

	for key, values := range resp.Header {
		if len(values) > 0 && !hopHeaders[key] {
			c.Set(key, values[0])
		}
	}

	c.Status(resp.StatusCode)
	return c.Send(data)
}
