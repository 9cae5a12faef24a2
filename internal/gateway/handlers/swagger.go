package handlers

import (
	"errors"
	"log"
	"os"

	"github.com/gofiber/fiber/v3"
	"gopkg.in/yaml.v3"
)

// ============================================================
// Swagger Handlers
// ============================================================

// LoadDocument читает OpenAPI YAML и проверяет, что он разбирается.
func LoadDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		OpenAPI string         `yaml:"openapi"`
		Paths   map[string]any `yaml:"paths"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.OpenAPI == "" || len(doc.Paths) == 0 {
		return nil, errors.New("not an OpenAPI document: " + path)
	}
	return data, nil
}

// SwaggerDoc отдаёт OpenAPI YAML документов, прочитанный с диска.
func SwaggerDoc(path string) fiber.Handler {
	return func(c fiber.Ctx) error {
		data, err := LoadDocument(path)
		if err != nil {
			log.Printf("[SWAGGER] document error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "openapi document not found"})
		}
		c.Set(fiber.HeaderContentType, "application/yaml")
		return c.Send(data)
	}
}

// SwaggerUI отдаёт страницу Swagger UI, читающую документ из /docs/openapi.yaml.
func SwaggerUI(c fiber.Ctx) error {
	page := `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>Takeoff Documents API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist/swagger-ui-bundle.js"></script>
<script>
  window.onload = () => {
    window.ui = SwaggerUIBundle({
      url: '/docs/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      persistAuthorization: true,
    });
  };
</script>
</body>
</html>`

	c.Type("html")
	return c.SendString(page)
}
