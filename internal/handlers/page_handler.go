package handlers

import (
	_ "embed"
	"time"

	"github.com/gofiber/fiber/v2"
)

//go:embed web/index.html
var indexHTML []byte

// HandleIndex serves the upload form.
func HandleIndex(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(indexHTML)
}

// HandleHealth handles GET /health
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now(),
	})
}
