package handlers

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/resume-screener/internal/models"
)

const healthPath = "/api/v1/health"

type AppConfig struct {
	AccessToken  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
	AccessLog    bool
}

type Handlers struct {
	Screen  *ScreenHandler
	Roles   *RoleHandler
	Session *SessionHandler
}

// NewApp builds the fiber app with middleware and every route registered.
func NewApp(cfg AppConfig, h Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Resume Screener API",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/", HandleIndex)

	api := app.Group("/api/v1")
	api.Get("/health", HandleHealth)
	if cfg.AccessToken != "" {
		api.Use(BearerAuth(cfg.AccessToken))
	}

	api.Post("/screen", h.Screen.HandleScreen)
	api.Post("/screen/text", h.Screen.HandleScreenText)

	api.Get("/session/keys", h.Session.HandleGetKeys)
	api.Post("/session/keys", h.Session.HandleSetKeys)
	api.Delete("/session/keys", h.Session.HandleClearKeys)

	api.Get("/roles", h.Roles.HandleList)
	api.Get("/roles/:slug", h.Roles.HandleGet)
	api.Put("/roles/:slug", h.Roles.HandlePut)

	return app
}

// BearerAuth rejects API requests that do not carry the configured token.
func BearerAuth(token string) fiber.Handler {
	expected := []byte(token)
	return keyauth.New(keyauth.Config{
		Next: func(c *fiber.Ctx) bool {
			return strings.TrimRight(c.Path(), "/") == healthPath
		},
		KeyLookup:  "header:" + fiber.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), expected) == 1 {
				return true, nil
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Error: "Invalid or missing access token",
				Kind:  "unauthorized",
			})
		},
	})
}
