package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/credentials"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
)

// CredentialSource resolves the API keys for the current request.
type CredentialSource interface {
	Credentials(c *fiber.Ctx, providers ...credentials.Provider) (credentials.Credentials, error)
}

// SessionHandler caches provider API keys in the server-side session so a
// user only enters them once. Configured keys always win.
type SessionHandler struct {
	store    *session.Store
	resolver *credentials.Resolver
	log      *zap.Logger
}

func NewSessionHandler(store *session.Store, resolver *credentials.Resolver, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		store:    store,
		resolver: resolver,
		log:      logger.OrNop(log),
	}
}

// Credentials implements CredentialSource.
func (h *SessionHandler) Credentials(c *fiber.Ctx, providers ...credentials.Provider) (credentials.Credentials, error) {
	cached := credentials.Session{}
	if sess, err := h.store.Get(c); err == nil {
		for _, p := range credentials.Providers {
			if key, ok := sess.Get(p.SessionKey()).(string); ok {
				cached[p] = key
			}
		}
	} else {
		h.log.Warn("⚠️  Failed to load session", zap.Error(err))
	}

	return h.resolver.Resolve(cached, providers...)
}

// HandleSetKeys handles POST /session/keys
func (h *SessionHandler) HandleSetKeys(c *fiber.Ctx) error {
	var req models.SessionKeysRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}

	submitted := map[credentials.Provider]string{
		credentials.Gemini: req.GeminiAPIKey,
		credentials.OpenAI: req.OpenAIAPIKey,
	}
	stored := 0
	for p, key := range submitted {
		if key = strings.TrimSpace(key); key != "" {
			sess.Set(p.SessionKey(), key)
			stored++
		}
	}
	if stored == 0 {
		return badRequest(c, "at least one of gemini_api_key or openai_api_key is required")
	}

	status := h.status(sess)
	if err := sess.Save(); err != nil {
		return err
	}
	h.log.Info("🔑 Session keys stored", zap.Int("keys", stored))

	return c.JSON(status)
}

// HandleGetKeys handles GET /session/keys
func (h *SessionHandler) HandleGetKeys(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	return c.JSON(h.status(sess))
}

// HandleClearKeys handles DELETE /session/keys
func (h *SessionHandler) HandleClearKeys(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return err
	}
	for _, p := range credentials.Providers {
		sess.Delete(p.SessionKey())
	}

	status := h.status(sess)
	if err := sess.Save(); err != nil {
		return err
	}
	return c.JSON(status)
}

// status reports which providers have a usable key, never the keys themselves.
func (h *SessionHandler) status(sess *session.Session) models.SessionKeysResponse {
	has := func(p credentials.Provider) bool {
		if h.resolver.Configured(p) {
			return true
		}
		key, ok := sess.Get(p.SessionKey()).(string)
		return ok && key != ""
	}
	return models.SessionKeysResponse{
		Gemini: has(credentials.Gemini),
		OpenAI: has(credentials.OpenAI),
	}
}
