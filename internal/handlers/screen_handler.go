package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/credentials"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

type ScreenHandler struct {
	screener services.Screener
	worker   services.Worker
	uploads  services.UploadReader
	keys     CredentialSource
	timeout  time.Duration
	log      *zap.Logger
}

func NewScreenHandler(
	screener services.Screener,
	worker services.Worker,
	uploads services.UploadReader,
	keys CredentialSource,
	timeout time.Duration,
	log *zap.Logger,
) *ScreenHandler {
	return &ScreenHandler{
		screener: screener,
		worker:   worker,
		uploads:  uploads,
		keys:     keys,
		timeout:  timeout,
		log:      logger.OrNop(log),
	}
}

// HandleScreen handles POST /screen
func (h *ScreenHandler) HandleScreen(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return badRequest(c, "No resume uploaded. Please upload 'resume' as a PDF file.")
	}

	document, err := h.uploads.Read(file)
	if err != nil {
		h.log.Warn("⚠️  Upload rejected", zap.String("filename", file.Filename), zap.Error(err))
		return writeError(c, err, nil)
	}

	creds, err := h.keys.Credentials(c)
	if err != nil {
		return writeError(c, err, nil)
	}

	req := services.ScreenRequest{
		Document:    document,
		Filename:    file.Filename,
		Role:        c.FormValue("role"),
		Credentials: creds,
	}
	return h.submit(c, func(ctx context.Context) (*models.ScreeningResult, error) {
		return h.screener.Screen(ctx, req)
	})
}

// HandleScreenText handles POST /screen/text
func (h *ScreenHandler) HandleScreenText(c *fiber.Ctx) error {
	var body models.ScreenTextRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	if strings.TrimSpace(body.Resume) == "" {
		return badRequest(c, "resume is required")
	}

	creds, err := h.keys.Credentials(c, credentials.OpenAI)
	if err != nil {
		return writeError(c, err, nil)
	}

	req := services.TextScreenRequest{
		Resume:      body.Resume,
		Role:        body.Role,
		Credentials: creds,
	}
	return h.submit(c, func(ctx context.Context) (*models.ScreeningResult, error) {
		return h.screener.ScreenText(ctx, req)
	})
}

func (h *ScreenHandler) submit(c *fiber.Ctx, job services.Job) error {
	ctx := c.UserContext()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.worker.Submit(ctx, job)
	if err != nil {
		return writeError(c, err, result)
	}
	return c.JSON(models.NewScreenResponse(result))
}
