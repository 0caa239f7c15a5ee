package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"alfredoptarigan/resume-screener/internal/credentials"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

// statusFor maps a screening error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, credentials.ErrMissing):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrUploadTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrWorkerStopped):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	}

	switch services.KindOf(err) {
	case services.KindDocument:
		return fiber.StatusUnprocessableEntity
	case services.KindExtraction, services.KindAnalysis:
		return fiber.StatusBadGateway
	case services.KindRole:
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

func writeError(c *fiber.Ctx, err error, result *models.ScreeningResult) error {
	resp := models.ErrorResponse{Error: err.Error()}

	var stageErr *services.StageError
	if errors.As(err, &stageErr) {
		resp.Stage = string(stageErr.Stage)
		resp.Kind = string(stageErr.Kind)
	} else if kind := services.KindOf(err); kind != services.KindInternal {
		resp.Kind = string(kind)
	}
	if errors.Is(err, credentials.ErrMissing) {
		resp.Kind = "missing_credentials"
	}
	if result != nil {
		resp.ID = result.ID.String()
	}

	return c.Status(statusFor(err)).JSON(resp)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{Error: msg})
}

// ErrorHandler renders errors that escape a handler as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(models.ErrorResponse{Error: err.Error()})
}
