package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

type RoleHandler struct {
	roles repositories.RoleRepository
	log   *zap.Logger
}

func NewRoleHandler(roles repositories.RoleRepository, log *zap.Logger) *RoleHandler {
	return &RoleHandler{
		roles: roles,
		log:   logger.OrNop(log),
	}
}

// HandleList handles GET /roles
func (h *RoleHandler) HandleList(c *fiber.Ctx) error {
	roles, err := h.roles.List(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to list roles",
		})
	}
	return c.JSON(roles)
}

// HandleGet handles GET /roles/:slug
func (h *RoleHandler) HandleGet(c *fiber.Ctx) error {
	role, err := h.roles.FindBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
				Error: "Role not found",
				Kind:  "role_not_found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to load role",
		})
	}
	return c.JSON(role)
}

// HandlePut handles PUT /roles/:slug
func (h *RoleHandler) HandlePut(c *fiber.Ctx) error {
	var req models.RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	role := &models.RoleProfile{
		Slug:      c.Params("slug"),
		Title:     req.Title,
		Rubric:    req.Rubric,
		Threshold: req.Threshold,
	}
	if err := repositories.ValidateRole(role); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.roles.Upsert(c.UserContext(), role); err != nil {
		h.log.Error("❌ Failed to save role", zap.String("slug", role.Slug), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to save role",
		})
	}

	h.log.Info("✅ Role saved", zap.String("slug", role.Slug))
	return c.JSON(role)
}
