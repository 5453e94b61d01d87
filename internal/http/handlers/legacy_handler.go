package handlers

import (
	"github.com/fliproyale/waitlist/internal/http/dto"
	"github.com/fliproyale/waitlist/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type LegacyHandler struct {
	legacy *services.LegacyService
	log    *zap.Logger
}

func NewLegacyHandler(legacy *services.LegacyService, log *zap.Logger) *LegacyHandler {
	return &LegacyHandler{legacy: legacy, log: log}
}

// GET /api/legacy/:username/status
func (h *LegacyHandler) Status(c *fiber.Ctx) error {
	stats, err := h.legacy.Status(c.Context(), c.Params("username"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: stats})
}

// POST /api/legacy/:username/tasks
func (h *LegacyHandler) ClaimTask(c *fiber.Ctx) error {
	var req dto.ClaimTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Task() == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "task_id is required", Field: "task_id"})
	}

	stats, err := h.legacy.ClaimTask(c.Context(), c.Params("username"), req.Task())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: stats})
}
