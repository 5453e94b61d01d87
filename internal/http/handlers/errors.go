package handlers

import (
	"errors"

	"github.com/fliproyale/waitlist/internal/http/dto"
	"github.com/fliproyale/waitlist/internal/middleware"
	"github.com/fliproyale/waitlist/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// writeError maps service errors onto HTTP statuses.
func writeError(c *fiber.Ctx, log *zap.Logger, err error) error {
	reqID, _ := c.Locals(middleware.CtxRequestID).(string)
	resp := dto.ErrorResponse{RequestID: reqID}
	status := fiber.StatusInternalServerError

	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		status = fiber.StatusBadRequest
		resp.Error = ve.Reason
		resp.Field = ve.Field
	case errors.Is(err, services.ErrIdentityConflict):
		status = fiber.StatusConflict
		resp.Error = "This wallet and Twitter account are registered to different users."
	case errors.Is(err, services.ErrUnknownTask):
		status = fiber.StatusBadRequest
		resp.Error = "Unknown task."
	case errors.Is(err, services.ErrSessionInvalid):
		status = fiber.StatusUnauthorized
		resp.Error = "Not signed up."
	case errors.Is(err, services.ErrClaimsClosed):
		status = fiber.StatusForbidden
		resp.Error = "Points claiming is closed."
	case errors.Is(err, services.ErrWaitlistClosed):
		status = fiber.StatusForbidden
		resp.Error = "Waitlist is closed."
	case errors.Is(err, services.ErrStorageUnavailable):
		status = fiber.StatusServiceUnavailable
		resp.Error = "Service temporarily unavailable."
	default:
		resp.Error = "internal server error"
	}

	if status >= fiber.StatusInternalServerError {
		log.Error("request failed", zap.String("request_id", reqID), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.String("request_id", reqID), zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(resp)
}
