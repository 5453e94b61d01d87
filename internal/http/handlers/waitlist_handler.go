package handlers

import (
	"time"

	"github.com/fliproyale/waitlist/internal/config"
	"github.com/fliproyale/waitlist/internal/http/dto"
	"github.com/fliproyale/waitlist/internal/middleware"
	"github.com/fliproyale/waitlist/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type WaitlistHandler struct {
	waitlist *services.WaitlistService
	cfg      *config.Config
	log      *zap.Logger
}

func NewWaitlistHandler(waitlist *services.WaitlistService, cfg *config.Config, log *zap.Logger) *WaitlistHandler {
	return &WaitlistHandler{waitlist: waitlist, cfg: cfg, log: log}
}

// Signup registers or re-identifies a user and issues a session.
// POST /api/waitlist
func (h *WaitlistHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	res, err := h.waitlist.Signup(c.Context(), services.SignupInput{
		Wallet:     req.WalletValue(),
		Twitter:    req.TwitterValue(),
		ReferredBy: req.ReferralCode(),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionCookieName,
		Value:    res.Token,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.SessionTTL),
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
		HTTPOnly: true,
		Secure:   h.cfg.SessionCookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	message := "You're on the waitlist!"
	if !res.Created {
		message = "Welcome back! Your details have been updated."
	}
	return c.JSON(dto.SuccessResponse{
		OK:      true,
		Message: message,
		Data: dto.SignupResponse{
			Created: res.Created,
			Token:   res.Token,
			Stats:   res.Stats,
		},
	})
}

// Me returns the caller's standing.
// GET /api/waitlist/me
func (h *WaitlistHandler) Me(c *fiber.Ctx) error {
	stats, err := h.waitlist.Status(c.Context(), middleware.GetSessionToken(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: stats})
}

// ClaimTask records a one-time task for the caller.
// POST /api/waitlist/task
func (h *WaitlistHandler) ClaimTask(c *fiber.Ctx) error {
	var req dto.ClaimTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Task() == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "task_id is required", Field: "task_id"})
	}

	stats, err := h.waitlist.ClaimTask(c.Context(), middleware.GetSessionToken(c), req.Task())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: stats})
}

// Tasks lists the task catalog.
// GET /api/waitlist/tasks
func (h *WaitlistHandler) Tasks(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: h.waitlist.Tasks()})
}
