package middleware

import (
	"strings"

	"github.com/fliproyale/waitlist/internal/config"
	"github.com/gofiber/fiber/v2"
)

const CtxSessionToken = "session_token"

// SessionMiddleware picks the session token from the configured header, an
// Authorization bearer or the session cookie, in that order. Resolution to a
// user happens in the service layer; a request without any token is rejected here.
func SessionMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := SessionTokenFrom(c, cfg)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "Not signed up."})
		}
		c.Locals(CtxSessionToken, token)
		return c.Next()
	}
}

func SessionTokenFrom(c *fiber.Ctx, cfg *config.Config) string {
	if cfg.SessionHeader != "" {
		if v := strings.TrimSpace(c.Get(cfg.SessionHeader)); v != "" {
			return v
		}
	}
	if auth := c.Get(fiber.HeaderAuthorization); auth != "" {
		if token := strings.TrimPrefix(auth, "Bearer "); token != auth {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(c.Cookies(cfg.SessionCookieName))
}

func GetSessionToken(c *fiber.Ctx) string {
	token, _ := c.Locals(CtxSessionToken).(string)
	return token
}
