package middleware

import (
	"strings"

	"todo-collab/internal/models"
	"todo-collab/internal/service"
	"todo-collab/internal/session"
	"todo-collab/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	localUser   = "user"
	localClaims = "claims"
)

// Token returns the session token from the cookie or, failing that, from a
// bearer Authorization header.
func Token(c *fiber.Ctx) string {
	if token := c.Cookies(session.CookieName); token != "" {
		return token
	}
	scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireSession rejects requests without a valid session and stores the
// caller's user for the handlers.
func RequireSession(sessions *session.Manager, users *service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := Token(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		claims, err := sessions.Parse(c.UserContext(), token)
		if err != nil {
			logger.SecurityLogger.Warn("Rejected session token",
				zap.String("url", c.OriginalURL()), zap.String("ip", c.IP()), zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		user, err := users.Get(c.UserContext(), claims.UserID)
		if err != nil {
			if service.KindOf(err) == service.KindNotFound {
				// account deleted after the token was issued
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
			}
			logger.ErrorLogger.Error("Error loading session user", zap.String("user_id", claims.UserID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
		}

		c.Locals(localUser, user)
		c.Locals(localClaims, claims)
		return c.Next()
	}
}

// CurrentUser is the caller resolved by RequireSession.
func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(localUser).(*models.User)
	return u
}

func CurrentUserID(c *fiber.Ctx) string {
	if u := CurrentUser(c); u != nil {
		return u.ID
	}
	return ""
}

func CurrentClaims(c *fiber.Ctx) *session.Claims {
	claims, _ := c.Locals(localClaims).(*session.Claims)
	return claims
}
