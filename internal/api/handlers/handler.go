// Package handlers adapts HTTP requests to the service layer. Every error
// response has the shape {"error": "<short message>"}.
package handlers

import (
	"context"
	"errors"
	"fmt"

	"todo-collab/internal/middleware"
	"todo-collab/internal/oauth"
	"todo-collab/internal/service"
	"todo-collab/internal/session"
	"todo-collab/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	Services *service.Services
	Sessions *session.Manager
	// Google is nil when Google sign-in is not configured.
	Google        *oauth.Provider
	Validate      *validator.Validate
	UploadDir     string
	SecureCookies bool
	// Ping reports store health for /healthz.
	Ping func(ctx context.Context) error
}

type Handler struct {
	Config
}

func New(cfg Config) *Handler {
	if cfg.Validate == nil {
		cfg.Validate = validator.New()
	}
	return &Handler{Config: cfg}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	if h.Ping != nil {
		if err := h.Ping(c.UserContext()); err != nil {
			logger.ErrorLogger.Error("Health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Database unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case service.KindForbidden:
		return fiber.StatusForbidden
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindInvalid:
		return fiber.StatusBadRequest
	case service.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes err as a JSON error. Internal failures are logged and
// answered with fallback only.
func fail(c *fiber.Ctx, err error, fallback string) error {
	kind := service.KindOf(err)
	if kind == service.KindInternal {
		logger.ErrorLogger.Error(fallback,
			zap.String("method", c.Method()),
			zap.String("url", c.OriginalURL()),
			zap.String("user_id", middleware.CurrentUserID(c)),
			zap.Error(err),
		)
	}
	return c.Status(statusFor(kind)).JSON(fiber.Map{"error": service.MessageOf(err, fallback)})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func success(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true})
}

// parse decodes the JSON body into dst and runs its validate tags. The
// returned *fiber.Error is rendered by the app error handler.
func (h *Handler) parse(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		logger.RequestLogger.Info("Bad request body", zap.String("url", c.OriginalURL()), zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.Validate.Struct(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return fmt.Sprintf("%s is required", fe.Field())
		}
		return fmt.Sprintf("Invalid %s", fe.Field())
	}
	return "Invalid request body"
}
