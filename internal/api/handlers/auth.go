package handlers

import (
	"errors"
	"time"

	"todo-collab/internal/middleware"
	"todo-collab/internal/models"
	"todo-collab/internal/oauth"
	"todo-collab/internal/session"
	"todo-collab/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type signUpRequest struct {
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Name     string `json:"name" validate:"max=100"`
	Password string `json:"password" validate:"max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// SignUp creates a password account and starts a session for it.
func (h *Handler) SignUp(c *fiber.Ctx) error {
	var req signUpRequest
	if err := h.parse(c, &req); err != nil {
		return err
	}

	user, err := h.Services.Users.SignUp(c.UserContext(), req.Email, req.Name, req.Password)
	if err != nil {
		return fail(c, err, "An error occurred during signup")
	}
	if _, _, err := h.startSession(c, user); err != nil {
		return fail(c, err, "An error occurred during signup")
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := h.parse(c, &req); err != nil {
		return err
	}

	user, err := h.Services.Users.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, err, "Failed to log in")
	}
	token, expiresAt, err := h.startSession(c, user)
	if err != nil {
		return fail(c, err, "Failed to log in")
	}

	logger.AuditLogger.Info("Login success", zap.String("user_id", user.ID))
	return c.JSON(sessionResponse{User: user, Token: token, ExpiresAt: expiresAt})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	if claims := middleware.CurrentClaims(c); claims != nil {
		if err := h.Sessions.Revoke(c.UserContext(), claims); err != nil {
			return fail(c, err, "Failed to log out")
		}
	}
	h.clearCookie(c, session.CookieName, "/")

	logger.AuditLogger.Info("Logout", zap.String("user_id", middleware.CurrentUserID(c)))
	return success(c)
}

// Session returns the signed-in user.
func (h *Handler) Session(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}

func (h *Handler) GoogleLogin(c *fiber.Ctx) error {
	if h.Google == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Google sign-in is not configured"})
	}

	state, sealed, err := h.Google.NewState()
	if err != nil {
		return fail(c, err, "Failed to start Google sign-in")
	}
	c.Cookie(&fiber.Cookie{
		Name:     oauth.StateCookie,
		Value:    sealed,
		Path:     "/api/auth/google",
		Expires:  time.Now().Add(oauth.StateTTL),
		HTTPOnly: true,
		Secure:   h.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(h.Google.AuthCodeURL(state), fiber.StatusFound)
}

// GoogleCallback finishes the OAuth flow, provisions the user on first
// sign-in and redirects to the dashboard with a session cookie.
func (h *Handler) GoogleCallback(c *fiber.Ctx) error {
	if h.Google == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Google sign-in is not configured"})
	}

	stateCookie := c.Cookies(oauth.StateCookie)
	h.clearCookie(c, oauth.StateCookie, "/api/auth/google")

	if reason := c.Query("error"); reason != "" {
		logger.SecurityLogger.Warn("Google sign-in refused", zap.String("reason", reason))
		return badRequest(c, "Google sign-in was cancelled")
	}
	if err := h.Google.VerifyState(stateCookie, c.Query("state")); err != nil {
		logger.SecurityLogger.Warn("Invalid OAuth state", zap.String("ip", c.IP()), zap.Error(err))
		return badRequest(c, "Invalid OAuth state")
	}

	profile, err := h.Google.Exchange(c.UserContext(), c.Query("code"))
	if err != nil {
		if errors.Is(err, oauth.ErrUnverifiedEmail) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Google account email is not verified"})
		}
		logger.ErrorLogger.Error("Google exchange failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to sign in with Google"})
	}

	user, err := h.Services.Users.Provision(c.UserContext(), profile.Email, &profile.Name, &profile.Picture)
	if err != nil {
		return fail(c, err, "Failed to sign in with Google")
	}
	if _, _, err := h.startSession(c, user); err != nil {
		return fail(c, err, "Failed to sign in with Google")
	}

	logger.AuditLogger.Info("Google sign-in", zap.String("user_id", user.ID))
	return c.Redirect("/dashboard", fiber.StatusFound)
}

func (h *Handler) startSession(c *fiber.Ctx, user *models.User) (string, time.Time, error) {
	token, expiresAt, err := h.Sessions.Issue(user.ID, user.Email)
	if err != nil {
		return "", time.Time{}, err
	}
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   h.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return token, expiresAt, nil
}

func (h *Handler) clearCookie(c *fiber.Ctx, name, path string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
