package handlers

import (
	"todo-collab/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type profileRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Image *string `json:"image" validate:"omitempty,max=2048"`
}

// UpdateProfile sets the caller's name and/or image URL.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req profileRequest
	if err := h.parse(c, &req); err != nil {
		return err
	}

	user, err := h.Services.Users.UpdateProfile(c.UserContext(), middleware.CurrentUserID(c), req.Name, req.Image)
	if err != nil {
		return fail(c, err, "Failed to update profile")
	}
	return c.JSON(user)
}
