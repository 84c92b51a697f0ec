package handlers

import (
	"todo-collab/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Content string `json:"content" validate:"max=5000"`
}

func (h *Handler) ListComments(c *fiber.Ctx) error {
	comments, err := h.Services.Comments.List(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err, "Failed to fetch comments")
	}
	return c.JSON(comments)
}

func (h *Handler) AddComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := h.parse(c, &req); err != nil {
		return err
	}

	comment, err := h.Services.Comments.Add(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"), req.Content)
	if err != nil {
		return fail(c, err, "Failed to add comment")
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
