package handlers

import (
	"todo-collab/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type friendRequest struct {
	Email string `json:"email" validate:"max=254"`
}

type friendResponse struct {
	Status string `json:"status"`
}

// ListFriends returns accepted friends plus pending requests in both
// directions.
func (h *Handler) ListFriends(c *fiber.Ctx) error {
	list, err := h.Services.Friends.List(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return fail(c, err, "Failed to fetch friends")
	}
	return c.JSON(list)
}

func (h *Handler) RequestFriend(c *fiber.Ctx) error {
	var req friendRequest
	if err := h.parse(c, &req); err != nil {
		return err
	}

	entry, err := h.Services.Friends.Request(c.UserContext(), middleware.CurrentUserID(c), req.Email)
	if err != nil {
		return fail(c, err, "Failed to send friend request")
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// RespondFriend accepts or rejects a pending request addressed to the caller.
func (h *Handler) RespondFriend(c *fiber.Ctx) error {
	var req friendResponse
	if err := h.parse(c, &req); err != nil {
		return err
	}

	entry, err := h.Services.Friends.Respond(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"), req.Status)
	if err != nil {
		return fail(c, err, "Failed to update friendship")
	}
	return c.JSON(entry)
}

func (h *Handler) RemoveFriend(c *fiber.Ctx) error {
	if err := h.Services.Friends.Remove(c.UserContext(), middleware.CurrentUserID(c), c.Params("id")); err != nil {
		return fail(c, err, "Failed to remove friend")
	}
	return success(c)
}
