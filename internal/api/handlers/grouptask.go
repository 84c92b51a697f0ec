package handlers

import (
	"todo-collab/internal/middleware"
	"todo-collab/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListGroupTasks returns {"ownedTasks": [...], "assignedTasks": [...]}.
func (h *Handler) ListGroupTasks(c *fiber.Ctx) error {
	list, err := h.Services.GroupTasks.List(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return fail(c, err, "Failed to fetch group tasks")
	}
	return c.JSON(list)
}

func (h *Handler) CreateGroupTask(c *fiber.Ctx) error {
	var in service.GroupTaskInput
	if err := h.parse(c, &in); err != nil {
		return err
	}

	task, err := h.Services.GroupTasks.Create(c.UserContext(), middleware.CurrentUserID(c), in)
	if err != nil {
		return fail(c, err, "Failed to create group task")
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *Handler) GetGroupTask(c *fiber.Ctx) error {
	task, err := h.Services.GroupTasks.Get(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err, "Failed to fetch group task")
	}
	return c.JSON(task)
}

// UpdateGroupTask takes owner fields, the caller's own {"status"}, or both.
func (h *Handler) UpdateGroupTask(c *fiber.Ctx) error {
	var in service.GroupTaskInput
	if err := h.parse(c, &in); err != nil {
		return err
	}

	task, err := h.Services.GroupTasks.Update(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err, "Failed to update group task")
	}
	return c.JSON(task)
}

func (h *Handler) DeleteGroupTask(c *fiber.Ctx) error {
	if err := h.Services.GroupTasks.Delete(c.UserContext(), middleware.CurrentUserID(c), c.Params("id")); err != nil {
		return fail(c, err, "Failed to delete group task")
	}
	return success(c)
}
