package handlers

import (
	"todo-collab/internal/middleware"
	"todo-collab/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) ListTasks(c *fiber.Ctx) error {
	tasks, err := h.Services.Tasks.List(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		return fail(c, err, "Failed to fetch tasks")
	}
	return c.JSON(tasks)
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	var in service.TaskInput
	if err := h.parse(c, &in); err != nil {
		return err
	}

	task, err := h.Services.Tasks.Create(c.UserContext(), middleware.CurrentUserID(c), in)
	if err != nil {
		return fail(c, err, "Failed to create task")
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *Handler) GetTask(c *fiber.Ctx) error {
	task, err := h.Services.Tasks.Get(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"))
	if err != nil {
		return fail(c, err, "Failed to fetch task")
	}
	return c.JSON(task)
}

// UpdateTask changes only the fields present in the body.
func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	var in service.TaskInput
	if err := h.parse(c, &in); err != nil {
		return err
	}

	task, err := h.Services.Tasks.Update(c.UserContext(), middleware.CurrentUserID(c), c.Params("id"), in)
	if err != nil {
		return fail(c, err, "Failed to update task")
	}
	return c.JSON(task)
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	if err := h.Services.Tasks.Delete(c.UserContext(), middleware.CurrentUserID(c), c.Params("id")); err != nil {
		return fail(c, err, "Failed to delete task")
	}
	return success(c)
}
