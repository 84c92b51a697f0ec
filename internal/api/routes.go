package api

import (
	"todo-collab/internal/api/handlers"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the JSON API under /api. auth guards every route
// that needs a signed-in user.
func RegisterRoutes(app *fiber.App, h *handlers.Handler, auth fiber.Handler) {
	api := app.Group("/api")
	api.Get("/healthz", h.Health)

	// Auth
	authRoutes := api.Group("/auth")
	authRoutes.Post("/signup", h.SignUp)
	authRoutes.Post("/login", h.Login)
	authRoutes.Post("/logout", auth, h.Logout)
	authRoutes.Get("/session", auth, h.Session)
	authRoutes.Get("/google/login", h.GoogleLogin)
	authRoutes.Get("/google/callback", h.GoogleCallback)

	// Uploaded avatars are public so <img> tags can load them
	api.Get("/uploads/:filename", h.GetUpload)

	// User
	userRoutes := api.Group("/user", auth)
	userRoutes.Post("/update-profile", h.UpdateProfile)
	userRoutes.Post("/avatar", h.UploadAvatar)

	// Task
	taskRoutes := api.Group("/tasks", auth)
	taskRoutes.Get("/", h.ListTasks)
	taskRoutes.Post("/", h.CreateTask)
	taskRoutes.Get("/:id", h.GetTask)
	taskRoutes.Patch("/:id", h.UpdateTask)
	taskRoutes.Delete("/:id", h.DeleteTask)

	// Group task
	groupRoutes := api.Group("/group-tasks", auth)
	groupRoutes.Get("/", h.ListGroupTasks)
	groupRoutes.Post("/", h.CreateGroupTask)
	groupRoutes.Get("/:id", h.GetGroupTask)
	groupRoutes.Patch("/:id", h.UpdateGroupTask)
	groupRoutes.Delete("/:id", h.DeleteGroupTask)
	groupRoutes.Get("/:id/comments", h.ListComments)
	groupRoutes.Post("/:id/comments", h.AddComment)

	// Friend
	friendRoutes := api.Group("/friends", auth)
	friendRoutes.Get("/", h.ListFriends)
	friendRoutes.Post("/", h.RequestFriend)
	friendRoutes.Patch("/:id", h.RespondFriend)
	friendRoutes.Delete("/:id", h.RemoveFriend)
}
