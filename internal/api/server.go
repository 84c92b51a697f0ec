// Package api builds the fiber application: middleware stack and routes.
package api

import (
	"context"
	"strings"
	"time"

	"todo-collab/internal/api/handlers"
	"todo-collab/internal/config"
	"todo-collab/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// bodyLimit leaves room for a 5MB avatar plus multipart overhead.
const bodyLimit = 6 << 20

func NewApp(d *config.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "todo-collab",
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    bodyLimit,
	})

	app.Use(middleware.RequestLogger())

	origins := d.Config.CORSOrigins
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "" && !strings.Contains(origins, "*"),
	}))

	if d.Config.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        d.Config.RateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many requests"})
			},
		}))
	}

	h := handlers.New(handlers.Config{
		Services:      d.Services,
		Sessions:      d.Sessions,
		Google:        d.Google,
		Validate:      d.Validate,
		UploadDir:     d.Config.UploadDir,
		SecureCookies: d.Config.SecureCookies,
		Ping: func(ctx context.Context) error {
			return d.DB.PingContext(ctx)
		},
	})
	RegisterRoutes(app, h, middleware.RequireSession(d.Sessions, d.Services.Users))

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	})
	return app
}
