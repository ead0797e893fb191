package webapi

import (
	"time"

	"github.com/amiraly/banksim/infra/initializer"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// New builds the Fiber application over the initialized dependencies.
func New(deps *initializer.Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "banksim",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	app.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		},
	}))
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("banksim is up")
	})

	AuthRoutes(app, deps.Auth)
	AccountRoutes(app, deps.Bank, deps.Auth)
	AdminRoutes(app, deps.Bank, deps.Auth)

	return app
}
