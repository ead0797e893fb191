package webapi

import (
	"github.com/amiraly/banksim/pkg/service"
	"github.com/gofiber/fiber/v2"
)

// LoginInput is the request body for user login.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminLoginInput is the request body for admin login.
type AdminLoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthRoutes registers the login endpoints.
func AuthRoutes(app *fiber.App, authSvc *service.AuthService) {
	app.Post("/login", Login(authSvc))
	app.Post("/admin/login", AdminLogin(authSvc))
}

// Login authenticates a user and returns a session token. Failed attempts
// consume a login strike; the third strike locks the account.
func Login(authSvc *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input := new(LoginInput)
		if err := c.BodyParser(input); err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Error on login request", err.Error())
		}
		account, token, err := authSvc.Login(input.Username, input.Password)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Success login",
			Data: fiber.Map{
				"token":          token,
				"account_number": account.Number(),
			},
		})
	}
}

// AdminLogin authenticates against the configured admin credentials and
// returns an admin session token.
func AdminLogin(authSvc *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input := new(AdminLoginInput)
		if err := c.BodyParser(input); err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Error on login request", err.Error())
		}
		token, err := authSvc.AdminLogin(input.Username, input.Password)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Success admin login",
			Data:    fiber.Map{"token": token},
		})
	}
}
