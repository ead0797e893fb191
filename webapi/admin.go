package webapi

import (
	"strconv"

	"github.com/amiraly/banksim/pkg/service"
	"github.com/gofiber/fiber/v2"
)

// AdminRoutes registers the admin operation set. All routes require an
// admin-role session; they bypass the per-account lock rules.
//
// Routes:
//   - GET  /admin/accounts        : List all accounts.
//   - POST /admin/unlock/:number  : Clear an account's lockout state.
func AdminRoutes(app *fiber.App, bankSvc *service.BankService, authSvc *service.AuthService) {
	admin := app.Group("/admin", Protected(authSvc), AdminOnly())
	admin.Get("/accounts", ListAccounts(bankSvc))
	admin.Post("/unlock/:number", UnlockAccount(bankSvc))
}

// UnlockAccount clears the lockout state and resets the attempt counters of
// the given account.
func UnlockAccount(bankSvc *service.BankService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		number, err := strconv.ParseInt(c.Params("number"), 10, 64)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account number", err.Error())
		}
		if err := bankSvc.Unlock(number); err != nil {
			return DomainErrorResponse(c, err)
		}
		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Account unlocked",
		})
	}
}
