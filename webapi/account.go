package webapi

import (
	"github.com/amiraly/banksim/pkg/domain"
	"github.com/amiraly/banksim/pkg/service"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest is the request body for opening an account.
type CreateAccountRequest struct {
	Name           string          `json:"name"`
	Username       string          `json:"username"`
	Password       string          `json:"password"`
	Pin            string          `json:"pin"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// AmountRequest is the request body for deposits and withdrawals.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TransferRequest is the request body for transfers.
type TransferRequest struct {
	Recipient int64           `json:"recipient"`
	Amount    decimal.Decimal `json:"amount"`
	Pin       string          `json:"pin"`
}

// EntryDTO is the API representation of a transaction-log entry.
type EntryDTO struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Fee    decimal.Decimal `json:"fee"`
}

// AccountRoutes registers account endpoints.
//
// Routes:
//   - POST /account                     : Open a new account (public).
//   - GET  /account                     : List all accounts (public projection).
//   - POST /account/deposit             : Deposit into the session account.
//   - POST /account/withdraw            : Withdraw from the session account.
//   - POST /account/transfer            : PIN-gated transfer to another account.
//   - GET  /account/balance             : Balance of the session account.
//   - GET  /account/transactions        : Transaction history of the session account.
func AccountRoutes(app *fiber.App, bankSvc *service.BankService, authSvc *service.AuthService) {
	app.Post("/account", CreateAccount(bankSvc))
	app.Get("/account", ListAccounts(bankSvc))

	session := app.Group("/account", Protected(authSvc))
	session.Post("/deposit", Deposit(bankSvc))
	session.Post("/withdraw", Withdraw(bankSvc))
	session.Post("/transfer", Transfer(bankSvc))
	session.Get("/balance", Balance(bankSvc))
	session.Get("/transactions", Transactions(bankSvc))
}

// CreateAccount opens a new account.
func CreateAccount(bankSvc *service.BankService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input := new(CreateAccountRequest)
		if err := c.BodyParser(input); err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Error on create account request", err.Error())
		}
		a, err := bankSvc.CreateAccount(input.Name, input.Username, input.Password, input.Pin, input.InitialBalance)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(Response{
			Status:  fiber.StatusCreated,
			Message: "Account created",
			Data: fiber.Map{
				"account_number": a.Number(),
				"balance":        a.Balance(),
			},
		})
	}
}

// ListAccounts returns the registry projection in insertion order.
func ListAccounts(bankSvc *service.BankService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Accounts",
			Data:    bankSvc.ListAccounts(),
		})
	}
}

// Deposit credits the session account.
func Deposit(bankSvc *service.BankService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input := new(AmountRequest)
		if err := c.BodyParser(input); err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Error on deposit request", err.Error())
		}
		claims := sessionClaims(c)
		balance, err := bankSvc.Deposit(claims.AccountNumber, input.Amount)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Deposit successful",
			Data:    fiber.Map{"balance": balance},
		})
	}
}

// Withdraw debits the session account plus the 1.5% fee.
func Withdraw(bankSvc *service.BankService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input := new(AmountRequest)
		if err := c.BodyParser(input); err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Error on withdraw request", err.Error())
		}
		claims := sessionClaims(c)
		balance, err := bankSvc.Withdraw(claims.AccountNumber, input.Amount)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Withdrawal successful",
			Data:    fiber.Map{"balance": balance},
		})
	}
}

// Transfer moves funds from the session account to the recipient.
func Transfer(bankSvc *service.BankService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input := new(TransferRequest)
		if err := c.BodyParser(input); err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Error on transfer request", err.Error())
		}
		claims := sessionClaims(c)
		if err := bankSvc.Transfer(claims.AccountNumber, input.Recipient, input.Amount, input.Pin); err != nil {
			return DomainErrorResponse(c, err)
		}
		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Transfer successful",
		})
	}
}

// Balance returns the session account balance.
func Balance(bankSvc *service.BankService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := sessionClaims(c)
		balance, err := bankSvc.Balance(claims.AccountNumber)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Balance",
			Data:    fiber.Map{"balance": balance},
		})
	}
}

// Transactions returns the session account history in insertion order.
func Transactions(bankSvc *service.BankService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := sessionClaims(c)
		history, err := bankSvc.History(claims.AccountNumber)
		if err != nil {
			return DomainErrorResponse(c, err)
		}
		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Transactions",
			Data:    toEntryDTOs(history),
		})
	}
}

func toEntryDTOs(history []domain.Entry) []EntryDTO {
	out := make([]EntryDTO, 0, len(history))
	for _, e := range history {
		out = append(out, EntryDTO{Type: e.Type, Amount: e.Amount, Fee: e.Fee})
	}
	return out
}
