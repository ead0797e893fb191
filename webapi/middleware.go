package webapi

import (
	"strings"

	"github.com/amiraly/banksim/pkg/service"
	"github.com/gofiber/fiber/v2"
)

const claimsKey = "claims"

// Protected verifies the Bearer session token and stores its claims in the
// request context.
func Protected(authSvc *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "missing bearer token")
		}
		claims, err := authSvc.ParseToken(token)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// AdminOnly requires an admin-role session. Must run after Protected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := sessionClaims(c)
		if claims == nil || claims.Role != service.RoleAdmin {
			return ErrorResponseJSON(c, fiber.StatusForbidden, "Forbidden", "admin session required")
		}
		return c.Next()
	}
}

func sessionClaims(c *fiber.Ctx) *service.Claims {
	claims, _ := c.Locals(claimsKey).(*service.Claims)
	return claims
}
