// FILE: internal/pkg/serverutils/session_middleware.go
package serverutils

import (
	"errors"

	"minima-be/internal/apperror"
	"minima-be/internal/entity"
	"minima-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// IdentityKey is the Locals key the session middleware stores the caller
// identity under.
const IdentityKey = "identity"

// SessionMiddleware validates the session cookie and attaches the caller's
// identity to the request context.
func SessionMiddleware(authService service.IAuthService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := ctx.Cookies(authService.CookieName())
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"code":    fiber.StatusUnauthorized,
				"message": "Missing session",
			})
		}

		ident, err := authService.Validate(tokenStr, ClientOrigin(ctx))
		if err != nil {
			status := fiber.StatusUnauthorized
			if errors.Is(err, apperror.ErrRateLimited) {
				status = fiber.StatusForbidden
			}
			return ctx.Status(status).JSON(fiber.Map{
				"success": false,
				"code":    status,
				"message": "Invalid session",
			})
		}

		ctx.Locals(IdentityKey, ident)
		return ctx.Next()
	}
}

// Identity returns the authenticated identity set by SessionMiddleware.
func Identity(ctx *fiber.Ctx) *entity.Identity {
	ident, _ := ctx.Locals(IdentityKey).(*entity.Identity)
	return ident
}
