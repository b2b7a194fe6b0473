// FILE: internal/pkg/serverutils/origin.go
package serverutils

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ClientOrigin returns the caller's address for rate limiting and session
// binding. The first X-Forwarded-For entry wins when a proxy sets it,
// otherwise the direct remote address is used.
func ClientOrigin(ctx *fiber.Ctx) string {
	forwarded := ctx.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if origin := strings.TrimSpace(parts[0]); origin != "" {
			return origin
		}
	}
	return ctx.IP()
}
