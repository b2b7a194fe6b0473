// FILE: internal/pkg/serverutils/error_middleware.go
package serverutils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"minima-be/internal/pkg/logger"
)

// ErrorHandlerMiddleware recovers panics from downstream handlers and turns
// them into a uniform 500 response. The panic detail goes to the log only.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server", "panic recovered", map[string]interface{}{
					"panic": fmt.Sprintf("%v", r),
					"path":  ctx.Path(),
				})
				err = ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"code":    fiber.StatusInternalServerError,
					"message": "Internal server error",
				})
			}
		}()
		return ctx.Next()
	}
}
