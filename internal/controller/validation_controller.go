// FILE: internal/controller/validation_controller.go
package controller

import (
	"minima-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IValidationController interface {
	RegisterRoutes(r fiber.Router)
	Validate(ctx *fiber.Ctx) error
}

type validationController struct{}

func NewValidationController() IValidationController {
	return &validationController{}
}

func (c *validationController) RegisterRoutes(r fiber.Router) {
	r.Get("/validation", c.Validate)
}

// Validate is a session probe. Reaching it at all means the session
// middleware accepted the cookie.
func (c *validationController) Validate(ctx *fiber.Ctx) error {
	ident := serverutils.Identity(ctx)
	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Session valid",
		"data": fiber.Map{
			"username": ident.Username,
		},
	})
}
