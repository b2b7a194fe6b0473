// FILE: internal/controller/auth_controller.go
package controller

import (
	"os"

	"minima-be/internal/apperror"
	"minima-be/internal/dto"
	"minima-be/internal/pkg/serverutils"
	"minima-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Authenticate(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	r.Post("/auth", c.Authenticate)
}

func (c *authController) Authenticate(ctx *fiber.Ctx) error {
	var req dto.AuthRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": "Invalid request body",
		})
	}
	if err := serverutils.ValidateStruct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": err.Error(),
		})
	}

	origin := serverutils.ClientOrigin(ctx)
	token, err := c.service.IssueCredential(ctx.Context(), req.Secret, req.Username, origin)
	if err != nil {
		status := apperror.StatusCode(err)
		return ctx.Status(status).JSON(fiber.Map{
			"success": false,
			"code":    status,
			"message": "Authentication failed",
		})
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     c.service.CookieName(),
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.service.SessionTTL().Seconds()),
		HTTPOnly: true,
		Secure:   os.Getenv("GO_ENV") == "production",
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Authenticated",
		"data": dto.AuthResponse{
			Authenticated: true,
			Username:      req.Username,
		},
	})
}
