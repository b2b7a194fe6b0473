// FILE: internal/controller/history_controller.go
package controller

import (
	"minima-be/internal/apperror"
	"minima-be/internal/dto"
	"minima-be/internal/pkg/serverutils"
	"minima-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHistoryController interface {
	RegisterRoutes(r fiber.Router)
	Save(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type historyController struct {
	service service.IHistoryService
}

func NewHistoryController(service service.IHistoryService) IHistoryController {
	return &historyController{service: service}
}

func (c *historyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/history")
	h.Post("/", c.Save)
	h.Get("/", c.List)
	h.Delete("/", c.Delete)
}

func (c *historyController) Save(ctx *fiber.Ctx) error {
	ident := serverutils.Identity(ctx)

	var req dto.SaveConversationRequest
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

	if err := c.service.Save(ctx.Context(), ident, req.ConversationId, req.Messages); err != nil {
		status := apperror.StatusCode(err)
		return ctx.Status(status).JSON(fiber.Map{
			"success": false,
			"code":    status,
			"message": err.Error(),
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Conversation saved",
		"data":    nil,
	})
}

func (c *historyController) List(ctx *fiber.Ctx) error {
	ident := serverutils.Identity(ctx)

	conversations, err := c.service.List(ctx.Context(), ident)
	if err != nil {
		status := apperror.StatusCode(err)
		return ctx.Status(status).JSON(fiber.Map{
			"success": false,
			"code":    status,
			"message": err.Error(),
		})
	}
	if len(conversations) == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"code":    404,
			"message": "No history found",
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "History retrieved",
		"data":    conversations,
	})
}

func (c *historyController) Delete(ctx *fiber.Ctx) error {
	ident := serverutils.Identity(ctx)

	var req dto.DeleteHistoryRequest
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

	var err error
	if req.MessageIndex != nil {
		err = c.service.DeleteMessage(ctx.Context(), ident, req.ConversationId, *req.MessageIndex)
	} else {
		err = c.service.DeleteConversation(ctx.Context(), ident, req.ConversationId)
	}
	if err != nil {
		status := apperror.StatusCode(err)
		return ctx.Status(status).JSON(fiber.Map{
			"success": false,
			"code":    status,
			"message": err.Error(),
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "History updated",
		"data":    nil,
	})
}
