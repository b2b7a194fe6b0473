// FILE: internal/controller/chat_controller.go
package controller

import (
	"bufio"
	"context"
	"errors"

	"minima-be/internal/apperror"
	"minima-be/internal/dto"
	"minima-be/internal/pkg/logger"
	"minima-be/internal/pkg/serverutils"
	"minima-be/internal/service"
	"minima-be/pkg/pipeline/retrieval"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
	logger  logger.ILogger
}

func NewChatController(service service.IChatService, log logger.ILogger) IChatController {
	return &chatController{service: service, logger: log}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Chat)
}

// Chat streams the assistant's reply as raw text chunks. The response body is
// written incrementally; retrieval or generation failures after the stream
// opens surface inside the body, not as an HTTP status.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	ident := serverutils.Identity(ctx)
	if ident == nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"code":    401,
			"message": "Missing session",
		})
	}

	var req dto.ChatRequest
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

	// The body writer runs after this handler returns, so the stream must
	// not be tied to the request context.
	stream, turn, err := c.service.OpenStream(context.Background(), ident, &req)
	if err != nil {
		status := apperror.StatusCode(err)
		if errors.Is(err, retrieval.ErrNoUserTurn) {
			status = fiber.StatusBadRequest
		}
		return ctx.Status(status).JSON(fiber.Map{
			"success": false,
			"code":    status,
			"message": err.Error(),
		})
	}

	ctx.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		disconnected := false
		for chunk := range stream.Chunks() {
			if _, err := w.WriteString(chunk); err != nil {
				disconnected = true
				break
			}
			if err := w.Flush(); err != nil {
				disconnected = true
				break
			}
		}
		if disconnected {
			// Client went away. Stop the upstream and keep nothing.
			stream.Cancel()
			for range stream.Chunks() {
			}
			c.logger.Info("chat", "client disconnected mid-stream", map[string]interface{}{
				"user": ident.PartitionKey,
			})
			return
		}

		if err := c.service.CompleteTurn(context.Background(), ident, turn, stream.Text()); err != nil {
			c.logger.Error("chat", "failed to persist completed turn", map[string]interface{}{
				"error": err.Error(),
				"user":  ident.PartitionKey,
			})
		}
	}))

	return nil
}
