// FILE: internal/controller/vectorstore_controller.go
package controller

import (
	"io"

	"minima-be/internal/pkg/serverutils"
	"minima-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IVectorstoreController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
}

type vectorstoreController struct {
	service service.IVectorstoreService
}

func NewVectorstoreController(service service.IVectorstoreService) IVectorstoreController {
	return &vectorstoreController{service: service}
}

func (c *vectorstoreController) RegisterRoutes(r fiber.Router) {
	r.Post("/create-vectorstore", c.Create)
}

func (c *vectorstoreController) Create(ctx *fiber.Ctx) error {
	ident := serverutils.Identity(ctx)

	form, err := ctx.MultipartForm()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": "Invalid multipart form",
		})
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": "No files uploaded",
		})
	}

	var files []service.UploadedFile
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"code":    400,
				"message": "Failed to read uploaded file",
			})
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"code":    400,
				"message": "Failed to read uploaded file",
			})
		}
		files = append(files, service.UploadedFile{Name: header.Filename, Data: data})
	}

	if err := c.service.CreateIndices(ctx.Context(), ident, files); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"code":    500,
			"message": err.Error(),
		})
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "Vector store created",
		"data":    fiber.Map{"indexed": len(files)},
	})
}
