// FILE: internal/pkg/serverutils/error_middleware_test.go
package serverutils

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandlerReturnsGenericMessage(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(quietLogger{}))
	app.Get("/boom", func(ctx *fiber.Ctx) error {
		panic("dsn=postgres://svc:hunter2@db:5432/app")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Internal server error")
	// panic detail stays in the log, never in the response
	assert.False(t, strings.Contains(string(body), "hunter2"), "response leaked panic detail: %s", body)
}
