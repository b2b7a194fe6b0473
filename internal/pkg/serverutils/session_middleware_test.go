// FILE: internal/pkg/serverutils/session_middleware_test.go
package serverutils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"minima-be/internal/config"
	"minima-be/internal/repository/memory"
	"minima-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quietLogger struct{}

func (quietLogger) Debug(module, message string, details map[string]interface{}) {}
func (quietLogger) Info(module, message string, details map[string]interface{})  {}
func (quietLogger) Warn(module, message string, details map[string]interface{})  {}
func (quietLogger) Error(module, message string, details map[string]interface{}) {}
func (quietLogger) Sync() error                                                  { return nil }

func newGuardedApp(t *testing.T) (*fiber.App, service.IAuthService) {
	t.Helper()
	authService := service.NewAuthService(config.AuthConfig{
		Secret:       "letmein",
		JwtSecret:    "middleware-test-key",
		CookieName:   "minima_session",
		SessionTTLs:  3600,
		BindOriginIP: true,
		MaxFailures:  5,
	}, memory.NewFailureCounter(), quietLogger{})

	app := fiber.New()
	app.Get("/guarded", SessionMiddleware(authService), func(ctx *fiber.Ctx) error {
		ident := Identity(ctx)
		require.NotNil(t, ident)
		return ctx.SendString(ident.Username)
	})
	return app, authService
}

func TestSessionMiddlewareRejectsMissingCookie(t *testing.T) {
	app, _ := newGuardedApp(t)

	req := httptest.NewRequest("GET", "/guarded", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionMiddlewareRejectsGarbageCookie(t *testing.T) {
	app, _ := newGuardedApp(t)

	req := httptest.NewRequest("GET", "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: "minima_session", Value: "garbage"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionMiddlewareAcceptsValidSession(t *testing.T) {
	app, authService := newGuardedApp(t)

	token, err := authService.IssueCredential(context.Background(), "letmein", "alice", "10.0.0.1")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/guarded", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	req.AddCookie(&http.Cookie{Name: "minima_session", Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSessionMiddlewareRejectsOriginMismatch(t *testing.T) {
	app, authService := newGuardedApp(t)

	token, err := authService.IssueCredential(context.Background(), "letmein", "alice", "10.0.0.1")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/guarded", nil)
	req.Header.Set("X-Forwarded-For", "10.9.9.9")
	req.AddCookie(&http.Cookie{Name: "minima_session", Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
