package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// authenticatedGroup registers a route group that binds the given user id the
// same way the JWT middleware does.
func authenticatedGroup(app *fiber.App, prefix string, userID uint) fiber.Router {
	return app.Group(prefix, func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	})
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}
