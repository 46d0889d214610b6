package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseEnvelope(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		return SuccessResponse(c, fiber.StatusOK, "done", fiber.Map{"n": 1})
	})
	app.Get("/bad", func(c *fiber.Ctx) error {
		return ErrorResponse(c, fiber.StatusBadRequest, "bad input")
	})
	app.Get("/down", func(c *fiber.Ctx) error {
		return ErrorResponse(c, fiber.StatusBadGateway, "upstream down")
	})

	for path, want := range map[string]StandardResponse{
		"/ok":   {Status: "success", Code: 200, Message: "done", Data: map[string]interface{}{"n": float64(1)}},
		"/bad":  {Status: "error", Code: 400, Message: "bad input"},
		"/down": {Status: "fail", Code: 502, Message: "upstream down"},
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, want.Code, resp.StatusCode)

		var got StandardResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, want, got, path)
	}
}
