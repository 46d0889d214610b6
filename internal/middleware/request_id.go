package middleware

import (
	"imdb-catalog/internal/tracing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or assigns a new one, echoes it
// back and stores it in the request context for query tracing.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		c.Set(HeaderRequestID, id)
		c.Locals("request_id", id)
		c.SetUserContext(tracing.WithRequestID(c.UserContext(), id))
		return c.Next()
	}
}
