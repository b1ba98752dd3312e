package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderRequestID is the response header carrying the request id.
const HeaderRequestID = "X-Request-Id"

// RequestID tags every request with a uuid, stored in the request
// locals and echoed in the response header. An id supplied by the
// caller is kept so correlation survives proxies.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Locals("requestid", id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}
