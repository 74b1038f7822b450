package middleware

import (
	"FaceTracking/pkg/utils"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
)

const RequestIDKey = "X-Request-ID"

// Client supplied ids end up in logs and response headers.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

// NewRequestIDMiddleware keeps a well-formed X-Request-ID from the client and
// replaces a missing or malformed one with a fresh ULID.
func NewRequestIDMiddleware() fiber.Handler {
	ids := utils.New()

	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDKey)

		if !validRequestID.MatchString(requestID) {
			generated, err := ids.NewULIDFromTimestamp(time.Now())
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed to generate request id")
			}
			requestID = generated
		}

		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)

		return c.Next()
	}
}
