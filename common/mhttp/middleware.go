package mhttp

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Valstan/MatricaRMZ-sub006/common/mlog"
)

// HeaderCorrelationID is the header clients may set to thread a trace id
// through the server's logs; the server always echoes one back.
const HeaderCorrelationID = "X-Correlation-Id"

// WithCorrelationID assigns (or propagates) a correlation id and attaches
// it to the request's user context for downstream logging.
func WithCorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderCorrelationID)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(HeaderCorrelationID, id)
		c.Locals("correlation_id", id)

		return c.Next()
	}
}

// WithLogging logs method/path/status/latency for every request, carrying
// the correlation id as a structured field.
func WithLogging(base mlog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		correlationID, _ := c.Locals("correlation_id").(string)
		logger := base.WithFields("correlation_id", correlationID)

		ctx := mlog.NewContext(c.UserContext(), logger)
		c.SetUserContext(ctx)

		err := c.Next()

		logger.Infof("%s %s -> %d (%s)", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))

		return err
	}
}

// WithCORS allows the admin browser UI (outside this spec's scope) to
// call the sync endpoints from a different origin during development.
func WithCORS() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Access-Control-Allow-Origin", "*")
		c.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+HeaderCorrelationID)
		c.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")

		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}
