package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Valstan/MatricaRMZ-sub006/common/mhttp"
	"github.com/Valstan/MatricaRMZ-sub006/pkg/mmodel"
)

const localsActor = "actor"

// Middleware resolves the Actor for every request and rejects the
// request up front if it carries no valid bearer token. Handlers read
// the resolved Actor back with ActorFromCtx.
func Middleware(resolver *Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := resolver.Resolve(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return mhttp.WithError(c, err)
		}

		c.Locals(localsActor, actor)

		return c.Next()
	}
}

// ActorFromCtx retrieves the Actor a prior Middleware call resolved.
func ActorFromCtx(c *fiber.Ctx) mmodel.Actor {
	actor, _ := c.Locals(localsActor).(mmodel.Actor)
	return actor
}
