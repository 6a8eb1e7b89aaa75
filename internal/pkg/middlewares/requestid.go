package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shopfloor-stats/backend/internal/constant"
	"github.com/shopfloor-stats/backend/internal/pkg/flog"
)

// RequestID copies the id generated by the logger chain into ctx.Locals so that handlers
// not holding the user context can still read it.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := flog.IDFromFiberCtx(c)
		if ok {
			c.Locals(constant.ContextKeyRequestID, id.String())
		}
		return c.Next()
	}
}
