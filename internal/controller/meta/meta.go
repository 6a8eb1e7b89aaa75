package meta

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"go.uber.org/fx"

	"github.com/shopfloor-stats/backend/internal/pkg/apierr"
	"github.com/shopfloor-stats/backend/internal/pkg/bininfo"
	"github.com/shopfloor-stats/backend/internal/server/svr"
	"github.com/shopfloor-stats/backend/internal/service"
)

type Meta struct {
	fx.In

	HealthService *service.Health
}

func RegisterMeta(meta *svr.Meta, c Meta) {
	meta.Get("/bininfo", c.BinInfo)

	meta.Get("/health", cache.New(cache.Config{
		// cache it for a second to mitigate potential DDoS
		Expiration: time.Second,
	}), c.Health)
}

func (c *Meta) BinInfo(ctx *fiber.Ctx) error {
	return ctx.JSON(bininfo.Current())
}

func (c *Meta) Health(ctx *fiber.Ctx) error {
	report, err := c.HealthService.Report(ctx.UserContext())
	if err != nil {
		return apierr.New(fiber.StatusServiceUnavailable, "UNHEALTHY", err.Error())
	}

	return ctx.JSON(report)
}
