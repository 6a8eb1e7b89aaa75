package v1

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"github.com/shopfloor-stats/backend/internal/constant"
	"github.com/shopfloor-stats/backend/internal/model/types"
	"github.com/shopfloor-stats/backend/internal/pkg/cachectrl"
	"github.com/shopfloor-stats/backend/internal/server/svr"
	"github.com/shopfloor-stats/backend/internal/service"
	"github.com/shopfloor-stats/backend/internal/util/rekuest"
)

type Dashboard struct {
	fx.In

	DashboardService *service.Dashboard
}

func RegisterDashboard(v1 *svr.V1, c Dashboard) {
	v1.Get("/dashboard", c.GetDashboard)
}

func (c *Dashboard) GetDashboard(ctx *fiber.Ctx) error {
	var query types.DashboardQuery
	if err := rekuest.ValidQuery(ctx, &query); err != nil {
		return err
	}

	cachectrl.OptOut(ctx)
	d, err := c.DashboardService.GetDashboard(ctx.UserContext(), ctx.Get(constant.ViewKeyHeader), query.Start, query.End)
	if err != nil {
		return err
	}

	return ctx.JSON(d)
}
