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

type Group struct {
	fx.In

	EntryService *service.Entry
}

func RegisterGroup(v1 *svr.V1, c Group) {
	v1.Get("/groups", c.ListGroups)
}

// ListGroups returns work periods (entries grouped by date, machine and operator).
// Send X-View-Key to have a newer request from the same view supersede this one.
func (c *Group) ListGroups(ctx *fiber.Ctx) error {
	var query types.GroupQuery
	if err := rekuest.ValidQuery(ctx, &query); err != nil {
		return err
	}

	cachectrl.OptOut(ctx)
	groups, err := c.EntryService.ListGroups(ctx.UserContext(), ctx.Get(constant.ViewKeyHeader), &query)
	if err != nil {
		return err
	}

	return ctx.JSON(groups)
}
