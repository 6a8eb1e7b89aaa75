package v1

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"github.com/shopfloor-stats/backend/internal/pkg/cachectrl"
	"github.com/shopfloor-stats/backend/internal/server/svr"
	"github.com/shopfloor-stats/backend/internal/service"
)

type Reference struct {
	fx.In

	ReferenceService *service.Reference
}

// RegisterReference exposes master data read-only. These endpoints never fail on a backend
// outage: they serve the last loaded list, or an empty one.
func RegisterReference(v1 *svr.V1, c Reference) {
	ref := v1.Group("/reference", func(ctx *fiber.Ctx) error {
		cachectrl.OptIn(ctx, c.ReferenceService.Config.ReferenceCacheTTL)
		return ctx.Next()
	})
	ref.Get("/products", c.GetProducts)
	ref.Get("/machines", c.GetMachines)
	ref.Get("/operators", c.GetOperators)
	ref.Get("/downtime-types", c.GetDowntimeTypes)
	ref.Get("/sectors", c.GetSectors)
	ref.Get("/work-shifts", c.GetWorkShifts)
}

func (c *Reference) GetProducts(ctx *fiber.Ctx) error {
	return ctx.JSON(c.ReferenceService.Products(ctx.UserContext()))
}

func (c *Reference) GetMachines(ctx *fiber.Ctx) error {
	return ctx.JSON(c.ReferenceService.Machines(ctx.UserContext()))
}

func (c *Reference) GetOperators(ctx *fiber.Ctx) error {
	return ctx.JSON(c.ReferenceService.Operators(ctx.UserContext()))
}

func (c *Reference) GetDowntimeTypes(ctx *fiber.Ctx) error {
	return ctx.JSON(c.ReferenceService.DowntimeTypes(ctx.UserContext()))
}

func (c *Reference) GetSectors(ctx *fiber.Ctx) error {
	return ctx.JSON(c.ReferenceService.Sectors(ctx.UserContext()))
}

func (c *Reference) GetWorkShifts(ctx *fiber.Ctx) error {
	return ctx.JSON(c.ReferenceService.WorkShifts(ctx.UserContext()))
}
