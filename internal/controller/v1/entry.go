package v1

import (
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/shopfloor-stats/backend/internal/model"
	"github.com/shopfloor-stats/backend/internal/model/types"
	"github.com/shopfloor-stats/backend/internal/pkg/cachectrl"
	"github.com/shopfloor-stats/backend/internal/pkg/fiberstore"
	"github.com/shopfloor-stats/backend/internal/pkg/middlewares"
	"github.com/shopfloor-stats/backend/internal/server/svr"
	"github.com/shopfloor-stats/backend/internal/service"
	"github.com/shopfloor-stats/backend/internal/util/rekuest"
)

type Entry struct {
	fx.In

	EntryService *service.Entry
	Redis        *redis.Client
	RedSync      *redsync.Redsync
}

func RegisterEntry(v1 *svr.V1, c Entry) {
	idempotency := middlewares.Idempotency(&middlewares.IdempotencyConfig{
		Lifetime:            time.Hour * 24,
		KeepResponseHeaders: []string{fiber.HeaderContentType},
		Storage:             fiberstore.NewRedis(c.Redis, "shopfloor:idempotency"),
		RedSync:             c.RedSync,
	})

	entries := v1.Group("/entries", func(ctx *fiber.Ctx) error {
		cachectrl.OptOut(ctx)
		return ctx.Next()
	})
	entries.Get("/", c.ListEntries)
	entries.Post("/", idempotency, c.CreateEntry)
	entries.Post("/overlap", c.CheckOverlap)
	entries.Get("/:entryId", c.GetEntry)
	entries.Put("/:entryId", idempotency, c.UpdateEntry)
	entries.Delete("/:entryId", c.DeleteEntry)
}

// ListEntries returns the entries of a date, of a date range, or all of them.
func (c *Entry) ListEntries(ctx *fiber.Ctx) error {
	var query types.EntryListQuery
	if err := rekuest.ValidQuery(ctx, &query); err != nil {
		return err
	}

	rows, err := c.EntryService.ListEntries(ctx.UserContext(), &query)
	if err != nil {
		return err
	}

	return ctx.JSON(model.DecodeEntries(rows))
}

func (c *Entry) GetEntry(ctx *fiber.Ctx) error {
	entry, err := c.EntryService.GetEntry(ctx.UserContext(), ctx.Params("entryId"))
	if err != nil {
		return err
	}

	return ctx.JSON(entry)
}

func (c *Entry) CreateEntry(ctx *fiber.Ctx) error {
	var request types.EntryRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	outcome, err := c.EntryService.Register(ctx.UserContext(), &request, "", middlewares.IdempotencyKey(ctx))
	if err != nil {
		return err
	}

	if outcome.Status == model.RegisterStatusApplied {
		ctx.Status(fiber.StatusCreated)
	}
	return ctx.JSON(outcome)
}

func (c *Entry) UpdateEntry(ctx *fiber.Ctx) error {
	var request types.EntryRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	outcome, err := c.EntryService.Register(ctx.UserContext(), &request, ctx.Params("entryId"), middlewares.IdempotencyKey(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(outcome)
}

func (c *Entry) DeleteEntry(ctx *fiber.Ctx) error {
	if err := c.EntryService.Delete(ctx.UserContext(), ctx.Params("entryId")); err != nil {
		return err
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// CheckOverlap lets the entry form warn before submitting.
func (c *Entry) CheckOverlap(ctx *fiber.Ctx) error {
	var request types.OverlapRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}

	conflict := c.EntryService.CheckTimeOverlap(ctx.UserContext(),
		request.MachineID, request.Date, request.StartTime, request.EndTime, request.IsDowntime, request.ExcludeID)
	if conflict == nil {
		return ctx.JSON(types.OverlapResponse{})
	}

	return ctx.JSON(types.OverlapResponse{
		Overlaps: true,
		Conflict: &types.OverlapConflict{
			EntryID:   conflict.EntryID,
			StartTime: conflict.StartTime,
			EndTime:   conflict.EndTime.String,
		},
	})
}
