package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/shopfloor-stats/backend/internal/app/appconfig"
	"github.com/shopfloor-stats/backend/internal/model"
	"github.com/shopfloor-stats/backend/internal/model/cache"
	pkgcache "github.com/shopfloor-stats/backend/internal/pkg/cache"
	"github.com/shopfloor-stats/backend/internal/pkg/observability"
	"github.com/shopfloor-stats/backend/internal/repo"
)

type ReferenceFetchers struct {
	Products      func(ctx context.Context) ([]*model.Product, error)
	Machines      func(ctx context.Context) ([]*model.Machine, error)
	Operators     func(ctx context.Context) ([]*model.Operator, error)
	DowntimeTypes func(ctx context.Context) ([]*model.DowntimeType, error)
	Sectors       func(ctx context.Context) ([]*model.Sector, error)
	WorkShifts    func(ctx context.Context) ([]*model.WorkShift, error)
}

// Reference serves master data from process memory. A backend failure never fails a read: it
// degrades to the last value ever loaded, or to an empty list, and is logged and counted.
type Reference struct {
	Config   *appconfig.Config
	Fetchers ReferenceFetchers
	Caches   ReferenceCaches
}

type ReferenceCaches struct {
	Products      *pkgcache.Singular[[]*model.Product]
	Machines      *pkgcache.Singular[[]*model.Machine]
	Operators     *pkgcache.Singular[[]*model.Operator]
	DowntimeTypes *pkgcache.Singular[[]*model.DowntimeType]
	Sectors       *pkgcache.Singular[[]*model.Sector]
	WorkShifts    *pkgcache.Singular[[]*model.WorkShift]
}

func NewReference(
	conf *appconfig.Config,
	productRepo *repo.Product,
	machineRepo *repo.Machine,
	operatorRepo *repo.Operator,
	downtimeTypeRepo *repo.DowntimeType,
	sectorRepo *repo.Sector,
	workShiftRepo *repo.WorkShift,
) *Reference {
	return &Reference{
		Config: conf,
		Fetchers: ReferenceFetchers{
			Products:      productRepo.GetProducts,
			Machines:      machineRepo.GetMachines,
			Operators:     operatorRepo.GetOperators,
			DowntimeTypes: downtimeTypeRepo.GetDowntimeTypes,
			Sectors:       sectorRepo.GetSectors,
			WorkShifts:    workShiftRepo.GetWorkShifts,
		},
		Caches: ReferenceCaches{
			Products:      cache.Products,
			Machines:      cache.Machines,
			Operators:     cache.Operators,
			DowntimeTypes: cache.DowntimeTypes,
			Sectors:       cache.Sectors,
			WorkShifts:    cache.WorkShifts,
		},
	}
}

func degrade[T any](ctx context.Context, c *pkgcache.Singular[[]*T], table string, s *Reference, fetch func(ctx context.Context) ([]*T, error)) (v []*T, degraded bool) {
	err := c.MutexGetSet(&v, func() ([]*T, error) { return fetch(ctx) }, s.Config.ReferenceCacheTTL)
	if err == nil {
		return v, false
	}

	if stale, ok := c.Stale(); ok {
		log.Warn().
			Err(err).
			Str("evt.name", "reference.degraded").
			Str("table", table).
			Str("fallback", "stale").
			Msg("failed to load reference data, serving last known value")
		observability.ReferenceDegraded.WithLabelValues(table, "stale").Inc()
		return stale, true
	}

	log.Error().
		Err(err).
		Str("evt.name", "reference.degraded").
		Str("table", table).
		Str("fallback", "empty").
		Msg("failed to load reference data, serving empty list")
	observability.ReferenceDegraded.WithLabelValues(table, "empty").Inc()
	return []*T{}, true
}

// Cache: products, ReferenceCacheTTL
func (s *Reference) Products(ctx context.Context) []*model.Product {
	v, _ := degrade(ctx, s.Caches.Products, "products", s, s.Fetchers.Products)
	return v
}

// Cache: machines, ReferenceCacheTTL
func (s *Reference) Machines(ctx context.Context) []*model.Machine {
	v, _ := degrade(ctx, s.Caches.Machines, "machines", s, s.Fetchers.Machines)
	return v
}

// Cache: operators, ReferenceCacheTTL
func (s *Reference) Operators(ctx context.Context) []*model.Operator {
	v, _ := degrade(ctx, s.Caches.Operators, "operators", s, s.Fetchers.Operators)
	return v
}

// Cache: downtimeTypes, ReferenceCacheTTL
func (s *Reference) DowntimeTypes(ctx context.Context) []*model.DowntimeType {
	v, _ := degrade(ctx, s.Caches.DowntimeTypes, "downtime_types", s, s.Fetchers.DowntimeTypes)
	return v
}

// Cache: sectors, ReferenceCacheTTL
func (s *Reference) Sectors(ctx context.Context) []*model.Sector {
	v, _ := degrade(ctx, s.Caches.Sectors, "sectors", s, s.Fetchers.Sectors)
	return v
}

// Cache: workShifts, ReferenceCacheTTL
func (s *Reference) WorkShifts(ctx context.Context) []*model.WorkShift {
	v, _ := degrade(ctx, s.Caches.WorkShifts, "work_shifts", s, s.Fetchers.WorkShifts)
	return v
}

// Snapshot loads every table in parallel. It only fails when ctx is done.
func (s *Reference) Snapshot(ctx context.Context) (*model.ReferenceSnapshot, error) {
	snap := &model.ReferenceSnapshot{}
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		snap.Products = s.Products(ctx)
		return ctx.Err()
	})
	eg.Go(func() error {
		snap.Machines = s.Machines(ctx)
		return ctx.Err()
	})
	eg.Go(func() error {
		snap.Operators = s.Operators(ctx)
		return ctx.Err()
	})
	eg.Go(func() error {
		snap.DowntimeTypes = s.DowntimeTypes(ctx)
		return ctx.Err()
	})
	eg.Go(func() error {
		snap.Sectors = s.Sectors(ctx)
		return ctx.Err()
	})
	eg.Go(func() error {
		snap.WorkShifts = s.WorkShifts(ctx)
		return ctx.Err()
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
