package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/shopfloor-stats/backend/internal/app/appconfig"
	"github.com/shopfloor-stats/backend/internal/constant"
	"github.com/shopfloor-stats/backend/internal/model"
	"github.com/shopfloor-stats/backend/internal/model/cache"
	"github.com/shopfloor-stats/backend/internal/pkg/apierr"
	"github.com/shopfloor-stats/backend/internal/pkg/latest"
	"github.com/shopfloor-stats/backend/internal/pkg/observability"
	"github.com/shopfloor-stats/backend/internal/repo"
	"github.com/shopfloor-stats/backend/internal/util/entryagg"
)

// DashboardCache is satisfied by *pkg/cache.Set[model.Dashboard].
type DashboardCache interface {
	MutexGetSet(ctx context.Context, key string, dest *model.Dashboard, valueFunc func() (*model.Dashboard, error), expire time.Duration) (bool, error)
	DeleteWhere(ctx context.Context, match func(key string) bool) (int, error)
}

// RangeReader is the slice of EntryStore the dashboard reads.
type RangeReader interface {
	GetEntriesInRange(ctx context.Context, start, end string) ([]*model.ProductionEntry, error)
}

type Dashboard struct {
	Config    *appconfig.Config
	Entries   RangeReader
	Reference *Reference
	Tracker   *latest.Tracker
	// Cache may be nil, in which case every request is computed.
	Cache DashboardCache

	flight singleflight.Group
}

func NewDashboard(conf *appconfig.Config, entryRepo *repo.Entry, reference *Reference, tracker *latest.Tracker) *Dashboard {
	s := &Dashboard{
		Config:    conf,
		Entries:   entryRepo,
		Reference: reference,
		Tracker:   tracker,
	}
	if cache.Dashboards != nil {
		s.Cache = cache.Dashboards
	}
	return s
}

// ParseRange parses an inclusive YYYY-MM-DD range.
func ParseRange(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(constant.DateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, apierr.ErrInvalidReq.Msg("invalid request: start date %q is not in YYYY-MM-DD format", start)
	}
	e, err := time.Parse(constant.DateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, apierr.ErrInvalidReq.Msg("invalid request: end date %q is not in YYYY-MM-DD format", end)
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, apierr.ErrInvalidReq.Msg("invalid request: end date %s is before start date %s", end, start)
	}
	return s, e, nil
}

// GetDashboard returns the dashboard of [start, end]. When viewKey is set, a newer request with
// the same key makes this one return apierr.ErrSuperseded.
func (s *Dashboard) GetDashboard(ctx context.Context, viewKey, start, end string) (*model.Dashboard, error) {
	from, to, err := ParseRange(start, end)
	if err != nil {
		return nil, err
	}
	if viewKey != "" {
		viewKey = "dashboard:" + viewKey
	}

	d, err := latest.Do(ctx, s.Tracker, viewKey, func(ctx context.Context) (*model.Dashboard, error) {
		return s.shared(ctx, from, to)
	})
	return d, translateViewError(err, "dashboard")
}

// WithQueryTimeout bounds ctx by the configured query timeout.
func (s *Dashboard) WithQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.Config.QueryTimeout)
}

// Warm computes the dashboard of [start, end] into the cache.
func (s *Dashboard) Warm(ctx context.Context, start, end string) error {
	from, to, err := ParseRange(start, end)
	if err != nil {
		return err
	}
	_, err = s.shared(ctx, from, to)
	return err
}

// Invalidate drops every cached dashboard whose range contains date.
func (s *Dashboard) Invalidate(ctx context.Context, date string) (int, error) {
	if s.Cache == nil {
		return 0, nil
	}
	date = model.NormalizeDate(date)
	return s.Cache.DeleteWhere(ctx, func(key string) bool {
		return cache.DashboardKeyCovers(key, date)
	})
}

// shared joins concurrent requests for the same range into one computation. The computation
// is detached from any single caller so that one caller leaving does not fail the others.
func (s *Dashboard) shared(ctx context.Context, from, to time.Time) (*model.Dashboard, error) {
	key := cache.DashboardKey(from.Format(constant.DateLayout), to.Format(constant.DateLayout))

	ch := s.flight.DoChan(key, func() (any, error) {
		cctx, cancel := s.WithQueryTimeout(context.WithoutCancel(ctx))
		defer cancel()
		return s.cached(cctx, key, from, to)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*model.Dashboard), nil
	}
}

// Cache: dashboard#start|end, DashboardCacheTTL
func (s *Dashboard) cached(ctx context.Context, key string, from, to time.Time) (*model.Dashboard, error) {
	if s.Cache == nil {
		return s.Build(ctx, from, to)
	}

	var d model.Dashboard
	calculated, err := s.Cache.MutexGetSet(ctx, key, &d, func() (*model.Dashboard, error) {
		return s.Build(ctx, from, to)
	}, s.Config.DashboardCacheTTL)
	if err != nil {
		observability.DashboardCacheResult.WithLabelValues("error").Inc()
		return nil, err
	}
	if calculated {
		observability.DashboardCacheResult.WithLabelValues("miss").Inc()
	} else {
		observability.DashboardCacheResult.WithLabelValues("hit").Inc()
	}
	return &d, nil
}

// Build aggregates the dashboard from the database, bypassing the cache.
func (s *Dashboard) Build(ctx context.Context, from, to time.Time) (*model.Dashboard, error) {
	mode := entryagg.RangeMode(from, to, s.Config.GanttMaxDays)
	timer := prometheus.NewTimer(observability.DashboardComputeDuration.WithLabelValues(mode))
	defer timer.ObserveDuration()

	rows, err := s.Entries.GetEntriesInRange(ctx, from.Format(constant.DateLayout), to.Format(constant.DateLayout))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load entries")
	}
	ref, err := s.Reference.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	d := entryagg.BuildDashboard(entryagg.DashboardInput{
		Start:        from,
		End:          to,
		Entries:      model.DecodeEntries(rows),
		Reference:    ref.Index(),
		Roles:        entryagg.SectorRoles(s.Config.SectorRoles),
		GanttMaxDays: s.Config.GanttMaxDays,
	})

	log.Debug().
		Str("evt.name", "dashboard.built").
		Str("start", d.Start).
		Str("end", d.End).
		Str("mode", d.Mode).
		Int("entries", len(rows)).
		Msg("dashboard aggregated")
	return d, nil
}
