package warmwkr

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"github.com/shopfloor-stats/backend/internal/app/appconfig"
	"github.com/shopfloor-stats/backend/internal/constant"
	"github.com/shopfloor-stats/backend/internal/pkg/async"
	"github.com/shopfloor-stats/backend/internal/pkg/observability"
	"github.com/shopfloor-stats/backend/internal/service"
)

// Warmer computes a dashboard into the cache; *service.Dashboard implements it.
type Warmer interface {
	Warm(ctx context.Context, start, end string) error
}

var _ Warmer = (*service.Dashboard)(nil)

// Range is a dashboard range relative to today.
type Range struct {
	Name string
	// Days before today the range starts. 0 is today only.
	Days int
}

// DefaultRanges are the views supervisors open most: today, the last week and the last month.
var DefaultRanges = []Range{
	{Name: "today", Days: 0},
	{Name: "week", Days: 6},
	{Name: "month", Days: 29},
}

type WorkerDeps struct {
	fx.In

	DashboardService *service.Dashboard
}

type Worker struct {
	// count counts batches worker has completed so far
	count int

	// interval describes the interval in-between different batches of job running
	interval time.Duration

	ranges []Range
	warmer Warmer
	now    func() time.Time
}

func Start(conf *appconfig.Config, lc fx.Lifecycle, deps WorkerDeps) {
	if !conf.WorkerEnabled {
		log.Info().Msg("dashboard warm-up worker disabled")
		return
	}

	w := &Worker{
		interval: conf.WorkerInterval,
		ranges:   DefaultRanges,
		warmer:   deps.DashboardService,
		now:      time.Now,
	}

	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			cancel = w.do()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func (w *Worker) do() context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for {
			log.Info().
				Int("count", w.count).
				Msg("worker batch started")

			if err := w.Batch(ctx); err != nil {
				log.Warn().Err(err).Str("evt.name", "worker.warm.failed").Msg("some dashboards failed to warm up")
			}

			log.Info().Int("count", w.count).Msg("worker batch finished")
			w.count++

			select {
			case <-ctx.Done():
				return
			case <-time.After(w.interval):
			}
		}
	}()

	return cancel
}

// Batch warms every range once.
func (w *Worker) Batch(ctx context.Context) error {
	today := w.now()
	_, err := async.Map(w.ranges, 2, func(r Range) (string, error) {
		start := today.AddDate(0, 0, -r.Days).Format(constant.DateLayout)
		end := today.Format(constant.DateLayout)
		return r.Name, observeWarmDuration(r.Name, func() error {
			return w.warmer.Warm(ctx, start, end)
		})
	})
	return err
}

func (w *Worker) Count() int {
	return w.count
}

func observeWarmDuration(name string, f func() error) error {
	start := time.Now()
	defer func() {
		observability.WorkerWarmDuration.WithLabelValues(name).Set(time.Since(start).Seconds())
	}()
	return f()
}
