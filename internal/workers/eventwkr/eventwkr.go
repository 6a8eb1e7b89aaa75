package eventwkr

import (
	"context"
	"runtime"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/shopfloor-stats/backend/internal/constant"
	"github.com/shopfloor-stats/backend/internal/model"
	"github.com/shopfloor-stats/backend/internal/pkg/jetstream"
	"github.com/shopfloor-stats/backend/internal/pkg/observability"
	"github.com/shopfloor-stats/backend/internal/service"
)

// Invalidator drops cached views touched by an entry change; *service.Dashboard implements it.
type Invalidator interface {
	Invalidate(ctx context.Context, date string) (int, error)
}

var _ Invalidator = (*service.Dashboard)(nil)

type WorkerDeps struct {
	fx.In

	JetStream        nats.JetStreamContext
	DashboardService *service.Dashboard
}

type Worker struct {
	// count is the number of consumers
	count int

	js          nats.JetStreamContext
	invalidator Invalidator
}

func Start(lc fx.Lifecycle, deps WorkerDeps) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		js:          deps.JetStream,
		invalidator: deps.DashboardService,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for i := 0; i < runtime.NumCPU(); i++ {
				go func() {
					if err := w.Consumer(ctx); err != nil && ctx.Err() == nil {
						log.Error().Err(err).Str("evt.name", "worker.event.consumer.exited").Msg("entry event consumer exited")
					}
				}()
				w.count++
			}
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func (w *Worker) Consumer(ctx context.Context) error {
	msgChan := make(chan *nats.Msg, 16)

	sub, err := w.js.ChanQueueSubscribe(constant.EntrySubjectWildcard, constant.EntryQueueGroup, msgChan,
		nats.BindStream(constant.EntryStreamName),
		nats.AckWait(time.Second*10),
		nats.MaxAckPending(128))
	if err != nil {
		log.Err(err).Msg("failed to subscribe to " + constant.EntrySubjectWildcard)
		return err
	}
	defer func() {
		_ = sub.Unsubscribe()
	}()

	for {
		select {
		case msg := <-msgChan:
			w.handle(ctx, msg)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Worker) handle(ctx context.Context, msg *nats.Msg) {
	timer := prometheus.NewTimer(observability.EventConsumeDuration.WithLabelValues(msg.Subject))
	taskCtx, cancelTask := context.WithDeadline(ctx, time.Now().Add(time.Second*10))
	inprogressInformer := time.AfterFunc(time.Second*5, func() {
		if err := msg.InProgress(); err != nil {
			log.Error().Err(err).Msg("failed to set msg InProgress")
		}
	})
	defer func() {
		inprogressInformer.Stop()
		cancelTask()
		timer.ObserveDuration()
	}()

	L := log.With().
		Str("evt.name", "worker.event.consume").
		Str("msgId", jetstream.MessageID(msg)).
		Logger()

	var event model.EntryChangedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		L.Error().Err(err).Msg("undecodable entry event, dropping")
		if err := msg.Term(); err != nil {
			L.Error().Err(err).Msg("failed to term")
		}
		return
	}

	n, err := w.Consume(taskCtx, &event)
	if err != nil {
		// redelivered after AckWait
		L.Error().Err(err).Str("entryId", event.EntryID).Msg("failed to invalidate dashboards")
		if err := msg.Nak(); err != nil {
			L.Error().Err(err).Msg("failed to nak")
		}
		return
	}

	L.Debug().
		Str("entryId", event.EntryID).
		Str("date", event.Date).
		Str("action", event.Action).
		Int("invalidated", n).
		Msg("entry event processed")
	if err := msg.Ack(); err != nil {
		L.Error().Err(err).Msg("failed to ack")
	}
}

// Consume drops every cached dashboard covering the changed entry's date, and its previous
// date when an edit moved it.
func (w *Worker) Consume(ctx context.Context, event *model.EntryChangedEvent) (int, error) {
	total := 0
	for _, date := range lo.Uniq([]string{event.Date, event.PreviousDate}) {
		if date == "" {
			continue
		}
		n, err := w.invalidator.Invalidate(ctx, date)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
