package service

import (
	"context"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gopkg.in/guregu/null.v3"

	"github.com/shopfloor-stats/backend/internal/app/appconfig"
	"github.com/shopfloor-stats/backend/internal/constant"
	"github.com/shopfloor-stats/backend/internal/model"
	"github.com/shopfloor-stats/backend/internal/model/types"
	"github.com/shopfloor-stats/backend/internal/pkg/apierr"
	"github.com/shopfloor-stats/backend/internal/pkg/latest"
	"github.com/shopfloor-stats/backend/internal/pkg/observability"
	"github.com/shopfloor-stats/backend/internal/repo"
	"github.com/shopfloor-stats/backend/internal/util/entryagg"
	"github.com/shopfloor-stats/backend/internal/util/shiftclock"
)

// EntryStore is the persistence the entry service needs; *repo.Entry implements it.
type EntryStore interface {
	GetEntries(ctx context.Context) ([]*model.ProductionEntry, error)
	GetEntriesByDate(ctx context.Context, date string) ([]*model.ProductionEntry, error)
	GetEntriesInRange(ctx context.Context, start, end string) ([]*model.ProductionEntry, error)
	GetEntryByID(ctx context.Context, id string) (*model.ProductionEntry, error)
	GetEntryByIdempotencyKey(ctx context.Context, key string) (*model.ProductionEntry, error)
	GetOverlapCandidates(ctx context.Context, machineID, date string, isDowntime bool, excludeID string) ([]*model.ProductionEntry, error)
	CreateEntry(ctx context.Context, row *model.ProductionEntry) (*model.ProductionEntry, bool, error)
	UpdateEntry(ctx context.Context, row *model.ProductionEntry) error
	DeleteEntry(ctx context.Context, id string) error
}

// MovementStore is where the material consumption side effect lands; *repo.MaterialMovement implements it.
type MovementStore interface {
	CreateMovements(ctx context.Context, movements []*model.MaterialMovement) error
	DeleteMovementsByEntryID(ctx context.Context, entryID string) error
}

// DashboardInvalidator drops cached dashboards whose range includes a date; *Dashboard implements it.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, date string) (int, error)
}

var (
	_ EntryStore           = (*repo.Entry)(nil)
	_ MovementStore        = (*repo.MaterialMovement)(nil)
	_ DashboardInvalidator = (*Dashboard)(nil)
)

type Entry struct {
	Config    *appconfig.Config
	Entries   EntryStore
	Movements MovementStore
	Events    EventPublisher
	Reference *Reference
	Tracker   *latest.Tracker
	// Dashboards may be nil, leaving invalidation to the entry event consumers.
	Dashboards DashboardInvalidator

	// retryDelay is the base delay between side effect attempts
	retryDelay time.Duration
}

func NewEntry(
	conf *appconfig.Config,
	entryRepo *repo.Entry,
	movementRepo *repo.MaterialMovement,
	events *EntryEvents,
	reference *Reference,
	tracker *latest.Tracker,
	dashboard *Dashboard,
) *Entry {
	return &Entry{
		Config:     conf,
		Entries:    entryRepo,
		Movements:  movementRepo,
		Events:     events,
		Reference:  reference,
		Tracker:    tracker,
		Dashboards: dashboard,
		retryDelay: time.Millisecond * 200,
	}
}

// ListEntries returns raw entries of one date, of a range, or all of them.
func (s *Entry) ListEntries(ctx context.Context, q *types.EntryListQuery) ([]*model.ProductionEntry, error) {
	switch {
	case q.Date != "":
		return s.ListEntriesByDate(ctx, q.Date)
	case q.Start != "":
		return s.Entries.GetEntriesInRange(ctx, q.Start, q.End)
	default:
		return s.Entries.GetEntries(ctx)
	}
}

func (s *Entry) GetEntry(ctx context.Context, id string) (model.Entry, error) {
	row, err := s.Entries.GetEntryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.DecodeEntry(row), nil
}

func (s *Entry) ListEntriesByDate(ctx context.Context, date string) ([]*model.ProductionEntry, error) {
	return s.Entries.GetEntriesByDate(ctx, date)
}

// ListGroups builds work periods from a fresh snapshot. A newer call with the same view key
// supersedes this one.
func (s *Entry) ListGroups(ctx context.Context, viewKey string, q *types.GroupQuery) ([]*model.GroupedEntry, error) {
	if q.End < q.Start {
		return nil, apierr.ErrInvalidReq.Msg("invalid request: end date %s is before start date %s", q.End, q.Start)
	}
	if viewKey != "" {
		viewKey = "groups:" + viewKey
	}

	groups, err := latest.Do(ctx, s.Tracker, viewKey, func(ctx context.Context) ([]*model.GroupedEntry, error) {
		ctx, cancel := context.WithTimeout(ctx, s.Config.QueryTimeout)
		defer cancel()

		rows, err := s.Entries.GetEntriesInRange(ctx, q.Start, q.End)
		if err != nil {
			return nil, err
		}
		ref, err := s.Reference.Snapshot(ctx)
		if err != nil {
			return nil, err
		}
		filter := entryagg.EntryFilter{SectorID: q.Sector, MachineID: q.Machine, OperatorID: q.Operator}
		return entryagg.BuildGroups(model.DecodeEntries(rows), filter, q.Order, ref.Index()), nil
	})
	return groups, translateViewError(err, "groups")
}

// CheckTimeOverlap returns the first entry of the same kind on the machine and date whose
// interval intersects [start, end), or nil. It fails open: a query error is logged and
// reported as no conflict.
func (s *Entry) CheckTimeOverlap(ctx context.Context, machineID, date, start, end string, isDowntime bool, excludeID string) *model.ProductionEntry {
	if _, ok := shiftclock.ParseClock(end); !ok {
		observability.OverlapChecks.WithLabelValues("open_ended").Inc()
		return nil
	}

	candidates, err := s.Entries.GetOverlapCandidates(ctx, machineID, date, isDowntime, excludeID)
	if err != nil {
		log.Warn().
			Err(err).
			Str("evt.name", "entry.overlap.failopen").
			Str("machineId", machineID).
			Str("date", date).
			Msg("overlap check failed, accepting entry")
		observability.OverlapChecks.WithLabelValues("error").Inc()
		return nil
	}

	for _, c := range candidates {
		if d, ok := model.DecodeEntry(c).(*model.Downtime); ok && d.IsLongStop() {
			continue
		}
		if shiftclock.Overlaps(start, end, c.StartTime, c.EndTime.String) {
			observability.OverlapChecks.WithLabelValues("conflict").Inc()
			return c
		}
	}
	observability.OverlapChecks.WithLabelValues("clear").Inc()
	return nil
}

// BuildEntry turns a validated request into a typed entry.
func BuildEntry(req *types.EntryRequest) (model.Entry, error) {
	h := model.EntryHeader{
		Date:         req.Date,
		MachineID:    req.MachineID,
		OperatorID:   req.OperatorID,
		Shift:        strings.TrimSpace(req.Shift),
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Observations: req.Observations,
	}

	if req.Kind == constant.EntryKindDowntime {
		meta := model.ParseDowntimeMeta(req.MetaData)
		meta.LongStop = meta.LongStop || req.LongStop
		minutes := req.DowntimeMinutes
		if minutes == 0 && !meta.LongStop {
			minutes = shiftclock.DurationMinutes(req.StartTime, req.EndTime)
		}
		if minutes <= 0 {
			return nil, apierr.NewInvalidViolations([]map[string]string{{
				"field":     "downtimeMinutes",
				"violation": "gt",
				"message":   "a stop must last at least one minute",
			}})
		}
		if meta.LongStop {
			h.EndTime = ""
		}
		return &model.Downtime{
			EntryHeader:    h,
			Minutes:        minutes,
			DowntimeTypeID: req.DowntimeTypeID,
			Meta:           meta,
		}, nil
	}

	return &model.Production{
		EntryHeader: h,
		ProductCode: req.ProductCode,
		QtyOK:       req.QtyOK,
		QtyDefect:   req.QtyDefect,
		Meta:        model.ParseProductionMeta(req.MetaData),
	}, nil
}

// Register writes an entry and its material consumption. entryID is empty for a new entry.
//
// The write is keyed by idempotencyKey: a retried request returns the entry of the first
// attempt with status replayed. If the side effect still fails after retries, a new entry is
// deleted again and the error returned, while an edit keeps its new values and reports
// side_effect_uncertain. Callers re-fetch either way.
func (s *Entry) Register(ctx context.Context, req *types.EntryRequest, entryID string, idempotencyKey string) (*model.RegisterOutcome, error) {
	isEdit := entryID != ""

	entry, err := BuildEntry(req)
	if err != nil {
		return nil, err
	}

	if !isEdit && idempotencyKey != "" {
		stored, err := s.Entries.GetEntryByIdempotencyKey(ctx, idempotencyKey)
		if err == nil {
			return s.replay(ctx, stored)
		}
		if !errors.Is(err, apierr.ErrNotFound) {
			return nil, err
		}
	}

	if conflict := s.checkConflict(ctx, entry, entryID); conflict != nil {
		return nil, apierr.ErrTimeConflict.
			Msg("time interval %s-%s conflicts with an existing entry on machine %s (%s-%s)",
				entry.Header().StartTime, entry.Header().EndTime, conflict.MachineID, conflict.StartTime, conflict.EndTime.String).
			WithExtras(apierr.Extras{
				"conflict": types.OverlapConflict{
					EntryID:   conflict.EntryID,
					StartTime: conflict.StartTime,
					EndTime:   conflict.EndTime.String,
				},
			})
	}

	var (
		row          *model.ProductionEntry
		status       = model.RegisterStatusApplied
		action       = model.EntryActionCreated
		previousDate string
	)
	if isEdit {
		action = model.EntryActionUpdated
		existing, err := s.Entries.GetEntryByID(ctx, entryID)
		if err != nil {
			return nil, err
		}
		previousDate = model.NormalizeDate(existing.Date)
		entry.Header().ID = existing.EntryID
		entry.Header().CreatedAt = existing.CreatedAt
		row, err = entry.Encode()
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode entry")
		}
		if err := s.Entries.UpdateEntry(ctx, row); err != nil {
			return nil, err
		}
	} else {
		entry.Header().ID = ulid.Make().String()
		row, err = entry.Encode()
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode entry")
		}
		row.IdempotencyKey = null.NewString(idempotencyKey, idempotencyKey != "")
		stored, created, err := s.Entries.CreateEntry(ctx, row)
		if err != nil {
			return nil, err
		}
		if !created {
			status = model.RegisterStatusReplayed
			row = stored
			entry = model.DecodeEntry(stored)
		}
	}

	if err := s.applySideEffect(ctx, entry, row, isEdit); err != nil {
		log.Error().
			Err(err).
			Str("evt.name", "entry.sideeffect.failed").
			Str("entryId", row.EntryID).
			Bool("isEdit", isEdit).
			Msg("material movement failed after retries")

		if isEdit {
			status = model.RegisterStatusSideEffectUncertain
		} else if cerr := s.compensate(ctx, row.EntryID); cerr != nil {
			log.Error().
				Err(cerr).
				Str("evt.name", "entry.compensate.failed").
				Str("entryId", row.EntryID).
				Msg("failed to delete entry after side effect failure")
			status = model.RegisterStatusSideEffectUncertain
		} else {
			s.invalidate(ctx, row.Date)
			observability.EntriesRegistered.WithLabelValues(entry.Kind(), "compensated").Inc()
			return nil, apierr.ErrInternalError.Msg("material movement could not be recorded, the entry was not saved")
		}
	}

	observability.EntriesRegistered.WithLabelValues(entry.Kind(), status).Inc()
	s.invalidate(ctx, row.Date, previousDate)
	s.publish(ctx, row, action, previousDate)

	return &model.RegisterOutcome{EntryID: row.EntryID, Status: status}, nil
}

// replay re-applies the side effect of an entry written by an earlier attempt with the same
// idempotency key. The request body of the retry is not applied.
func (s *Entry) replay(ctx context.Context, stored *model.ProductionEntry) (*model.RegisterOutcome, error) {
	entry := model.DecodeEntry(stored)
	status := model.RegisterStatusReplayed
	if err := s.applySideEffect(ctx, entry, stored, false); err != nil {
		log.Error().
			Err(err).
			Str("evt.name", "entry.sideeffect.failed").
			Str("entryId", stored.EntryID).
			Msg("material movement failed on replay")
		status = model.RegisterStatusSideEffectUncertain
	}
	observability.EntriesRegistered.WithLabelValues(entry.Kind(), status).Inc()
	return &model.RegisterOutcome{EntryID: stored.EntryID, Status: status}, nil
}

func (s *Entry) checkConflict(ctx context.Context, entry model.Entry, excludeID string) *model.ProductionEntry {
	h := entry.Header()
	_, isDowntime := entry.(*model.Downtime)
	if d, ok := entry.(*model.Downtime); ok && d.IsLongStop() {
		return nil
	}
	return s.CheckTimeOverlap(ctx, h.MachineID, h.Date, h.StartTime, h.EndTime, isDowntime, excludeID)
}

// applySideEffect records the material consumed by a production entry. The movements are keyed
// by entry id and material, so repeating them is harmless.
func (s *Entry) applySideEffect(ctx context.Context, entry model.Entry, row *model.ProductionEntry, isEdit bool) error {
	var uses []model.MaterialUse
	if p, ok := entry.(*model.Production); ok {
		uses = entryagg.MaterialConsumption(p.Meta)
	}
	if len(uses) == 0 && !isEdit {
		return nil
	}

	movements := lo.Map(uses, func(u model.MaterialUse, _ int) *model.MaterialMovement {
		return &model.MaterialMovement{
			MovementID:     ulid.Make().String(),
			EntryID:        row.EntryID,
			IdempotencyKey: row.EntryID,
			Material:       u.Material,
			QuantityKg:     -u.Kg,
		}
	})

	return retry.Do(
		func() error {
			if isEdit {
				if err := s.Movements.DeleteMovementsByEntryID(ctx, row.EntryID); err != nil {
					return err
				}
			}
			return s.Movements.CreateMovements(ctx, movements)
		},
		retry.Context(ctx),
		retry.Attempts(lo.Max([]uint{s.Config.SideEffectAttempts, 1})),
		retry.Delay(s.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().
				Err(err).
				Str("evt.name", "entry.sideeffect.retry").
				Str("entryId", row.EntryID).
				Uint("attempt", n+1).
				Msg("retrying material movement")
		}),
	)
}

func (s *Entry) compensate(ctx context.Context, entryID string) error {
	if err := s.Movements.DeleteMovementsByEntryID(ctx, entryID); err != nil {
		log.Warn().Err(err).Str("entryId", entryID).Msg("failed to delete partial material movements")
	}
	return s.Entries.DeleteEntry(ctx, entryID)
}

// Delete removes an entry and reverts its material consumption.
func (s *Entry) Delete(ctx context.Context, entryID string) error {
	row, err := s.Entries.GetEntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	if err := s.Movements.DeleteMovementsByEntryID(ctx, entryID); err != nil {
		return err
	}
	if err := s.Entries.DeleteEntry(ctx, entryID); err != nil {
		return err
	}
	s.invalidate(ctx, row.Date)
	s.publish(ctx, row, model.EntryActionDeleted, "")
	return nil
}

// invalidate drops the cached dashboards of the given dates before the write returns, so that
// the caller's re-fetch sees it. Failures are logged; the entry event retries the invalidation.
func (s *Entry) invalidate(ctx context.Context, dates ...string) {
	if s.Dashboards == nil {
		return
	}
	seen := map[string]bool{}
	for _, date := range dates {
		date = model.NormalizeDate(date)
		if date == "" || seen[date] {
			continue
		}
		seen[date] = true
		if _, err := s.Dashboards.Invalidate(context.WithoutCancel(ctx), date); err != nil {
			log.Warn().
				Err(err).
				Str("evt.name", "entry.invalidate_failed").
				Str("date", date).
				Msg("failed to invalidate cached dashboards after write")
		}
	}
}

// publish is best effort: cache entries expire on their own if the event is lost.
func (s *Entry) publish(ctx context.Context, row *model.ProductionEntry, action, previousDate string) {
	if s.Events == nil {
		return
	}
	date := model.NormalizeDate(row.Date)
	if previousDate == date {
		previousDate = ""
	}
	err := s.Events.PublishEntryChanged(ctx, &model.EntryChangedEvent{
		EntryID:      row.EntryID,
		Date:         date,
		PreviousDate: previousDate,
		MachineID:    row.MachineID,
		Action:       action,
		At:           time.Now(),
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("evt.name", "entry.event.publish_failed").
			Str("entryId", row.EntryID).
			Str("action", action).
			Msg("failed to publish entry change event")
	}
}

func translateViewError(err error, view string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, latest.ErrSuperseded):
		observability.ResponsesSuperseded.WithLabelValues(view).Inc()
		return apierr.ErrSuperseded
	case errors.Is(err, context.DeadlineExceeded):
		return apierr.ErrQueryTimeout
	case errors.Is(err, context.Canceled):
		return apierr.ErrCanceled
	default:
		return err
	}
}
