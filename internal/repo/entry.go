package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"github.com/shopfloor-stats/backend/internal/constant"
	"github.com/shopfloor-stats/backend/internal/model"
	"github.com/shopfloor-stats/backend/internal/pkg/apierr"
	"github.com/shopfloor-stats/backend/internal/repo/selector"
)

type Entry struct {
	db  *bun.DB
	sel selector.S[model.ProductionEntry]
}

func NewEntry(db *bun.DB) *Entry {
	return &Entry{db: db, sel: selector.New[model.ProductionEntry](db)}
}

// inputOrder is the order grouping relies on: oldest insert first.
func inputOrder(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("pe.date ASC", "pe.created_at ASC", "pe.entry_id ASC")
}

func (r *Entry) GetEntries(ctx context.Context) ([]*model.ProductionEntry, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return inputOrder(q)
	})
}

func (r *Entry) GetEntriesByDate(ctx context.Context, date string) ([]*model.ProductionEntry, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return inputOrder(q.Where("pe.date = ?", date))
	})
}

// GetEntriesInRange returns entries with start <= date <= end.
func (r *Entry) GetEntriesInRange(ctx context.Context, start, end string) ([]*model.ProductionEntry, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return inputOrder(q.Where("pe.date BETWEEN ? AND ?", start, end))
	})
}

func (r *Entry) GetEntryByID(ctx context.Context, id string) (*model.ProductionEntry, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("pe.entry_id = ?", id)
	})
}

func (r *Entry) GetEntryByIdempotencyKey(ctx context.Context, key string) (*model.ProductionEntry, error) {
	return r.sel.SelectOne(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("pe.idempotency_key = ?", key)
	})
}

// GetOverlapCandidates returns the entries of the same kind on a machine and date that have an
// end time. Open-ended rows can never conflict.
func (r *Entry) GetOverlapCandidates(ctx context.Context, machineID, date string, isDowntime bool, excludeID string) ([]*model.ProductionEntry, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("pe.machine_id = ?", machineID).
			Where("pe.date = ?", date).
			Where("pe.end_time IS NOT NULL").
			Where("pe.end_time <> ''")
		if isDowntime {
			q = q.Where("pe.downtime_minutes > 0")
		} else {
			q = q.Where("pe.downtime_minutes = 0")
		}
		if excludeID != "" {
			q = q.Where("pe.entry_id <> ?", excludeID)
		}
		return q.Order("pe.start_time ASC")
	})
}

// CreateEntry inserts the row unless its idempotency key is already taken, in which case the
// existing row is returned with created false.
func (r *Entry) CreateEntry(ctx context.Context, row *model.ProductionEntry) (existing *model.ProductionEntry, created bool, err error) {
	res, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (idempotency_key) DO NOTHING").
		Returning("created_at").
		Exec(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}
	if err == nil {
		if n, _ := res.RowsAffected(); n > 0 {
			return row, true, nil
		}
	}

	if !row.IdempotencyKey.Valid {
		return nil, false, apierr.ErrInternalError.Msg("entry insert affected no rows")
	}
	existing, err = r.GetEntryByIdempotencyKey(ctx, row.IdempotencyKey.String)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// UpdateEntry overwrites every column of an entry except its id, creation time and key.
func (r *Entry) UpdateEntry(ctx context.Context, row *model.ProductionEntry) error {
	res, err := r.db.NewUpdate().
		Model(row).
		ExcludeColumn("entry_id", "created_at", "idempotency_key").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apierr.ErrNotFound
	}
	return nil
}

func (r *Entry) DeleteEntry(ctx context.Context, id string) error {
	res, err := r.db.NewDelete().
		Model((*model.ProductionEntry)(nil)).
		Where("entry_id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apierr.ErrNotFound
	}
	return nil
}

// CountByKind counts the entries of date per kind. Both kinds are always present.
func (r *Entry) CountByKind(ctx context.Context, date string) (map[string]int, error) {
	var rows []struct {
		Downtime bool `bun:"downtime"`
		Count    int  `bun:"count"`
	}
	err := r.db.NewSelect().
		Model((*model.ProductionEntry)(nil)).
		ColumnExpr("(pe.downtime_minutes > 0) AS downtime").
		ColumnExpr("COUNT(*) AS count").
		Where("pe.date = ?", date).
		GroupExpr("downtime").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	counts := map[string]int{
		constant.EntryKindProduction: 0,
		constant.EntryKindDowntime:   0,
	}
	for _, row := range rows {
		if row.Downtime {
			counts[constant.EntryKindDowntime] = row.Count
		} else {
			counts[constant.EntryKindProduction] = row.Count
		}
	}
	return counts, nil
}
