package repo

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/shopfloor-stats/backend/internal/model"
	"github.com/shopfloor-stats/backend/internal/repo/selector"
)

type MaterialMovement struct {
	db  *bun.DB
	sel selector.S[model.MaterialMovement]
}

func NewMaterialMovement(db *bun.DB) *MaterialMovement {
	return &MaterialMovement{db: db, sel: selector.New[model.MaterialMovement](db)}
}

// CreateMovements writes the movements of one entry in a transaction. Rows already written for
// the same idempotency key and material are left untouched, so retries never double-apply.
func (r *MaterialMovement) CreateMovements(ctx context.Context, movements []*model.MaterialMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(&movements).
			On("CONFLICT (idempotency_key, material) DO NOTHING").
			Exec(ctx)
		return err
	})
}

func (r *MaterialMovement) GetMovementsByEntryID(ctx context.Context, entryID string) ([]*model.MaterialMovement, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("entry_id = ?", entryID).Order("material ASC")
	})
}

// DeleteMovementsByEntryID reverts the stock effect of an entry.
func (r *MaterialMovement) DeleteMovementsByEntryID(ctx context.Context, entryID string) error {
	_, err := r.db.NewDelete().
		Model((*model.MaterialMovement)(nil)).
		Where("entry_id = ?", entryID).
		Exec(ctx)
	return err
}
