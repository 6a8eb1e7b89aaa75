package repo

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/shopfloor-stats/backend/internal/model"
	"github.com/shopfloor-stats/backend/internal/repo/selector"
)

type Product struct {
	sel selector.S[model.Product]
}

func NewProduct(db *bun.DB) *Product {
	return &Product{sel: selector.New[model.Product](db)}
}

func (r *Product) GetProducts(ctx context.Context) ([]*model.Product, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("product_code ASC")
	})
}

type Machine struct {
	sel selector.S[model.Machine]
}

func NewMachine(db *bun.DB) *Machine {
	return &Machine{sel: selector.New[model.Machine](db)}
}

func (r *Machine) GetMachines(ctx context.Context) ([]*model.Machine, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("name ASC")
	})
}

type Operator struct {
	sel selector.S[model.Operator]
}

func NewOperator(db *bun.DB) *Operator {
	return &Operator{sel: selector.New[model.Operator](db)}
}

func (r *Operator) GetOperators(ctx context.Context) ([]*model.Operator, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("name ASC")
	})
}

type DowntimeType struct {
	sel selector.S[model.DowntimeType]
}

func NewDowntimeType(db *bun.DB) *DowntimeType {
	return &DowntimeType{sel: selector.New[model.DowntimeType](db)}
}

func (r *DowntimeType) GetDowntimeTypes(ctx context.Context) ([]*model.DowntimeType, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("description ASC")
	})
}

type Sector struct {
	sel selector.S[model.Sector]
}

func NewSector(db *bun.DB) *Sector {
	return &Sector{sel: selector.New[model.Sector](db)}
}

func (r *Sector) GetSectors(ctx context.Context) ([]*model.Sector, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("name ASC")
	})
}

type WorkShift struct {
	sel selector.S[model.WorkShift]
}

func NewWorkShift(db *bun.DB) *WorkShift {
	return &WorkShift{sel: selector.New[model.WorkShift](db)}
}

func (r *WorkShift) GetWorkShifts(ctx context.Context) ([]*model.WorkShift, error) {
	return r.sel.SelectMany(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("start_time ASC")
	})
}
