// Package entryagg derives, groups, sorts and rolls up production entries. Every function is
// pure over the snapshot it is given.
package entryagg

import (
	"github.com/shopfloor-stats/backend/internal/model"
	"github.com/shopfloor-stats/backend/internal/util/shiftclock"
)

// Derived holds the per-entry values that feed every aggregate.
type Derived struct {
	ProdMinutes int
	StopMinutes int
	OK          int
	Defect      int
	Refile      float64
	Borra       float64
	// ProcessWeight is the theoretical weight: unit weight times OK quantity.
	ProcessWeight float64
	BobbinWeight  float64
	Materials     []model.MaterialUse
}

// Derive computes the derived values of one entry. products may be nil.
func Derive(e model.Entry, products map[string]*model.Product) Derived {
	switch e := e.(type) {
	case *model.Downtime:
		return Derived{StopMinutes: e.Minutes}
	case *model.Production:
		unitWeight := e.Meta.MeasuredWeight
		if unitWeight == 0 {
			if p, ok := products[e.ProductCode]; ok {
				unitWeight = p.NetWeight
			}
		}
		return Derived{
			ProdMinutes:   shiftclock.DurationMinutes(e.StartTime, e.EndTime),
			OK:            e.QtyOK,
			Defect:        e.QtyDefect,
			Refile:        e.Meta.Refile(),
			Borra:         e.Meta.Borra(),
			ProcessWeight: unitWeight * float64(e.QtyOK),
			BobbinWeight:  e.Meta.BobbinWeight,
			Materials:     MaterialConsumption(e.Meta),
		}
	default:
		return Derived{}
	}
}

// MaterialConsumption is each mix component's share of the bobbin weight, plus additives.
func MaterialConsumption(m model.ProductionMeta) []model.MaterialUse {
	if m.Extrusion == nil {
		return nil
	}
	uses := make([]model.MaterialUse, 0, len(m.Extrusion.Mix)+len(m.Extrusion.Additives))
	for _, c := range m.Extrusion.Mix {
		if c.Material == "" || c.Percentage <= 0 {
			continue
		}
		uses = append(uses, model.MaterialUse{
			Material: c.Material,
			Kg:       c.Percentage / 100 * m.BobbinWeight,
		})
	}
	for _, a := range m.Extrusion.Additives {
		if a.Material == "" || a.Kg <= 0 {
			continue
		}
		uses = append(uses, model.MaterialUse{Material: a.Material, Kg: a.Kg})
	}
	return uses
}
