package entryagg

import (
	"github.com/shopfloor-stats/backend/internal/model"
)

func KeyOf(e model.Entry) model.GroupKey {
	h := e.Header()
	return model.GroupKey{Date: h.Date, MachineID: h.MachineID, OperatorID: h.OperatorID}
}

// Group folds entries into work periods in a single pass. Groups appear in the order of their
// first entry, the first entry's shift names the group, and constituents keep input order.
func Group(entries []model.Entry, products map[string]*model.Product) []*model.GroupedEntry {
	groups := make([]*model.GroupedEntry, 0)
	byKey := make(map[model.GroupKey]*model.GroupedEntry)

	for _, e := range entries {
		key := KeyOf(e)
		g, ok := byKey[key]
		if !ok {
			g = &model.GroupedEntry{
				Key:        key.String(),
				Date:       key.Date,
				MachineID:  key.MachineID,
				OperatorID: key.OperatorID,
				Shift:      e.Header().Shift,
				Entries:    make([]model.Entry, 0, 4),
			}
			byKey[key] = g
			groups = append(groups, g)
		}

		d := Derive(e, products)
		g.TotalProdMinutes += d.ProdMinutes
		g.TotalStopMinutes += d.StopMinutes
		g.TotalOK += d.OK
		g.TotalDefect += d.Defect
		g.TotalRefile += d.Refile
		g.TotalBorra += d.Borra
		g.TotalProcessWeight += d.ProcessWeight
		g.TotalBobbinWeight += d.BobbinWeight
		if e.IsDraft() {
			g.HasDrafts = true
		}
		g.Entries = append(g.Entries, e)
	}

	return groups
}
