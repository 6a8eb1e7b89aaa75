package entryagg

import (
	"github.com/samber/lo"

	"github.com/shopfloor-stats/backend/internal/model"
)

// EntryFilter narrows raw entries before grouping. Empty fields match everything.
type EntryFilter struct {
	SectorID   string
	MachineID  string
	OperatorID string
}

func (f EntryFilter) IsZero() bool {
	return f == EntryFilter{}
}

// Filter keeps the entries matching f. The sector of an entry is the sector of its machine, so
// a sector filter drops entries on unknown machines.
func Filter(entries []model.Entry, f EntryFilter, machines map[string]*model.Machine) []model.Entry {
	if f.IsZero() {
		return entries
	}
	return lo.Filter(entries, func(e model.Entry, _ int) bool {
		h := e.Header()
		if f.MachineID != "" && h.MachineID != f.MachineID {
			return false
		}
		if f.OperatorID != "" && h.OperatorID != f.OperatorID {
			return false
		}
		if f.SectorID != "" {
			m, ok := machines[h.MachineID]
			if !ok || m.SectorID != f.SectorID {
				return false
			}
		}
		return true
	})
}

// BuildGroups runs the whole pipeline: filter, group, sort.
func BuildGroups(entries []model.Entry, f EntryFilter, order string, ref *model.ReferenceIndex) []*model.GroupedEntry {
	groups := Group(Filter(entries, f, ref.Machines), ref.Products)
	SortGroups(groups, order)
	return groups
}
