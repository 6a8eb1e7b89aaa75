package entryagg

import (
	"sort"
	"strings"

	"github.com/shopfloor-stats/backend/internal/constant"
	"github.com/shopfloor-stats/backend/internal/model"
)

// ShiftRank orders shift labels: Manhã, Tarde, Noite, then anything else.
func ShiftRank(shift string) int {
	s := Fold(shift)
	switch {
	case strings.Contains(s, "manha"):
		return 1
	case strings.Contains(s, "tarde"):
		return 2
	case strings.Contains(s, "noite"):
		return 3
	default:
		return 4
	}
}

// Sort orders items by date (descending unless order is asc), then shift rank, then machine id.
// It is stable and sorts in place.
func Sort[T any](items []T, order string, keys func(T) (date, shift, machine string)) {
	asc := strings.EqualFold(order, constant.SortOrderAsc)
	sort.SliceStable(items, func(i, j int) bool {
		di, si, mi := keys(items[i])
		dj, sj, mj := keys(items[j])
		if di != dj {
			if asc {
				return di < dj
			}
			return di > dj
		}
		ri, rj := ShiftRank(si), ShiftRank(sj)
		if ri != rj {
			return ri < rj
		}
		return mi < mj
	})
}

func SortGroups(groups []*model.GroupedEntry, order string) {
	Sort(groups, order, func(g *model.GroupedEntry) (string, string, string) {
		return g.Date, g.Shift, g.MachineID
	})
}
