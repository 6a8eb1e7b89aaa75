package entryagg

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/shopfloor-stats/backend/internal/model"
)

func TestShiftRankSort(t *testing.T) {
	shifts := []string{"Noite", "Manhã", "Tarde", "", "MANHÃ extra"}
	groups := lo.Map(shifts, func(s string, i int) *model.GroupedEntry {
		return &model.GroupedEntry{Date: "2024-03-01", MachineID: "EXT-01", Shift: s}
	})

	SortGroups(groups, "desc")

	assert.Equal(t, []string{"Manhã", "MANHÃ extra", "Tarde", "Noite", ""},
		lo.Map(groups, func(g *model.GroupedEntry, _ int) string { return g.Shift }))
}

func TestSortDateDirectionAndMachine(t *testing.T) {
	groups := []*model.GroupedEntry{
		{Date: "2024-03-01", Shift: "Tarde", MachineID: "B"},
		{Date: "2024-03-02", Shift: "Tarde", MachineID: "B"},
		{Date: "2024-03-01", Shift: "Tarde", MachineID: "A"},
		{Date: "2024-03-01", Shift: "Manhã", MachineID: "C"},
	}
	keys := func() []string {
		return lo.Map(groups, func(g *model.GroupedEntry, _ int) string { return g.Date + "/" + g.MachineID })
	}

	SortGroups(groups, "")
	assert.Equal(t, []string{"2024-03-02/B", "2024-03-01/C", "2024-03-01/A", "2024-03-01/B"}, keys())

	SortGroups(groups, "ASC")
	assert.Equal(t, []string{"2024-03-01/C", "2024-03-01/A", "2024-03-01/B", "2024-03-02/B"}, keys())
}

func TestShiftRank(t *testing.T) {
	assert.Equal(t, 1, ShiftRank("manhã cedo"))
	assert.Equal(t, 1, ShiftRank("Manha"))
	assert.Equal(t, 2, ShiftRank("TARDE"))
	assert.Equal(t, 3, ShiftRank("noite"))
	assert.Equal(t, 4, ShiftRank("Comercial"))
	assert.Equal(t, 4, ShiftRank(""))
}
