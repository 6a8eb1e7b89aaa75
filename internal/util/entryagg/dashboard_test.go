package entryagg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfloor-stats/backend/internal/constant"
	"github.com/shopfloor-stats/backend/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse(constant.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRangeModeBoundary(t *testing.T) {
	assert.Equal(t, constant.DashboardModeGantt, RangeMode(day("2024-03-01"), day("2024-03-01"), 7))
	assert.Equal(t, constant.DashboardModeGantt, RangeMode(day("2024-03-01"), day("2024-03-08"), 7))
	assert.Equal(t, constant.DashboardModeConsolidated, RangeMode(day("2024-03-01"), day("2024-03-09"), 7))
	// across the end of a leap February
	assert.Equal(t, constant.DashboardModeGantt, RangeMode(day("2024-02-26"), day("2024-03-04"), 7))
}

func TestBuildDashboardShapeSwitch(t *testing.T) {
	entries := []model.Entry{
		prod("a", "2024-03-01", "EXT-01", "OP-1", "Manhã", "06:00", "08:00", 10, 0, model.ProductionMeta{}),
	}

	gantt := BuildDashboard(DashboardInput{Start: day("2024-03-01"), End: day("2024-03-08"), Entries: entries, Reference: testReference(), Roles: testRoles(), GanttMaxDays: 7})
	assert.Equal(t, constant.DashboardModeGantt, gantt.Mode)
	assert.NotNil(t, gantt.Gantt)
	assert.Nil(t, gantt.Consolidated)

	consolidated := BuildDashboard(DashboardInput{Start: day("2024-03-01"), End: day("2024-03-09"), Entries: entries, Reference: testReference(), Roles: testRoles(), GanttMaxDays: 7})
	assert.Equal(t, constant.DashboardModeConsolidated, consolidated.Mode)
	assert.Nil(t, consolidated.Gantt)
	require.Len(t, consolidated.Consolidated, 1)
	assert.Equal(t, model.MachineTotal{MachineID: "EXT-01", MachineName: "Extrusora 1", TotalQty: 10}, consolidated.Consolidated[0])
}

func TestSectorQualityEmptyIsHundred(t *testing.T) {
	d := BuildDashboard(DashboardInput{Start: day("2024-03-01"), End: day("2024-03-01"), Reference: testReference(), Roles: testRoles(), GanttMaxDays: 7})

	require.Len(t, d.SectorQuality, 2)
	for _, q := range d.SectorQuality {
		assert.Equal(t, 100.0, q.QualityRate, q.Role)
	}
	assert.Equal(t, 100.0, QualityRate(0, 0))
}

func TestSectorQualityBifurcation(t *testing.T) {
	entries := []model.Entry{
		// extrusion: 90 kg produced, 6 + 4 kg scrap; defect units must be ignored
		prod("a", "2024-03-01", "EXT-01", "OP-1", "Manhã", "06:00", "08:00", 1000, 999, model.ProductionMeta{
			BobbinWeight: 90,
			Extrusion:    &model.ExtrusionMeta{Refile: 6, Borra: 4},
		}),
		// thermoforming: 950 units, 50 defects; weights must be ignored
		prod("b", "2024-03-01", "TF-01", "OP-2", "Tarde", "14:00", "16:00", 950, 50, model.ProductionMeta{
			BobbinWeight: 500,
			Extrusion:    &model.ExtrusionMeta{Refile: 100},
		}),
	}

	d := BuildDashboard(DashboardInput{Start: day("2024-03-01"), End: day("2024-03-01"), Entries: entries, Reference: testReference(), Roles: testRoles(), GanttMaxDays: 7})

	require.Len(t, d.SectorQuality, 2)
	ext, tf := d.SectorQuality[0], d.SectorQuality[1]
	assert.Equal(t, "extrusion", ext.Role)
	assert.Equal(t, UnitKg, ext.Unit)
	assert.Equal(t, 90.0, ext.Produced)
	assert.Equal(t, 10.0, ext.Scrap)
	assert.InDelta(t, 90.0, ext.QualityRate, 1e-9)

	assert.Equal(t, "thermoforming", tf.Role)
	assert.Equal(t, UnitUnits, tf.Unit)
	assert.Equal(t, 950.0, tf.Produced)
	assert.Equal(t, 50.0, tf.Scrap)
	assert.InDelta(t, 95.0, tf.QualityRate, 1e-9)
}

func TestBuildDashboardRollups(t *testing.T) {
	var entries []model.Entry
	for i := 0; i < 12; i++ {
		p := prod(string(rune('a'+i)), "2024-03-01", "TF-01", "OP-1", "Manhã", "06:00", "07:00", i+1, 0, model.ProductionMeta{})
		p.ProductCode = "P-" + string(rune('A'+i))
		entries = append(entries, p)
	}
	entries = append(entries,
		prod("x", "2024-03-01", "TF-01", "OP-2", "Noite", "22:00", "23:00", 100, 2, model.ProductionMeta{}),
		stop("y", "2024-03-01", "TF-01", "OP-2", "Noite", "23:00", "23:20", 20),
	)

	d := BuildDashboard(DashboardInput{Start: day("2024-03-01"), End: day("2024-03-01"), Entries: entries, Reference: testReference(), Roles: testRoles(), GanttMaxDays: 7})

	require.Len(t, d.Products, constant.DashboardTopProducts)
	assert.Equal(t, "P-1", d.Products[0].ProductCode)
	assert.Equal(t, "Bobina 40cm", d.Products[0].Name)
	assert.Equal(t, 100, d.Products[0].OK)
	assert.Equal(t, "P-L", d.Products[1].ProductCode)

	require.Len(t, d.Operators, 2)
	assert.Equal(t, "Bruno", d.Operators[0].Name)
	assert.Equal(t, 100, d.Operators[0].OK)
	assert.Equal(t, 78, d.Operators[1].OK)

	require.Len(t, d.Shifts, 2)
	assert.Equal(t, "Manhã", d.Shifts[0].Shift)
	assert.Equal(t, "Noite", d.Shifts[1].Shift)

	require.Len(t, d.DowntimeByType, 1)
	assert.Equal(t, model.DowntimeRollup{DowntimeTypeID: "SETUP", Description: "Setup", Minutes: 20, Count: 1}, d.DowntimeByType[0])

	assert.Equal(t, model.DashboardTotals{OK: 178, Defect: 2, ProdMinutes: 13 * 60, StopMinutes: 20}, d.Totals)
}

func TestBuildGanttSegments(t *testing.T) {
	entries := []model.Entry{
		stop("b", "2024-03-01", "EXT-01", "OP-1", "Manhã", "12:00", "18:00", 360),
		prod("a", "2024-03-01", "EXT-01", "OP-1", "Manhã", "06:00", "12:00", 10, 0, model.ProductionMeta{}),
		prod("c", "2024-03-01", "EXT-01", "OP-1", "Noite", "23:00", "01:00", 1, 0, model.ProductionMeta{}),
		prod("d", "2024-03-02", "EXT-01", "OP-1", "Manhã", "", "", 1, 0, model.ProductionMeta{}),
	}

	rows := BuildGantt(entries, testReference())
	require.Len(t, rows, 2)

	r := rows[0]
	assert.Equal(t, "2024-03-01", r.Date)
	assert.Equal(t, "Extrusora 1", r.MachineName)
	require.Len(t, r.Segments, 3)
	assert.Equal(t, "a", r.Segments[0].EntryID)
	assert.InDelta(t, 25.0, r.Segments[0].StartPct, 1e-9)
	assert.InDelta(t, 25.0, r.Segments[0].WidthPct, 1e-9)
	assert.Equal(t, constant.SegmentColorProduction, r.Segments[0].Color)
	assert.Equal(t, constant.SegmentColorDowntime, r.Segments[1].Color)
	// the midnight crossing segment is cut at the end of the day
	assert.InDelta(t, 60.0/1440*100, r.Segments[2].WidthPct, 1e-9)
	assert.Equal(t, 360+360+120, r.TotalMinutes)
	assert.InDelta(t, 480.0/840*100, r.Efficiency, 1e-9)

	empty := rows[1]
	assert.Empty(t, empty.Segments)
	assert.Zero(t, empty.Efficiency)
}

func TestMaterialConsumption(t *testing.T) {
	uses := MaterialConsumption(model.ProductionMeta{
		BobbinWeight: 200,
		Extrusion: &model.ExtrusionMeta{
			Mix:       []model.MixComponent{
				{Material: "PEBD", Percentage: 70},
				{Material: "PELBD", Percentage: 30},
				{Material: "", Percentage: 10},
			},
			Additives: []model.Additive{{Material: "Pigmento", Kg: 1.5}},
		},
	})
	assert.Equal(t, []model.MaterialUse{
		{Material: "PEBD", Kg: 140},
		{Material: "PELBD", Kg: 60},
		{Material: "Pigmento", Kg: 1.5},
	}, uses)
	assert.Nil(t, MaterialConsumption(model.ProductionMeta{BobbinWeight: 10}))
}
