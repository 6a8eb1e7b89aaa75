package entryagg

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/shopfloor-stats/backend/internal/app/appconfig"
	"github.com/shopfloor-stats/backend/internal/constant"
	"github.com/shopfloor-stats/backend/internal/model"
	"github.com/shopfloor-stats/backend/internal/util/shiftclock"
)

const (
	UnitKg    = "kg"
	UnitUnits = "un"
)

// SectorRole binds a sector name to the quality rule it is measured by.
type SectorRole struct {
	Role   string
	Sector string
	// ByWeight measures production as bobbin weight and scrap as refile plus borra. Otherwise
	// production is OK units and scrap is defect units.
	ByWeight bool
}

// SectorRoles returns the configured roles in a stable order.
func SectorRoles(roles appconfig.SectorRoleMap) []SectorRole {
	out := make([]SectorRole, 0, len(roles))
	for _, role := range lo.Keys(roles) {
		out = append(out, SectorRole{
			Role:     role,
			Sector:   roles[role],
			ByWeight: role == appconfig.SectorRoleExtrusion,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out
}

type DashboardInput struct {
	Start        time.Time
	End          time.Time
	Entries      []model.Entry
	Reference    *model.ReferenceIndex
	Roles        []SectorRole
	GanttMaxDays int
}

// RangeMode picks the machine view: gantt when end - start is at most maxDays, consolidated otherwise.
func RangeMode(start, end time.Time, maxDays int) string {
	days := int(math.Round(end.Sub(start).Hours() / 24))
	if days <= maxDays {
		return constant.DashboardModeGantt
	}
	return constant.DashboardModeConsolidated
}

// QualityRate is 1 - scrap / (produced + scrap) as a percentage, and 100 when both are 0.
func QualityRate(produced, scrap float64) float64 {
	denom := produced + scrap
	if denom <= 0 {
		return 100
	}
	return (1 - scrap/denom) * 100
}

func BuildDashboard(in DashboardInput) *model.Dashboard {
	ref := in.Reference
	if ref == nil {
		ref = (&model.ReferenceSnapshot{}).Index()
	}

	d := &model.Dashboard{
		Start: in.Start.Format(constant.DateLayout),
		End:   in.End.Format(constant.DateLayout),
		Mode:  RangeMode(in.Start, in.End, in.GanttMaxDays),
	}

	qualityRows := make([]model.SectorQuality, 0, len(in.Roles))
	roleBySector := make(map[string]SectorRole, len(in.Roles))
	for _, r := range in.Roles {
		roleBySector[Fold(r.Sector)] = r
		unit := UnitUnits
		if r.ByWeight {
			unit = UnitKg
		}
		qualityRows = append(qualityRows, model.SectorQuality{Role: r.Role, Sector: r.Sector, Unit: unit})
	}
	quality := make(map[string]*model.SectorQuality, len(qualityRows))
	for i := range qualityRows {
		quality[qualityRows[i].Role] = &qualityRows[i]
	}

	var materials []model.MaterialUse
	for _, e := range in.Entries {
		dv := Derive(e, ref.Products)
		d.Totals.OK += dv.OK
		d.Totals.Defect += dv.Defect
		d.Totals.ProdMinutes += dv.ProdMinutes
		d.Totals.StopMinutes += dv.StopMinutes
		materials = append(materials, dv.Materials...)

		if _, ok := e.(*model.Production); !ok {
			continue
		}
		sector := ref.MachineSector(e.Header().MachineID)
		if sector == nil {
			continue
		}
		if role, ok := roleBySector[Fold(sector.Name)]; ok {
			q := quality[role.Role]
			if role.ByWeight {
				q.Produced += dv.BobbinWeight
				q.Scrap += dv.Refile + dv.Borra
			} else {
				q.Produced += float64(dv.OK)
				q.Scrap += float64(dv.Defect)
			}
		}
	}
	for i := range qualityRows {
		qualityRows[i].QualityRate = QualityRate(qualityRows[i].Produced, qualityRows[i].Scrap)
	}
	d.SectorQuality = qualityRows

	productions := lo.FilterMap(in.Entries, func(e model.Entry, _ int) (*model.Production, bool) {
		p, ok := e.(*model.Production)
		return p, ok
	})
	downtimes := lo.FilterMap(in.Entries, func(e model.Entry, _ int) (*model.Downtime, bool) {
		dt, ok := e.(*model.Downtime)
		return dt, ok
	})

	d.Products = rollUp(
		lo.Filter(productions, func(p *model.Production, _ int) bool { return p.ProductCode != "" }),
		func(p *model.Production) string { return p.ProductCode },
		func(code string, group []*model.Production) model.ProductRollup {
			name := code
			if prod, ok := ref.Products[code]; ok {
				name = prod.Name
			}
			return model.ProductRollup{ProductCode: code, Name: name, OK: sumOK(group), Defect: sumDefect(group)}
		},
		func(a, b model.ProductRollup) bool {
			if a.OK != b.OK {
				return a.OK > b.OK
			}
			return a.ProductCode < b.ProductCode
		},
	)
	if len(d.Products) > constant.DashboardTopProducts {
		d.Products = d.Products[:constant.DashboardTopProducts]
	}

	d.Operators = rollUp(productions,
		func(p *model.Production) string { return p.OperatorID },
		func(id string, group []*model.Production) model.OperatorRollup {
			name := id
			if op, ok := ref.Operators[id]; ok {
				name = op.Name
			}
			return model.OperatorRollup{OperatorID: id, Name: name, OK: sumOK(group), Defect: sumDefect(group)}
		},
		func(a, b model.OperatorRollup) bool {
			if a.OK != b.OK {
				return a.OK > b.OK
			}
			return a.OperatorID < b.OperatorID
		},
	)

	d.Shifts = rollUp(productions,
		func(p *model.Production) string { return p.Shift },
		func(shift string, group []*model.Production) model.ShiftRollup {
			return model.ShiftRollup{Shift: shift, OK: sumOK(group), Defect: sumDefect(group)}
		},
		func(a, b model.ShiftRollup) bool {
			ra, rb := ShiftRank(a.Shift), ShiftRank(b.Shift)
			if ra != rb {
				return ra < rb
			}
			return a.Shift < b.Shift
		},
	)

	d.DowntimeByType = rollUp(downtimes,
		func(dt *model.Downtime) string { return dt.DowntimeTypeID },
		func(id string, group []*model.Downtime) model.DowntimeRollup {
			desc := id
			if t, ok := ref.DowntimeTypes[id]; ok {
				desc = t.Description
			}
			return model.DowntimeRollup{
				DowntimeTypeID: id,
				Description:    desc,
				Minutes:        lo.SumBy(group, func(dt *model.Downtime) int { return dt.Minutes }),
				Count:          len(group),
			}
		},
		func(a, b model.DowntimeRollup) bool {
			if a.Minutes != b.Minutes {
				return a.Minutes > b.Minutes
			}
			return a.DowntimeTypeID < b.DowntimeTypeID
		},
	)

	d.Materials = rollUp(materials,
		func(u model.MaterialUse) string { return u.Material },
		func(material string, group []model.MaterialUse) model.MaterialUse {
			return model.MaterialUse{Material: material, Kg: lo.SumBy(group, func(u model.MaterialUse) float64 { return u.Kg })}
		},
		func(a, b model.MaterialUse) bool {
			if a.Kg != b.Kg {
				return a.Kg > b.Kg
			}
			return a.Material < b.Material
		},
	)

	if d.Mode == constant.DashboardModeGantt {
		d.Gantt = BuildGantt(in.Entries, ref)
	} else {
		d.Consolidated = BuildConsolidated(in.Entries, ref)
	}

	return d
}

// BuildGantt returns one row per machine and date, each entry a segment on a 1440-minute day.
func BuildGantt(entries []model.Entry, ref *model.ReferenceIndex) []model.GanttRow {
	return rollUp(entries,
		func(e model.Entry) string { return e.Header().Date + "|" + e.Header().MachineID },
		func(_ string, group []model.Entry) model.GanttRow {
			h := group[0].Header()
			row := model.GanttRow{MachineID: h.MachineID, MachineName: machineName(h.MachineID, ref), Date: h.Date, Segments: []model.GanttSegment{}}
			for _, e := range group {
				seg, ok := segmentOf(e, ref)
				if !ok {
					continue
				}
				row.Segments = append(row.Segments, seg)
				row.TotalMinutes += seg.Minutes
				if seg.Kind == constant.EntryKindProduction {
					row.ProducedMinutes += seg.Minutes
				}
			}
			sort.SliceStable(row.Segments, func(a, b int) bool {
				return row.Segments[a].StartPct < row.Segments[b].StartPct
			})
			if row.TotalMinutes > 0 {
				row.Efficiency = float64(row.ProducedMinutes) / float64(row.TotalMinutes) * 100
			}
			return row
		},
		func(a, b model.GanttRow) bool {
			if a.Date != b.Date {
				return a.Date < b.Date
			}
			return a.MachineID < b.MachineID
		},
	)
}

func segmentOf(e model.Entry, ref *model.ReferenceIndex) (model.GanttSegment, bool) {
	h := e.Header()
	start, ok := shiftclock.ParseClock(h.StartTime)
	if !ok {
		return model.GanttSegment{}, false
	}
	seg := model.GanttSegment{
		EntryID: h.ID,
		Kind:    e.Kind(),
		Start:   shiftclock.Format(start),
		End:     h.EndTime,
	}
	switch e := e.(type) {
	case *model.Production:
		seg.Minutes = shiftclock.DurationMinutes(h.StartTime, h.EndTime)
		seg.Color = constant.SegmentColorProduction
		seg.Label = e.ProductCode
		if p, ok := ref.Products[e.ProductCode]; ok {
			seg.Label = p.Name
		}
	case *model.Downtime:
		if e.IsLongStop() {
			seg.Minutes = e.Minutes
		} else {
			seg.Minutes = shiftclock.DurationMinutes(h.StartTime, h.EndTime)
		}
		seg.Color = constant.SegmentColorDowntime
		seg.Label = e.DowntimeTypeID
		if t, ok := ref.DowntimeTypes[e.DowntimeTypeID]; ok {
			seg.Label = t.Description
		}
	}
	if seg.End == "" {
		seg.End = shiftclock.Format(start + seg.Minutes)
	}

	// segments past midnight are cut at the end of the row's day
	visible := seg.Minutes
	if start+visible > constant.MinutesPerDay {
		visible = constant.MinutesPerDay - start
	}
	seg.StartPct = float64(start) / constant.MinutesPerDay * 100
	seg.WidthPct = float64(visible) / constant.MinutesPerDay * 100
	return seg, true
}

// BuildConsolidated returns one row per machine with the OK quantity of the whole range.
func BuildConsolidated(entries []model.Entry, ref *model.ReferenceIndex) []model.MachineTotal {
	return rollUp(entries,
		func(e model.Entry) string { return e.Header().MachineID },
		func(id string, group []model.Entry) model.MachineTotal {
			return model.MachineTotal{
				MachineID:   id,
				MachineName: machineName(id, ref),
				TotalQty: lo.SumBy(group, func(e model.Entry) int {
					if p, ok := e.(*model.Production); ok {
						return p.QtyOK
					}
					return 0
				}),
			}
		},
		func(a, b model.MachineTotal) bool {
			if a.TotalQty != b.TotalQty {
				return a.TotalQty > b.TotalQty
			}
			return a.MachineID < b.MachineID
		},
	)
}

// rollUp groups items by key, folds every group into one row and orders the rows by less.
// less must be a total order: groups come out of a map.
func rollUp[T any, R any](items []T, key func(T) string, fold func(key string, group []T) R, less func(a, b R) bool) []R {
	rows := lo.MapToSlice(lo.GroupBy(items, key), fold)
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	return rows
}

func sumOK(group []*model.Production) int {
	return lo.SumBy(group, func(p *model.Production) int { return p.QtyOK })
}

func sumDefect(group []*model.Production) int {
	return lo.SumBy(group, func(p *model.Production) int { return p.QtyDefect })
}

func machineName(id string, ref *model.ReferenceIndex) string {
	if m, ok := ref.Machines[id]; ok {
		return m.Name
	}
	return id
}
