package entryagg

import (
	"github.com/shopfloor-stats/backend/internal/model"
)

func prod(id, date, machine, operator, shift, start, end string, ok, defect int, meta model.ProductionMeta) *model.Production {
	return &model.Production{
		EntryHeader: model.EntryHeader{
			ID: id, Date: date, MachineID: machine, OperatorID: operator,
			Shift: shift, StartTime: start, EndTime: end,
		},
		ProductCode: "P-1",
		QtyOK:       ok,
		QtyDefect:   defect,
		Meta:        meta,
	}
}

func stop(id, date, machine, operator, shift, start, end string, minutes int) *model.Downtime {
	return &model.Downtime{
		EntryHeader: model.EntryHeader{
			ID: id, Date: date, MachineID: machine, OperatorID: operator,
			Shift: shift, StartTime: start, EndTime: end,
		},
		Minutes:        minutes,
		DowntimeTypeID: "SETUP",
	}
}

func testReference() *model.ReferenceIndex {
	return (&model.ReferenceSnapshot{
		Products: []*model.Product{
			{ProductCode: "P-1", Name: "Bobina 40cm", NetWeight: 0.5},
			{ProductCode: "P-2", Name: "Copo 200ml", NetWeight: 0.002},
		},
		Machines: []*model.Machine{
			{MachineID: "EXT-01", Name: "Extrusora 1", SectorID: "S-EXT"},
			{MachineID: "TF-01", Name: "Termoformadora 1", SectorID: "S-TF"},
		},
		Operators: []*model.Operator{
			{OperatorID: "OP-1", Name: "Ana"},
			{OperatorID: "OP-2", Name: "Bruno"},
		},
		DowntimeTypes: []*model.DowntimeType{
			{DowntimeTypeID: "SETUP", Description: "Setup"},
		},
		Sectors: []*model.Sector{
			{SectorID: "S-EXT", Name: "EXTRUSAO"},
			{SectorID: "S-TF", Name: "Termoformagem"},
		},
	}).Index()
}

func testRoles() []SectorRole {
	return SectorRoles(map[string]string{
		"extrusion":     "Extrusão",
		"thermoforming": "Termoformagem",
	})
}
