package model

import (
	"github.com/uptrace/bun"
)

type Product struct {
	bun.BaseModel `bun:"products,alias:p"`

	ProductCode string  `bun:",pk" json:"productCode"`
	Name        string  `json:"name"`
	NetWeight   float64 `json:"netWeight"`
	SectorID    string  `json:"sectorId"`
}

type Machine struct {
	bun.BaseModel `bun:"machines,alias:m"`

	MachineID string `bun:",pk" json:"machineId"`
	Name      string `json:"name"`
	SectorID  string `json:"sectorId"`
	Active    bool   `json:"active"`
}

type Operator struct {
	bun.BaseModel `bun:"operators,alias:o"`

	OperatorID string `bun:",pk" json:"operatorId"`
	Name       string `json:"name"`
	SectorID   string `json:"sectorId"`
}

type DowntimeType struct {
	bun.BaseModel `bun:"downtime_types,alias:dt"`

	DowntimeTypeID string `bun:",pk" json:"downtimeTypeId"`
	Description    string `json:"description"`
}

type WorkShift struct {
	bun.BaseModel `bun:"work_shifts,alias:ws"`

	ShiftID   string `bun:",pk" json:"shiftId"`
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	SectorID  string `json:"sectorId"`
}

type Sector struct {
	bun.BaseModel `bun:"sectors,alias:s"`

	SectorID string `bun:",pk" json:"sectorId"`
	Name     string `json:"name"`
}

// ReferenceSnapshot is the master data read once per view.
type ReferenceSnapshot struct {
	Products      []*Product      `json:"products"`
	Machines      []*Machine      `json:"machines"`
	Operators     []*Operator     `json:"operators"`
	DowntimeTypes []*DowntimeType `json:"downtimeTypes"`
	Sectors       []*Sector       `json:"sectors"`
	WorkShifts    []*WorkShift    `json:"workShifts"`
}

// ReferenceIndex is a ReferenceSnapshot keyed by id.
type ReferenceIndex struct {
	Products      map[string]*Product
	Machines      map[string]*Machine
	Operators     map[string]*Operator
	DowntimeTypes map[string]*DowntimeType
	Sectors       map[string]*Sector
}

func (s *ReferenceSnapshot) Index() *ReferenceIndex {
	idx := &ReferenceIndex{
		Products:      make(map[string]*Product, len(s.Products)),
		Machines:      make(map[string]*Machine, len(s.Machines)),
		Operators:     make(map[string]*Operator, len(s.Operators)),
		DowntimeTypes: make(map[string]*DowntimeType, len(s.DowntimeTypes)),
		Sectors:       make(map[string]*Sector, len(s.Sectors)),
	}
	for _, p := range s.Products {
		idx.Products[p.ProductCode] = p
	}
	for _, m := range s.Machines {
		idx.Machines[m.MachineID] = m
	}
	for _, o := range s.Operators {
		idx.Operators[o.OperatorID] = o
	}
	for _, d := range s.DowntimeTypes {
		idx.DowntimeTypes[d.DowntimeTypeID] = d
	}
	for _, sec := range s.Sectors {
		idx.Sectors[sec.SectorID] = sec
	}
	return idx
}

// MachineSector returns the sector of a machine, or nil when either is unknown.
func (idx *ReferenceIndex) MachineSector(machineID string) *Sector {
	m, ok := idx.Machines[machineID]
	if !ok {
		return nil
	}
	return idx.Sectors[m.SectorID]
}
