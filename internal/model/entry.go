package model

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"

	"github.com/shopfloor-stats/backend/internal/constant"
)

// ProductionEntry is the persisted row. Use DecodeEntry to get its typed form.
type ProductionEntry struct {
	bun.BaseModel `bun:"production_entries,alias:pe"`

	EntryID         string          `bun:",pk" json:"id"`
	Date            string          `bun:"type:date" json:"date"`
	MachineID       string          `json:"machineId"`
	OperatorID      string          `json:"operatorId"`
	Shift           string          `json:"shift"`
	StartTime       string          `json:"startTime"`
	EndTime         null.String     `json:"endTime" swaggertype:"string"`
	ProductCode     null.String     `json:"productCode" swaggertype:"string"`
	QtyOK           int             `bun:"qty_ok" json:"qtyOK"`
	QtyDefect       int             `json:"qtyDefect"`
	DowntimeMinutes int             `json:"downtimeMinutes"`
	DowntimeTypeID  null.String     `json:"downtimeTypeId" swaggertype:"string"`
	MetaData        json.RawMessage `bun:"type:jsonb" json:"metaData" swaggertype:"object"`
	Observations    string          `json:"observations"`
	CreatedAt       time.Time       `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
	IdempotencyKey  null.String     `bun:",unique" json:"-"`
}

// IsDowntime is the discriminant of the two entry kinds.
func (r *ProductionEntry) IsDowntime() bool {
	return r.DowntimeMinutes > 0
}

// EntryHeader holds the fields shared by both entry kinds.
type EntryHeader struct {
	ID           string    `json:"id"`
	Date         string    `json:"date"`
	MachineID    string    `json:"machineId"`
	OperatorID   string    `json:"operatorId"`
	Shift        string    `json:"shift"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime,omitempty"`
	Observations string    `json:"observations,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Entry is either a *Production or a *Downtime.
type Entry interface {
	Header() *EntryHeader
	Kind() string
	IsDraft() bool
	// Encode renders the entry back into its persisted row.
	Encode() (*ProductionEntry, error)
}

type Production struct {
	EntryHeader
	ProductCode string         `json:"productCode"`
	QtyOK       int            `json:"qtyOK"`
	QtyDefect   int            `json:"qtyDefect"`
	Meta        ProductionMeta `json:"meta"`
}

type Downtime struct {
	EntryHeader
	Minutes        int          `json:"downtimeMinutes"`
	DowntimeTypeID string       `json:"downtimeTypeId"`
	Meta           DowntimeMeta `json:"meta"`
}

var (
	_ Entry = (*Production)(nil)
	_ Entry = (*Downtime)(nil)
)

func (p *Production) Header() *EntryHeader { return &p.EntryHeader }
func (p *Production) Kind() string         { return constant.EntryKindProduction }
func (p *Production) IsDraft() bool        { return p.Meta.IsDraft }

func (d *Downtime) Header() *EntryHeader { return &d.EntryHeader }
func (d *Downtime) Kind() string         { return constant.EntryKindDowntime }
func (d *Downtime) IsDraft() bool        { return d.Meta.IsDraft }

// IsLongStop reports whether the stop is open-ended. Long stops have no clock duration and
// never take part in overlap checks.
func (d *Downtime) IsLongStop() bool {
	return d.Meta.LongStop || d.EndTime == ""
}

func (p *Production) MarshalJSON() ([]byte, error) {
	type production Production
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*production
	}{constant.EntryKindProduction, (*production)(p)})
}

func (d *Downtime) MarshalJSON() ([]byte, error) {
	type downtime Downtime
	return json.Marshal(struct {
		Kind string `json:"kind"`
		*downtime
	}{constant.EntryKindDowntime, (*downtime)(d)})
}

func (p *Production) Encode() (*ProductionEntry, error) {
	meta, err := json.Marshal(p.Meta)
	if err != nil {
		return nil, err
	}
	row := p.EntryHeader.encode()
	row.ProductCode = null.NewString(p.ProductCode, p.ProductCode != "")
	row.QtyOK = p.QtyOK
	row.QtyDefect = p.QtyDefect
	row.MetaData = meta
	return row, nil
}

func (d *Downtime) Encode() (*ProductionEntry, error) {
	meta, err := json.Marshal(d.Meta)
	if err != nil {
		return nil, err
	}
	row := d.EntryHeader.encode()
	row.DowntimeMinutes = d.Minutes
	row.DowntimeTypeID = null.NewString(d.DowntimeTypeID, d.DowntimeTypeID != "")
	row.MetaData = meta
	return row, nil
}

func (h *EntryHeader) encode() *ProductionEntry {
	return &ProductionEntry{
		EntryID:      h.ID,
		Date:         h.Date,
		MachineID:    h.MachineID,
		OperatorID:   h.OperatorID,
		Shift:        h.Shift,
		StartTime:    h.StartTime,
		EndTime:      null.NewString(h.EndTime, h.EndTime != ""),
		Observations: h.Observations,
		CreatedAt:    h.CreatedAt,
	}
}

// DecodeEntry turns a row into its typed form, parsing metadata once. Fields that do not
// belong to the row's kind are dropped.
func DecodeEntry(row *ProductionEntry) Entry {
	h := EntryHeader{
		ID:           row.EntryID,
		Date:         NormalizeDate(row.Date),
		MachineID:    row.MachineID,
		OperatorID:   row.OperatorID,
		Shift:        row.Shift,
		StartTime:    row.StartTime,
		EndTime:      row.EndTime.String,
		Observations: row.Observations,
		CreatedAt:    row.CreatedAt,
	}
	if row.IsDowntime() {
		return &Downtime{
			EntryHeader:    h,
			Minutes:        row.DowntimeMinutes,
			DowntimeTypeID: row.DowntimeTypeID.String,
			Meta:           ParseDowntimeMeta(row.MetaData),
		}
	}
	return &Production{
		EntryHeader: h,
		ProductCode: row.ProductCode.String,
		QtyOK:       row.QtyOK,
		QtyDefect:   row.QtyDefect,
		Meta:        ParseProductionMeta(row.MetaData),
	}
}

func DecodeEntries(rows []*ProductionEntry) []Entry {
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, DecodeEntry(row))
	}
	return entries
}

// NormalizeDate trims a timestamp rendering of a date column down to its calendar day.
func NormalizeDate(s string) string {
	if len(s) > len(constant.DateLayout) {
		return s[:len(constant.DateLayout)]
	}
	return s
}
