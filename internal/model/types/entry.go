package types

import (
	"github.com/goccy/go-json"
)

type EntryListQuery struct {
	Date  string `query:"date" validate:"omitempty,isodate" example:"2024-03-01"`
	Start string `query:"start" validate:"required_with=End,omitempty,isodate"`
	End   string `query:"end" validate:"required_with=Start,omitempty,isodate"`
}

type GroupQuery struct {
	FragmentDateRange

	Sector   string `query:"sector" validate:"max=64"`
	Machine  string `query:"machine" validate:"max=64"`
	Operator string `query:"operator" validate:"max=64"`
	Order    string `query:"order" validate:"omitempty,caseinsensitiveoneof=asc desc"`
}

type DashboardQuery struct {
	FragmentDateRange
}

// EntryRequest registers or edits one entry. Kind selects which of the kind-specific fields
// apply; the others are ignored.
type EntryRequest struct {
	FragmentMachineDate

	Kind       string `json:"kind" validate:"required,oneof=production downtime"`
	OperatorID string `json:"operatorId" validate:"required,max=64"`
	Shift      string `json:"shift" validate:"required,max=64" example:"Manhã"`
	StartTime  string `json:"startTime" validate:"required,hhmm" example:"06:00"`
	// EndTime may only be omitted for a long stop.
	EndTime string `json:"endTime" validate:"required_unless=LongStop true,omitempty,hhmm" example:"14:00"`

	ProductCode string `json:"productCode" validate:"required_if=Kind production,max=64"`
	QtyOK       int    `json:"qtyOK" validate:"gte=0"`
	QtyDefect   int    `json:"qtyDefect" validate:"gte=0"`

	// DowntimeMinutes defaults to the clock duration. It is required for a long stop.
	DowntimeMinutes int    `json:"downtimeMinutes" validate:"gte=0,lte=1440"`
	DowntimeTypeID  string `json:"downtimeTypeId" validate:"required_if=Kind downtime,max=64"`
	LongStop        bool   `json:"longStop"`

	MetaData     json.RawMessage `json:"metaData" swaggertype:"object"`
	Observations string          `json:"observations" validate:"max=2000"`
}

type OverlapRequest struct {
	FragmentMachineDate

	StartTime  string `json:"startTime" validate:"required,hhmm"`
	EndTime    string `json:"endTime" validate:"omitempty,hhmm"`
	IsDowntime bool   `json:"isDowntime"`
	ExcludeID  string `json:"excludeId" validate:"max=64"`
}

type OverlapResponse struct {
	Overlaps bool `json:"overlaps"`
	// Conflict is the first conflicting entry, if any.
	Conflict *OverlapConflict `json:"conflict,omitempty"`
}

type OverlapConflict struct {
	EntryID   string `json:"entryId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}
