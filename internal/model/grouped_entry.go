package model

// GroupKey identifies a work period: one operator on one machine on one day.
type GroupKey struct {
	Date       string
	MachineID  string
	OperatorID string
}

// String renders the key as date|machine|operator. The separator does not occur in dates
// or in the ids used by the reference tables.
func (k GroupKey) String() string {
	return k.Date + "|" + k.MachineID + "|" + k.OperatorID
}

type GroupedEntry struct {
	Key        string `json:"key"`
	Date       string `json:"date"`
	MachineID  string `json:"machineId"`
	OperatorID string `json:"operatorId"`
	Shift      string `json:"shift"`

	TotalProdMinutes   int     `json:"totalProdMinutes"`
	TotalStopMinutes   int     `json:"totalStopMinutes"`
	TotalOK            int     `json:"totalOK"`
	TotalDefect        int     `json:"totalDefect"`
	TotalRefile        float64 `json:"totalRefile"`
	TotalBorra         float64 `json:"totalBorra"`
	TotalProcessWeight float64 `json:"totalProcessWeight"`
	TotalBobbinWeight  float64 `json:"totalBobbinWeight"`
	HasDrafts          bool    `json:"hasDrafts"`

	Entries []Entry `json:"entries"`
}
