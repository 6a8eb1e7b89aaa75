package model

type Dashboard struct {
	Start string `json:"start"`
	End   string `json:"end"`
	// Mode is gantt or consolidated and tells which of Gantt and Consolidated is set.
	Mode string `json:"mode"`

	Totals         DashboardTotals  `json:"totals"`
	Products       []ProductRollup  `json:"products"`
	Operators      []OperatorRollup `json:"operators"`
	Shifts         []ShiftRollup    `json:"shifts"`
	SectorQuality  []SectorQuality  `json:"sectorQuality"`
	DowntimeByType []DowntimeRollup `json:"downtimeByType"`
	Materials      []MaterialUse    `json:"materials"`

	Gantt        []GanttRow     `json:"gantt,omitempty"`
	Consolidated []MachineTotal `json:"consolidated,omitempty"`
}

type DashboardTotals struct {
	OK          int `json:"ok"`
	Defect      int `json:"defect"`
	ProdMinutes int `json:"prodMinutes"`
	StopMinutes int `json:"stopMinutes"`
}

type ProductRollup struct {
	ProductCode string `json:"productCode"`
	Name        string `json:"name"`
	OK          int    `json:"ok"`
	Defect      int    `json:"defect"`
}

type OperatorRollup struct {
	OperatorID string `json:"operatorId"`
	Name       string `json:"name"`
	OK         int    `json:"ok"`
	Defect     int    `json:"defect"`
}

type ShiftRollup struct {
	Shift  string `json:"shift"`
	OK     int    `json:"ok"`
	Defect int    `json:"defect"`
}

type DowntimeRollup struct {
	DowntimeTypeID string `json:"downtimeTypeId"`
	Description    string `json:"description"`
	Minutes        int    `json:"minutes"`
	Count          int    `json:"count"`
}

// SectorQuality is measured in kg for extrusion and in units for thermoforming.
type SectorQuality struct {
	Role        string  `json:"role"`
	Sector      string  `json:"sector"`
	Unit        string  `json:"unit"`
	Produced    float64 `json:"produced"`
	Scrap       float64 `json:"scrap"`
	QualityRate float64 `json:"qualityRate"`
}

type MaterialUse struct {
	Material string  `json:"material"`
	Kg       float64 `json:"kg"`
}

type GanttRow struct {
	MachineID       string         `json:"machineId"`
	MachineName     string         `json:"machineName"`
	Date            string         `json:"date"`
	Segments        []GanttSegment `json:"segments"`
	ProducedMinutes int            `json:"producedMinutes"`
	TotalMinutes    int            `json:"totalMinutes"`
	Efficiency      float64        `json:"efficiency"`
}

type GanttSegment struct {
	EntryID  string  `json:"entryId"`
	Kind     string  `json:"kind"`
	Start    string  `json:"start"`
	End      string  `json:"end"`
	Minutes  int     `json:"minutes"`
	StartPct float64 `json:"startPct"`
	WidthPct float64 `json:"widthPct"`
	Color    string  `json:"color"`
	Label    string  `json:"label"`
}

type MachineTotal struct {
	MachineID   string `json:"machineId"`
	MachineName string `json:"machineName"`
	TotalQty    int    `json:"total_qty"`
}
