package types

type FragmentDateRange struct {
	Start string `query:"start" json:"start" validate:"required,isodate" example:"2024-03-01"`
	End   string `query:"end" json:"end" validate:"required,isodate" example:"2024-03-07"`
}

type FragmentMachineDate struct {
	MachineID string `json:"machineId" validate:"required,max=64" example:"EXT-01"`
	Date      string `json:"date" validate:"required,isodate" example:"2024-03-01"`
}
