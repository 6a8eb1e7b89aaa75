package constant

const (
	MinutesPerDay = 1440
)
