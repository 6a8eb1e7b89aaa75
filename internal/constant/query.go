package constant

const (
	// DateLayout is the layout of every calendar date accepted or returned by the API.
	DateLayout = "2006-01-02"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"

	// DashboardTopProducts is the number of products kept in the per-product rollup.
	DashboardTopProducts = 10

	DashboardModeGantt        = "gantt"
	DashboardModeConsolidated = "consolidated"
)
