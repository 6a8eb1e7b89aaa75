package constant

const (
	EntryStreamName = "shopfloor-entries"
	EntryQueueGroup = "shopfloor-entry-events"

	EntrySubjectWildcard = "ENTRY.*"
	EntrySubjectChanged  = "ENTRY.CHANGED"

	EntryKindProduction = "production"
	EntryKindDowntime   = "downtime"

	SegmentColorProduction = "#16a34a"
	SegmentColorDowntime   = "#dc2626"
)
