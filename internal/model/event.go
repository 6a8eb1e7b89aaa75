package model

import "time"

const (
	EntryActionCreated = "created"
	EntryActionUpdated = "updated"
	EntryActionDeleted = "deleted"
)

// EntryChangedEvent is published on JetStream after every entry mutation.
type EntryChangedEvent struct {
	EntryID string `json:"entryId"`
	Date    string `json:"date"`
	// PreviousDate is set when an edit moved the entry to another date.
	PreviousDate string    `json:"previousDate,omitempty"`
	MachineID    string    `json:"machineId"`
	Action       string    `json:"action"`
	At           time.Time `json:"at"`
}
