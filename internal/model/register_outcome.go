package model

const (
	RegisterStatusApplied             = "applied"
	RegisterStatusReplayed            = "replayed"
	RegisterStatusSideEffectUncertain = "side_effect_uncertain"
)

// RegisterOutcome does not carry the entry. Callers re-fetch to reconcile.
type RegisterOutcome struct {
	EntryID string `json:"entryId"`
	Status  string `json:"status"`
}
