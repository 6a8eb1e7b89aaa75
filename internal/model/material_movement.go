package model

import (
	"time"

	"github.com/uptrace/bun"
)

// MaterialMovement is the stock consumption written after an extrusion entry.
// QuantityKg is negative for consumption.
type MaterialMovement struct {
	bun.BaseModel `bun:"material_movements,alias:mm"`

	MovementID     string    `bun:",pk" json:"id"`
	EntryID        string    `json:"entryId"`
	IdempotencyKey string    `json:"-"`
	Material       string    `json:"material"`
	QuantityKg     float64   `json:"quantityKg"`
	CreatedAt      time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
