package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// History actions
const (
	ActionAdd    = "add"
	ActionEdit   = "edit"
	ActionRemove = "remove"
)

// DefaultActor is recorded when no user attribution is available
const DefaultActor = "User"

// HistoryEntry is one immutable audit row for a tire mutation.
// The tire attributes are a denormalized snapshot taken at mutation time,
// so the entry stays meaningful after the tire itself is deleted.
type HistoryEntry struct {
	ID              string    `json:"id" gorm:"type:varchar(36);primarykey"`
	TireID          string    `json:"tire_id" gorm:"type:varchar(36);index"`
	Action          string    `json:"action" gorm:"type:varchar(10);not null"`
	QuantityChanged int       `json:"quantity_changed"`
	Brand           string    `json:"brand" gorm:"type:varchar(100);not null"`
	Dimensions      string    `json:"dimensions" gorm:"type:varchar(30)"`
	Season          string    `json:"season" gorm:"type:varchar(20)"`
	Condition       string    `json:"condition" gorm:"type:varchar(10)"`
	Actor           string    `json:"actor" gorm:"type:varchar(100);default:'User'"`
	CreatedAt       time.Time `json:"created_at"`
}

// BeforeCreate assigns the row identifier and default actor
func (h *HistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	if h.Actor == "" {
		h.Actor = DefaultActor
	}
	return nil
}
