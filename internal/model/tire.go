package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tire seasons
const (
	SeasonSummer    = "summer"
	SeasonWinter    = "winter"
	SeasonAllSeason = "all-season"
)

// Tire conditions
const (
	ConditionNew  = "new"
	ConditionUsed = "used"
)

// Validation errors returned at the storage boundary
var (
	ErrBrandRequired    = errors.New("brand is required")
	ErrInvalidSeason    = errors.New("season must be summer, winter or all-season")
	ErrInvalidCondition = errors.New("condition must be new or used")
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	ErrInvalidSize      = errors.New("width, height and diameter must be positive")
)

// Tire represents one stocked tire line
type Tire struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primarykey"`
	Brand     string    `json:"brand" gorm:"type:varchar(100);not null;index"`
	Width     int       `json:"width" gorm:"not null"`
	Height    int       `json:"height" gorm:"not null"`
	Diameter  int       `json:"diameter" gorm:"not null"`
	Season    string    `json:"season" gorm:"type:varchar(20);not null"`
	Condition string    `json:"condition" gorm:"type:varchar(10);not null"`
	Quantity  int       `json:"quantity" gorm:"not null;default:0"`
	Reference string    `json:"reference,omitempty" gorm:"type:varchar(100)"`
	Notes     string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the row identifier
func (t *Tire) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// Dimensions renders the display form of the tire size, e.g. "205/55 R16"
func (t *Tire) Dimensions() string {
	return fmt.Sprintf("%d/%d R%d", t.Width, t.Height, t.Diameter)
}

// Validate enforces the row schema before it reaches the store
func (t *Tire) Validate() error {
	if t.Brand == "" {
		return ErrBrandRequired
	}
	if t.Width <= 0 || t.Height <= 0 || t.Diameter <= 0 {
		return ErrInvalidSize
	}
	switch t.Season {
	case SeasonSummer, SeasonWinter, SeasonAllSeason:
	default:
		return ErrInvalidSeason
	}
	switch t.Condition {
	case ConditionNew, ConditionUsed:
	default:
		return ErrInvalidCondition
	}
	if t.Quantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

// TireStats aggregates stock quantities for the dashboard
type TireStats struct {
	Total int `json:"total"`
	New   int `json:"new"`
	Used  int `json:"used"`
}
