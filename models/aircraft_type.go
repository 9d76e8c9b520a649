package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AircraftType is the single source of truth for the minimum-fuel waiver
// threshold of an airframe model. Fee overrides may also attach directly
// to an aircraft type, taking precedence over its classification.
type AircraftType struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`

	Name             string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	ClassificationID uint   `gorm:"not null;index" json:"classification_id"`

	// Minimum fuel uplift (gallons) used as the base for waiver thresholds
	BaseMinFuelGallonsForWaiver decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"base_min_fuel_gallons_for_waiver"`

	// Audit fields
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	Classification AircraftClassification `gorm:"foreignKey:ClassificationID" json:"classification,omitempty"`
}

// BeforeCreate ensures UUID is set
func (at *AircraftType) BeforeCreate(tx *gorm.DB) error {
	if at.UUID == uuid.Nil {
		at.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (AircraftType) TableName() string {
	return "aircraft_types"
}

// AircraftTypeFilter represents filter criteria for aircraft type queries
type AircraftTypeFilter struct {
	ID               *uint      `json:"id,omitempty"`
	UUID             *uuid.UUID `json:"uuid,omitempty"`
	Name             *string    `json:"name,omitempty"`
	ClassificationID *uint      `json:"classification_id,omitempty"`
}
