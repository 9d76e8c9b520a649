package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AircraftClassification groups aircraft types that share default fee treatment.
// Classification-level fee overrides attach here.
type AircraftClassification struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`

	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`

	// Audit fields
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate ensures UUID is set
func (c *AircraftClassification) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (AircraftClassification) TableName() string {
	return "aircraft_classifications"
}

// AircraftClassificationFilter represents filter criteria for classification queries
type AircraftClassificationFilter struct {
	ID   *uint      `json:"id,omitempty"`
	UUID *uuid.UUID `json:"uuid,omitempty"`
	Name *string    `json:"name,omitempty"`
}
