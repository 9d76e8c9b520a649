package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Aircraft is a registered airframe (tail number). Aircraft reference an
// aircraft type; a type cannot be deleted while aircraft reference it.
type Aircraft struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`

	TailNumber     string `gorm:"type:varchar(20);uniqueIndex;not null" json:"tail_number"`
	AircraftTypeID uint   `gorm:"not null;index" json:"aircraft_type_id"`
	CustomerID     *uint  `gorm:"index" json:"customer_id,omitempty"`

	// Audit fields
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	AircraftType AircraftType `gorm:"foreignKey:AircraftTypeID" json:"aircraft_type,omitempty"`
}

// BeforeCreate ensures UUID is set
func (a *Aircraft) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (Aircraft) TableName() string {
	return "aircraft"
}

// AircraftFilter represents filter criteria for aircraft queries
type AircraftFilter struct {
	ID             *uint      `json:"id,omitempty"`
	UUID           *uuid.UUID `json:"uuid,omitempty"`
	TailNumber     *string    `json:"tail_number,omitempty"`
	AircraftTypeID *uint      `json:"aircraft_type_id,omitempty"`
	CustomerID     *uint      `json:"customer_id,omitempty"`
}
