// Package models contains domain entities and business models for the fee schedule engine
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is the billed party on a fuel transaction. CAA members are
// entitled to alternate pricing and waiver terms where a rule defines them.
type Customer struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`

	Name        string `gorm:"type:varchar(150);not null" json:"name"`
	Email       string `gorm:"type:varchar(255)" json:"email"`
	IsCAAMember bool   `gorm:"not null;default:false;index" json:"is_caa_member"`

	// Audit fields
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate ensures UUID is set
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// CustomerFilter represents filter criteria for customer queries
type CustomerFilter struct {
	ID          *uint      `json:"id,omitempty"`
	UUID        *uuid.UUID `json:"uuid,omitempty"`
	Name        *string    `json:"name,omitempty"`
	IsCAAMember *bool      `json:"is_caa_member,omitempty"`
}
