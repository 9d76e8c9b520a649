package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FeeRuleOverride replaces selected fields of a global fee rule for a single
// classification or a single aircraft type. Exactly one of ClassificationID
// and AircraftTypeID must be set; fields left nil fall through to the base
// rule during resolution.
type FeeRuleOverride struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`

	FeeRuleID uint `gorm:"not null;index;uniqueIndex:ux_fee_rule_overrides_classification;uniqueIndex:ux_fee_rule_overrides_aircraft_type" json:"fee_rule_id"`

	// Override target: exactly one must be set
	ClassificationID *uint `gorm:"uniqueIndex:ux_fee_rule_overrides_classification" json:"classification_id,omitempty"`
	AircraftTypeID   *uint `gorm:"uniqueIndex:ux_fee_rule_overrides_aircraft_type" json:"aircraft_type_id,omitempty"`

	OverrideAmount    *decimal.Decimal `gorm:"type:decimal(12,2)" json:"override_amount,omitempty"`
	OverrideCAAAmount *decimal.Decimal `gorm:"type:decimal(12,2)" json:"override_caa_amount,omitempty"`

	// Audit fields
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	FeeRule FeeRule `gorm:"foreignKey:FeeRuleID" json:"fee_rule,omitempty"`
}

// BeforeCreate ensures UUID is set
func (o *FeeRuleOverride) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == uuid.Nil {
		o.UUID = uuid.New()
	}
	return nil
}

// HasValidTarget reports whether exactly one of the two target references is set.
func (o *FeeRuleOverride) HasValidTarget() bool {
	return (o.ClassificationID != nil) != (o.AircraftTypeID != nil)
}

// TableName specifies the table name for GORM
func (FeeRuleOverride) TableName() string {
	return "fee_rule_overrides"
}

// FeeRuleOverrideFilter represents filter criteria for override queries
type FeeRuleOverrideFilter struct {
	ID               *uint      `json:"id,omitempty"`
	UUID             *uuid.UUID `json:"uuid,omitempty"`
	FeeRuleID        *uint      `json:"fee_rule_id,omitempty"`
	ClassificationID *uint      `json:"classification_id,omitempty"`
	AircraftTypeID   *uint      `json:"aircraft_type_id,omitempty"`
}
