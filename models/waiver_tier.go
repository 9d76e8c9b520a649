package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WaiverTier waives a set of fee codes once a fuel uplift threshold is met.
// Tiers are partitioned by CAA applicability before evaluation; among the
// tiers whose threshold is met, the highest TierPriority wins.
type WaiverTier struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`

	Name string `gorm:"type:varchar(100);not null" json:"name"`

	// Threshold = aircraft type base_min_fuel * FuelUpliftMultiplier
	FuelUpliftMultiplier decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"fuel_uplift_multiplier"`

	FeesWaivedCodes pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"fees_waived_codes"`

	TierPriority      int  `gorm:"not null;default:0" json:"tier_priority"`
	IsCAASpecificTier bool `gorm:"not null;default:false" json:"is_caa_specific_tier"`

	// Audit fields
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate ensures UUID is set
func (wt *WaiverTier) BeforeCreate(tx *gorm.DB) error {
	if wt.UUID == uuid.Nil {
		wt.UUID = uuid.New()
	}
	return nil
}

// WaivesCode reports whether the tier waives the given fee code.
func (wt *WaiverTier) WaivesCode(feeCode string) bool {
	for _, c := range wt.FeesWaivedCodes {
		if c == feeCode {
			return true
		}
	}
	return false
}

// TableName specifies the table name for GORM
func (WaiverTier) TableName() string {
	return "waiver_tiers"
}

// WaiverTierFilter represents filter criteria for waiver tier queries
type WaiverTierFilter struct {
	ID                *uint      `json:"id,omitempty"`
	UUID              *uuid.UUID `json:"uuid,omitempty"`
	Name              *string    `json:"name,omitempty"`
	IsCAASpecificTier *bool      `json:"is_caa_specific_tier,omitempty"`
}
