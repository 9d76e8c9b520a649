package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WaiverStrategy determines how a fee rule's charge may be waived automatically.
type WaiverStrategy string

const (
	WaiverStrategyNone             WaiverStrategy = "NONE"
	WaiverStrategySimpleMultiplier WaiverStrategy = "SIMPLE_MULTIPLIER"
	WaiverStrategyTieredMultiplier WaiverStrategy = "TIERED_MULTIPLIER"
)

// IsValid reports whether the strategy is one of the known values.
func (s WaiverStrategy) IsValid() bool {
	switch s {
	case WaiverStrategyNone, WaiverStrategySimpleMultiplier, WaiverStrategyTieredMultiplier:
		return true
	}
	return false
}

// FeeRule is the single global rule for a fee code. Classification or
// aircraft-specific pricing is expressed only through FeeRuleOverride rows,
// never by duplicating rules.
type FeeRule struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`

	FeeCode string `gorm:"type:varchar(30);uniqueIndex;not null" json:"fee_code"`
	FeeName string `gorm:"type:varchar(100);not null" json:"fee_name"`

	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`

	IsTaxable          bool `gorm:"not null;default:true" json:"is_taxable"`
	IsManuallyWaivable bool `gorm:"not null;default:false" json:"is_manually_waivable"`

	// Waiver configuration
	WaiverStrategy         WaiverStrategy  `gorm:"type:varchar(20);not null;default:'NONE'" json:"waiver_strategy"`
	SimpleWaiverMultiplier decimal.Decimal `gorm:"type:decimal(8,2);not null;default:1" json:"simple_waiver_multiplier"`

	// CAA member alternate pricing and waiver terms
	HasCAAOverride                    bool             `gorm:"not null;default:false" json:"has_caa_override"`
	CAAOverrideAmount                 *decimal.Decimal `gorm:"type:decimal(12,2)" json:"caa_override_amount,omitempty"`
	CAAWaiverStrategyOverride         *WaiverStrategy  `gorm:"type:varchar(20)" json:"caa_waiver_strategy_override,omitempty"`
	CAASimpleWaiverMultiplierOverride *decimal.Decimal `gorm:"type:decimal(8,2)" json:"caa_simple_waiver_multiplier_override,omitempty"`

	// Audit fields
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// BeforeCreate ensures UUID is set
func (fr *FeeRule) BeforeCreate(tx *gorm.DB) error {
	if fr.UUID == uuid.Nil {
		fr.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (FeeRule) TableName() string {
	return "fee_rules"
}

// FeeRuleFilter represents filter criteria for fee rule queries
type FeeRuleFilter struct {
	ID             *uint           `json:"id,omitempty"`
	UUID           *uuid.UUID      `json:"uuid,omitempty"`
	FeeCode        *string         `json:"fee_code,omitempty"`
	IsTaxable      *bool           `json:"is_taxable,omitempty"`
	WaiverStrategy *WaiverStrategy `json:"waiver_strategy,omitempty"`
}
