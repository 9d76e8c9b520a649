package dto

import "github.com/shopspring/decimal"

// CreateClassificationRequest represents the payload to create an aircraft classification.
type CreateClassificationRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// UpdateClassificationRequest represents the payload to rename a classification.
type UpdateClassificationRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type ClassificationItem struct {
	ID   uint   `json:"id"`
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// CreateAircraftTypeRequest represents the payload to create an aircraft type.
type CreateAircraftTypeRequest struct {
	Name                        string          `json:"name" validate:"required,max=100"`
	ClassificationID            uint            `json:"classification_id" validate:"required,min=1"`
	BaseMinFuelGallonsForWaiver decimal.Decimal `json:"base_min_fuel_gallons_for_waiver"`
}

// UpdateAircraftTypeRequest represents the payload to update an aircraft type.
type UpdateAircraftTypeRequest struct {
	Name                        string          `json:"name" validate:"required,max=100"`
	ClassificationID            uint            `json:"classification_id" validate:"required,min=1"`
	BaseMinFuelGallonsForWaiver decimal.Decimal `json:"base_min_fuel_gallons_for_waiver"`
}

type AircraftTypeItem struct {
	ID                          uint            `json:"id"`
	UUID                        string          `json:"uuid"`
	Name                        string          `json:"name"`
	ClassificationID            uint            `json:"classification_id"`
	BaseMinFuelGallonsForWaiver decimal.Decimal `json:"base_min_fuel_gallons_for_waiver"`
}

// CreateFeeRuleRequest represents the payload to create a global fee rule.
type CreateFeeRuleRequest struct {
	FeeCode                           string           `json:"fee_code" validate:"required,max=30"`
	FeeName                           string           `json:"fee_name" validate:"required,max=100"`
	Amount                            decimal.Decimal  `json:"amount"`
	Currency                          string           `json:"currency" validate:"omitempty,len=3"`
	IsTaxable                         bool             `json:"is_taxable"`
	IsManuallyWaivable                bool             `json:"is_manually_waivable"`
	WaiverStrategy                    string           `json:"waiver_strategy" validate:"omitempty,oneof=NONE SIMPLE_MULTIPLIER TIERED_MULTIPLIER"`
	SimpleWaiverMultiplier            decimal.Decimal  `json:"simple_waiver_multiplier"`
	HasCAAOverride                    bool             `json:"has_caa_override"`
	CAAOverrideAmount                 *decimal.Decimal `json:"caa_override_amount,omitempty"`
	CAAWaiverStrategyOverride         *string          `json:"caa_waiver_strategy_override,omitempty" validate:"omitempty,oneof=NONE SIMPLE_MULTIPLIER TIERED_MULTIPLIER"`
	CAASimpleWaiverMultiplierOverride *decimal.Decimal `json:"caa_simple_waiver_multiplier_override,omitempty"`
}

// UpdateFeeRuleRequest mirrors CreateFeeRuleRequest for full-row updates.
type UpdateFeeRuleRequest = CreateFeeRuleRequest

type FeeRuleItem struct {
	ID                                uint             `json:"id"`
	UUID                              string           `json:"uuid"`
	FeeCode                           string           `json:"fee_code"`
	FeeName                           string           `json:"fee_name"`
	Amount                            decimal.Decimal  `json:"amount"`
	Currency                          string           `json:"currency"`
	IsTaxable                         bool             `json:"is_taxable"`
	IsManuallyWaivable                bool             `json:"is_manually_waivable"`
	WaiverStrategy                    string           `json:"waiver_strategy"`
	SimpleWaiverMultiplier            decimal.Decimal  `json:"simple_waiver_multiplier"`
	HasCAAOverride                    bool             `json:"has_caa_override"`
	CAAOverrideAmount                 *decimal.Decimal `json:"caa_override_amount,omitempty"`
	CAAWaiverStrategyOverride         *string          `json:"caa_waiver_strategy_override,omitempty"`
	CAASimpleWaiverMultiplierOverride *decimal.Decimal `json:"caa_simple_waiver_multiplier_override,omitempty"`
}

// CreateOverrideRequest represents the payload to create a fee rule override.
// Exactly one of classification_id and aircraft_type_id must be set.
type CreateOverrideRequest struct {
	FeeRuleID         uint             `json:"fee_rule_id" validate:"required,min=1"`
	ClassificationID  *uint            `json:"classification_id,omitempty" validate:"omitempty,min=1"`
	AircraftTypeID    *uint            `json:"aircraft_type_id,omitempty" validate:"omitempty,min=1"`
	OverrideAmount    *decimal.Decimal `json:"override_amount,omitempty"`
	OverrideCAAAmount *decimal.Decimal `json:"override_caa_amount,omitempty"`
}

// UpdateOverrideRequest mirrors CreateOverrideRequest for full-row updates.
type UpdateOverrideRequest = CreateOverrideRequest

type OverrideItem struct {
	ID                uint             `json:"id"`
	UUID              string           `json:"uuid"`
	FeeRuleID         uint             `json:"fee_rule_id"`
	ClassificationID  *uint            `json:"classification_id,omitempty"`
	AircraftTypeID    *uint            `json:"aircraft_type_id,omitempty"`
	OverrideAmount    *decimal.Decimal `json:"override_amount,omitempty"`
	OverrideCAAAmount *decimal.Decimal `json:"override_caa_amount,omitempty"`
}

// CreateWaiverTierRequest represents the payload to create a waiver tier.
type CreateWaiverTierRequest struct {
	Name                 string          `json:"name" validate:"required,max=100"`
	FuelUpliftMultiplier decimal.Decimal `json:"fuel_uplift_multiplier"`
	FeesWaivedCodes      []string        `json:"fees_waived_codes" validate:"omitempty,dive,max=30"`
	TierPriority         int             `json:"tier_priority"`
	IsCAASpecificTier    bool            `json:"is_caa_specific_tier"`
}

// UpdateWaiverTierRequest mirrors CreateWaiverTierRequest for full-row updates.
type UpdateWaiverTierRequest = CreateWaiverTierRequest

type WaiverTierItem struct {
	ID                   uint            `json:"id"`
	UUID                 string          `json:"uuid"`
	Name                 string          `json:"name"`
	FuelUpliftMultiplier decimal.Decimal `json:"fuel_uplift_multiplier"`
	FeesWaivedCodes      []string        `json:"fees_waived_codes"`
	TierPriority         int             `json:"tier_priority"`
	IsCAASpecificTier    bool            `json:"is_caa_specific_tier"`
}

// ReorderWaiverTiersRequest assigns new priorities to tiers by id.
type ReorderWaiverTiersRequest struct {
	Priorities map[uint]int `json:"priorities" validate:"required,min=1"`
}
