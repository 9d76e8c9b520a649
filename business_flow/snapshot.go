package businessflow

import (
	"context"

	"github.com/fbopoint/feesched/models"
	"github.com/fbopoint/feesched/repository"
	"github.com/shopspring/decimal"
)

// Snapshot record types mirror the configuration entities without audit
// fields. Timestamps never participate in snapshots, so restores and imports
// cannot produce false diffs from them.

type SnapshotClassification struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type SnapshotAircraftType struct {
	ID                          uint            `json:"id"`
	Name                        string          `json:"name"`
	ClassificationID            uint            `json:"classification_id"`
	BaseMinFuelGallonsForWaiver decimal.Decimal `json:"base_min_fuel_gallons_for_waiver"`
}

type SnapshotFeeRule struct {
	ID                                uint                   `json:"id"`
	FeeCode                           string                 `json:"fee_code"`
	FeeName                           string                 `json:"fee_name"`
	Amount                            decimal.Decimal        `json:"amount"`
	Currency                          string                 `json:"currency"`
	IsTaxable                         bool                   `json:"is_taxable"`
	IsManuallyWaivable                bool                   `json:"is_manually_waivable"`
	WaiverStrategy                    models.WaiverStrategy  `json:"waiver_strategy"`
	SimpleWaiverMultiplier            decimal.Decimal        `json:"simple_waiver_multiplier"`
	HasCAAOverride                    bool                   `json:"has_caa_override"`
	CAAOverrideAmount                 *decimal.Decimal       `json:"caa_override_amount,omitempty"`
	CAAWaiverStrategyOverride         *models.WaiverStrategy `json:"caa_waiver_strategy_override,omitempty"`
	CAASimpleWaiverMultiplierOverride *decimal.Decimal       `json:"caa_simple_waiver_multiplier_override,omitempty"`
}

type SnapshotOverride struct {
	ID                uint             `json:"id"`
	FeeRuleID         uint             `json:"fee_rule_id"`
	ClassificationID  *uint            `json:"classification_id,omitempty"`
	AircraftTypeID    *uint            `json:"aircraft_type_id,omitempty"`
	OverrideAmount    *decimal.Decimal `json:"override_amount,omitempty"`
	OverrideCAAAmount *decimal.Decimal `json:"override_caa_amount,omitempty"`
}

type SnapshotWaiverTier struct {
	ID                   uint            `json:"id"`
	Name                 string          `json:"name"`
	FuelUpliftMultiplier decimal.Decimal `json:"fuel_uplift_multiplier"`
	FeesWaivedCodes      []string        `json:"fees_waived_codes"`
	TierPriority         int             `json:"tier_priority"`
	IsCAASpecificTier    bool            `json:"is_caa_specific_tier"`
}

// ConfigurationSnapshot is a full serialized capture of the fee schedule
// configuration. It backs exports, stored versions, and imports.
type ConfigurationSnapshot struct {
	Classifications []SnapshotClassification `json:"classifications"`
	AircraftTypes   []SnapshotAircraftType   `json:"aircraft_types"`
	FeeRules        []SnapshotFeeRule        `json:"fee_rules"`
	Overrides       []SnapshotOverride       `json:"overrides"`
	WaiverTiers     []SnapshotWaiverTier     `json:"waiver_tiers"`
}

// CaptureSnapshot reads the live configuration into a snapshot document.
func CaptureSnapshot(
	ctx context.Context,
	classificationRepo repository.ClassificationRepository,
	aircraftTypeRepo repository.AircraftTypeRepository,
	feeRuleRepo repository.FeeRuleRepository,
	overrideRepo repository.FeeRuleOverrideRepository,
	tierRepo repository.WaiverTierRepository,
) (*ConfigurationSnapshot, error) {
	snapshot := &ConfigurationSnapshot{}

	classifications, err := classificationRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range classifications {
		snapshot.Classifications = append(snapshot.Classifications, SnapshotClassification{ID: c.ID, Name: c.Name})
	}

	aircraftTypes, err := aircraftTypeRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, at := range aircraftTypes {
		snapshot.AircraftTypes = append(snapshot.AircraftTypes, SnapshotAircraftType{
			ID:                          at.ID,
			Name:                        at.Name,
			ClassificationID:            at.ClassificationID,
			BaseMinFuelGallonsForWaiver: at.BaseMinFuelGallonsForWaiver,
		})
	}

	rules, err := feeRuleRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, fr := range rules {
		snapshot.FeeRules = append(snapshot.FeeRules, snapshotFromFeeRule(fr))
	}

	overrides, err := overrideRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		snapshot.Overrides = append(snapshot.Overrides, SnapshotOverride{
			ID:                o.ID,
			FeeRuleID:         o.FeeRuleID,
			ClassificationID:  o.ClassificationID,
			AircraftTypeID:    o.AircraftTypeID,
			OverrideAmount:    o.OverrideAmount,
			OverrideCAAAmount: o.OverrideCAAAmount,
		})
	}

	tiers, err := tierRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, wt := range tiers {
		snapshot.WaiverTiers = append(snapshot.WaiverTiers, SnapshotWaiverTier{
			ID:                   wt.ID,
			Name:                 wt.Name,
			FuelUpliftMultiplier: wt.FuelUpliftMultiplier,
			FeesWaivedCodes:      append([]string(nil), wt.FeesWaivedCodes...),
			TierPriority:         wt.TierPriority,
			IsCAASpecificTier:    wt.IsCAASpecificTier,
		})
	}

	return snapshot, nil
}

func snapshotFromFeeRule(fr *models.FeeRule) SnapshotFeeRule {
	return SnapshotFeeRule{
		ID:                                fr.ID,
		FeeCode:                           fr.FeeCode,
		FeeName:                           fr.FeeName,
		Amount:                            fr.Amount,
		Currency:                          fr.Currency,
		IsTaxable:                         fr.IsTaxable,
		IsManuallyWaivable:                fr.IsManuallyWaivable,
		WaiverStrategy:                    fr.WaiverStrategy,
		SimpleWaiverMultiplier:            fr.SimpleWaiverMultiplier,
		HasCAAOverride:                    fr.HasCAAOverride,
		CAAOverrideAmount:                 fr.CAAOverrideAmount,
		CAAWaiverStrategyOverride:         fr.CAAWaiverStrategyOverride,
		CAASimpleWaiverMultiplierOverride: fr.CAASimpleWaiverMultiplierOverride,
	}
}

// Validate checks the snapshot's shape: required fields, strategy values,
// override target exclusivity, and id uniqueness per collection. Shape
// problems abort an import before any mutation.
func (s *ConfigurationSnapshot) Validate() error {
	seen := make(map[uint]bool, len(s.Classifications))
	for _, c := range s.Classifications {
		if c.ID == 0 || c.Name == "" {
			return NewBusinessError("SNAPSHOT_CLASSIFICATION_INVALID", "Classification record is missing id or name", ErrEntityFieldMissing)
		}
		if seen[c.ID] {
			return NewBusinessErrorf("SNAPSHOT_DUPLICATE_ID", "Duplicate classification id %d", ErrDuplicateSnapshotID, c.ID)
		}
		seen[c.ID] = true
	}

	seen = make(map[uint]bool, len(s.AircraftTypes))
	for _, at := range s.AircraftTypes {
		if at.ID == 0 || at.Name == "" {
			return NewBusinessError("SNAPSHOT_AIRCRAFT_TYPE_INVALID", "Aircraft type record is missing id or name", ErrEntityFieldMissing)
		}
		if at.BaseMinFuelGallonsForWaiver.Sign() < 0 {
			return NewBusinessErrorf("SNAPSHOT_AIRCRAFT_TYPE_INVALID", "Aircraft type %q has negative base minimum fuel", ErrBaseMinFuelInvalid, at.Name)
		}
		if seen[at.ID] {
			return NewBusinessErrorf("SNAPSHOT_DUPLICATE_ID", "Duplicate aircraft type id %d", ErrDuplicateSnapshotID, at.ID)
		}
		seen[at.ID] = true
	}

	seen = make(map[uint]bool, len(s.FeeRules))
	codes := make(map[string]bool, len(s.FeeRules))
	for _, fr := range s.FeeRules {
		if fr.ID == 0 || fr.FeeCode == "" {
			return NewBusinessError("SNAPSHOT_FEE_RULE_INVALID", "Fee rule record is missing id or fee code", ErrEntityFieldMissing)
		}
		if !fr.WaiverStrategy.IsValid() {
			return NewBusinessErrorf("SNAPSHOT_FEE_RULE_INVALID", "Fee rule %q has unknown waiver strategy %q", ErrWaiverStrategyInvalid, fr.FeeCode, fr.WaiverStrategy)
		}
		if fr.CAAWaiverStrategyOverride != nil && !fr.CAAWaiverStrategyOverride.IsValid() {
			return NewBusinessErrorf("SNAPSHOT_FEE_RULE_INVALID", "Fee rule %q has unknown CAA waiver strategy %q", ErrWaiverStrategyInvalid, fr.FeeCode, *fr.CAAWaiverStrategyOverride)
		}
		if fr.Amount.Sign() < 0 {
			return NewBusinessErrorf("SNAPSHOT_FEE_RULE_INVALID", "Fee rule %q has negative amount", ErrAmountInvalid, fr.FeeCode)
		}
		if seen[fr.ID] {
			return NewBusinessErrorf("SNAPSHOT_DUPLICATE_ID", "Duplicate fee rule id %d", ErrDuplicateSnapshotID, fr.ID)
		}
		if codes[fr.FeeCode] {
			return NewBusinessErrorf("SNAPSHOT_DUPLICATE_ID", "Duplicate fee code %q", ErrDuplicateSnapshotID, fr.FeeCode)
		}
		seen[fr.ID] = true
		codes[fr.FeeCode] = true
	}

	seen = make(map[uint]bool, len(s.Overrides))
	for _, o := range s.Overrides {
		if o.ID == 0 || o.FeeRuleID == 0 {
			return NewBusinessError("SNAPSHOT_OVERRIDE_INVALID", "Override record is missing id or fee rule reference", ErrEntityFieldMissing)
		}
		if (o.ClassificationID != nil) == (o.AircraftTypeID != nil) {
			return NewBusinessErrorf("SNAPSHOT_OVERRIDE_INVALID", "Override %d must set exactly one of classification_id and aircraft_type_id", ErrOverrideTargetInvalid, o.ID)
		}
		if seen[o.ID] {
			return NewBusinessErrorf("SNAPSHOT_DUPLICATE_ID", "Duplicate override id %d", ErrDuplicateSnapshotID, o.ID)
		}
		seen[o.ID] = true
	}

	seen = make(map[uint]bool, len(s.WaiverTiers))
	for _, wt := range s.WaiverTiers {
		if wt.ID == 0 || wt.Name == "" {
			return NewBusinessError("SNAPSHOT_WAIVER_TIER_INVALID", "Waiver tier record is missing id or name", ErrEntityFieldMissing)
		}
		if wt.FuelUpliftMultiplier.Sign() <= 0 {
			return NewBusinessErrorf("SNAPSHOT_WAIVER_TIER_INVALID", "Waiver tier %q multiplier must be greater than zero", ErrWaiverMultiplierInvalid, wt.Name)
		}
		if seen[wt.ID] {
			return NewBusinessErrorf("SNAPSHOT_DUPLICATE_ID", "Duplicate waiver tier id %d", ErrDuplicateSnapshotID, wt.ID)
		}
		seen[wt.ID] = true
	}

	return nil
}
