package businessflow

import (
	"github.com/fbopoint/feesched/models"
	"github.com/shopspring/decimal"
)

// EffectiveFeeRule is the immutable result of resolving a fee rule for a
// specific aircraft. Override application is a pure function: a new value is
// produced, the base rule is never mutated.
type EffectiveFeeRule struct {
	FeeRuleID uint
	FeeCode   string
	FeeName   string

	Amount   decimal.Decimal
	Currency string

	IsTaxable          bool
	IsManuallyWaivable bool

	WaiverStrategy         models.WaiverStrategy
	SimpleWaiverMultiplier decimal.Decimal

	HasCAAOverride                    bool
	CAAAmount                         *decimal.Decimal
	CAAWaiverStrategyOverride         *models.WaiverStrategy
	CAASimpleWaiverMultiplierOverride *decimal.Decimal

	// AppliedOverrideID is set when an override contributed to this value
	AppliedOverrideID *uint
}

// NewEffectiveFeeRule builds the effective rule from the global rule alone.
func NewEffectiveFeeRule(rule *models.FeeRule) EffectiveFeeRule {
	return EffectiveFeeRule{
		FeeRuleID:                         rule.ID,
		FeeCode:                           rule.FeeCode,
		FeeName:                           rule.FeeName,
		Amount:                            rule.Amount,
		Currency:                          rule.Currency,
		IsTaxable:                         rule.IsTaxable,
		IsManuallyWaivable:                rule.IsManuallyWaivable,
		WaiverStrategy:                    rule.WaiverStrategy,
		SimpleWaiverMultiplier:            rule.SimpleWaiverMultiplier,
		HasCAAOverride:                    rule.HasCAAOverride,
		CAAAmount:                         rule.CAAOverrideAmount,
		CAAWaiverStrategyOverride:         rule.CAAWaiverStrategyOverride,
		CAASimpleWaiverMultiplierOverride: rule.CAASimpleWaiverMultiplierOverride,
	}
}

// withOverride returns a copy with the override's set fields applied.
// Fields the override leaves nil fall through to the base values.
func (r EffectiveFeeRule) withOverride(o *models.FeeRuleOverride) EffectiveFeeRule {
	out := r
	if o.OverrideAmount != nil {
		out.Amount = *o.OverrideAmount
	}
	if o.OverrideCAAAmount != nil {
		amount := *o.OverrideCAAAmount
		out.CAAAmount = &amount
		out.HasCAAOverride = true
	}
	id := o.ID
	out.AppliedOverrideID = &id
	return out
}

// ResolveEffectiveRule resolves the single effective fee rule for an aircraft
// type by strict precedence: aircraft-specific override, then classification
// override, then the global rule itself.
func ResolveEffectiveRule(rule *models.FeeRule, overrides []*models.FeeRuleOverride, aircraftType *models.AircraftType) EffectiveFeeRule {
	effective := NewEffectiveFeeRule(rule)
	if aircraftType == nil {
		return effective
	}

	var classOverride *models.FeeRuleOverride
	for _, o := range overrides {
		if o.FeeRuleID != rule.ID {
			continue
		}
		if o.AircraftTypeID != nil && *o.AircraftTypeID == aircraftType.ID {
			return effective.withOverride(o)
		}
		if o.ClassificationID != nil && *o.ClassificationID == aircraftType.ClassificationID && classOverride == nil {
			classOverride = o
		}
	}
	if classOverride != nil {
		return effective.withOverride(classOverride)
	}
	return effective
}

// EffectiveAmount returns the charge amount for the customer's CAA status.
// The CAA amount applies only when the rule actually defines one.
func (r EffectiveFeeRule) EffectiveAmount(isCAAMember bool) decimal.Decimal {
	if isCAAMember && r.HasCAAOverride && r.CAAAmount != nil {
		return *r.CAAAmount
	}
	return r.Amount
}

// EffectiveWaiverStrategy returns the waiver strategy for the customer's CAA
// status; the CAA strategy override takes precedence for members.
func (r EffectiveFeeRule) EffectiveWaiverStrategy(isCAAMember bool) models.WaiverStrategy {
	if isCAAMember && r.CAAWaiverStrategyOverride != nil {
		return *r.CAAWaiverStrategyOverride
	}
	return r.WaiverStrategy
}

// EffectiveSimpleMultiplier returns the simple waiver multiplier for the
// customer's CAA status.
func (r EffectiveFeeRule) EffectiveSimpleMultiplier(isCAAMember bool) decimal.Decimal {
	if isCAAMember && r.CAASimpleWaiverMultiplierOverride != nil {
		return *r.CAASimpleWaiverMultiplierOverride
	}
	return r.SimpleWaiverMultiplier
}
