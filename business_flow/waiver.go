package businessflow

import (
	"github.com/fbopoint/feesched/models"
	"github.com/shopspring/decimal"
)

// tierApplies reports whether a tier may be considered for the customer.
// Non-CAA-specific tiers are usable by anyone; CAA-specific tiers only by members.
func tierApplies(tier *models.WaiverTier, isCAAMember bool) bool {
	if !tier.IsCAASpecificTier {
		return true
	}
	return isCAAMember
}

// SelectWinningTier returns the met tier with the highest priority, or nil
// when no applicable tier's threshold is met. A tier's threshold is the
// aircraft type's base minimum fuel times the tier's uplift multiplier.
// Residual priority ties break deterministically toward the lower tier ID.
func SelectWinningTier(tiers []*models.WaiverTier, isCAAMember bool, baseMinFuel, fuelUplift decimal.Decimal) *models.WaiverTier {
	var winner *models.WaiverTier
	for _, tier := range tiers {
		if !tierApplies(tier, isCAAMember) {
			continue
		}
		threshold := baseMinFuel.Mul(tier.FuelUpliftMultiplier)
		if fuelUplift.LessThan(threshold) {
			continue
		}
		if winner == nil ||
			tier.TierPriority > winner.TierPriority ||
			(tier.TierPriority == winner.TierPriority && tier.ID < winner.ID) {
			winner = tier
		}
	}
	return winner
}

// IsFeeWaived decides whether the resolved rule's charge is waived
// automatically, given the customer's CAA status, the aircraft type's base
// minimum fuel, the transaction's fuel uplift, and the tier that won the
// tiered evaluation (nil when none).
func IsFeeWaived(rule EffectiveFeeRule, isCAAMember bool, baseMinFuel, fuelUplift decimal.Decimal, winningTier *models.WaiverTier) bool {
	switch rule.EffectiveWaiverStrategy(isCAAMember) {
	case models.WaiverStrategySimpleMultiplier:
		multiplier := rule.EffectiveSimpleMultiplier(isCAAMember)
		if multiplier.Sign() <= 0 {
			return false
		}
		return fuelUplift.GreaterThanOrEqual(baseMinFuel.Mul(multiplier))
	case models.WaiverStrategyTieredMultiplier:
		return winningTier != nil && winningTier.WaivesCode(rule.FeeCode)
	default:
		return false
	}
}
