package businessflow

import (
	"context"

	"github.com/fbopoint/feesched/models"
	"github.com/fbopoint/feesched/repository"
)

// FeeSchedule is the in-memory fee configuration a calculation runs against.
// It is assembled once per request (or served from cache) so a calculation
// sees one consistent configuration throughout.
type FeeSchedule struct {
	Rules     map[string]*models.FeeRule `json:"rules"`
	Overrides []*models.FeeRuleOverride  `json:"overrides"`
	Tiers     []*models.WaiverTier       `json:"tiers"`
}

// LoadFeeSchedule reads the full fee configuration from the store.
func LoadFeeSchedule(ctx context.Context, feeRuleRepo repository.FeeRuleRepository, overrideRepo repository.FeeRuleOverrideRepository, tierRepo repository.WaiverTierRepository) (*FeeSchedule, error) {
	rules, err := feeRuleRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	overrides, err := overrideRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	tiers, err := tierRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	schedule := &FeeSchedule{
		Rules:     make(map[string]*models.FeeRule, len(rules)),
		Overrides: overrides,
		Tiers:     tiers,
	}
	for _, rule := range rules {
		schedule.Rules[rule.FeeCode] = rule
	}
	return schedule, nil
}
