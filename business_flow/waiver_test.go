package businessflow

import (
	"testing"

	"github.com/fbopoint/feesched/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleMultiplierWaiver(t *testing.T) {
	rule := NewEffectiveFeeRule(testRampRule())
	baseMinFuel := d("100")

	t.Run("UpliftMeetsThreshold", func(t *testing.T) {
		assert.True(t, IsFeeWaived(rule, false, baseMinFuel, d("500"), nil))
	})

	t.Run("UpliftExactlyAtThreshold", func(t *testing.T) {
		assert.True(t, IsFeeWaived(rule, false, baseMinFuel, d("200"), nil))
	})

	t.Run("UpliftBelowThreshold", func(t *testing.T) {
		assert.False(t, IsFeeWaived(rule, false, baseMinFuel, d("150"), nil))
	})

	t.Run("ZeroMultiplierNeverWaives", func(t *testing.T) {
		zeroed := rule
		zeroed.SimpleWaiverMultiplier = d("0")
		assert.False(t, IsFeeWaived(zeroed, false, baseMinFuel, d("10000"), nil))
	})

	t.Run("StrategyNoneNeverWaives", func(t *testing.T) {
		none := rule
		none.WaiverStrategy = models.WaiverStrategyNone
		assert.False(t, IsFeeWaived(none, false, baseMinFuel, d("10000"), nil))
	})
}

func TestSelectWinningTier(t *testing.T) {
	tierA := &models.WaiverTier{
		ID:                   1,
		Name:                 "Tier A",
		FuelUpliftMultiplier: d("1.0"),
		FeesWaivedCodes:      pq.StringArray{"RAMP"},
		TierPriority:         1,
	}
	tierB := &models.WaiverTier{
		ID:                   2,
		Name:                 "Tier B",
		FuelUpliftMultiplier: d("2.0"),
		FeesWaivedCodes:      pq.StringArray{"RAMP", "OVN"},
		TierPriority:         5,
	}
	caaTier := &models.WaiverTier{
		ID:                   3,
		Name:                 "CAA Tier",
		FuelUpliftMultiplier: d("1.0"),
		FeesWaivedCodes:      pq.StringArray{"RAMP", "OVN", "HGR"},
		TierPriority:         9,
		IsCAASpecificTier:    true,
	}
	tiers := []*models.WaiverTier{tierA, tierB, caaTier}
	baseMinFuel := d("100")

	t.Run("HighestPriorityMetTierWins", func(t *testing.T) {
		winner := SelectWinningTier(tiers, false, baseMinFuel, d("250"))
		require.NotNil(t, winner)
		assert.Equal(t, "Tier B", winner.Name)
		assert.True(t, winner.WaivesCode("OVN"))
	})

	t.Run("OnlyLowerTierMet", func(t *testing.T) {
		winner := SelectWinningTier(tiers, false, baseMinFuel, d("150"))
		require.NotNil(t, winner)
		assert.Equal(t, "Tier A", winner.Name)
	})

	t.Run("NoTierMet", func(t *testing.T) {
		assert.Nil(t, SelectWinningTier(tiers, false, baseMinFuel, d("50")))
	})

	t.Run("CAATierExcludedForNonMembers", func(t *testing.T) {
		winner := SelectWinningTier(tiers, false, baseMinFuel, d("300"))
		require.NotNil(t, winner)
		assert.Equal(t, "Tier B", winner.Name)
	})

	t.Run("CAATierAvailableToMembers", func(t *testing.T) {
		winner := SelectWinningTier(tiers, true, baseMinFuel, d("300"))
		require.NotNil(t, winner)
		assert.Equal(t, "CAA Tier", winner.Name)
	})

	t.Run("PriorityTieGoesToLowerID", func(t *testing.T) {
		twinA := &models.WaiverTier{ID: 4, Name: "Twin A", FuelUpliftMultiplier: d("1.0"), TierPriority: 3}
		twinB := &models.WaiverTier{ID: 5, Name: "Twin B", FuelUpliftMultiplier: d("1.0"), TierPriority: 3}
		winner := SelectWinningTier([]*models.WaiverTier{twinB, twinA}, false, baseMinFuel, d("150"))
		require.NotNil(t, winner)
		assert.Equal(t, uint(4), winner.ID)
	})
}

func TestTieredWaiver(t *testing.T) {
	rule := NewEffectiveFeeRule(testRampRule())
	rule.WaiverStrategy = models.WaiverStrategyTieredMultiplier
	baseMinFuel := d("100")

	tier := &models.WaiverTier{
		ID:                   1,
		Name:                 "Gold",
		FuelUpliftMultiplier: d("2.0"),
		FeesWaivedCodes:      pq.StringArray{"RAMP"},
		TierPriority:         1,
	}

	t.Run("CodeInWinningTierSet", func(t *testing.T) {
		assert.True(t, IsFeeWaived(rule, false, baseMinFuel, d("250"), tier))
	})

	t.Run("CodeNotInWinningTierSet", func(t *testing.T) {
		other := rule
		other.FeeCode = "HGR"
		assert.False(t, IsFeeWaived(other, false, baseMinFuel, d("250"), tier))
	})

	t.Run("NoWinningTier", func(t *testing.T) {
		assert.False(t, IsFeeWaived(rule, false, baseMinFuel, d("250"), nil))
	})
}
