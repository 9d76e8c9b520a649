package businessflow

import (
	"testing"

	"github.com/fbopoint/feesched/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func dp(value string) *decimal.Decimal {
	out := decimal.RequireFromString(value)
	return &out
}

func up(value uint) *uint {
	return &value
}

func testRampRule() *models.FeeRule {
	return &models.FeeRule{
		ID:                     1,
		FeeCode:                "RAMP",
		FeeName:                "Ramp Fee",
		Amount:                 d("100.00"),
		Currency:               "USD",
		IsTaxable:              true,
		WaiverStrategy:         models.WaiverStrategySimpleMultiplier,
		SimpleWaiverMultiplier: d("2.0"),
	}
}

func testJetType() *models.AircraftType {
	return &models.AircraftType{
		ID:                          10,
		Name:                        "Gulfstream G550",
		ClassificationID:            3,
		BaseMinFuelGallonsForWaiver: d("100"),
	}
}

func TestResolveEffectiveRule(t *testing.T) {
	rule := testRampRule()
	aircraftType := testJetType()

	classOverride := &models.FeeRuleOverride{
		ID:               20,
		FeeRuleID:        1,
		ClassificationID: up(3),
		OverrideAmount:   dp("80.00"),
	}
	aircraftOverride := &models.FeeRuleOverride{
		ID:             21,
		FeeRuleID:      1,
		AircraftTypeID: up(10),
		OverrideAmount: dp("60.00"),
	}

	t.Run("NoOverrides", func(t *testing.T) {
		effective := ResolveEffectiveRule(rule, nil, aircraftType)
		assert.True(t, effective.Amount.Equal(d("100.00")))
		assert.Nil(t, effective.AppliedOverrideID)
	})

	t.Run("ClassificationOverride", func(t *testing.T) {
		effective := ResolveEffectiveRule(rule, []*models.FeeRuleOverride{classOverride}, aircraftType)
		assert.True(t, effective.Amount.Equal(d("80.00")))
		require.NotNil(t, effective.AppliedOverrideID)
		assert.Equal(t, uint(20), *effective.AppliedOverrideID)
	})

	t.Run("AircraftOverrideBeatsClassification", func(t *testing.T) {
		for _, overrides := range [][]*models.FeeRuleOverride{
			{classOverride, aircraftOverride},
			{aircraftOverride, classOverride},
		} {
			effective := ResolveEffectiveRule(rule, overrides, aircraftType)
			assert.True(t, effective.Amount.Equal(d("60.00")))
			require.NotNil(t, effective.AppliedOverrideID)
			assert.Equal(t, uint(21), *effective.AppliedOverrideID)
		}
	})

	t.Run("OverrideForDifferentRuleIgnored", func(t *testing.T) {
		other := &models.FeeRuleOverride{
			ID:             22,
			FeeRuleID:      99,
			AircraftTypeID: up(10),
			OverrideAmount: dp("1.00"),
		}
		effective := ResolveEffectiveRule(rule, []*models.FeeRuleOverride{other}, aircraftType)
		assert.True(t, effective.Amount.Equal(d("100.00")))
	})

	t.Run("OverrideForDifferentTargetIgnored", func(t *testing.T) {
		other := &models.FeeRuleOverride{
			ID:               23,
			FeeRuleID:        1,
			ClassificationID: up(7),
			OverrideAmount:   dp("1.00"),
		}
		effective := ResolveEffectiveRule(rule, []*models.FeeRuleOverride{other}, aircraftType)
		assert.True(t, effective.Amount.Equal(d("100.00")))
	})

	t.Run("UnsetFieldsFallThrough", func(t *testing.T) {
		caaOnly := &models.FeeRuleOverride{
			ID:                24,
			FeeRuleID:         1,
			AircraftTypeID:    up(10),
			OverrideCAAAmount: dp("45.00"),
		}
		effective := ResolveEffectiveRule(rule, []*models.FeeRuleOverride{caaOnly}, aircraftType)
		assert.True(t, effective.Amount.Equal(d("100.00")))
		assert.True(t, effective.HasCAAOverride)
		require.NotNil(t, effective.CAAAmount)
		assert.True(t, effective.CAAAmount.Equal(d("45.00")))
	})

	t.Run("NilAircraftTypeReturnsBase", func(t *testing.T) {
		effective := ResolveEffectiveRule(rule, []*models.FeeRuleOverride{classOverride, aircraftOverride}, nil)
		assert.True(t, effective.Amount.Equal(d("100.00")))
		assert.Nil(t, effective.AppliedOverrideID)
	})

	t.Run("BaseRuleNotMutated", func(t *testing.T) {
		ResolveEffectiveRule(rule, []*models.FeeRuleOverride{aircraftOverride}, aircraftType)
		assert.True(t, rule.Amount.Equal(d("100.00")))
	})
}

func TestEffectiveAmountCAA(t *testing.T) {
	rule := testRampRule()
	rule.HasCAAOverride = true
	rule.CAAOverrideAmount = dp("70.00")

	effective := NewEffectiveFeeRule(rule)
	assert.True(t, effective.EffectiveAmount(false).Equal(d("100.00")))
	assert.True(t, effective.EffectiveAmount(true).Equal(d("70.00")))

	t.Run("MemberWithoutCAAOverridePaysBase", func(t *testing.T) {
		plain := NewEffectiveFeeRule(testRampRule())
		assert.True(t, plain.EffectiveAmount(true).Equal(d("100.00")))
	})
}

func TestEffectiveWaiverStrategyCAA(t *testing.T) {
	rule := testRampRule()
	tiered := models.WaiverStrategyTieredMultiplier
	rule.CAAWaiverStrategyOverride = &tiered
	rule.CAASimpleWaiverMultiplierOverride = dp("1.5")

	effective := NewEffectiveFeeRule(rule)
	assert.Equal(t, models.WaiverStrategySimpleMultiplier, effective.EffectiveWaiverStrategy(false))
	assert.Equal(t, models.WaiverStrategyTieredMultiplier, effective.EffectiveWaiverStrategy(true))
	assert.True(t, effective.EffectiveSimpleMultiplier(false).Equal(d("2.0")))
	assert.True(t, effective.EffectiveSimpleMultiplier(true).Equal(d("1.5")))
}
