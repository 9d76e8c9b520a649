package businessflow

import (
	"testing"

	"github.com/fbopoint/feesched/models"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchedule() *FeeSchedule {
	ramp := testRampRule()
	overnight := &models.FeeRule{
		ID:                 2,
		FeeCode:            "OVN",
		FeeName:            "Overnight Fee",
		Amount:             d("50.00"),
		Currency:           "USD",
		IsTaxable:          false,
		IsManuallyWaivable: true,
		WaiverStrategy:     models.WaiverStrategyNone,
	}
	hangar := &models.FeeRule{
		ID:                3,
		FeeCode:           "HGR",
		FeeName:           "Hangar Fee",
		Amount:            d("200.00"),
		Currency:          "USD",
		IsTaxable:         true,
		WaiverStrategy:    models.WaiverStrategyTieredMultiplier,
		HasCAAOverride:    true,
		CAAOverrideAmount: dp("120.00"),
	}
	return &FeeSchedule{
		Rules: map[string]*models.FeeRule{
			"RAMP": ramp,
			"OVN":  overnight,
			"HGR":  hangar,
		},
		Tiers: []*models.WaiverTier{
			{
				ID:                   1,
				Name:                 "Gold",
				FuelUpliftMultiplier: d("3.0"),
				FeesWaivedCodes:      pq.StringArray{"HGR"},
				TierPriority:         1,
			},
		},
	}
}

func assertTotalsInvariant(t *testing.T, result *CalculationResult) {
	t.Helper()
	expected := result.FuelSubtotal.Add(result.TotalFees).Sub(result.TotalWaivers).Add(result.TaxAmount)
	assert.True(t, result.GrandTotal.Equal(expected),
		"grand total %s != %s", result.GrandTotal, expected)
}

func lineOfType(result *CalculationResult, lineType LineItemType, feeCode string) *LineItem {
	for i := range result.LineItems {
		item := &result.LineItems[i]
		if item.Type == lineType && item.FeeCode == feeCode {
			return item
		}
	}
	return nil
}

func TestRunCalculationFuelOnly(t *testing.T) {
	result, err := RunCalculation(testSchedule(), testJetType(), nil, d("0.08"), CalculationContext{
		FuelUpliftGallons:  d("100"),
		FuelPricePerGallon: d("5.00"),
	})
	require.NoError(t, err)

	assert.Len(t, result.LineItems, 2)
	assert.True(t, result.FuelSubtotal.Equal(d("500.00")))
	assert.True(t, result.TaxAmount.Equal(d("40.00")))
	assert.True(t, result.GrandTotal.Equal(d("540.00")))
	assertTotalsInvariant(t, result)
}

func TestRunCalculationFeeAndWaiverPair(t *testing.T) {
	result, err := RunCalculation(testSchedule(), testJetType(), nil, d("0.08"), CalculationContext{
		FuelUpliftGallons:  d("500"),
		FuelPricePerGallon: d("2.00"),
		AdditionalServices: []AdditionalService{{FeeCode: "RAMP"}},
	})
	require.NoError(t, err)

	fee := lineOfType(result, LineItemFee, "RAMP")
	require.NotNil(t, fee, "waived fee must still appear at full price")
	assert.True(t, fee.Amount.Equal(d("100.00")))

	waiver := lineOfType(result, LineItemWaiver, "RAMP")
	require.NotNil(t, waiver)
	assert.True(t, waiver.Amount.Equal(d("-100.00")))
	assert.Equal(t, WaiverSourceAutomatic, waiver.WaiverSource)

	assert.True(t, result.FuelSubtotal.Equal(d("1000.00")))
	assert.True(t, result.TotalFees.Equal(d("100.00")))
	assert.True(t, result.TotalWaivers.Equal(d("100.00")))
	assert.True(t, result.TaxAmount.Equal(d("88.00")))
	assert.True(t, result.GrandTotal.Equal(d("1088.00")))
	assertTotalsInvariant(t, result)
}

func TestRunCalculationTieredWaiver(t *testing.T) {
	t.Run("TierMet", func(t *testing.T) {
		result, err := RunCalculation(testSchedule(), testJetType(), nil, d("0.08"), CalculationContext{
			FuelUpliftGallons:  d("300"),
			FuelPricePerGallon: d("2.00"),
			AdditionalServices: []AdditionalService{{FeeCode: "HGR"}},
		})
		require.NoError(t, err)
		require.NotNil(t, lineOfType(result, LineItemWaiver, "HGR"))
		assertTotalsInvariant(t, result)
	})

	t.Run("TierNotMet", func(t *testing.T) {
		result, err := RunCalculation(testSchedule(), testJetType(), nil, d("0.08"), CalculationContext{
			FuelUpliftGallons:  d("200"),
			FuelPricePerGallon: d("2.00"),
			AdditionalServices: []AdditionalService{{FeeCode: "HGR"}},
		})
		require.NoError(t, err)
		assert.Nil(t, lineOfType(result, LineItemWaiver, "HGR"))
		assertTotalsInvariant(t, result)
	})
}

func TestRunCalculationCAAPricing(t *testing.T) {
	member := &models.Customer{ID: 1, Name: "Acme Air", IsCAAMember: true}
	result, err := RunCalculation(testSchedule(), testJetType(), member, d("0.08"), CalculationContext{
		FuelUpliftGallons:  d("100"),
		FuelPricePerGallon: d("2.00"),
		AdditionalServices: []AdditionalService{{FeeCode: "HGR"}},
	})
	require.NoError(t, err)

	assert.True(t, result.IsCAAApplied)
	fee := lineOfType(result, LineItemFee, "HGR")
	require.NotNil(t, fee)
	assert.True(t, fee.Amount.Equal(d("120.00")))
	assertTotalsInvariant(t, result)
}

func TestRunCalculationQuantity(t *testing.T) {
	t.Run("DefaultsToOne", func(t *testing.T) {
		result, err := RunCalculation(testSchedule(), testJetType(), nil, decimal.Zero, CalculationContext{
			FuelPricePerGallon: d("2.00"),
			AdditionalServices: []AdditionalService{{FeeCode: "OVN"}},
		})
		require.NoError(t, err)
		assert.True(t, result.TotalFees.Equal(d("50.00")))
	})

	t.Run("Multiplies", func(t *testing.T) {
		result, err := RunCalculation(testSchedule(), testJetType(), nil, decimal.Zero, CalculationContext{
			FuelPricePerGallon: d("2.00"),
			AdditionalServices: []AdditionalService{{FeeCode: "OVN", Quantity: 3}},
		})
		require.NoError(t, err)
		assert.True(t, result.TotalFees.Equal(d("150.00")))
	})

	t.Run("NegativeRejected", func(t *testing.T) {
		_, err := RunCalculation(testSchedule(), testJetType(), nil, decimal.Zero, CalculationContext{
			AdditionalServices: []AdditionalService{{FeeCode: "OVN", Quantity: -1}},
		})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}

func TestRunCalculationUnknownFeeCode(t *testing.T) {
	_, err := RunCalculation(testSchedule(), testJetType(), nil, decimal.Zero, CalculationContext{
		AdditionalServices: []AdditionalService{{FeeCode: "NOPE"}},
	})
	require.Error(t, err)
	assert.True(t, IsFeeRuleNotFound(err))
}

func TestRunCalculationManualWaiver(t *testing.T) {
	t.Run("WaivableFee", func(t *testing.T) {
		result, err := RunCalculation(testSchedule(), testJetType(), nil, d("0.08"), CalculationContext{
			FuelUpliftGallons:  d("100"),
			FuelPricePerGallon: d("2.00"),
			AdditionalServices: []AdditionalService{{FeeCode: "OVN"}},
			ManualWaiverCodes:  []string{"OVN"},
		})
		require.NoError(t, err)
		waiver := lineOfType(result, LineItemWaiver, "OVN")
		require.NotNil(t, waiver)
		assert.Equal(t, WaiverSourceManual, waiver.WaiverSource)
		assertTotalsInvariant(t, result)
	})

	t.Run("NonWaivableFeeRejected", func(t *testing.T) {
		_, err := RunCalculation(testSchedule(), testJetType(), nil, d("0.08"), CalculationContext{
			FuelUpliftGallons:  d("100"),
			FuelPricePerGallon: d("2.00"),
			AdditionalServices: []AdditionalService{{FeeCode: "RAMP"}},
			ManualWaiverCodes:  []string{"RAMP"},
		})
		require.Error(t, err)
		assert.True(t, IsFeeNotManuallyWaivable(err))
	})

	t.Run("AlreadyAutoWaivedSkipped", func(t *testing.T) {
		schedule := testSchedule()
		schedule.Rules["RAMP"].IsManuallyWaivable = true
		result, err := RunCalculation(schedule, testJetType(), nil, d("0.08"), CalculationContext{
			FuelUpliftGallons:  d("500"),
			FuelPricePerGallon: d("2.00"),
			AdditionalServices: []AdditionalService{{FeeCode: "RAMP"}},
			ManualWaiverCodes:  []string{"RAMP"},
		})
		require.NoError(t, err)

		waiverCount := 0
		for _, item := range result.LineItems {
			if item.Type == LineItemWaiver && item.FeeCode == "RAMP" {
				waiverCount++
			}
		}
		assert.Equal(t, 1, waiverCount, "a fee must never be forgiven twice")
		assertTotalsInvariant(t, result)
	})
}

func TestRunCalculationNegativeFuelRejected(t *testing.T) {
	_, err := RunCalculation(testSchedule(), testJetType(), nil, decimal.Zero, CalculationContext{
		FuelUpliftGallons:  d("-1"),
		FuelPricePerGallon: d("2.00"),
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestRunCalculationDeterministic(t *testing.T) {
	input := CalculationContext{
		FuelUpliftGallons:  d("500"),
		FuelPricePerGallon: d("2.00"),
		AdditionalServices: []AdditionalService{{FeeCode: "RAMP"}, {FeeCode: "OVN"}, {FeeCode: "HGR"}},
	}
	first, err := RunCalculation(testSchedule(), testJetType(), nil, d("0.08"), input)
	require.NoError(t, err)
	second, err := RunCalculation(testSchedule(), testJetType(), nil, d("0.08"), input)
	require.NoError(t, err)

	require.Equal(t, len(first.LineItems), len(second.LineItems))
	for i := range first.LineItems {
		assert.Equal(t, first.LineItems[i].Type, second.LineItems[i].Type)
		assert.True(t, first.LineItems[i].Amount.Equal(second.LineItems[i].Amount))
	}
	assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
}
