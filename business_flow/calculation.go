package businessflow

import (
	"fmt"

	"github.com/fbopoint/feesched/models"
	"github.com/fbopoint/feesched/utils"
	"github.com/shopspring/decimal"
)

// LineItemType identifies the kind of a receipt line.
type LineItemType string

const (
	LineItemFuel   LineItemType = "FUEL"
	LineItemFee    LineItemType = "FEE"
	LineItemWaiver LineItemType = "WAIVER"
	LineItemTax    LineItemType = "TAX"
)

// WaiverSource identifies how a waiver line came to be.
type WaiverSource string

const (
	WaiverSourceAutomatic WaiverSource = "AUTOMATIC"
	WaiverSourceManual    WaiverSource = "MANUAL"
)

// AdditionalService is one requested add-on on the transaction.
type AdditionalService struct {
	FeeCode  string
	Quantity int64
}

// CalculationContext is the transient input to a fee calculation. The caller
// supplies the transaction data; the pipeline never fetches it.
type CalculationContext struct {
	AircraftTypeID     uint
	CustomerID         uint
	FuelUpliftGallons  decimal.Decimal
	FuelPricePerGallon decimal.Decimal
	AdditionalServices []AdditionalService

	// ManualWaiverCodes lists fee codes a CSR chose to waive by hand.
	// Only permitted for rules flagged as manually waivable.
	ManualWaiverCodes []string
}

// LineItem is one receipt-ready line of a calculation result.
type LineItem struct {
	Type         LineItemType    `json:"type"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Amount       decimal.Decimal `json:"amount"`
	FeeCode      string          `json:"fee_code,omitempty"`
	IsTaxable    bool            `json:"is_taxable"`
	WaiverSource WaiverSource    `json:"waiver_source,omitempty"`
}

// CalculationResult is the itemized output of the pipeline. The invariant
// GrandTotal == FuelSubtotal + TotalFees - TotalWaivers + TaxAmount holds
// exactly in fixed decimal arithmetic.
type CalculationResult struct {
	LineItems    []LineItem      `json:"line_items"`
	FuelSubtotal decimal.Decimal `json:"fuel_subtotal"`
	TotalFees    decimal.Decimal `json:"total_fees"`
	TotalWaivers decimal.Decimal `json:"total_waivers"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	IsCAAApplied bool            `json:"is_caa_applied"`
}

// RunCalculation executes the calculation pipeline over an in-memory fee
// schedule. Deterministic: the same schedule and context always produce the
// same result, in the same order.
func RunCalculation(schedule *FeeSchedule, aircraftType *models.AircraftType, customer *models.Customer, taxRate decimal.Decimal, input CalculationContext) (*CalculationResult, error) {
	if input.FuelUpliftGallons.Sign() < 0 || input.FuelPricePerGallon.Sign() < 0 {
		return nil, NewBusinessError("CALCULATION_FUEL_INVALID", "Fuel uplift and price must not be negative", ErrFuelQuantityInvalid)
	}

	isCAA := customer != nil && customer.IsCAAMember
	result := &CalculationResult{IsCAAApplied: isCAA}

	// Fuel line, always taxable
	fuelAmount := input.FuelUpliftGallons.Mul(input.FuelPricePerGallon).Round(utils.MoneyPrecision)
	result.LineItems = append(result.LineItems, LineItem{
		Type:        LineItemFuel,
		Description: "Fuel uplift",
		Quantity:    input.FuelUpliftGallons,
		UnitPrice:   input.FuelPricePerGallon,
		Amount:      fuelAmount,
		IsTaxable:   true,
	})
	result.FuelSubtotal = fuelAmount

	// Resolve and price each requested service. The catalogue defines what is
	// possible; the transaction defines what applies.
	type pricedFee struct {
		rule   EffectiveFeeRule
		amount decimal.Decimal
	}
	var fees []pricedFee
	for _, service := range input.AdditionalServices {
		rule, ok := schedule.Rules[service.FeeCode]
		if !ok {
			return nil, NewBusinessErrorf("CALCULATION_FEE_CODE_UNKNOWN", "No fee rule registered for fee code %q", ErrFeeRuleNotFound, service.FeeCode)
		}
		quantity := service.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if quantity < 0 {
			return nil, NewBusinessErrorf("CALCULATION_QUANTITY_INVALID", "Quantity for fee code %q must be at least 1", ErrServiceQuantityInvalid, service.FeeCode)
		}

		effective := ResolveEffectiveRule(rule, schedule.Overrides, aircraftType)
		unitPrice := effective.EffectiveAmount(isCAA)
		amount := unitPrice.Mul(decimal.NewFromInt(quantity)).Round(utils.MoneyPrecision)

		result.LineItems = append(result.LineItems, LineItem{
			Type:        LineItemFee,
			Description: effective.FeeName,
			Quantity:    decimal.NewFromInt(quantity),
			UnitPrice:   unitPrice,
			Amount:      amount,
			FeeCode:     effective.FeeCode,
			IsTaxable:   effective.IsTaxable,
		})
		result.TotalFees = result.TotalFees.Add(amount)
		fees = append(fees, pricedFee{rule: effective, amount: amount})
	}

	// Automatic waivers. The winning tier is selected once per transaction.
	baseMinFuel := decimal.Zero
	if aircraftType != nil {
		baseMinFuel = aircraftType.BaseMinFuelGallonsForWaiver
	}
	winningTier := SelectWinningTier(schedule.Tiers, isCAA, baseMinFuel, input.FuelUpliftGallons)

	autoWaived := make(map[string]bool)
	for _, fee := range fees {
		if !IsFeeWaived(fee.rule, isCAA, baseMinFuel, input.FuelUpliftGallons, winningTier) {
			continue
		}
		autoWaived[fee.rule.FeeCode] = true
		result.LineItems = append(result.LineItems, LineItem{
			Type:         LineItemWaiver,
			Description:  fmt.Sprintf("Waiver: %s", fee.rule.FeeName),
			Quantity:     decimal.NewFromInt(1),
			UnitPrice:    fee.amount.Neg(),
			Amount:       fee.amount.Neg(),
			FeeCode:      fee.rule.FeeCode,
			WaiverSource: WaiverSourceAutomatic,
		})
		result.TotalWaivers = result.TotalWaivers.Add(fee.amount)
	}

	// Manual waivers follow the same negative-offset pattern, tagged MANUAL.
	// Already auto-waived fees are skipped so a fee is never forgiven twice.
	for _, code := range input.ManualWaiverCodes {
		if autoWaived[code] {
			continue
		}
		var target *pricedFee
		for i := range fees {
			if fees[i].rule.FeeCode == code {
				target = &fees[i]
				break
			}
		}
		if target == nil {
			return nil, NewBusinessErrorf("CALCULATION_MANUAL_WAIVER_UNKNOWN", "Manual waiver requested for fee code %q not on the transaction", ErrFeeRuleNotFound, code)
		}
		if !target.rule.IsManuallyWaivable {
			return nil, NewBusinessErrorf("CALCULATION_MANUAL_WAIVER_FORBIDDEN", "Fee code %q does not permit manual waivers", ErrFeeNotManuallyWaivable, code)
		}
		result.LineItems = append(result.LineItems, LineItem{
			Type:         LineItemWaiver,
			Description:  fmt.Sprintf("Manual waiver: %s", target.rule.FeeName),
			Quantity:     decimal.NewFromInt(1),
			UnitPrice:    target.amount.Neg(),
			Amount:       target.amount.Neg(),
			FeeCode:      code,
			WaiverSource: WaiverSourceManual,
		})
		result.TotalWaivers = result.TotalWaivers.Add(target.amount)
	}

	// Flat tax on the taxable FUEL and FEE lines
	taxableBase := decimal.Zero
	for _, item := range result.LineItems {
		if (item.Type == LineItemFuel || item.Type == LineItemFee) && item.IsTaxable {
			taxableBase = taxableBase.Add(item.Amount)
		}
	}
	result.TaxAmount = taxableBase.Mul(taxRate).Round(utils.MoneyPrecision)
	if !result.TaxAmount.IsZero() {
		result.LineItems = append(result.LineItems, LineItem{
			Type:        LineItemTax,
			Description: fmt.Sprintf("Tax (%s%%)", taxRate.Mul(decimal.NewFromInt(100)).String()),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   result.TaxAmount,
			Amount:      result.TaxAmount,
		})
	}

	result.GrandTotal = result.FuelSubtotal.
		Add(result.TotalFees).
		Sub(result.TotalWaivers).
		Add(result.TaxAmount)

	if err := verifyTotals(result); err != nil {
		return nil, err
	}
	return result, nil
}

// verifyTotals re-derives the totals from the line items and checks the
// reconciliation invariant. A mismatch is an internal fault, never retried.
func verifyTotals(result *CalculationResult) error {
	fuel, fees, waivers, tax := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range result.LineItems {
		switch item.Type {
		case LineItemFuel:
			fuel = fuel.Add(item.Amount)
		case LineItemFee:
			fees = fees.Add(item.Amount)
		case LineItemWaiver:
			waivers = waivers.Add(item.Amount.Neg())
		case LineItemTax:
			tax = tax.Add(item.Amount)
		}
	}
	expected := fuel.Add(fees).Sub(waivers).Add(tax)
	if !expected.Equal(result.GrandTotal) ||
		!fuel.Equal(result.FuelSubtotal) ||
		!fees.Equal(result.TotalFees) ||
		!waivers.Equal(result.TotalWaivers) ||
		!tax.Equal(result.TaxAmount) {
		return NewBusinessError("CALCULATION_TOTALS_MISMATCH", "Calculation totals do not reconcile", ErrTotalsMismatch)
	}
	return nil
}
