package businessflow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportScheduleWorkbook renders a configuration snapshot as an Excel
// workbook, one sheet per entity collection. Returns the suggested filename
// and the file bytes.
func ExportScheduleWorkbook(snapshot *ConfigurationSnapshot) (string, []byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	classificationNames := make(map[uint]string, len(snapshot.Classifications))
	for _, c := range snapshot.Classifications {
		classificationNames[c.ID] = c.Name
	}
	aircraftTypeNames := make(map[uint]string, len(snapshot.AircraftTypes))
	for _, at := range snapshot.AircraftTypes {
		aircraftTypeNames[at.ID] = at.Name
	}
	feeCodes := make(map[uint]string, len(snapshot.FeeRules))
	for _, fr := range snapshot.FeeRules {
		feeCodes[fr.ID] = fr.FeeCode
	}

	sheets := []string{"Fee Rules", "Overrides", "Waiver Tiers", "Aircraft Types", "Classifications"}
	xl.SetSheetName(xl.GetSheetName(0), sheets[0])
	for _, name := range sheets[1:] {
		_, _ = xl.NewSheet(name)
	}

	header := []string{"id", "fee_code", "fee_name", "amount", "currency", "is_taxable", "is_manually_waivable", "waiver_strategy", "simple_waiver_multiplier", "has_caa_override", "caa_override_amount", "caa_waiver_strategy_override", "caa_simple_waiver_multiplier_override"}
	_ = xl.SetSheetRow("Fee Rules", "A1", &header)
	for ri, fr := range snapshot.FeeRules {
		caaAmount := ""
		if fr.CAAOverrideAmount != nil {
			caaAmount = fr.CAAOverrideAmount.String()
		}
		caaStrategy := ""
		if fr.CAAWaiverStrategyOverride != nil {
			caaStrategy = string(*fr.CAAWaiverStrategyOverride)
		}
		caaMultiplier := ""
		if fr.CAASimpleWaiverMultiplierOverride != nil {
			caaMultiplier = fr.CAASimpleWaiverMultiplierOverride.String()
		}
		row := []any{
			fr.ID, fr.FeeCode, fr.FeeName, fr.Amount.String(), fr.Currency,
			fr.IsTaxable, fr.IsManuallyWaivable, string(fr.WaiverStrategy),
			fr.SimpleWaiverMultiplier.String(), fr.HasCAAOverride,
			caaAmount, caaStrategy, caaMultiplier,
		}
		_ = xl.SetSheetRow("Fee Rules", fmt.Sprintf("A%d", ri+2), &row)
	}

	header = []string{"id", "fee_code", "target_type", "target_name", "override_amount", "override_caa_amount"}
	_ = xl.SetSheetRow("Overrides", "A1", &header)
	for ri, o := range snapshot.Overrides {
		targetType, targetName := "", ""
		if o.ClassificationID != nil {
			targetType = "classification"
			targetName = classificationNames[*o.ClassificationID]
		}
		if o.AircraftTypeID != nil {
			targetType = "aircraft_type"
			targetName = aircraftTypeNames[*o.AircraftTypeID]
		}
		amount := ""
		if o.OverrideAmount != nil {
			amount = o.OverrideAmount.String()
		}
		caaAmount := ""
		if o.OverrideCAAAmount != nil {
			caaAmount = o.OverrideCAAAmount.String()
		}
		row := []any{o.ID, feeCodes[o.FeeRuleID], targetType, targetName, amount, caaAmount}
		_ = xl.SetSheetRow("Overrides", fmt.Sprintf("A%d", ri+2), &row)
	}

	header = []string{"id", "name", "fuel_uplift_multiplier", "fees_waived_codes", "tier_priority", "is_caa_specific_tier"}
	_ = xl.SetSheetRow("Waiver Tiers", "A1", &header)
	for ri, wt := range snapshot.WaiverTiers {
		row := []any{
			wt.ID, wt.Name, wt.FuelUpliftMultiplier.String(),
			strings.Join(wt.FeesWaivedCodes, ", "),
			strconv.Itoa(wt.TierPriority), wt.IsCAASpecificTier,
		}
		_ = xl.SetSheetRow("Waiver Tiers", fmt.Sprintf("A%d", ri+2), &row)
	}

	header = []string{"id", "name", "classification", "base_min_fuel_gallons_for_waiver"}
	_ = xl.SetSheetRow("Aircraft Types", "A1", &header)
	for ri, at := range snapshot.AircraftTypes {
		row := []any{at.ID, at.Name, classificationNames[at.ClassificationID], at.BaseMinFuelGallonsForWaiver.String()}
		_ = xl.SetSheetRow("Aircraft Types", fmt.Sprintf("A%d", ri+2), &row)
	}

	header = []string{"id", "name"}
	_ = xl.SetSheetRow("Classifications", "A1", &header)
	for ri, c := range snapshot.Classifications {
		row := []any{c.ID, c.Name}
		_ = xl.SetSheetRow("Classifications", fmt.Sprintf("A%d", ri+2), &row)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	return "fee_schedule.xlsx", buf.Bytes(), nil
}
