package businessflow

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
)

// Older exports used different collection and field names. The transform
// normalizes those before strict decoding so current and legacy documents
// import through the same path.
var legacyCollectionNames = map[string]string{
	"aircraft_classifications": "classifications",
	"fee_rule_overrides":       "overrides",
	"fuel_waiver_tiers":        "waiver_tiers",
}

var legacyFieldNames = map[string]map[string]string{
	"classifications": {
		"classification_name": "name",
	},
	"aircraft_types": {
		"type_name":                   "name",
		"aircraft_classification_id":  "classification_id",
		"min_fuel_gallons_for_waiver": "base_min_fuel_gallons_for_waiver",
	},
	"fee_rules": {
		"code":          "fee_code",
		"rule_name":     "fee_name",
		"base_amount":   "amount",
		"caa_amount":    "caa_override_amount",
		"taxable":       "is_taxable",
		"manual_waiver": "is_manually_waivable",
		"waiver_type":   "waiver_strategy",
	},
	"overrides": {
		"rule_id":                    "fee_rule_id",
		"aircraft_classification_id": "classification_id",
		"amount":                     "override_amount",
		"caa_amount":                 "override_caa_amount",
	},
	"waiver_tiers": {
		"tier_name":        "name",
		"priority":         "tier_priority",
		"multiplier":       "fuel_uplift_multiplier",
		"waived_fee_codes": "fees_waived_codes",
		"caa_specific":     "is_caa_specific_tier",
	},
}

// TransformReport records everything the legacy transform changed so the
// caller can surface it alongside the import result.
type TransformReport struct {
	CollectionRenames int      `json:"collection_renames"`
	FieldRenames      int      `json:"field_renames"`
	Repairs           []string `json:"repairs,omitempty"`
}

// TransformLegacyDocument normalizes a raw snapshot document into the
// current format and repairs dangling references. The input is a parsed
// JSON object; the output is a strict snapshot ready for Validate and diff.
func TransformLegacyDocument(raw map[string]any) (*ConfigurationSnapshot, *TransformReport, error) {
	report := &TransformReport{}

	for legacy, current := range legacyCollectionNames {
		if value, ok := raw[legacy]; ok {
			if _, exists := raw[current]; !exists {
				raw[current] = value
				report.CollectionRenames++
			}
			delete(raw, legacy)
		}
	}

	for collection, renames := range legacyFieldNames {
		records, ok := raw[collection].([]any)
		if !ok {
			continue
		}
		for _, entry := range records {
			record, ok := entry.(map[string]any)
			if !ok {
				return nil, nil, NewBusinessErrorf("SNAPSHOT_MALFORMED", "Collection %q contains a non-object record", ErrSnapshotMalformed, collection)
			}
			for legacy, current := range renames {
				if value, ok := record[legacy]; ok {
					if _, exists := record[current]; !exists {
						record[current] = value
						report.FieldRenames++
					}
					delete(record, legacy)
				}
			}
		}
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, NewBusinessError("SNAPSHOT_MALFORMED", "Snapshot document could not be re-encoded", ErrSnapshotMalformed)
	}
	snapshot := &ConfigurationSnapshot{}
	if err := json.Unmarshal(encoded, snapshot); err != nil {
		return nil, nil, NewBusinessErrorf("SNAPSHOT_MALFORMED", "Snapshot document does not match the expected shape: %v", ErrSnapshotMalformed, err)
	}

	if err := RepairDanglingReferences(snapshot, report); err != nil {
		return nil, nil, err
	}

	return snapshot, report, nil
}

// RepairDanglingReferences remaps references to missing entities onto the
// lowest-id surviving record of the referenced collection, logging each
// repair. A reference with no surviving fallback is a data-integrity error.
func RepairDanglingReferences(snapshot *ConfigurationSnapshot, report *TransformReport) error {
	classificationIDs := make(map[uint]bool, len(snapshot.Classifications))
	for _, c := range snapshot.Classifications {
		classificationIDs[c.ID] = true
	}
	aircraftTypeIDs := make(map[uint]bool, len(snapshot.AircraftTypes))
	for _, at := range snapshot.AircraftTypes {
		aircraftTypeIDs[at.ID] = true
	}
	feeRuleIDs := make(map[uint]bool, len(snapshot.FeeRules))
	for _, fr := range snapshot.FeeRules {
		feeRuleIDs[fr.ID] = true
	}

	fallbackClassification := lowestID(classificationIDs)
	fallbackAircraftType := lowestID(aircraftTypeIDs)
	fallbackFeeRule := lowestID(feeRuleIDs)

	for i := range snapshot.AircraftTypes {
		at := &snapshot.AircraftTypes[i]
		if classificationIDs[at.ClassificationID] {
			continue
		}
		if fallbackClassification == 0 {
			return NewBusinessErrorf("SNAPSHOT_DANGLING_REFERENCE", "Aircraft type %q references missing classification %d and no fallback exists", ErrDanglingReference, at.Name, at.ClassificationID)
		}
		repair := fmt.Sprintf("aircraft type %q: classification %d -> %d", at.Name, at.ClassificationID, fallbackClassification)
		log.Printf("snapshot repair: %s", repair)
		report.Repairs = append(report.Repairs, repair)
		at.ClassificationID = fallbackClassification
	}

	for i := range snapshot.Overrides {
		o := &snapshot.Overrides[i]
		if !feeRuleIDs[o.FeeRuleID] {
			if fallbackFeeRule == 0 {
				return NewBusinessErrorf("SNAPSHOT_DANGLING_REFERENCE", "Override %d references missing fee rule %d and no fallback exists", ErrDanglingReference, o.ID, o.FeeRuleID)
			}
			repair := fmt.Sprintf("override %d: fee rule %d -> %d", o.ID, o.FeeRuleID, fallbackFeeRule)
			log.Printf("snapshot repair: %s", repair)
			report.Repairs = append(report.Repairs, repair)
			o.FeeRuleID = fallbackFeeRule
		}
		if o.ClassificationID != nil && !classificationIDs[*o.ClassificationID] {
			if fallbackClassification == 0 {
				return NewBusinessErrorf("SNAPSHOT_DANGLING_REFERENCE", "Override %d references missing classification %d and no fallback exists", ErrDanglingReference, o.ID, *o.ClassificationID)
			}
			repair := fmt.Sprintf("override %d: classification %d -> %d", o.ID, *o.ClassificationID, fallbackClassification)
			log.Printf("snapshot repair: %s", repair)
			report.Repairs = append(report.Repairs, repair)
			o.ClassificationID = &fallbackClassification
		}
		if o.AircraftTypeID != nil && !aircraftTypeIDs[*o.AircraftTypeID] {
			if fallbackAircraftType == 0 {
				return NewBusinessErrorf("SNAPSHOT_DANGLING_REFERENCE", "Override %d references missing aircraft type %d and no fallback exists", ErrDanglingReference, o.ID, *o.AircraftTypeID)
			}
			repair := fmt.Sprintf("override %d: aircraft type %d -> %d", o.ID, *o.AircraftTypeID, fallbackAircraftType)
			log.Printf("snapshot repair: %s", repair)
			report.Repairs = append(report.Repairs, repair)
			o.AircraftTypeID = &fallbackAircraftType
		}
	}

	return nil
}

func lowestID(ids map[uint]bool) uint {
	if len(ids) == 0 {
		return 0
	}
	sorted := make([]uint, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[0]
}
