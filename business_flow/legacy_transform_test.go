package businessflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeDocument(t *testing.T, doc string) map[string]any {
	t.Helper()
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &raw))
	return raw
}

func TestTransformLegacyDocumentRenames(t *testing.T) {
	raw := decodeDocument(t, `{
		"aircraft_classifications": [{"id": 1, "classification_name": "Light Jet"}],
		"aircraft_types": [{"id": 10, "type_name": "Citation CJ3", "aircraft_classification_id": 1, "min_fuel_gallons_for_waiver": "75"}],
		"fee_rules": [{"id": 100, "code": "RAMP", "rule_name": "Ramp Fee", "base_amount": "100.00", "currency": "USD", "taxable": true, "waiver_type": "SIMPLE_MULTIPLIER", "simple_waiver_multiplier": "2.0"}],
		"fee_rule_overrides": [{"id": 200, "rule_id": 100, "aircraft_classification_id": 1, "amount": "80.00"}],
		"fuel_waiver_tiers": [{"id": 300, "tier_name": "Gold", "multiplier": "2.0", "waived_fee_codes": ["RAMP"], "priority": 5}]
	}`)

	snapshot, report, err := TransformLegacyDocument(raw)
	require.NoError(t, err)

	assert.Equal(t, 3, report.CollectionRenames)
	assert.NotZero(t, report.FieldRenames)
	assert.Empty(t, report.Repairs)

	require.Len(t, snapshot.Classifications, 1)
	assert.Equal(t, "Light Jet", snapshot.Classifications[0].Name)

	require.Len(t, snapshot.AircraftTypes, 1)
	assert.Equal(t, "Citation CJ3", snapshot.AircraftTypes[0].Name)
	assert.True(t, snapshot.AircraftTypes[0].BaseMinFuelGallonsForWaiver.Equal(d("75")))

	require.Len(t, snapshot.FeeRules, 1)
	assert.Equal(t, "RAMP", snapshot.FeeRules[0].FeeCode)
	assert.True(t, snapshot.FeeRules[0].Amount.Equal(d("100.00")))
	assert.True(t, snapshot.FeeRules[0].IsTaxable)

	require.Len(t, snapshot.Overrides, 1)
	assert.Equal(t, uint(100), snapshot.Overrides[0].FeeRuleID)
	require.NotNil(t, snapshot.Overrides[0].ClassificationID)
	assert.Equal(t, uint(1), *snapshot.Overrides[0].ClassificationID)

	require.Len(t, snapshot.WaiverTiers, 1)
	assert.Equal(t, "Gold", snapshot.WaiverTiers[0].Name)
	assert.Equal(t, 5, snapshot.WaiverTiers[0].TierPriority)

	require.NoError(t, snapshot.Validate())
}

func TestTransformCurrentDocumentPassesThrough(t *testing.T) {
	raw := decodeDocument(t, `{
		"classifications": [{"id": 1, "name": "Light Jet"}],
		"aircraft_types": [{"id": 10, "name": "Citation CJ3", "classification_id": 1, "base_min_fuel_gallons_for_waiver": "75"}],
		"fee_rules": [],
		"overrides": [],
		"waiver_tiers": []
	}`)

	snapshot, report, err := TransformLegacyDocument(raw)
	require.NoError(t, err)
	assert.Equal(t, 0, report.CollectionRenames)
	assert.Equal(t, 0, report.FieldRenames)
	require.Len(t, snapshot.AircraftTypes, 1)
}

func TestRepairDanglingReferences(t *testing.T) {
	t.Run("RemapsToFallback", func(t *testing.T) {
		snapshot := testSnapshot()
		snapshot.AircraftTypes[0].ClassificationID = 99
		snapshot.Overrides[0].ClassificationID = up(98)

		report := &TransformReport{}
		require.NoError(t, RepairDanglingReferences(snapshot, report))

		assert.Equal(t, uint(1), snapshot.AircraftTypes[0].ClassificationID)
		assert.Equal(t, uint(1), *snapshot.Overrides[0].ClassificationID)
		assert.Len(t, report.Repairs, 2)
	})

	t.Run("DanglingFeeRuleRemapped", func(t *testing.T) {
		snapshot := testSnapshot()
		snapshot.Overrides[0].FeeRuleID = 999

		report := &TransformReport{}
		require.NoError(t, RepairDanglingReferences(snapshot, report))
		assert.Equal(t, uint(100), snapshot.Overrides[0].FeeRuleID)
		assert.Len(t, report.Repairs, 1)
	})

	t.Run("NoFallbackFails", func(t *testing.T) {
		snapshot := testSnapshot()
		snapshot.FeeRules = nil

		err := RepairDanglingReferences(snapshot, &TransformReport{})
		require.Error(t, err)
		assert.True(t, IsDanglingReference(err))
	})

	t.Run("IntactReferencesUntouched", func(t *testing.T) {
		snapshot := testSnapshot()
		report := &TransformReport{}
		require.NoError(t, RepairDanglingReferences(snapshot, report))
		assert.Empty(t, report.Repairs)
	})
}

func TestTransformMalformedDocument(t *testing.T) {
	raw := decodeDocument(t, `{"fee_rules": ["not an object"]}`)
	_, _, err := TransformLegacyDocument(raw)
	require.Error(t, err)
	assert.True(t, IsSnapshotMalformed(err))
}
