package businessflow

import (
	"testing"

	"github.com/fbopoint/feesched/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() *ConfigurationSnapshot {
	return &ConfigurationSnapshot{
		Classifications: []SnapshotClassification{
			{ID: 1, Name: "Light Jet"},
			{ID: 2, Name: "Heavy Jet"},
		},
		AircraftTypes: []SnapshotAircraftType{
			{ID: 10, Name: "Citation CJ3", ClassificationID: 1, BaseMinFuelGallonsForWaiver: d("75")},
			{ID: 11, Name: "Gulfstream G550", ClassificationID: 2, BaseMinFuelGallonsForWaiver: d("300")},
		},
		FeeRules: []SnapshotFeeRule{
			{ID: 100, FeeCode: "RAMP", FeeName: "Ramp Fee", Amount: d("100.00"), Currency: "USD", IsTaxable: true, WaiverStrategy: models.WaiverStrategySimpleMultiplier, SimpleWaiverMultiplier: d("2.0")},
		},
		Overrides: []SnapshotOverride{
			{ID: 200, FeeRuleID: 100, ClassificationID: up(2), OverrideAmount: dp("150.00")},
		},
		WaiverTiers: []SnapshotWaiverTier{
			{ID: 300, Name: "Gold", FuelUpliftMultiplier: d("2.0"), FeesWaivedCodes: []string{"RAMP", "OVN"}, TierPriority: 5},
		},
	}
}

func TestDiffIdenticalSnapshots(t *testing.T) {
	changeset := DiffSnapshots(testSnapshot(), testSnapshot())
	assert.True(t, changeset.IsEmpty())
	assert.Equal(t, 0, changeset.TotalOperations())
}

func TestDiffCreateUpdateDelete(t *testing.T) {
	current := testSnapshot()
	target := testSnapshot()

	target.Classifications = append(target.Classifications, SnapshotClassification{ID: 3, Name: "Turboprop"})
	target.FeeRules[0].Amount = d("125.00")
	target.Overrides = nil

	changeset := DiffSnapshots(current, target)

	require.Len(t, changeset.Classifications.Create, 1)
	assert.Equal(t, "Turboprop", changeset.Classifications.Create[0].Name)

	require.Len(t, changeset.FeeRules.Update, 1)
	assert.True(t, changeset.FeeRules.Update[0].Amount.Equal(d("125.00")))

	require.Len(t, changeset.Overrides.Delete, 1)
	assert.Equal(t, uint(200), changeset.Overrides.Delete[0])

	assert.Empty(t, changeset.AircraftTypes.Create)
	assert.Empty(t, changeset.AircraftTypes.Update)
	assert.Empty(t, changeset.WaiverTiers.Delete)
}

func TestDiffEpsilonTolerance(t *testing.T) {
	current := testSnapshot()
	target := testSnapshot()

	t.Run("DriftWithinEpsilonIgnored", func(t *testing.T) {
		target.FeeRules[0].Amount = d("100.00005")
		changeset := DiffSnapshots(current, target)
		assert.True(t, changeset.IsEmpty())
	})

	t.Run("RealChangeDetected", func(t *testing.T) {
		target.FeeRules[0].Amount = d("100.01")
		changeset := DiffSnapshots(current, target)
		assert.Len(t, changeset.FeeRules.Update, 1)
	})
}

func TestDiffFeesWaivedCodesOrderIndependent(t *testing.T) {
	current := testSnapshot()
	target := testSnapshot()
	target.WaiverTiers[0].FeesWaivedCodes = []string{"OVN", "RAMP"}

	changeset := DiffSnapshots(current, target)
	assert.True(t, changeset.IsEmpty())

	target.WaiverTiers[0].FeesWaivedCodes = []string{"OVN"}
	changeset = DiffSnapshots(current, target)
	assert.Len(t, changeset.WaiverTiers.Update, 1)
}

func TestDiffNilAndZeroDistinct(t *testing.T) {
	current := testSnapshot()
	target := testSnapshot()

	t.Run("NilToZeroIsAChange", func(t *testing.T) {
		target.Overrides[0].OverrideCAAAmount = dp("0")
		changeset := DiffSnapshots(current, target)
		assert.Len(t, changeset.Overrides.Update, 1)
	})

	t.Run("NilToNilIsNoChange", func(t *testing.T) {
		target.Overrides[0].OverrideCAAAmount = nil
		changeset := DiffSnapshots(current, target)
		assert.True(t, changeset.IsEmpty())
	})

	t.Run("ValueToNilIsAChange", func(t *testing.T) {
		target.Overrides[0].OverrideAmount = nil
		changeset := DiffSnapshots(current, target)
		assert.Len(t, changeset.Overrides.Update, 1)
	})
}

func TestDiffOverrideTargetChange(t *testing.T) {
	current := testSnapshot()
	target := testSnapshot()
	target.Overrides[0].ClassificationID = nil
	target.Overrides[0].AircraftTypeID = up(11)

	changeset := DiffSnapshots(current, target)
	require.Len(t, changeset.Overrides.Update, 1)
	assert.Nil(t, changeset.Overrides.Update[0].ClassificationID)
}

func TestSnapshotValidate(t *testing.T) {
	t.Run("ValidSnapshot", func(t *testing.T) {
		require.NoError(t, testSnapshot().Validate())
	})

	t.Run("DuplicateID", func(t *testing.T) {
		snapshot := testSnapshot()
		snapshot.FeeRules = append(snapshot.FeeRules, snapshot.FeeRules[0])
		err := snapshot.Validate()
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("BothOverrideTargetsSet", func(t *testing.T) {
		snapshot := testSnapshot()
		snapshot.Overrides[0].AircraftTypeID = up(10)
		err := snapshot.Validate()
		require.Error(t, err)
		assert.True(t, IsOverrideTargetInvalid(err))
	})

	t.Run("NeitherOverrideTargetSet", func(t *testing.T) {
		snapshot := testSnapshot()
		snapshot.Overrides[0].ClassificationID = nil
		err := snapshot.Validate()
		require.Error(t, err)
		assert.True(t, IsOverrideTargetInvalid(err))
	})

	t.Run("UnknownWaiverStrategy", func(t *testing.T) {
		snapshot := testSnapshot()
		snapshot.FeeRules[0].WaiverStrategy = "SOMETIMES"
		err := snapshot.Validate()
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("MissingName", func(t *testing.T) {
		snapshot := testSnapshot()
		snapshot.Classifications[0].Name = ""
		err := snapshot.Validate()
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}
