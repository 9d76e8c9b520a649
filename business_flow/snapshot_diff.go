package businessflow

import (
	"github.com/fbopoint/feesched/models"
	"github.com/shopspring/decimal"
)

// diffEpsilon is the absolute tolerance for numeric comparison during
// diffing. Values closer than this are treated as equal so that rounding
// noise from serialization round trips does not produce phantom updates.
var diffEpsilon = decimal.RequireFromString("0.0001")

// EntityChanges holds the per-entity mutations needed to transform the
// current configuration into the desired one. Update records carry the
// desired state; Delete carries ids only.
type EntityChanges[T any] struct {
	Create []T
	Update []T
	Delete []uint
}

func (ec EntityChanges[T]) IsEmpty() bool {
	return len(ec.Create) == 0 && len(ec.Update) == 0 && len(ec.Delete) == 0
}

// Changeset is the full plan produced by DiffSnapshots.
type Changeset struct {
	Classifications EntityChanges[SnapshotClassification]
	AircraftTypes   EntityChanges[SnapshotAircraftType]
	FeeRules        EntityChanges[SnapshotFeeRule]
	Overrides       EntityChanges[SnapshotOverride]
	WaiverTiers     EntityChanges[SnapshotWaiverTier]
}

func (c *Changeset) IsEmpty() bool {
	return c.Classifications.IsEmpty() &&
		c.AircraftTypes.IsEmpty() &&
		c.FeeRules.IsEmpty() &&
		c.Overrides.IsEmpty() &&
		c.WaiverTiers.IsEmpty()
}

// TotalOperations counts every planned create, update, and delete.
func (c *Changeset) TotalOperations() int {
	total := 0
	total += len(c.Classifications.Create) + len(c.Classifications.Update) + len(c.Classifications.Delete)
	total += len(c.AircraftTypes.Create) + len(c.AircraftTypes.Update) + len(c.AircraftTypes.Delete)
	total += len(c.FeeRules.Create) + len(c.FeeRules.Update) + len(c.FeeRules.Delete)
	total += len(c.Overrides.Create) + len(c.Overrides.Update) + len(c.Overrides.Delete)
	total += len(c.WaiverTiers.Create) + len(c.WaiverTiers.Update) + len(c.WaiverTiers.Delete)
	return total
}

// DiffSnapshots computes the changeset that transforms current into desired.
// Records are matched by id. Numeric fields compare with an absolute
// epsilon, fees_waived_codes compares as an unordered set, and nil, zero,
// and empty remain distinct values.
func DiffSnapshots(current, desired *ConfigurationSnapshot) *Changeset {
	return &Changeset{
		Classifications: diffEntities(current.Classifications, desired.Classifications,
			func(c SnapshotClassification) uint { return c.ID }, classificationsEqual),
		AircraftTypes: diffEntities(current.AircraftTypes, desired.AircraftTypes,
			func(at SnapshotAircraftType) uint { return at.ID }, aircraftTypesEqual),
		FeeRules: diffEntities(current.FeeRules, desired.FeeRules,
			func(fr SnapshotFeeRule) uint { return fr.ID }, feeRulesEqual),
		Overrides: diffEntities(current.Overrides, desired.Overrides,
			func(o SnapshotOverride) uint { return o.ID }, overridesEqual),
		WaiverTiers: diffEntities(current.WaiverTiers, desired.WaiverTiers,
			func(wt SnapshotWaiverTier) uint { return wt.ID }, waiverTiersEqual),
	}
}

func diffEntities[T any](current, desired []T, id func(T) uint, equal func(a, b T) bool) EntityChanges[T] {
	var changes EntityChanges[T]
	currentByID := make(map[uint]T, len(current))
	for _, rec := range current {
		currentByID[id(rec)] = rec
	}

	desiredIDs := make(map[uint]bool, len(desired))
	for _, rec := range desired {
		recID := id(rec)
		desiredIDs[recID] = true
		existing, ok := currentByID[recID]
		if !ok {
			changes.Create = append(changes.Create, rec)
			continue
		}
		if !equal(existing, rec) {
			changes.Update = append(changes.Update, rec)
		}
	}

	for _, rec := range current {
		if !desiredIDs[id(rec)] {
			changes.Delete = append(changes.Delete, id(rec))
		}
	}

	return changes
}

func decimalsClose(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().Cmp(diffEpsilon) <= 0
}

func decimalPtrsClose(a, b *decimal.Decimal) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	return decimalsClose(*a, *b)
}

func strategyPtrsEqual(a, b *models.WaiverStrategy) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	return *a == *b
}

func uintPtrsEqual(a, b *uint) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	return *a == *b
}

// stringSetsEqual treats nil and empty as the same set; element order and
// duplicates do not matter.
func stringSetsEqual(a, b []string) bool {
	setA := make(map[string]bool, len(a))
	for _, s := range a {
		setA[s] = true
	}
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[s] = true
	}
	if len(setA) != len(setB) {
		return false
	}
	for s := range setA {
		if !setB[s] {
			return false
		}
	}
	return true
}

func classificationsEqual(a, b SnapshotClassification) bool {
	return a.Name == b.Name
}

func aircraftTypesEqual(a, b SnapshotAircraftType) bool {
	return a.Name == b.Name &&
		a.ClassificationID == b.ClassificationID &&
		decimalsClose(a.BaseMinFuelGallonsForWaiver, b.BaseMinFuelGallonsForWaiver)
}

func feeRulesEqual(a, b SnapshotFeeRule) bool {
	return a.FeeCode == b.FeeCode &&
		a.FeeName == b.FeeName &&
		decimalsClose(a.Amount, b.Amount) &&
		a.Currency == b.Currency &&
		a.IsTaxable == b.IsTaxable &&
		a.IsManuallyWaivable == b.IsManuallyWaivable &&
		a.WaiverStrategy == b.WaiverStrategy &&
		decimalsClose(a.SimpleWaiverMultiplier, b.SimpleWaiverMultiplier) &&
		a.HasCAAOverride == b.HasCAAOverride &&
		decimalPtrsClose(a.CAAOverrideAmount, b.CAAOverrideAmount) &&
		strategyPtrsEqual(a.CAAWaiverStrategyOverride, b.CAAWaiverStrategyOverride) &&
		decimalPtrsClose(a.CAASimpleWaiverMultiplierOverride, b.CAASimpleWaiverMultiplierOverride)
}

func overridesEqual(a, b SnapshotOverride) bool {
	return a.FeeRuleID == b.FeeRuleID &&
		uintPtrsEqual(a.ClassificationID, b.ClassificationID) &&
		uintPtrsEqual(a.AircraftTypeID, b.AircraftTypeID) &&
		decimalPtrsClose(a.OverrideAmount, b.OverrideAmount) &&
		decimalPtrsClose(a.OverrideCAAAmount, b.OverrideCAAAmount)
}

func waiverTiersEqual(a, b SnapshotWaiverTier) bool {
	return a.Name == b.Name &&
		decimalsClose(a.FuelUpliftMultiplier, b.FuelUpliftMultiplier) &&
		stringSetsEqual(a.FeesWaivedCodes, b.FeesWaivedCodes) &&
		a.TierPriority == b.TierPriority &&
		a.IsCAASpecificTier == b.IsCAASpecificTier
}
