package businessflow

import (
	"context"
	"strings"

	"github.com/fbopoint/feesched/models"
	"github.com/fbopoint/feesched/repository"
	"github.com/fbopoint/feesched/utils"
)

// FeeScheduleFlow is the admin surface over the fee schedule configuration:
// classifications, aircraft types, fee rules, overrides, and waiver tiers.
type FeeScheduleFlow interface {
	ListClassifications(ctx context.Context) ([]*models.AircraftClassification, error)
	CreateClassification(ctx context.Context, name string) (*models.AircraftClassification, error)
	UpdateClassification(ctx context.Context, id uint, name string) (*models.AircraftClassification, error)
	DeleteClassification(ctx context.Context, id uint) error

	ListAircraftTypes(ctx context.Context) ([]*models.AircraftType, error)
	CreateAircraftType(ctx context.Context, aircraftType *models.AircraftType) error
	UpdateAircraftType(ctx context.Context, aircraftType *models.AircraftType) error
	DeleteAircraftType(ctx context.Context, id uint) error

	ListFeeRules(ctx context.Context) ([]*models.FeeRule, error)
	CreateFeeRule(ctx context.Context, rule *models.FeeRule) error
	UpdateFeeRule(ctx context.Context, rule *models.FeeRule) error
	DeleteFeeRule(ctx context.Context, id uint) error

	ListOverrides(ctx context.Context, feeRuleID uint) ([]*models.FeeRuleOverride, error)
	CreateOverride(ctx context.Context, override *models.FeeRuleOverride) error
	UpdateOverride(ctx context.Context, override *models.FeeRuleOverride) error
	DeleteOverride(ctx context.Context, id uint) error

	ListWaiverTiers(ctx context.Context) ([]*models.WaiverTier, error)
	CreateWaiverTier(ctx context.Context, tier *models.WaiverTier) error
	UpdateWaiverTier(ctx context.Context, tier *models.WaiverTier) error
	DeleteWaiverTier(ctx context.Context, id uint) error
	ReorderWaiverTiers(ctx context.Context, priorities map[uint]int) error
}

type FeeScheduleFlowImpl struct {
	classificationRepo repository.ClassificationRepository
	aircraftTypeRepo   repository.AircraftTypeRepository
	aircraftRepo       repository.AircraftRepository
	feeRuleRepo        repository.FeeRuleRepository
	overrideRepo       repository.FeeRuleOverrideRepository
	tierRepo           repository.WaiverTierRepository
	cache              *ScheduleCache
}

func NewFeeScheduleFlow(
	classificationRepo repository.ClassificationRepository,
	aircraftTypeRepo repository.AircraftTypeRepository,
	aircraftRepo repository.AircraftRepository,
	feeRuleRepo repository.FeeRuleRepository,
	overrideRepo repository.FeeRuleOverrideRepository,
	tierRepo repository.WaiverTierRepository,
	cache *ScheduleCache,
) FeeScheduleFlow {
	return &FeeScheduleFlowImpl{
		classificationRepo: classificationRepo,
		aircraftTypeRepo:   aircraftTypeRepo,
		aircraftRepo:       aircraftRepo,
		feeRuleRepo:        feeRuleRepo,
		overrideRepo:       overrideRepo,
		tierRepo:           tierRepo,
		cache:              cache,
	}
}

func (f *FeeScheduleFlowImpl) invalidateCache(ctx context.Context) {
	if f.cache != nil {
		f.cache.Invalidate(ctx)
	}
}

// mapWriteError normalizes store-level uniqueness violations on the admin
// write path into configuration conflicts.
func mapWriteError(err error) error {
	if repository.IsDuplicateKey(err) {
		return NewBusinessError("CONFIGURATION_CONFLICT", "A record with the same unique value already exists", ErrConfigurationConflict)
	}
	if repository.IsForeignKeyViolated(err) {
		return NewBusinessError("CONFIGURATION_CONFLICT", "The record references or is referenced by another record", ErrConfigurationConflict)
	}
	return err
}

func (f *FeeScheduleFlowImpl) ListClassifications(ctx context.Context) ([]*models.AircraftClassification, error) {
	return f.classificationRepo.ListAll(ctx)
}

func (f *FeeScheduleFlowImpl) CreateClassification(ctx context.Context, name string) (*models.AircraftClassification, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewBusinessError("NAME_REQUIRED", "Classification name is required", ErrNameRequired)
	}
	classification := &models.AircraftClassification{Name: name}
	if err := f.classificationRepo.Save(ctx, classification); err != nil {
		return nil, mapWriteError(err)
	}
	f.invalidateCache(ctx)
	return classification, nil
}

func (f *FeeScheduleFlowImpl) UpdateClassification(ctx context.Context, id uint, name string) (*models.AircraftClassification, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewBusinessError("NAME_REQUIRED", "Classification name is required", ErrNameRequired)
	}
	classification, err := f.classificationRepo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if classification == nil {
		return nil, NewBusinessErrorf("CLASSIFICATION_NOT_FOUND", "Classification %d does not exist", ErrClassificationNotFound, id)
	}
	classification.Name = name
	if err := f.classificationRepo.Update(ctx, classification); err != nil {
		return nil, mapWriteError(err)
	}
	f.invalidateCache(ctx)
	return classification, nil
}

func (f *FeeScheduleFlowImpl) DeleteClassification(ctx context.Context, id uint) error {
	typeCount, err := f.aircraftTypeRepo.Count(ctx, models.AircraftTypeFilter{ClassificationID: &id})
	if err != nil {
		return err
	}
	overrideCount, err := f.overrideRepo.Count(ctx, models.FeeRuleOverrideFilter{ClassificationID: &id})
	if err != nil {
		return err
	}
	if typeCount > 0 || overrideCount > 0 {
		return NewBusinessErrorf("CLASSIFICATION_IN_USE", "Classification %d is referenced by %d aircraft types and %d overrides", ErrClassificationInUse, id, typeCount, overrideCount)
	}
	if err := f.classificationRepo.DeleteByID(ctx, id); err != nil {
		return mapStoreError(StageDeleteClassifications, err)
	}
	f.invalidateCache(ctx)
	return nil
}

func (f *FeeScheduleFlowImpl) ListAircraftTypes(ctx context.Context) ([]*models.AircraftType, error) {
	return f.aircraftTypeRepo.ListAll(ctx)
}

func (f *FeeScheduleFlowImpl) validateAircraftType(ctx context.Context, aircraftType *models.AircraftType) error {
	aircraftType.Name = strings.TrimSpace(aircraftType.Name)
	if aircraftType.Name == "" {
		return NewBusinessError("NAME_REQUIRED", "Aircraft type name is required", ErrNameRequired)
	}
	if aircraftType.BaseMinFuelGallonsForWaiver.Sign() < 0 {
		return NewBusinessError("BASE_MIN_FUEL_INVALID", "Base minimum fuel must not be negative", ErrBaseMinFuelInvalid)
	}
	classification, err := f.classificationRepo.ByID(ctx, aircraftType.ClassificationID)
	if err != nil {
		return err
	}
	if classification == nil {
		return NewBusinessErrorf("CLASSIFICATION_NOT_FOUND", "Classification %d does not exist", ErrClassificationNotFound, aircraftType.ClassificationID)
	}
	return nil
}

func (f *FeeScheduleFlowImpl) CreateAircraftType(ctx context.Context, aircraftType *models.AircraftType) error {
	if err := f.validateAircraftType(ctx, aircraftType); err != nil {
		return err
	}
	if err := f.aircraftTypeRepo.Save(ctx, aircraftType); err != nil {
		return mapWriteError(err)
	}
	f.invalidateCache(ctx)
	return nil
}

func (f *FeeScheduleFlowImpl) UpdateAircraftType(ctx context.Context, aircraftType *models.AircraftType) error {
	existing, err := f.aircraftTypeRepo.ByID(ctx, aircraftType.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return NewBusinessErrorf("AIRCRAFT_TYPE_NOT_FOUND", "Aircraft type %d does not exist", ErrAircraftTypeNotFound, aircraftType.ID)
	}
	if err := f.validateAircraftType(ctx, aircraftType); err != nil {
		return err
	}
	if err := f.aircraftTypeRepo.Update(ctx, aircraftType); err != nil {
		return mapWriteError(err)
	}
	f.invalidateCache(ctx)
	return nil
}

func (f *FeeScheduleFlowImpl) DeleteAircraftType(ctx context.Context, id uint) error {
	aircraftCount, err := f.aircraftRepo.CountByAircraftType(ctx, id)
	if err != nil {
		return err
	}
	overrideCount, err := f.overrideRepo.Count(ctx, models.FeeRuleOverrideFilter{AircraftTypeID: &id})
	if err != nil {
		return err
	}
	if aircraftCount > 0 || overrideCount > 0 {
		return NewBusinessErrorf("AIRCRAFT_TYPE_IN_USE", "Aircraft type %d is referenced by %d aircraft and %d overrides", ErrAircraftTypeInUse, id, aircraftCount, overrideCount)
	}
	if err := f.aircraftTypeRepo.DeleteByID(ctx, id); err != nil {
		return mapStoreError(StageDeleteAircraftTypes, err)
	}
	f.invalidateCache(ctx)
	return nil
}

func (f *FeeScheduleFlowImpl) ListFeeRules(ctx context.Context) ([]*models.FeeRule, error) {
	return f.feeRuleRepo.ListAll(ctx)
}

func validateFeeRule(rule *models.FeeRule) error {
	rule.FeeCode = strings.TrimSpace(rule.FeeCode)
	if rule.FeeCode == "" {
		return NewBusinessError("FEE_CODE_REQUIRED", "Fee code is required", ErrFeeCodeRequired)
	}
	if strings.TrimSpace(rule.FeeName) == "" {
		return NewBusinessError("NAME_REQUIRED", "Fee name is required", ErrNameRequired)
	}
	if rule.Amount.Sign() < 0 {
		return NewBusinessError("AMOUNT_INVALID", "Fee amount must not be negative", ErrAmountInvalid)
	}
	if rule.Currency == "" {
		rule.Currency = utils.DefaultCurrency
	}
	if rule.WaiverStrategy == "" {
		rule.WaiverStrategy = models.WaiverStrategyNone
	}
	if !rule.WaiverStrategy.IsValid() {
		return NewBusinessErrorf("WAIVER_STRATEGY_INVALID", "Waiver strategy %q is not recognized", ErrWaiverStrategyInvalid, rule.WaiverStrategy)
	}
	if rule.CAAWaiverStrategyOverride != nil && !rule.CAAWaiverStrategyOverride.IsValid() {
		return NewBusinessErrorf("WAIVER_STRATEGY_INVALID", "CAA waiver strategy %q is not recognized", ErrWaiverStrategyInvalid, *rule.CAAWaiverStrategyOverride)
	}
	return nil
}

func (f *FeeScheduleFlowImpl) CreateFeeRule(ctx context.Context, rule *models.FeeRule) error {
	if err := validateFeeRule(rule); err != nil {
		return err
	}
	if err := f.feeRuleRepo.Save(ctx, rule); err != nil {
		return mapWriteError(err)
	}
	f.invalidateCache(ctx)
	return nil
}

func (f *FeeScheduleFlowImpl) UpdateFeeRule(ctx context.Context, rule *models.FeeRule) error {
	existing, err := f.feeRuleRepo.ByID(ctx, rule.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return NewBusinessErrorf("FEE_RULE_NOT_FOUND", "Fee rule %d does not exist", ErrFeeRuleNotFound, rule.ID)
	}
	if err := validateFeeRule(rule); err != nil {
		return err
	}
	if err := f.feeRuleRepo.Update(ctx, rule); err != nil {
		return mapWriteError(err)
	}
	f.invalidateCache(ctx)
	return nil
}

func (f *FeeScheduleFlowImpl) DeleteFeeRule(ctx context.Context, id uint) error {
	overrideCount, err := f.overrideRepo.Count(ctx, models.FeeRuleOverrideFilter{FeeRuleID: &id})
	if err != nil {
		return err
	}
	if overrideCount > 0 {
		return NewBusinessErrorf("FEE_RULE_IN_USE", "Fee rule %d is referenced by %d overrides", ErrFeeRuleInUse, id, overrideCount)
	}
	if err := f.feeRuleRepo.DeleteByID(ctx, id); err != nil {
		return mapStoreError(StageDeleteFeeRules, err)
	}
	f.invalidateCache(ctx)
	return nil
}

func (f *FeeScheduleFlowImpl) ListOverrides(ctx context.Context, feeRuleID uint) ([]*models.FeeRuleOverride, error) {
	return f.overrideRepo.ListByFeeRule(ctx, feeRuleID)
}

func (f *FeeScheduleFlowImpl) validateOverride(ctx context.Context, override *models.FeeRuleOverride) error {
	if !override.HasValidTarget() {
		return NewBusinessError("OVERRIDE_TARGET_INVALID", "Exactly one of classification_id and aircraft_type_id must be set", ErrOverrideTargetInvalid)
	}
	rule, err := f.feeRuleRepo.ByID(ctx, override.FeeRuleID)
	if err != nil {
		return err
	}
	if rule == nil {
		return NewBusinessErrorf("FEE_RULE_NOT_FOUND", "Fee rule %d does not exist", ErrFeeRuleNotFound, override.FeeRuleID)
	}
	if override.ClassificationID != nil {
		classification, err := f.classificationRepo.ByID(ctx, *override.ClassificationID)
		if err != nil {
			return err
		}
		if classification == nil {
			return NewBusinessErrorf("CLASSIFICATION_NOT_FOUND", "Classification %d does not exist", ErrClassificationNotFound, *override.ClassificationID)
		}
	}
	if override.AircraftTypeID != nil {
		aircraftType, err := f.aircraftTypeRepo.ByID(ctx, *override.AircraftTypeID)
		if err != nil {
			return err
		}
		if aircraftType == nil {
			return NewBusinessErrorf("AIRCRAFT_TYPE_NOT_FOUND", "Aircraft type %d does not exist", ErrAircraftTypeNotFound, *override.AircraftTypeID)
		}
	}
	return nil
}

func (f *FeeScheduleFlowImpl) CreateOverride(ctx context.Context, override *models.FeeRuleOverride) error {
	if err := f.validateOverride(ctx, override); err != nil {
		return err
	}
	if err := f.overrideRepo.Save(ctx, override); err != nil {
		return mapWriteError(err)
	}
	f.invalidateCache(ctx)
	return nil
}

func (f *FeeScheduleFlowImpl) UpdateOverride(ctx context.Context, override *models.FeeRuleOverride) error {
	existing, err := f.overrideRepo.ByID(ctx, override.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return NewBusinessErrorf("OVERRIDE_NOT_FOUND", "Fee rule override %d does not exist", ErrOverrideNotFound, override.ID)
	}
	if err := f.validateOverride(ctx, override); err != nil {
		return err
	}
	if err := f.overrideRepo.Update(ctx, override); err != nil {
		return mapWriteError(err)
	}
	f.invalidateCache(ctx)
	return nil
}

func (f *FeeScheduleFlowImpl) DeleteOverride(ctx context.Context, id uint) error {
	if err := f.overrideRepo.DeleteByID(ctx, id); err != nil {
		return mapStoreError(StageDeleteOverrides, err)
	}
	f.invalidateCache(ctx)
	return nil
}

func (f *FeeScheduleFlowImpl) ListWaiverTiers(ctx context.Context) ([]*models.WaiverTier, error) {
	return f.tierRepo.ListAll(ctx)
}

// checkTierPriority rejects a priority already held by another tier in the
// same CAA partition. Priorities only compete within a partition because
// tier selection filters by CAA applicability first.
func (f *FeeScheduleFlowImpl) checkTierPriority(ctx context.Context, tier *models.WaiverTier) error {
	tiers, err := f.tierRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, other := range tiers {
		if other.ID == tier.ID {
			continue
		}
		if other.IsCAASpecificTier == tier.IsCAASpecificTier && other.TierPriority == tier.TierPriority {
			return NewBusinessErrorf("TIER_PRIORITY_CONFLICT", "Priority %d is already used by tier %q", ErrTierPriorityConflict, tier.TierPriority, other.Name)
		}
	}
	return nil
}

func validateWaiverTier(tier *models.WaiverTier) error {
	tier.Name = strings.TrimSpace(tier.Name)
	if tier.Name == "" {
		return NewBusinessError("NAME_REQUIRED", "Waiver tier name is required", ErrNameRequired)
	}
	if tier.FuelUpliftMultiplier.Sign() <= 0 {
		return NewBusinessError("WAIVER_MULTIPLIER_INVALID", "Fuel uplift multiplier must be greater than zero", ErrWaiverMultiplierInvalid)
	}
	return nil
}

func (f *FeeScheduleFlowImpl) CreateWaiverTier(ctx context.Context, tier *models.WaiverTier) error {
	if err := validateWaiverTier(tier); err != nil {
		return err
	}
	if err := f.checkTierPriority(ctx, tier); err != nil {
		return err
	}
	if err := f.tierRepo.Save(ctx, tier); err != nil {
		return mapWriteError(err)
	}
	f.invalidateCache(ctx)
	return nil
}

func (f *FeeScheduleFlowImpl) UpdateWaiverTier(ctx context.Context, tier *models.WaiverTier) error {
	existing, err := f.tierRepo.ByID(ctx, tier.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return NewBusinessErrorf("WAIVER_TIER_NOT_FOUND", "Waiver tier %d does not exist", ErrWaiverTierNotFound, tier.ID)
	}
	if err := validateWaiverTier(tier); err != nil {
		return err
	}
	if err := f.checkTierPriority(ctx, tier); err != nil {
		return err
	}
	if err := f.tierRepo.Update(ctx, tier); err != nil {
		return mapWriteError(err)
	}
	f.invalidateCache(ctx)
	return nil
}

func (f *FeeScheduleFlowImpl) DeleteWaiverTier(ctx context.Context, id uint) error {
	if err := f.tierRepo.DeleteByID(ctx, id); err != nil {
		return mapStoreError(StageDeleteWaiverTiers, err)
	}
	f.invalidateCache(ctx)
	return nil
}

// ReorderWaiverTiers reassigns priorities in bulk. The proposed assignment
// is validated against the full tier set before any write, then applied
// atomically so no intermediate state is ever visible.
func (f *FeeScheduleFlowImpl) ReorderWaiverTiers(ctx context.Context, priorities map[uint]int) error {
	if len(priorities) == 0 {
		return NewBusinessError("REORDER_PRIORITIES_MISSING", "At least one priority assignment is required", ErrReorderPrioritiesMissing)
	}

	tiers, err := f.tierRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	tiersByID := make(map[uint]*models.WaiverTier, len(tiers))
	for _, tier := range tiers {
		tiersByID[tier.ID] = tier
	}

	for id := range priorities {
		if _, ok := tiersByID[id]; !ok {
			return NewBusinessErrorf("WAIVER_TIER_NOT_FOUND", "Waiver tier %d does not exist", ErrWaiverTierNotFound, id)
		}
	}

	proposed := make(map[bool]map[int]string, 2)
	proposed[false] = make(map[int]string)
	proposed[true] = make(map[int]string)
	for _, tier := range tiers {
		priority := tier.TierPriority
		if assigned, ok := priorities[tier.ID]; ok {
			priority = assigned
		}
		partition := proposed[tier.IsCAASpecificTier]
		if holder, ok := partition[priority]; ok {
			return NewBusinessErrorf("TIER_PRIORITY_CONFLICT", "Priority %d would be shared by tiers %q and %q", ErrTierPriorityConflict, priority, holder, tier.Name)
		}
		partition[priority] = tier.Name
	}

	if err := f.tierRepo.ReorderPriorities(ctx, priorities); err != nil {
		return mapWriteError(err)
	}
	f.invalidateCache(ctx)
	return nil
}
