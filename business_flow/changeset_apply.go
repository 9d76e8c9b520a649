package businessflow

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/fbopoint/feesched/models"
	"github.com/fbopoint/feesched/repository"
	"gorm.io/gorm"
)

// Stage names for apply logging. Deletions run child-first so foreign keys
// never block; creations run parent-first, flushing per stage so new ids are
// available to later stages.
const (
	StageDeleteOverrides       = "delete_overrides"
	StageDeleteWaiverTiers     = "delete_waiver_tiers"
	StageDeleteFeeRules        = "delete_fee_rules"
	StageDeleteAircraftTypes   = "delete_aircraft_types"
	StageDeleteClassifications = "delete_classifications"
	StageCreateClassifications = "create_classifications"
	StageCreateAircraftTypes   = "create_aircraft_types"
	StageCreateFeeRules        = "create_fee_rules"
	StageCreateOverrides       = "create_overrides"
	StageCreateWaiverTiers     = "create_waiver_tiers"
	StageUpdateAll             = "update_all"
)

// configApplyLockID is the advisory lock key serializing configuration
// applies. Two concurrent imports or restores must not interleave; the
// second blocks until the first commits or rolls back.
const configApplyLockID int64 = 829401537

// ChangesetApplier applies a diffed changeset to the live configuration in a
// single transaction.
type ChangesetApplier interface {
	Apply(ctx context.Context, changeset *Changeset) error
}

type ChangesetApplierImpl struct {
	db                 *gorm.DB
	classificationRepo repository.ClassificationRepository
	aircraftTypeRepo   repository.AircraftTypeRepository
	feeRuleRepo        repository.FeeRuleRepository
	overrideRepo       repository.FeeRuleOverrideRepository
	tierRepo           repository.WaiverTierRepository
}

func NewChangesetApplier(
	db *gorm.DB,
	classificationRepo repository.ClassificationRepository,
	aircraftTypeRepo repository.AircraftTypeRepository,
	feeRuleRepo repository.FeeRuleRepository,
	overrideRepo repository.FeeRuleOverrideRepository,
	tierRepo repository.WaiverTierRepository,
) *ChangesetApplierImpl {
	return &ChangesetApplierImpl{
		db:                 db,
		classificationRepo: classificationRepo,
		aircraftTypeRepo:   aircraftTypeRepo,
		feeRuleRepo:        feeRuleRepo,
		overrideRepo:       overrideRepo,
		tierRepo:           tierRepo,
	}
}

// Apply executes the changeset atomically. Any store error rolls the whole
// transaction back; uniqueness and foreign key violations surface as
// configuration conflicts.
func (a *ChangesetApplierImpl) Apply(ctx context.Context, changeset *Changeset) error {
	if changeset == nil || changeset.IsEmpty() {
		return nil
	}
	return repository.WithTransaction(ctx, a.db, func(txCtx context.Context) error {
		if tx, ok := txCtx.Value(repository.TxContextKey).(*gorm.DB); ok && tx != nil {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", configApplyLockID).Error; err != nil {
				return fmt.Errorf("failed to acquire configuration apply lock: %w", err)
			}
		}
		return a.applyStages(txCtx, changeset)
	})
}

// idRemap tracks document-local ids of created records against the ids the
// store assigned. References to records that already existed map to
// themselves and are absent from these maps.
type idRemap struct {
	classifications map[uint]uint
	aircraftTypes   map[uint]uint
	feeRules        map[uint]uint
}

func newIDRemap() *idRemap {
	return &idRemap{
		classifications: make(map[uint]uint),
		aircraftTypes:   make(map[uint]uint),
		feeRules:        make(map[uint]uint),
	}
}

func (m *idRemap) resolve(mapping map[uint]uint, id uint) uint {
	if mapped, ok := mapping[id]; ok {
		return mapped
	}
	return id
}

func (m *idRemap) resolvePtr(mapping map[uint]uint, id *uint) *uint {
	if id == nil {
		return nil
	}
	resolved := m.resolve(mapping, *id)
	return &resolved
}

func (a *ChangesetApplierImpl) applyStages(ctx context.Context, changeset *Changeset) error {
	remap := newIDRemap()

	deletions := []struct {
		stage string
		ids   []uint
		del   func(context.Context, uint) error
	}{
		{StageDeleteOverrides, changeset.Overrides.Delete, a.overrideRepo.DeleteByID},
		{StageDeleteWaiverTiers, changeset.WaiverTiers.Delete, a.tierRepo.DeleteByID},
		{StageDeleteFeeRules, changeset.FeeRules.Delete, a.feeRuleRepo.DeleteByID},
		{StageDeleteAircraftTypes, changeset.AircraftTypes.Delete, a.aircraftTypeRepo.DeleteByID},
		{StageDeleteClassifications, changeset.Classifications.Delete, a.classificationRepo.DeleteByID},
	}
	for _, stage := range deletions {
		for _, id := range stage.ids {
			if err := stage.del(ctx, id); err != nil {
				return mapStoreError(stage.stage, err)
			}
		}
		if len(stage.ids) > 0 {
			log.Printf("changeset apply: %s removed %d records", stage.stage, len(stage.ids))
		}
	}

	for _, rec := range changeset.Classifications.Create {
		entity := &models.AircraftClassification{Name: rec.Name}
		if err := a.classificationRepo.Save(ctx, entity); err != nil {
			return mapStoreError(StageCreateClassifications, err)
		}
		remap.classifications[rec.ID] = entity.ID
	}

	for _, rec := range changeset.AircraftTypes.Create {
		entity := &models.AircraftType{
			Name:                        rec.Name,
			ClassificationID:            remap.resolve(remap.classifications, rec.ClassificationID),
			BaseMinFuelGallonsForWaiver: rec.BaseMinFuelGallonsForWaiver,
		}
		if err := a.aircraftTypeRepo.Save(ctx, entity); err != nil {
			return mapStoreError(StageCreateAircraftTypes, err)
		}
		remap.aircraftTypes[rec.ID] = entity.ID
	}

	for _, rec := range changeset.FeeRules.Create {
		entity := feeRuleFromSnapshot(rec)
		if err := a.feeRuleRepo.Save(ctx, entity); err != nil {
			return mapStoreError(StageCreateFeeRules, err)
		}
		remap.feeRules[rec.ID] = entity.ID
	}

	for _, rec := range changeset.Overrides.Create {
		entity := &models.FeeRuleOverride{
			FeeRuleID:         remap.resolve(remap.feeRules, rec.FeeRuleID),
			ClassificationID:  remap.resolvePtr(remap.classifications, rec.ClassificationID),
			AircraftTypeID:    remap.resolvePtr(remap.aircraftTypes, rec.AircraftTypeID),
			OverrideAmount:    rec.OverrideAmount,
			OverrideCAAAmount: rec.OverrideCAAAmount,
		}
		if err := a.overrideRepo.Save(ctx, entity); err != nil {
			return mapStoreError(StageCreateOverrides, err)
		}
	}

	for _, rec := range changeset.WaiverTiers.Create {
		entity := &models.WaiverTier{
			Name:                 rec.Name,
			FuelUpliftMultiplier: rec.FuelUpliftMultiplier,
			FeesWaivedCodes:      rec.FeesWaivedCodes,
			TierPriority:         rec.TierPriority,
			IsCAASpecificTier:    rec.IsCAASpecificTier,
		}
		if err := a.tierRepo.Save(ctx, entity); err != nil {
			return mapStoreError(StageCreateWaiverTiers, err)
		}
	}

	created := len(changeset.Classifications.Create) + len(changeset.AircraftTypes.Create) +
		len(changeset.FeeRules.Create) + len(changeset.Overrides.Create) + len(changeset.WaiverTiers.Create)
	if created > 0 {
		log.Printf("changeset apply: created %d records", created)
	}

	return a.applyUpdates(ctx, changeset, remap)
}

func (a *ChangesetApplierImpl) applyUpdates(ctx context.Context, changeset *Changeset, remap *idRemap) error {
	for _, rec := range changeset.Classifications.Update {
		entity := &models.AircraftClassification{ID: rec.ID, Name: rec.Name}
		if err := a.classificationRepo.Update(ctx, entity); err != nil {
			return mapStoreError(StageUpdateAll, err)
		}
	}

	for _, rec := range changeset.AircraftTypes.Update {
		entity := &models.AircraftType{
			ID:                          rec.ID,
			Name:                        rec.Name,
			ClassificationID:            remap.resolve(remap.classifications, rec.ClassificationID),
			BaseMinFuelGallonsForWaiver: rec.BaseMinFuelGallonsForWaiver,
		}
		if err := a.aircraftTypeRepo.Update(ctx, entity); err != nil {
			return mapStoreError(StageUpdateAll, err)
		}
	}

	for _, rec := range changeset.FeeRules.Update {
		entity := feeRuleFromSnapshot(rec)
		entity.ID = rec.ID
		if err := a.feeRuleRepo.Update(ctx, entity); err != nil {
			return mapStoreError(StageUpdateAll, err)
		}
	}

	for _, rec := range changeset.Overrides.Update {
		entity := &models.FeeRuleOverride{
			ID:                rec.ID,
			FeeRuleID:         remap.resolve(remap.feeRules, rec.FeeRuleID),
			ClassificationID:  remap.resolvePtr(remap.classifications, rec.ClassificationID),
			AircraftTypeID:    remap.resolvePtr(remap.aircraftTypes, rec.AircraftTypeID),
			OverrideAmount:    rec.OverrideAmount,
			OverrideCAAAmount: rec.OverrideCAAAmount,
		}
		if err := a.overrideRepo.Update(ctx, entity); err != nil {
			return mapStoreError(StageUpdateAll, err)
		}
	}

	for _, rec := range changeset.WaiverTiers.Update {
		entity := &models.WaiverTier{
			ID:                   rec.ID,
			Name:                 rec.Name,
			FuelUpliftMultiplier: rec.FuelUpliftMultiplier,
			FeesWaivedCodes:      rec.FeesWaivedCodes,
			TierPriority:         rec.TierPriority,
			IsCAASpecificTier:    rec.IsCAASpecificTier,
		}
		if err := a.tierRepo.Update(ctx, entity); err != nil {
			return mapStoreError(StageUpdateAll, err)
		}
	}

	return nil
}

func feeRuleFromSnapshot(rec SnapshotFeeRule) *models.FeeRule {
	return &models.FeeRule{
		FeeCode:                           rec.FeeCode,
		FeeName:                           rec.FeeName,
		Amount:                            rec.Amount,
		Currency:                          rec.Currency,
		IsTaxable:                         rec.IsTaxable,
		IsManuallyWaivable:                rec.IsManuallyWaivable,
		WaiverStrategy:                    rec.WaiverStrategy,
		SimpleWaiverMultiplier:            rec.SimpleWaiverMultiplier,
		HasCAAOverride:                    rec.HasCAAOverride,
		CAAOverrideAmount:                 rec.CAAOverrideAmount,
		CAAWaiverStrategyOverride:         rec.CAAWaiverStrategyOverride,
		CAASimpleWaiverMultiplierOverride: rec.CAASimpleWaiverMultiplierOverride,
	}
}

// mapStoreError converts store-level integrity failures into configuration
// conflicts. A record that vanished mid-apply counts as a conflict too since
// it means a concurrent mutation won.
func mapStoreError(stage string, err error) error {
	switch {
	case repository.IsDuplicateKey(err):
		return NewBusinessErrorf("CONFIGURATION_CONFLICT", "Stage %s hit a uniqueness violation", ErrConfigurationConflict, stage)
	case repository.IsForeignKeyViolated(err):
		return NewBusinessErrorf("CONFIGURATION_CONFLICT", "Stage %s hit a foreign key violation", ErrConfigurationConflict, stage)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewBusinessErrorf("CONFIGURATION_CONFLICT", "Stage %s targeted a record that no longer exists", ErrConfigurationConflict, stage)
	default:
		return err
	}
}
