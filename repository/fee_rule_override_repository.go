package repository

import (
	"context"
	"errors"

	"github.com/fbopoint/feesched/models"
	"github.com/fbopoint/feesched/utils"
	"gorm.io/gorm"
)

// FeeRuleOverrideRepositoryImpl implements FeeRuleOverrideRepository
type FeeRuleOverrideRepositoryImpl struct {
	*BaseRepository[models.FeeRuleOverride, models.FeeRuleOverrideFilter]
}

// NewFeeRuleOverrideRepository creates a new repository for fee rule overrides
func NewFeeRuleOverrideRepository(db *gorm.DB) FeeRuleOverrideRepository {
	return &FeeRuleOverrideRepositoryImpl{
		BaseRepository: NewBaseRepository[models.FeeRuleOverride, models.FeeRuleOverrideFilter](db),
	}
}

// applyFilter applies filter conditions to the GORM query
func (r *FeeRuleOverrideRepositoryImpl) applyFilter(db *gorm.DB, filter models.FeeRuleOverrideFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.FeeRuleID != nil {
		db = db.Where("fee_rule_id = ?", *filter.FeeRuleID)
	}
	if filter.ClassificationID != nil {
		db = db.Where("classification_id = ?", *filter.ClassificationID)
	}
	if filter.AircraftTypeID != nil {
		db = db.Where("aircraft_type_id = ?", *filter.AircraftTypeID)
	}
	return db
}

// ByFilter retrieves overrides based on filter criteria
func (r *FeeRuleOverrideRepositoryImpl) ByFilter(ctx context.Context, filter models.FeeRuleOverrideFilter, orderBy string, limit, offset int) ([]*models.FeeRuleOverride, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.FeeRuleOverride{}), filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.FeeRuleOverride
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of overrides matching the filter
func (r *FeeRuleOverrideRepositoryImpl) Count(ctx context.Context, filter models.FeeRuleOverrideFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.FeeRuleOverride{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any override matching the filter exists
func (r *FeeRuleOverrideRepositoryImpl) Exists(ctx context.Context, filter models.FeeRuleOverrideFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByFeeRule returns all overrides attached to a fee rule
func (r *FeeRuleOverrideRepositoryImpl) ListByFeeRule(ctx context.Context, feeRuleID uint) ([]*models.FeeRuleOverride, error) {
	return r.ByFilter(ctx, models.FeeRuleOverrideFilter{FeeRuleID: &feeRuleID}, "id ASC", 0, 0)
}

// ListAll returns every override ordered by ID
func (r *FeeRuleOverrideRepositoryImpl) ListAll(ctx context.Context) ([]*models.FeeRuleOverride, error) {
	return r.ByFilter(ctx, models.FeeRuleOverrideFilter{}, "id ASC", 0, 0)
}

// Update replaces an override by ID. Every comparable column is written
// unconditionally: the target columns so an import can retarget an override,
// and the amount columns so an override field can be cleared back to
// fall-through.
func (r *FeeRuleOverrideRepositoryImpl) Update(ctx context.Context, override *models.FeeRuleOverride) error {
	if override == nil {
		return errors.New("override payload is nil")
	}
	if override.ID == 0 {
		return errors.New("override ID is required for update")
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	updates := map[string]any{
		"updated_at":          utils.UTCNow(),
		"fee_rule_id":         override.FeeRuleID,
		"classification_id":   override.ClassificationID,
		"aircraft_type_id":    override.AircraftTypeID,
		"override_amount":     override.OverrideAmount,
		"override_caa_amount": override.OverrideCAAAmount,
	}

	result := db.Model(&models.FeeRuleOverride{}).
		Where("id = ?", override.ID).
		Updates(updates)

	if result.Error != nil {
		err = result.Error
		return err
	}
	if result.RowsAffected == 0 {
		err = gorm.ErrRecordNotFound
		return err
	}
	return nil
}
