package repository

import (
	"context"
	"errors"

	"github.com/fbopoint/feesched/models"
	"github.com/fbopoint/feesched/utils"
	"gorm.io/gorm"
)

// FeeRuleRepositoryImpl implements FeeRuleRepository
type FeeRuleRepositoryImpl struct {
	*BaseRepository[models.FeeRule, models.FeeRuleFilter]
}

// NewFeeRuleRepository creates a new repository for global fee rules
func NewFeeRuleRepository(db *gorm.DB) FeeRuleRepository {
	return &FeeRuleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.FeeRule, models.FeeRuleFilter](db),
	}
}

// applyFilter applies filter conditions to the GORM query
func (r *FeeRuleRepositoryImpl) applyFilter(db *gorm.DB, filter models.FeeRuleFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.FeeCode != nil {
		db = db.Where("fee_code = ?", *filter.FeeCode)
	}
	if filter.IsTaxable != nil {
		db = db.Where("is_taxable = ?", *filter.IsTaxable)
	}
	if filter.WaiverStrategy != nil {
		db = db.Where("waiver_strategy = ?", *filter.WaiverStrategy)
	}
	return db
}

// ByFilter retrieves fee rules based on filter criteria
func (r *FeeRuleRepositoryImpl) ByFilter(ctx context.Context, filter models.FeeRuleFilter, orderBy string, limit, offset int) ([]*models.FeeRule, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.FeeRule{}), filter)

	if orderBy == "" {
		orderBy = "fee_code ASC"
	}
	query = query.Order(orderBy)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.FeeRule
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of fee rules matching the filter
func (r *FeeRuleRepositoryImpl) Count(ctx context.Context, filter models.FeeRuleFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.FeeRule{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any fee rule matching the filter exists
func (r *FeeRuleRepositoryImpl) Exists(ctx context.Context, filter models.FeeRuleFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByFeeCode retrieves the single global rule for a fee code
func (r *FeeRuleRepositoryImpl) ByFeeCode(ctx context.Context, feeCode string) (*models.FeeRule, error) {
	db := r.getDB(ctx)
	var fr models.FeeRule
	err := db.Where("fee_code = ?", feeCode).First(&fr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &fr, nil
}

// ListAll returns every fee rule ordered by fee code
func (r *FeeRuleRepositoryImpl) ListAll(ctx context.Context) ([]*models.FeeRule, error) {
	return r.ByFilter(ctx, models.FeeRuleFilter{}, "fee_code ASC", 0, 0)
}

// Update replaces a fee rule by ID. All columns are written unconditionally,
// the waiver and CAA override columns so they can be cleared and the identity
// columns so an import can rename a fee code.
func (r *FeeRuleRepositoryImpl) Update(ctx context.Context, rule *models.FeeRule) error {
	if rule == nil {
		return errors.New("fee rule payload is nil")
	}
	if rule.ID == 0 {
		return errors.New("fee rule ID is required for update")
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
		"updated_at":                            utils.UTCNow(),
		"fee_code":                              rule.FeeCode,
		"fee_name":                              rule.FeeName,
		"currency":                              rule.Currency,
		"amount":                                rule.Amount,
		"is_taxable":                            rule.IsTaxable,
		"is_manually_waivable":                  rule.IsManuallyWaivable,
		"waiver_strategy":                       rule.WaiverStrategy,
		"simple_waiver_multiplier":              rule.SimpleWaiverMultiplier,
		"has_caa_override":                      rule.HasCAAOverride,
		"caa_override_amount":                   rule.CAAOverrideAmount,
		"caa_waiver_strategy_override":          rule.CAAWaiverStrategyOverride,
		"caa_simple_waiver_multiplier_override": rule.CAASimpleWaiverMultiplierOverride,
	}

	result := db.Model(&models.FeeRule{}).
		Where("id = ?", rule.ID).
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
