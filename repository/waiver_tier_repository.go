package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fbopoint/feesched/models"
	"github.com/fbopoint/feesched/utils"
	"gorm.io/gorm"
)

// WaiverTierRepositoryImpl implements WaiverTierRepository
type WaiverTierRepositoryImpl struct {
	*BaseRepository[models.WaiverTier, models.WaiverTierFilter]
}

// NewWaiverTierRepository creates a new repository for waiver tiers
func NewWaiverTierRepository(db *gorm.DB) WaiverTierRepository {
	return &WaiverTierRepositoryImpl{
		BaseRepository: NewBaseRepository[models.WaiverTier, models.WaiverTierFilter](db),
	}
}

// applyFilter applies filter conditions to the GORM query
func (r *WaiverTierRepositoryImpl) applyFilter(db *gorm.DB, filter models.WaiverTierFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	if filter.IsCAASpecificTier != nil {
		db = db.Where("is_caa_specific_tier = ?", *filter.IsCAASpecificTier)
	}
	return db
}

// ByFilter retrieves waiver tiers based on filter criteria
func (r *WaiverTierRepositoryImpl) ByFilter(ctx context.Context, filter models.WaiverTierFilter, orderBy string, limit, offset int) ([]*models.WaiverTier, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.WaiverTier{}), filter)

	if orderBy == "" {
		orderBy = "tier_priority DESC, id ASC"
	}
	query = query.Order(orderBy)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.WaiverTier
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of waiver tiers matching the filter
func (r *WaiverTierRepositoryImpl) Count(ctx context.Context, filter models.WaiverTierFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.WaiverTier{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any waiver tier matching the filter exists
func (r *WaiverTierRepositoryImpl) Exists(ctx context.Context, filter models.WaiverTierFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListAll returns every waiver tier ordered by priority (highest first)
func (r *WaiverTierRepositoryImpl) ListAll(ctx context.Context) ([]*models.WaiverTier, error) {
	return r.ByFilter(ctx, models.WaiverTierFilter{}, "tier_priority DESC, id ASC", 0, 0)
}

// Update replaces all tier fields by ID
func (r *WaiverTierRepositoryImpl) Update(ctx context.Context, tier *models.WaiverTier) error {
	if tier == nil {
		return errors.New("waiver tier payload is nil")
	}
	if tier.ID == 0 {
		return errors.New("waiver tier ID is required for update")
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
		"updated_at":             utils.UTCNow(),
		"name":                   tier.Name,
		"fuel_uplift_multiplier": tier.FuelUpliftMultiplier,
		"fees_waived_codes":      tier.FeesWaivedCodes,
		"tier_priority":          tier.TierPriority,
		"is_caa_specific_tier":   tier.IsCAASpecificTier,
	}

	result := db.Model(&models.WaiverTier{}).
		Where("id = ?", tier.ID).
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

// ReorderPriorities reassigns tier priorities in bulk. All updates run in a
// single transaction so two tiers never share a priority outside of it.
func (r *WaiverTierRepositoryImpl) ReorderPriorities(ctx context.Context, priorities map[uint]int) error {
	if len(priorities) == 0 {
		return nil
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

	now := utils.UTCNow()
	for id, priority := range priorities {
		result := db.Model(&models.WaiverTier{}).
			Where("id = ?", id).
			Updates(map[string]any{"tier_priority": priority, "updated_at": now})
		if result.Error != nil {
			err = result.Error
			return err
		}
		if result.RowsAffected == 0 {
			err = fmt.Errorf("waiver tier %d not found: %w", id, gorm.ErrRecordNotFound)
			return err
		}
	}

	return nil
}
