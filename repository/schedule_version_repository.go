package repository

import (
	"context"

	"github.com/fbopoint/feesched/models"
	"gorm.io/gorm"
)

// ScheduleVersionRepositoryImpl implements ScheduleVersionRepository
type ScheduleVersionRepositoryImpl struct {
	*BaseRepository[models.FeeScheduleVersion, models.FeeScheduleVersionFilter]
}

// NewScheduleVersionRepository creates a new repository for stored schedule versions
func NewScheduleVersionRepository(db *gorm.DB) ScheduleVersionRepository {
	return &ScheduleVersionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.FeeScheduleVersion, models.FeeScheduleVersionFilter](db),
	}
}

// applyFilter applies filter conditions to the GORM query
func (r *ScheduleVersionRepositoryImpl) applyFilter(db *gorm.DB, filter models.FeeScheduleVersionFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Source != nil {
		db = db.Where("source = ?", *filter.Source)
	}
	return db
}

// ByFilter retrieves schedule versions based on filter criteria
func (r *ScheduleVersionRepositoryImpl) ByFilter(ctx context.Context, filter models.FeeScheduleVersionFilter, orderBy string, limit, offset int) ([]*models.FeeScheduleVersion, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.FeeScheduleVersion{}), filter)

	if orderBy == "" {
		orderBy = "created_at DESC"
	}
	query = query.Order(orderBy)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.FeeScheduleVersion
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of schedule versions matching the filter
func (r *ScheduleVersionRepositoryImpl) Count(ctx context.Context, filter models.FeeScheduleVersionFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.FeeScheduleVersion{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any schedule version matching the filter exists
func (r *ScheduleVersionRepositoryImpl) Exists(ctx context.Context, filter models.FeeScheduleVersionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListVersions returns stored versions, newest first
func (r *ScheduleVersionRepositoryImpl) ListVersions(ctx context.Context, limit, offset int) ([]*models.FeeScheduleVersion, error) {
	return r.ByFilter(ctx, models.FeeScheduleVersionFilter{}, "created_at DESC", limit, offset)
}
