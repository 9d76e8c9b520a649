package repository

import (
	"context"
	"errors"

	"github.com/fbopoint/feesched/models"
	"github.com/fbopoint/feesched/utils"
	"gorm.io/gorm"
)

// ClassificationRepositoryImpl implements ClassificationRepository
type ClassificationRepositoryImpl struct {
	*BaseRepository[models.AircraftClassification, models.AircraftClassificationFilter]
}

// NewClassificationRepository creates a new repository for aircraft classifications
func NewClassificationRepository(db *gorm.DB) ClassificationRepository {
	return &ClassificationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AircraftClassification, models.AircraftClassificationFilter](db),
	}
}

// applyFilter applies filter conditions to the GORM query
func (r *ClassificationRepositoryImpl) applyFilter(db *gorm.DB, filter models.AircraftClassificationFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	return db
}

// ByFilter retrieves classifications based on filter criteria
func (r *ClassificationRepositoryImpl) ByFilter(ctx context.Context, filter models.AircraftClassificationFilter, orderBy string, limit, offset int) ([]*models.AircraftClassification, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.AircraftClassification{}), filter)

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

	var rows []*models.AircraftClassification
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of classifications matching the filter
func (r *ClassificationRepositoryImpl) Count(ctx context.Context, filter models.AircraftClassificationFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.AircraftClassification{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any classification matching the filter exists
func (r *ClassificationRepositoryImpl) Exists(ctx context.Context, filter models.AircraftClassificationFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByName retrieves a classification by its unique name
func (r *ClassificationRepositoryImpl) ByName(ctx context.Context, name string) (*models.AircraftClassification, error) {
	db := r.getDB(ctx)
	var c models.AircraftClassification
	err := db.Where("name = ?", name).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// ListAll returns every classification ordered by ID
func (r *ClassificationRepositoryImpl) ListAll(ctx context.Context) ([]*models.AircraftClassification, error) {
	return r.ByFilter(ctx, models.AircraftClassificationFilter{}, "id ASC", 0, 0)
}

// Update replaces the classification name by ID
func (r *ClassificationRepositoryImpl) Update(ctx context.Context, classification *models.AircraftClassification) error {
	if classification == nil {
		return errors.New("classification payload is nil")
	}
	if classification.ID == 0 {
		return errors.New("classification ID is required for update")
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
		"updated_at": utils.UTCNow(),
		"name":       classification.Name,
	}

	result := db.Model(&models.AircraftClassification{}).
		Where("id = ?", classification.ID).
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
