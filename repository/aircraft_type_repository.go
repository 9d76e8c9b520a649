package repository

import (
	"context"
	"errors"

	"github.com/fbopoint/feesched/models"
	"github.com/fbopoint/feesched/utils"
	"gorm.io/gorm"
)

// AircraftTypeRepositoryImpl implements AircraftTypeRepository
type AircraftTypeRepositoryImpl struct {
	*BaseRepository[models.AircraftType, models.AircraftTypeFilter]
}

// NewAircraftTypeRepository creates a new repository for aircraft types
func NewAircraftTypeRepository(db *gorm.DB) AircraftTypeRepository {
	return &AircraftTypeRepositoryImpl{
		BaseRepository: NewBaseRepository[models.AircraftType, models.AircraftTypeFilter](db),
	}
}

// applyFilter applies filter conditions to the GORM query
func (r *AircraftTypeRepositoryImpl) applyFilter(db *gorm.DB, filter models.AircraftTypeFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		db = db.Where("name = ?", *filter.Name)
	}
	if filter.ClassificationID != nil {
		db = db.Where("classification_id = ?", *filter.ClassificationID)
	}
	return db
}

// ByFilter retrieves aircraft types based on filter criteria
func (r *AircraftTypeRepositoryImpl) ByFilter(ctx context.Context, filter models.AircraftTypeFilter, orderBy string, limit, offset int) ([]*models.AircraftType, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.AircraftType{}), filter)

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

	var rows []*models.AircraftType
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of aircraft types matching the filter
func (r *AircraftTypeRepositoryImpl) Count(ctx context.Context, filter models.AircraftTypeFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.AircraftType{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any aircraft type matching the filter exists
func (r *AircraftTypeRepositoryImpl) Exists(ctx context.Context, filter models.AircraftTypeFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByName retrieves an aircraft type by its unique name
func (r *AircraftTypeRepositoryImpl) ByName(ctx context.Context, name string) (*models.AircraftType, error) {
	db := r.getDB(ctx)
	var at models.AircraftType
	err := db.Where("name = ?", name).First(&at).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &at, nil
}

// ListAll returns every aircraft type ordered by ID
func (r *AircraftTypeRepositoryImpl) ListAll(ctx context.Context) ([]*models.AircraftType, error) {
	return r.ByFilter(ctx, models.AircraftTypeFilter{}, "id ASC", 0, 0)
}

// Update replaces an aircraft type by ID. Every column is written
// unconditionally; zero is a valid waiver threshold and must persist.
func (r *AircraftTypeRepositoryImpl) Update(ctx context.Context, aircraftType *models.AircraftType) error {
	if aircraftType == nil {
		return errors.New("aircraft type payload is nil")
	}
	if aircraftType.ID == 0 {
		return errors.New("aircraft type ID is required for update")
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
		"updated_at":                       utils.UTCNow(),
		"name":                             aircraftType.Name,
		"classification_id":                aircraftType.ClassificationID,
		"base_min_fuel_gallons_for_waiver": aircraftType.BaseMinFuelGallonsForWaiver,
	}

	result := db.Model(&models.AircraftType{}).
		Where("id = ?", aircraftType.ID).
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
