package repository

import (
	"context"
	"errors"

	"github.com/fbopoint/feesched/models"
	"gorm.io/gorm"
)

// AircraftRepositoryImpl implements AircraftRepository
type AircraftRepositoryImpl struct {
	*BaseRepository[models.Aircraft, models.AircraftFilter]
}

// NewAircraftRepository creates a new repository for registered aircraft
func NewAircraftRepository(db *gorm.DB) AircraftRepository {
	return &AircraftRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Aircraft, models.AircraftFilter](db),
	}
}

// applyFilter applies filter conditions to the GORM query
func (r *AircraftRepositoryImpl) applyFilter(db *gorm.DB, filter models.AircraftFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.TailNumber != nil {
		db = db.Where("tail_number = ?", *filter.TailNumber)
	}
	if filter.AircraftTypeID != nil {
		db = db.Where("aircraft_type_id = ?", *filter.AircraftTypeID)
	}
	if filter.CustomerID != nil {
		db = db.Where("customer_id = ?", *filter.CustomerID)
	}
	return db
}

// ByFilter retrieves aircraft based on filter criteria
func (r *AircraftRepositoryImpl) ByFilter(ctx context.Context, filter models.AircraftFilter, orderBy string, limit, offset int) ([]*models.Aircraft, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Aircraft{}), filter)

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

	var rows []*models.Aircraft
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of aircraft matching the filter
func (r *AircraftRepositoryImpl) Count(ctx context.Context, filter models.AircraftFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.Aircraft{}), filter).Count(&count).Error
	return count, err
}

// Exists checks if any aircraft matching the filter exists
func (r *AircraftRepositoryImpl) Exists(ctx context.Context, filter models.AircraftFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ByTailNumber retrieves an aircraft by its unique tail number
func (r *AircraftRepositoryImpl) ByTailNumber(ctx context.Context, tailNumber string) (*models.Aircraft, error) {
	db := r.getDB(ctx)
	var a models.Aircraft
	err := db.Where("tail_number = ?", tailNumber).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// CountByAircraftType returns how many aircraft reference a given aircraft type
func (r *AircraftRepositoryImpl) CountByAircraftType(ctx context.Context, aircraftTypeID uint) (int64, error) {
	return r.Count(ctx, models.AircraftFilter{AircraftTypeID: &aircraftTypeID})
}
