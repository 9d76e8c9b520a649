// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/fbopoint/feesched/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	DeleteByID(ctx context.Context, id uint) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ClassificationRepository defines operations for aircraft classifications
type ClassificationRepository interface {
	Repository[models.AircraftClassification, models.AircraftClassificationFilter]
	ByName(ctx context.Context, name string) (*models.AircraftClassification, error)
	Update(ctx context.Context, classification *models.AircraftClassification) error
	ListAll(ctx context.Context) ([]*models.AircraftClassification, error)
}

// AircraftTypeRepository defines operations for aircraft types
type AircraftTypeRepository interface {
	Repository[models.AircraftType, models.AircraftTypeFilter]
	ByName(ctx context.Context, name string) (*models.AircraftType, error)
	Update(ctx context.Context, aircraftType *models.AircraftType) error
	ListAll(ctx context.Context) ([]*models.AircraftType, error)
}

// AircraftRepository defines operations for registered aircraft
type AircraftRepository interface {
	Repository[models.Aircraft, models.AircraftFilter]
	ByTailNumber(ctx context.Context, tailNumber string) (*models.Aircraft, error)
	CountByAircraftType(ctx context.Context, aircraftTypeID uint) (int64, error)
}

// FeeRuleRepository defines operations for global fee rules
type FeeRuleRepository interface {
	Repository[models.FeeRule, models.FeeRuleFilter]
	ByFeeCode(ctx context.Context, feeCode string) (*models.FeeRule, error)
	Update(ctx context.Context, rule *models.FeeRule) error
	ListAll(ctx context.Context) ([]*models.FeeRule, error)
}

// FeeRuleOverrideRepository defines operations for fee rule overrides
type FeeRuleOverrideRepository interface {
	Repository[models.FeeRuleOverride, models.FeeRuleOverrideFilter]
	ListByFeeRule(ctx context.Context, feeRuleID uint) ([]*models.FeeRuleOverride, error)
	Update(ctx context.Context, override *models.FeeRuleOverride) error
	ListAll(ctx context.Context) ([]*models.FeeRuleOverride, error)
}

// WaiverTierRepository defines operations for waiver tiers
type WaiverTierRepository interface {
	Repository[models.WaiverTier, models.WaiverTierFilter]
	Update(ctx context.Context, tier *models.WaiverTier) error
	ListAll(ctx context.Context) ([]*models.WaiverTier, error)
	// ReorderPriorities reassigns tier priorities in bulk inside one
	// transaction; either every priority updates or none do.
	ReorderPriorities(ctx context.Context, priorities map[uint]int) error
}

// CustomerRepository defines operations for customers
type CustomerRepository interface {
	Repository[models.Customer, models.CustomerFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Customer, error)
}

// ScheduleVersionRepository defines operations for stored fee schedule versions
type ScheduleVersionRepository interface {
	Repository[models.FeeScheduleVersion, models.FeeScheduleVersionFilter]
	ListVersions(ctx context.Context, limit, offset int) ([]*models.FeeScheduleVersion, error)
}
