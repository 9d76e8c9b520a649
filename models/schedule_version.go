package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Version sources
const (
	VersionSourceManual          = "manual"
	VersionSourcePreImportBackup = "pre_import_backup"
)

// FeeScheduleVersion is a stored point-in-time snapshot of the full fee
// schedule configuration. Versions back restore operations and the
// automatic pre-import backups.
type FeeScheduleVersion struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`

	Name   string `gorm:"type:varchar(150);not null" json:"name"`
	Notes  string `gorm:"type:text" json:"notes"`
	Source string `gorm:"type:varchar(30);not null;default:'manual'" json:"source"`

	// Serialized ConfigurationSnapshot document
	Document json.RawMessage `gorm:"type:jsonb;not null" json:"document"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// BeforeCreate ensures UUID is set
func (v *FeeScheduleVersion) BeforeCreate(tx *gorm.DB) error {
	if v.UUID == uuid.Nil {
		v.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (FeeScheduleVersion) TableName() string {
	return "fee_schedule_versions"
}

// FeeScheduleVersionFilter represents filter criteria for version queries
type FeeScheduleVersionFilter struct {
	ID     *uint      `json:"id,omitempty"`
	UUID   *uuid.UUID `json:"uuid,omitempty"`
	Source *string    `json:"source,omitempty"`
}
