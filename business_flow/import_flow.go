package businessflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/fbopoint/feesched/models"
	"github.com/fbopoint/feesched/repository"
	"github.com/fbopoint/feesched/utils"
)

// ImportResult summarizes what an import or restore changed.
type ImportResult struct {
	BackupVersionID uint             `json:"backup_version_id"`
	Operations      int              `json:"operations"`
	Creates         int              `json:"creates"`
	Updates         int              `json:"updates"`
	Deletes         int              `json:"deletes"`
	Report          *TransformReport `json:"report,omitempty"`
}

// ConfigImportFlow handles snapshot export, stored versions, and the
// import/restore path (transform, validate, backup, diff, apply).
type ConfigImportFlow interface {
	ExportSnapshot(ctx context.Context) (*ConfigurationSnapshot, error)
	CreateVersion(ctx context.Context, name, notes string) (*models.FeeScheduleVersion, error)
	ListVersions(ctx context.Context, limit, offset int) ([]*models.FeeScheduleVersion, error)
	ImportFromFile(ctx context.Context, r io.Reader) (*ImportResult, error)
	RestoreFromVersion(ctx context.Context, versionID uint) (*ImportResult, error)
}

type ConfigImportFlowImpl struct {
	classificationRepo repository.ClassificationRepository
	aircraftTypeRepo   repository.AircraftTypeRepository
	feeRuleRepo        repository.FeeRuleRepository
	overrideRepo       repository.FeeRuleOverrideRepository
	tierRepo           repository.WaiverTierRepository
	versionRepo        repository.ScheduleVersionRepository
	applier            ChangesetApplier
	cache              *ScheduleCache
}

func NewConfigImportFlow(
	classificationRepo repository.ClassificationRepository,
	aircraftTypeRepo repository.AircraftTypeRepository,
	feeRuleRepo repository.FeeRuleRepository,
	overrideRepo repository.FeeRuleOverrideRepository,
	tierRepo repository.WaiverTierRepository,
	versionRepo repository.ScheduleVersionRepository,
	applier ChangesetApplier,
	cache *ScheduleCache,
) ConfigImportFlow {
	return &ConfigImportFlowImpl{
		classificationRepo: classificationRepo,
		aircraftTypeRepo:   aircraftTypeRepo,
		feeRuleRepo:        feeRuleRepo,
		overrideRepo:       overrideRepo,
		tierRepo:           tierRepo,
		versionRepo:        versionRepo,
		applier:            applier,
		cache:              cache,
	}
}

func (f *ConfigImportFlowImpl) ExportSnapshot(ctx context.Context) (*ConfigurationSnapshot, error) {
	return CaptureSnapshot(ctx, f.classificationRepo, f.aircraftTypeRepo, f.feeRuleRepo, f.overrideRepo, f.tierRepo)
}

func (f *ConfigImportFlowImpl) CreateVersion(ctx context.Context, name, notes string) (*models.FeeScheduleVersion, error) {
	if name == "" {
		return nil, NewBusinessError("VERSION_NAME_REQUIRED", "Version name is required", ErrNameRequired)
	}
	return f.persistVersion(ctx, name, notes, models.VersionSourceManual)
}

func (f *ConfigImportFlowImpl) ListVersions(ctx context.Context, limit, offset int) ([]*models.FeeScheduleVersion, error) {
	return f.versionRepo.ListVersions(ctx, limit, offset)
}

// ImportFromFile parses an uploaded snapshot document and applies it against
// the live configuration. A pre-import backup version is committed before
// the apply transaction starts, so a failed import leaves a recoverable
// state behind.
func (f *ConfigImportFlowImpl) ImportFromFile(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var raw map[string]any
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, NewBusinessErrorf("SNAPSHOT_MALFORMED", "Snapshot document is not valid JSON: %v", ErrSnapshotMalformed, err)
	}
	return f.applyDocument(ctx, raw)
}

// RestoreFromVersion replays a stored snapshot. The stored document goes
// through the same transform path as uploads so old versions written in the
// legacy format still restore.
func (f *ConfigImportFlowImpl) RestoreFromVersion(ctx context.Context, versionID uint) (*ImportResult, error) {
	version, err := f.versionRepo.ByID(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, NewBusinessErrorf("VERSION_NOT_FOUND", "Fee schedule version %d does not exist", ErrVersionNotFound, versionID)
	}
	if len(version.Document) == 0 {
		return nil, NewBusinessErrorf("VERSION_DOCUMENT_EMPTY", "Fee schedule version %d has no document", ErrVersionDocumentEmpty, versionID)
	}

	var raw map[string]any
	decoder := json.NewDecoder(bytes.NewReader(version.Document))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, NewBusinessErrorf("SNAPSHOT_MALFORMED", "Stored document for version %d is not valid JSON: %v", ErrSnapshotMalformed, versionID, err)
	}
	return f.applyDocument(ctx, raw)
}

func (f *ConfigImportFlowImpl) applyDocument(ctx context.Context, raw map[string]any) (*ImportResult, error) {
	target, report, err := TransformLegacyDocument(raw)
	if err != nil {
		return nil, err
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	current, err := f.ExportSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	backupName := fmt.Sprintf("Pre-import backup %s", utils.UTCNowRFC3339())
	backup, err := f.persistVersion(ctx, backupName, "", models.VersionSourcePreImportBackup)
	if err != nil {
		return nil, err
	}

	changeset := DiffSnapshots(current, target)
	if err := f.applier.Apply(ctx, changeset); err != nil {
		log.Printf("config import failed, backup version %d remains available: %v", backup.ID, err)
		return nil, err
	}

	if f.cache != nil {
		f.cache.Invalidate(ctx)
	}

	result := &ImportResult{
		BackupVersionID: backup.ID,
		Operations:      changeset.TotalOperations(),
		Report:          report,
	}
	result.Creates = len(changeset.Classifications.Create) + len(changeset.AircraftTypes.Create) +
		len(changeset.FeeRules.Create) + len(changeset.Overrides.Create) + len(changeset.WaiverTiers.Create)
	result.Updates = len(changeset.Classifications.Update) + len(changeset.AircraftTypes.Update) +
		len(changeset.FeeRules.Update) + len(changeset.Overrides.Update) + len(changeset.WaiverTiers.Update)
	result.Deletes = len(changeset.Classifications.Delete) + len(changeset.AircraftTypes.Delete) +
		len(changeset.FeeRules.Delete) + len(changeset.Overrides.Delete) + len(changeset.WaiverTiers.Delete)

	log.Printf("config import applied %d operations (backup version %d)", result.Operations, backup.ID)
	return result, nil
}

// persistVersion captures and stores the live configuration. It runs on the
// caller's context without joining any surrounding transaction, so the
// written version commits independently.
func (f *ConfigImportFlowImpl) persistVersion(ctx context.Context, name, notes, source string) (*models.FeeScheduleVersion, error) {
	snapshot, err := f.ExportSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	document, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	version := &models.FeeScheduleVersion{
		Name:     name,
		Notes:    notes,
		Source:   source,
		Document: document,
	}
	if err := f.versionRepo.Save(ctx, version); err != nil {
		return nil, err
	}
	return version, nil
}
