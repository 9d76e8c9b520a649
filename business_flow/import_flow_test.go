package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/fbopoint/feesched/models"
	"github.com/fbopoint/feesched/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClassificationLister struct {
	repository.ClassificationRepository
	items []*models.AircraftClassification
}

func (f *fakeClassificationLister) ListAll(ctx context.Context) ([]*models.AircraftClassification, error) {
	return f.items, nil
}

type fakeAircraftTypeLister struct {
	repository.AircraftTypeRepository
	items []*models.AircraftType
}

func (f *fakeAircraftTypeLister) ListAll(ctx context.Context) ([]*models.AircraftType, error) {
	return f.items, nil
}

type fakeFeeRuleLister struct {
	repository.FeeRuleRepository
	items []*models.FeeRule
}

func (f *fakeFeeRuleLister) ListAll(ctx context.Context) ([]*models.FeeRule, error) {
	return f.items, nil
}

type fakeOverrideLister struct {
	repository.FeeRuleOverrideRepository
	items []*models.FeeRuleOverride
}

func (f *fakeOverrideLister) ListAll(ctx context.Context) ([]*models.FeeRuleOverride, error) {
	return f.items, nil
}

type fakeTierLister struct {
	repository.WaiverTierRepository
	items []*models.WaiverTier
}

func (f *fakeTierLister) ListAll(ctx context.Context) ([]*models.WaiverTier, error) {
	return f.items, nil
}

type fakeVersionRepo struct {
	repository.ScheduleVersionRepository
	saved []*models.FeeScheduleVersion
}

func (f *fakeVersionRepo) Save(ctx context.Context, version *models.FeeScheduleVersion) error {
	version.ID = uint(len(f.saved) + 1)
	f.saved = append(f.saved, version)
	return nil
}

func (f *fakeVersionRepo) ByID(ctx context.Context, id uint) (*models.FeeScheduleVersion, error) {
	for _, version := range f.saved {
		if version.ID == id {
			return version, nil
		}
	}
	return nil, nil
}

type fakeApplier struct {
	applied *Changeset
	err     error
}

func (f *fakeApplier) Apply(ctx context.Context, changeset *Changeset) error {
	if f.err != nil {
		return f.err
	}
	f.applied = changeset
	return nil
}

func importTestFlow(applier ChangesetApplier) (*ConfigImportFlowImpl, *fakeVersionRepo) {
	versionRepo := &fakeVersionRepo{}
	flow := &ConfigImportFlowImpl{
		classificationRepo: &fakeClassificationLister{items: []*models.AircraftClassification{{ID: 1, Name: "Light Jet"}}},
		aircraftTypeRepo:   &fakeAircraftTypeLister{},
		feeRuleRepo:        &fakeFeeRuleLister{},
		overrideRepo:       &fakeOverrideLister{},
		tierRepo:           &fakeTierLister{},
		versionRepo:        versionRepo,
		applier:            applier,
	}
	return flow, versionRepo
}

const importDocument = `{
	"classifications": [{"id": 1, "name": "Light Jet"}, {"id": 2, "name": "Heavy Jet"}],
	"aircraft_types": [],
	"fee_rules": [],
	"overrides": [],
	"waiver_tiers": []
}`

func TestImportFromFile(t *testing.T) {
	applier := &fakeApplier{}
	flow, versionRepo := importTestFlow(applier)

	result, err := flow.ImportFromFile(context.Background(), strings.NewReader(importDocument))
	require.NoError(t, err)

	require.Len(t, versionRepo.saved, 1, "a pre-import backup must be stored")
	backup := versionRepo.saved[0]
	assert.Equal(t, models.VersionSourcePreImportBackup, backup.Source)
	assert.Equal(t, backup.ID, result.BackupVersionID)

	var backupSnapshot ConfigurationSnapshot
	require.NoError(t, json.Unmarshal(backup.Document, &backupSnapshot))
	require.Len(t, backupSnapshot.Classifications, 1)
	assert.Equal(t, "Light Jet", backupSnapshot.Classifications[0].Name)

	require.NotNil(t, applier.applied)
	require.Len(t, applier.applied.Classifications.Create, 1)
	assert.Equal(t, "Heavy Jet", applier.applied.Classifications.Create[0].Name)
	assert.Equal(t, 1, result.Creates)
	assert.Equal(t, 0, result.Updates)
	assert.Equal(t, 0, result.Deletes)
}

func TestImportFromFileInvalidJSON(t *testing.T) {
	flow, versionRepo := importTestFlow(&fakeApplier{})
	_, err := flow.ImportFromFile(context.Background(), strings.NewReader("not json"))
	require.Error(t, err)
	assert.True(t, IsSnapshotMalformed(err))
	assert.Empty(t, versionRepo.saved, "no backup before the document parses")
}

func TestImportFromFileFailedApplyKeepsBackup(t *testing.T) {
	applyErr := errors.New("apply blew up")
	flow, versionRepo := importTestFlow(&fakeApplier{err: applyErr})

	_, err := flow.ImportFromFile(context.Background(), strings.NewReader(importDocument))
	require.ErrorIs(t, err, applyErr)
	require.Len(t, versionRepo.saved, 1, "backup must survive a failed import")
	assert.Equal(t, models.VersionSourcePreImportBackup, versionRepo.saved[0].Source)
}

func TestRestoreFromVersion(t *testing.T) {
	applier := &fakeApplier{}
	flow, _ := importTestFlow(applier)

	version, err := flow.CreateVersion(context.Background(), "before cleanup", "")
	require.NoError(t, err)
	assert.Equal(t, models.VersionSourceManual, version.Source)

	result, err := flow.RestoreFromVersion(context.Background(), version.ID)
	require.NoError(t, err)
	require.NotNil(t, applier.applied)
	assert.True(t, applier.applied.IsEmpty(), "restoring the current state changes nothing")
	assert.Equal(t, 0, result.Operations)
}

func TestRestoreFromVersionKeepsNumericPrecision(t *testing.T) {
	applier := &fakeApplier{}
	flow, versionRepo := importTestFlow(applier)

	document := `{
		"classifications": [{"id": 1, "name": "Light Jet"}],
		"aircraft_types": [],
		"fee_rules": [{"id": 100, "fee_code": "RAMP", "fee_name": "Ramp Fee", "amount": 123456789.123456789, "currency": "USD", "waiver_strategy": "NONE"}],
		"overrides": [],
		"waiver_tiers": []
	}`
	versionRepo.saved = append(versionRepo.saved, &models.FeeScheduleVersion{
		ID:       7,
		Name:     "precision",
		Source:   models.VersionSourceManual,
		Document: []byte(document),
	})

	_, err := flow.RestoreFromVersion(context.Background(), 7)
	require.NoError(t, err)

	require.NotNil(t, applier.applied)
	require.Len(t, applier.applied.FeeRules.Create, 1)
	assert.True(t, d("123456789.123456789").Equal(applier.applied.FeeRules.Create[0].Amount),
		"stored amounts must restore digit for digit, got %s", applier.applied.FeeRules.Create[0].Amount)
}

func TestRestoreFromVersionNotFound(t *testing.T) {
	flow, _ := importTestFlow(&fakeApplier{})
	_, err := flow.RestoreFromVersion(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, IsVersionNotFound(err))
}

func TestCreateVersionRequiresName(t *testing.T) {
	flow, _ := importTestFlow(&fakeApplier{})
	_, err := flow.CreateVersion(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}
