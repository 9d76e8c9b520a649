package businessflow

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/fbopoint/feesched/models"
	"github.com/fbopoint/feesched/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// opLog records the order of store operations across all fake repositories.
type opLog struct {
	ops    []string
	nextID uint
}

func (l *opLog) record(format string, args ...any) {
	l.ops = append(l.ops, fmt.Sprintf(format, args...))
}

func (l *opLog) assignID() uint {
	l.nextID++
	return l.nextID
}

type fakeClassificationRepo struct {
	repository.ClassificationRepository
	log *opLog
}

func (f *fakeClassificationRepo) DeleteByID(ctx context.Context, id uint) error {
	f.log.record("delete classification %d", id)
	return nil
}

func (f *fakeClassificationRepo) Save(ctx context.Context, entity *models.AircraftClassification) error {
	entity.ID = f.log.assignID()
	f.log.record("create classification %q", entity.Name)
	return nil
}

func (f *fakeClassificationRepo) Update(ctx context.Context, entity *models.AircraftClassification) error {
	f.log.record("update classification %d", entity.ID)
	return nil
}

type fakeAircraftTypeRepo struct {
	repository.AircraftTypeRepository
	log     *opLog
	created []*models.AircraftType
}

func (f *fakeAircraftTypeRepo) DeleteByID(ctx context.Context, id uint) error {
	f.log.record("delete aircraft_type %d", id)
	return nil
}

func (f *fakeAircraftTypeRepo) Save(ctx context.Context, entity *models.AircraftType) error {
	entity.ID = f.log.assignID()
	f.created = append(f.created, entity)
	f.log.record("create aircraft_type %q", entity.Name)
	return nil
}

func (f *fakeAircraftTypeRepo) Update(ctx context.Context, entity *models.AircraftType) error {
	f.log.record("update aircraft_type %d", entity.ID)
	return nil
}

type fakeFeeRuleRepo struct {
	repository.FeeRuleRepository
	log *opLog
	err error
}

func (f *fakeFeeRuleRepo) DeleteByID(ctx context.Context, id uint) error {
	if f.err != nil {
		return f.err
	}
	f.log.record("delete fee_rule %d", id)
	return nil
}

func (f *fakeFeeRuleRepo) Save(ctx context.Context, entity *models.FeeRule) error {
	if f.err != nil {
		return f.err
	}
	entity.ID = f.log.assignID()
	f.log.record("create fee_rule %q", entity.FeeCode)
	return nil
}

func (f *fakeFeeRuleRepo) Update(ctx context.Context, entity *models.FeeRule) error {
	f.log.record("update fee_rule %d", entity.ID)
	return nil
}

type fakeOverrideRepo struct {
	repository.FeeRuleOverrideRepository
	log     *opLog
	created []*models.FeeRuleOverride
}

func (f *fakeOverrideRepo) DeleteByID(ctx context.Context, id uint) error {
	f.log.record("delete override %d", id)
	return nil
}

func (f *fakeOverrideRepo) Save(ctx context.Context, entity *models.FeeRuleOverride) error {
	entity.ID = f.log.assignID()
	f.created = append(f.created, entity)
	f.log.record("create override for rule %d", entity.FeeRuleID)
	return nil
}

func (f *fakeOverrideRepo) Update(ctx context.Context, entity *models.FeeRuleOverride) error {
	f.log.record("update override %d", entity.ID)
	return nil
}

type fakeTierRepo struct {
	repository.WaiverTierRepository
	log *opLog
}

func (f *fakeTierRepo) DeleteByID(ctx context.Context, id uint) error {
	f.log.record("delete waiver_tier %d", id)
	return nil
}

func (f *fakeTierRepo) Save(ctx context.Context, entity *models.WaiverTier) error {
	entity.ID = f.log.assignID()
	f.log.record("create waiver_tier %q", entity.Name)
	return nil
}

func (f *fakeTierRepo) Update(ctx context.Context, entity *models.WaiverTier) error {
	f.log.record("update waiver_tier %d", entity.ID)
	return nil
}

func newFakeApplier() (*ChangesetApplierImpl, *opLog, *fakeAircraftTypeRepo, *fakeOverrideRepo) {
	log := &opLog{nextID: 500}
	aircraftTypes := &fakeAircraftTypeRepo{log: log}
	overrides := &fakeOverrideRepo{log: log}
	applier := &ChangesetApplierImpl{
		classificationRepo: &fakeClassificationRepo{log: log},
		aircraftTypeRepo:   aircraftTypes,
		feeRuleRepo:        &fakeFeeRuleRepo{log: log},
		overrideRepo:       overrides,
		tierRepo:           &fakeTierRepo{log: log},
	}
	return applier, log, aircraftTypes, overrides
}

func TestApplyStageOrder(t *testing.T) {
	applier, log, _, _ := newFakeApplier()

	changeset := &Changeset{
		Classifications: EntityChanges[SnapshotClassification]{
			Create: []SnapshotClassification{{ID: 1, Name: "Turboprop"}},
			Delete: []uint{2},
		},
		AircraftTypes: EntityChanges[SnapshotAircraftType]{
			Create: []SnapshotAircraftType{{ID: 10, Name: "King Air 350", ClassificationID: 1}},
			Delete: []uint{11},
		},
		FeeRules: EntityChanges[SnapshotFeeRule]{
			Create: []SnapshotFeeRule{{ID: 100, FeeCode: "RAMP", WaiverStrategy: models.WaiverStrategyNone}},
			Delete: []uint{101},
		},
		Overrides: EntityChanges[SnapshotOverride]{
			Create: []SnapshotOverride{{ID: 200, FeeRuleID: 100, ClassificationID: up(1)}},
			Delete: []uint{201},
		},
		WaiverTiers: EntityChanges[SnapshotWaiverTier]{
			Create: []SnapshotWaiverTier{{ID: 300, Name: "Gold", FuelUpliftMultiplier: d("2.0")}},
			Delete: []uint{301},
		},
	}

	require.NoError(t, applier.applyStages(context.Background(), changeset))

	expected := []string{
		"delete override 201",
		"delete waiver_tier 301",
		"delete fee_rule 101",
		"delete aircraft_type 11",
		"delete classification 2",
		`create classification "Turboprop"`,
		`create aircraft_type "King Air 350"`,
		`create fee_rule "RAMP"`,
		"create override for rule 503",
		`create waiver_tier "Gold"`,
	}
	assert.Equal(t, expected, log.ops)
}

func TestApplyRemapsCreatedIDs(t *testing.T) {
	applier, _, aircraftTypes, overrides := newFakeApplier()

	changeset := &Changeset{
		Classifications: EntityChanges[SnapshotClassification]{
			Create: []SnapshotClassification{{ID: 7, Name: "Helicopter"}},
		},
		AircraftTypes: EntityChanges[SnapshotAircraftType]{
			Create: []SnapshotAircraftType{{ID: 70, Name: "Bell 407", ClassificationID: 7}},
		},
		FeeRules: EntityChanges[SnapshotFeeRule]{
			Create: []SnapshotFeeRule{{ID: 700, FeeCode: "LNDG", WaiverStrategy: models.WaiverStrategyNone}},
		},
		Overrides: EntityChanges[SnapshotOverride]{
			Create: []SnapshotOverride{{ID: 7000, FeeRuleID: 700, AircraftTypeID: up(70)}},
		},
	}

	require.NoError(t, applier.applyStages(context.Background(), changeset))

	require.Len(t, aircraftTypes.created, 1)
	assert.Equal(t, uint(501), aircraftTypes.created[0].ClassificationID, "document-local classification id must be remapped")

	require.Len(t, overrides.created, 1)
	assert.Equal(t, uint(503), overrides.created[0].FeeRuleID)
	require.NotNil(t, overrides.created[0].AircraftTypeID)
	assert.Equal(t, uint(502), *overrides.created[0].AircraftTypeID)
}

func TestApplyExistingReferencesUntouched(t *testing.T) {
	applier, _, _, overrides := newFakeApplier()

	changeset := &Changeset{
		Overrides: EntityChanges[SnapshotOverride]{
			Create: []SnapshotOverride{{ID: 200, FeeRuleID: 100, ClassificationID: up(1)}},
		},
	}

	require.NoError(t, applier.applyStages(context.Background(), changeset))
	require.Len(t, overrides.created, 1)
	assert.Equal(t, uint(100), overrides.created[0].FeeRuleID)
	assert.Equal(t, uint(1), *overrides.created[0].ClassificationID)
}

func TestApplyMapsIntegrityErrors(t *testing.T) {
	t.Run("DuplicateKey", func(t *testing.T) {
		applier, _, _, _ := newFakeApplier()
		applier.feeRuleRepo = &fakeFeeRuleRepo{log: &opLog{}, err: gorm.ErrDuplicatedKey}

		changeset := &Changeset{
			FeeRules: EntityChanges[SnapshotFeeRule]{
				Create: []SnapshotFeeRule{{ID: 100, FeeCode: "RAMP", WaiverStrategy: models.WaiverStrategyNone}},
			},
		}
		err := applier.applyStages(context.Background(), changeset)
		require.Error(t, err)
		assert.True(t, IsConfigurationConflict(err))
	})

	t.Run("VanishedRecord", func(t *testing.T) {
		applier, _, _, _ := newFakeApplier()
		applier.feeRuleRepo = &fakeFeeRuleRepo{log: &opLog{}, err: gorm.ErrRecordNotFound}

		changeset := &Changeset{
			FeeRules: EntityChanges[SnapshotFeeRule]{Delete: []uint{100}},
		}
		err := applier.applyStages(context.Background(), changeset)
		require.Error(t, err)
		assert.True(t, IsConfigurationConflict(err))
	})
}

func TestApplyTakesExclusiveConfigLock(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	applier, log, _, _ := newFakeApplier()
	applier.db = gdb

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(configApplyLockID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	changeset := &Changeset{
		Classifications: EntityChanges[SnapshotClassification]{Delete: []uint{2}},
	}
	require.NoError(t, applier.Apply(context.Background(), changeset))
	assert.Equal(t, []string{"delete classification 2"}, log.ops)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyEmptyChangesetIsNoop(t *testing.T) {
	applier, log, _, _ := newFakeApplier()
	require.NoError(t, applier.Apply(context.Background(), &Changeset{}))
	require.NoError(t, applier.Apply(context.Background(), nil))
	assert.Empty(t, log.ops)
}
