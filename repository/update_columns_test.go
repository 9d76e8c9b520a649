package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/fbopoint/feesched/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mockWriteContext opens a gorm session over sqlmock and places it in the
// transaction slot of the returned context, so repository writes hit the
// mock directly without beginning their own transaction.
func mockWriteContext(t *testing.T) (context.Context, sqlmock.Sqlmock, *gorm.DB) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), TxContextKey, gdb)
	return ctx, mock, gdb
}

// A diffed update must write every column the snapshot differ compares,
// identity columns included. Columns appear in the statement sorted by name.

func TestOverrideUpdateWritesTargetColumns(t *testing.T) {
	ctx, mock, gdb := mockWriteContext(t)
	repo := NewFeeRuleOverrideRepository(gdb)

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE "fee_rule_overrides" SET "aircraft_type_id"=$1,"classification_id"=$2,"fee_rule_id"=$3,"override_amount"=$4,"override_caa_amount"=$5,"updated_at"=$6 WHERE id = $7`,
	)).WillReturnResult(sqlmock.NewResult(0, 1))

	aircraftTypeID := uint(10)
	amount := decimal.RequireFromString("50.00")
	err := repo.Update(ctx, &models.FeeRuleOverride{
		ID:             200,
		FeeRuleID:      100,
		AircraftTypeID: &aircraftTypeID,
		OverrideAmount: &amount,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeRuleUpdateWritesFeeCode(t *testing.T) {
	ctx, mock, gdb := mockWriteContext(t)
	repo := NewFeeRuleRepository(gdb)

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE "fee_rules" SET "amount"=$1,"caa_override_amount"=$2,"caa_simple_waiver_multiplier_override"=$3,"caa_waiver_strategy_override"=$4,"currency"=$5,"fee_code"=$6,"fee_name"=$7,"has_caa_override"=$8,"is_manually_waivable"=$9,"is_taxable"=$10,"simple_waiver_multiplier"=$11,"updated_at"=$12,"waiver_strategy"=$13 WHERE id = $14`,
	)).WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(ctx, &models.FeeRule{
		ID:             100,
		FeeCode:        "RAMP_HEAVY",
		FeeName:        "Ramp Fee",
		Amount:         decimal.RequireFromString("100.00"),
		Currency:       "USD",
		IsTaxable:      true,
		WaiverStrategy: models.WaiverStrategyNone,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAircraftTypeUpdateWritesZeroThreshold(t *testing.T) {
	ctx, mock, gdb := mockWriteContext(t)
	repo := NewAircraftTypeRepository(gdb)

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE "aircraft_types" SET "base_min_fuel_gallons_for_waiver"=$1,"classification_id"=$2,"name"=$3,"updated_at"=$4 WHERE id = $5`,
	)).WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(ctx, &models.AircraftType{
		ID:                          11,
		Name:                        "Pilatus PC-12",
		ClassificationID:            2,
		BaseMinFuelGallonsForWaiver: decimal.Zero,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
