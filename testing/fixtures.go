// Package testing provides test utilities and database setup for testing the fee schedule engine
package testing

import (
	"fmt"
	"math/rand"

	"github.com/fbopoint/feesched/models"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestClassification creates a classification with a unique name
func (tf *TestFixtures) CreateTestClassification(name string) (*models.AircraftClassification, error) {
	if name == "" {
		name = fmt.Sprintf("Classification %06d", rand.Intn(900000)+100000)
	}
	classification := &models.AircraftClassification{Name: name}
	if err := tf.DB.DB.Create(classification).Error; err != nil {
		return nil, fmt.Errorf("failed to create test classification: %w", err)
	}
	return classification, nil
}

// CreateTestAircraftType creates an aircraft type under the given classification
func (tf *TestFixtures) CreateTestAircraftType(classificationID uint, baseMinFuel string) (*models.AircraftType, error) {
	minFuel, err := decimal.NewFromString(baseMinFuel)
	if err != nil {
		return nil, fmt.Errorf("invalid base min fuel %q: %w", baseMinFuel, err)
	}
	aircraftType := &models.AircraftType{
		Name:                        fmt.Sprintf("Type %06d", rand.Intn(900000)+100000),
		ClassificationID:            classificationID,
		BaseMinFuelGallonsForWaiver: minFuel,
	}
	if err := tf.DB.DB.Create(aircraftType).Error; err != nil {
		return nil, fmt.Errorf("failed to create test aircraft type: %w", err)
	}
	return aircraftType, nil
}

// CreateTestAircraft registers an aircraft with a unique tail number
func (tf *TestFixtures) CreateTestAircraft(aircraftTypeID uint, customerID *uint) (*models.Aircraft, error) {
	aircraft := &models.Aircraft{
		TailNumber:     fmt.Sprintf("N%05d", rand.Intn(90000)+10000),
		AircraftTypeID: aircraftTypeID,
		CustomerID:     customerID,
	}
	if err := tf.DB.DB.Create(aircraft).Error; err != nil {
		return nil, fmt.Errorf("failed to create test aircraft: %w", err)
	}
	return aircraft, nil
}

// CreateTestCustomer creates a customer, optionally a CAA member
func (tf *TestFixtures) CreateTestCustomer(isCAAMember bool) (*models.Customer, error) {
	randomDigits := fmt.Sprintf("%06d", rand.Intn(900000)+100000)
	customer := &models.Customer{
		Name:        fmt.Sprintf("Test Operator %s", randomDigits),
		Email:       fmt.Sprintf("ops.%s@example.com", randomDigits),
		IsCAAMember: isCAAMember,
	}
	if err := tf.DB.DB.Create(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create test customer: %w", err)
	}
	return customer, nil
}

// CreateTestFeeRule creates a global fee rule for the given code
func (tf *TestFixtures) CreateTestFeeRule(feeCode, amount string, strategy models.WaiverStrategy) (*models.FeeRule, error) {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	rule := &models.FeeRule{
		FeeCode:                feeCode,
		FeeName:                feeCode + " Fee",
		Amount:                 amt,
		Currency:               "USD",
		IsTaxable:              true,
		WaiverStrategy:         strategy,
		SimpleWaiverMultiplier: decimal.NewFromInt(1),
	}
	if err := tf.DB.DB.Create(rule).Error; err != nil {
		return nil, fmt.Errorf("failed to create test fee rule: %w", err)
	}
	return rule, nil
}

// CreateTestOverride creates an override for the given rule and target
func (tf *TestFixtures) CreateTestOverride(feeRuleID uint, classificationID, aircraftTypeID *uint, overrideAmount string) (*models.FeeRuleOverride, error) {
	override := &models.FeeRuleOverride{
		FeeRuleID:        feeRuleID,
		ClassificationID: classificationID,
		AircraftTypeID:   aircraftTypeID,
	}
	if overrideAmount != "" {
		amt, err := decimal.NewFromString(overrideAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid override amount %q: %w", overrideAmount, err)
		}
		override.OverrideAmount = &amt
	}
	if err := tf.DB.DB.Create(override).Error; err != nil {
		return nil, fmt.Errorf("failed to create test override: %w", err)
	}
	return override, nil
}

// CreateTestWaiverTier creates a waiver tier with the given priority
func (tf *TestFixtures) CreateTestWaiverTier(name string, multiplier string, priority int, caaSpecific bool, waivedCodes []string) (*models.WaiverTier, error) {
	mult, err := decimal.NewFromString(multiplier)
	if err != nil {
		return nil, fmt.Errorf("invalid multiplier %q: %w", multiplier, err)
	}
	tier := &models.WaiverTier{
		Name:                 name,
		FuelUpliftMultiplier: mult,
		FeesWaivedCodes:      pq.StringArray(waivedCodes),
		TierPriority:         priority,
		IsCAASpecificTier:    caaSpecific,
	}
	if err := tf.DB.DB.Create(tier).Error; err != nil {
		return nil, fmt.Errorf("failed to create test waiver tier: %w", err)
	}
	return tier, nil
}
