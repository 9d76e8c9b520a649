// Package businessflow contains the core business logic for fee schedule
// resolution, calculation, and configuration management.
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Validation errors: malformed input, aborted before any mutation
	ErrSnapshotMalformed        = errors.New("snapshot document is malformed")
	ErrEntityFieldMissing       = errors.New("required entity field is missing")
	ErrOverrideTargetInvalid    = errors.New("override must set exactly one of classification_id and aircraft_type_id")
	ErrNameRequired             = errors.New("name is required")
	ErrFeeCodeRequired          = errors.New("fee code is required")
	ErrAmountInvalid            = errors.New("amount must not be negative")
	ErrWaiverStrategyInvalid    = errors.New("waiver strategy is invalid")
	ErrTierPriorityConflict     = errors.New("waiver tiers in the same CAA partition must have distinct priorities")
	ErrFuelQuantityInvalid      = errors.New("fuel uplift and price must not be negative")
	ErrServiceQuantityInvalid   = errors.New("service quantity must be at least 1")
	ErrDuplicateSnapshotID      = errors.New("snapshot contains duplicate ids for one entity type")
	ErrVersionDocumentEmpty     = errors.New("version document is empty")
	ErrBaseMinFuelInvalid       = errors.New("base minimum fuel must not be negative")
	ErrWaiverMultiplierInvalid  = errors.New("waiver multiplier must be greater than zero")
	ErrReorderPrioritiesMissing = errors.New("priority assignments are required")

	// Reference errors: data-integrity, distinct from shape problems
	ErrFeeRuleNotFound        = errors.New("no fee rule registered for fee code")
	ErrClassificationNotFound = errors.New("classification not found")
	ErrAircraftTypeNotFound   = errors.New("aircraft type not found")
	ErrAircraftNotFound       = errors.New("aircraft not found")
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrWaiverTierNotFound     = errors.New("waiver tier not found")
	ErrOverrideNotFound       = errors.New("fee rule override not found")
	ErrVersionNotFound        = errors.New("fee schedule version not found")
	ErrClassificationInUse    = errors.New("classification is referenced by aircraft types or overrides")
	ErrAircraftTypeInUse      = errors.New("aircraft type is referenced by aircraft or overrides")
	ErrFeeRuleInUse           = errors.New("fee rule is referenced by overrides")
	ErrDanglingReference      = errors.New("snapshot record references a missing entity and could not be repaired")
	ErrFeeNotManuallyWaivable = errors.New("fee rule does not permit manual waivers")

	// Integrity errors: surfaced by the store during apply
	ErrConfigurationConflict = errors.New("configuration conflict")

	// Calculation errors: internal invariant violations, never expected
	ErrTotalsMismatch = errors.New("calculation totals do not reconcile")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsSnapshotMalformed(err error) bool {
	return errors.Is(err, ErrSnapshotMalformed)
}

func IsOverrideTargetInvalid(err error) bool {
	return errors.Is(err, ErrOverrideTargetInvalid)
}

func IsFeeRuleNotFound(err error) bool {
	return errors.Is(err, ErrFeeRuleNotFound)
}

func IsClassificationNotFound(err error) bool {
	return errors.Is(err, ErrClassificationNotFound)
}

func IsAircraftTypeNotFound(err error) bool {
	return errors.Is(err, ErrAircraftTypeNotFound)
}

func IsCustomerNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound)
}

func IsWaiverTierNotFound(err error) bool {
	return errors.Is(err, ErrWaiverTierNotFound)
}

func IsOverrideNotFound(err error) bool {
	return errors.Is(err, ErrOverrideNotFound)
}

func IsVersionNotFound(err error) bool {
	return errors.Is(err, ErrVersionNotFound)
}

func IsClassificationInUse(err error) bool {
	return errors.Is(err, ErrClassificationInUse)
}

func IsAircraftTypeInUse(err error) bool {
	return errors.Is(err, ErrAircraftTypeInUse)
}

func IsFeeRuleInUse(err error) bool {
	return errors.Is(err, ErrFeeRuleInUse)
}

func IsDanglingReference(err error) bool {
	return errors.Is(err, ErrDanglingReference)
}

func IsFeeNotManuallyWaivable(err error) bool {
	return errors.Is(err, ErrFeeNotManuallyWaivable)
}

func IsConfigurationConflict(err error) bool {
	return errors.Is(err, ErrConfigurationConflict)
}

func IsTotalsMismatch(err error) bool {
	return errors.Is(err, ErrTotalsMismatch)
}

func IsTierPriorityConflict(err error) bool {
	return errors.Is(err, ErrTierPriorityConflict)
}

// IsValidationError reports whether the error belongs to the validation family.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrSnapshotMalformed,
		ErrEntityFieldMissing,
		ErrOverrideTargetInvalid,
		ErrNameRequired,
		ErrFeeCodeRequired,
		ErrAmountInvalid,
		ErrWaiverStrategyInvalid,
		ErrTierPriorityConflict,
		ErrFuelQuantityInvalid,
		ErrServiceQuantityInvalid,
		ErrDuplicateSnapshotID,
		ErrVersionDocumentEmpty,
		ErrBaseMinFuelInvalid,
		ErrWaiverMultiplierInvalid,
		ErrReorderPrioritiesMissing,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsReferenceError reports whether the error belongs to the reference family.
func IsReferenceError(err error) bool {
	for _, target := range []error{
		ErrFeeRuleNotFound,
		ErrClassificationNotFound,
		ErrAircraftTypeNotFound,
		ErrAircraftNotFound,
		ErrCustomerNotFound,
		ErrWaiverTierNotFound,
		ErrOverrideNotFound,
		ErrVersionNotFound,
		ErrClassificationInUse,
		ErrAircraftTypeInUse,
		ErrFeeRuleInUse,
		ErrDanglingReference,
		ErrFeeNotManuallyWaivable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
