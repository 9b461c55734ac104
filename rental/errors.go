/*
errors.go - Centralized error types for the rental core

PURPOSE:
  All error types in one place for consistency and discoverability.
  Workflow packages wrap these with context; the API maps them to
  HTTP status codes through the classification helpers at the bottom.

ERROR CATEGORIES:
  1. Validation errors - bad amount, bad period, unknown enum value
  2. Lookup errors - tenant, property or record not found
  3. Business rule errors - precondition violated, property in use

Every rejected operation leaves the store untouched: workflows return the
error from inside WithTx and the transaction is rolled back.

SEE ALSO:
  - allocation.go: ErrInvalidAmount, ErrTenantNotFound, PreconditionError
  - portfolio/: wraps these with workflow context
  - api/handlers.go: writeStoreError maps categories to HTTP
*/
package rental

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned when a payment amount is zero or negative.
	ErrInvalidAmount = errors.New("invalid amount: must be positive")

	// ErrTenantNotFound is returned when a tenant reference does not resolve.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrPropertyNotFound is returned when a property reference does not resolve.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrNotFound is returned when any other record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrPrecondition is returned when the caller breaks a precondition of the
	// core, e.g. a tenant without lease start date or an inactive tenant
	// passed to allocation.
	ErrPrecondition = errors.New("precondition violated")

	// ErrPropertyInUse is returned when deleting a property that an active
	// tenant still references.
	ErrPropertyInUse = errors.New("property rented to an active tenant")

	// ErrPropertyOccupied is returned when signing a lease on a property that
	// already has an active tenant.
	ErrPropertyOccupied = errors.New("property already has an active tenant")

	// ErrInvalidPeriod is returned for malformed "YYYY-MM" identifiers.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidField is returned for unknown enum values and malformed fields.
	ErrInvalidField = errors.New("invalid field value")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PreconditionError describes why a tenant cannot be processed.
type PreconditionError struct {
	TenantCode string
	Reason     string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition violated for tenant %s: %s", e.TenantCode, e.Reason)
}

func (e *PreconditionError) Unwrap() error {
	return ErrPrecondition
}

// PropertyInUseError names the active tenant blocking a property change.
type PropertyInUseError struct {
	PropertyCode string
	TenantCode   string
}

func (e *PropertyInUseError) Error() string {
	return fmt.Sprintf("property %s is rented to active tenant %s", e.PropertyCode, e.TenantCode)
}

func (e *PropertyInUseError) Unwrap() error {
	return ErrPropertyInUse
}

// FieldError reports a value that failed parsing.
type FieldError struct {
	Field string
	Value string
	Err   error // underlying parse error, if any
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidField) ||
		errors.Is(err, ErrPrecondition)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTenantNotFound) ||
		errors.Is(err, ErrPropertyNotFound) ||
		errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the operation clashes with current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrPropertyInUse) ||
		errors.Is(err, ErrPropertyOccupied)
}
