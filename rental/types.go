/*
Package rental provides the core of the rental portfolio engine.

PURPOSE:
  Domain types and pure algorithms for a small rental portfolio: properties,
  tenants, rent payments, operating charges and maintenance requests. The
  hard logic lives here: arrears computation, payment allocation, reminder
  generation and reporting. Nothing in this package touches storage or the
  wall clock; callers pass the payment history and "today" explicitly.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: integer money in the smallest currency unit (FCFA)
  - Closed enumerations for every status field
  - Property, Tenant, Payment, Charge, MaintenanceRequest records

DESIGN PRINCIPLES:
  1. Append-only payments: a payment is never edited, only deleted
  2. Integer arithmetic: no rounding anywhere in the money path
  3. Closed enums: unknown status strings are rejected at the boundary

SEE ALSO:
  - period.go: Billing period arithmetic
  - arrears.go: Arrears calculator
  - allocation.go: Payment allocator
  - store.go: Persistence interfaces
*/
package rental

import (
	"time"
)

// =============================================================================
// AMOUNT - Money in the smallest currency unit
// =============================================================================

// Amount is a sum of money in FCFA. There is no fractional subdivision.
type Amount int64

func (a Amount) IsZero() bool     { return a == 0 }
func (a Amount) IsPositive() bool { return a > 0 }
func (a Amount) IsNegative() bool { return a < 0 }

// Min returns the smaller of a and b.
func (a Amount) Min(b Amount) Amount {
	if a < b {
		return a
	}
	return b
}

// =============================================================================
// ENUMERATIONS
// =============================================================================

// PropertyStatus is the occupancy status of a property.
type PropertyStatus string

const (
	PropertyVacant PropertyStatus = "Vacant"
	PropertyLet    PropertyStatus = "Loué"
)

func (s PropertyStatus) Valid() bool {
	return s == PropertyVacant || s == PropertyLet
}

// ParsePropertyStatus parses a stored or submitted status. Empty means Vacant.
func ParsePropertyStatus(s string) (PropertyStatus, error) {
	if s == "" {
		return PropertyVacant, nil
	}
	st := PropertyStatus(s)
	if !st.Valid() {
		return "", &FieldError{Field: "property.status", Value: s}
	}
	return st, nil
}

// TenantStatus is the lifecycle status of a tenant.
type TenantStatus string

const (
	TenantActive   TenantStatus = "Actif"
	TenantInactive TenantStatus = "Inactif"
)

func (s TenantStatus) Valid() bool {
	return s == TenantActive || s == TenantInactive
}

// ParseTenantStatus parses a tenant status. Empty means Actif.
func ParseTenantStatus(s string) (TenantStatus, error) {
	if s == "" {
		return TenantActive, nil
	}
	st := TenantStatus(s)
	if !st.Valid() {
		return "", &FieldError{Field: "tenant.status", Value: s}
	}
	return st, nil
}

// PaymentStatus is the status of a payment record. Only PaymentPaid counts
// towards rent.
type PaymentStatus string

const (
	PaymentPaid      PaymentStatus = "Payé"
	PaymentPending   PaymentStatus = "En attente"
	PaymentCancelled PaymentStatus = "Annulé"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPaid, PaymentPending, PaymentCancelled:
		return true
	}
	return false
}

// ParsePaymentStatus parses a payment status. Empty means Payé.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	if s == "" {
		return PaymentPaid, nil
	}
	st := PaymentStatus(s)
	if !st.Valid() {
		return "", &FieldError{Field: "payment.status", Value: s}
	}
	return st, nil
}

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	MethodCash        PaymentMethod = "Espèces"
	MethodTransfer    PaymentMethod = "Virement"
	MethodCheque      PaymentMethod = "Chèque"
	MethodMobileMoney PaymentMethod = "Mobile Money"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodTransfer, MethodCheque, MethodMobileMoney:
		return true
	}
	return false
}

// ParsePaymentMethod parses a payment method. Empty means Espèces.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	if s == "" {
		return MethodCash, nil
	}
	m := PaymentMethod(s)
	if !m.Valid() {
		return "", &FieldError{Field: "payment.method", Value: s}
	}
	return m, nil
}

// ChargeStatus is the settlement status of an operating charge.
type ChargeStatus string

const (
	ChargePaid   ChargeStatus = "Payé"
	ChargeUnpaid ChargeStatus = "Impayé"
)

func (s ChargeStatus) Valid() bool {
	return s == ChargePaid || s == ChargeUnpaid
}

// ParseChargeStatus parses a charge status. Empty means Payé.
func ParseChargeStatus(s string) (ChargeStatus, error) {
	if s == "" {
		return ChargePaid, nil
	}
	st := ChargeStatus(s)
	if !st.Valid() {
		return "", &FieldError{Field: "charge.status", Value: s}
	}
	return st, nil
}

// Urgency tiers for maintenance requests.
type Urgency string

const (
	UrgencyLow      Urgency = "Basse"
	UrgencyMedium   Urgency = "Moyenne"
	UrgencyHigh     Urgency = "Haute"
	UrgencyCritical Urgency = "Urgente"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// ParseUrgency parses an urgency tier. Empty means Basse.
func ParseUrgency(s string) (Urgency, error) {
	if s == "" {
		return UrgencyLow, nil
	}
	u := Urgency(s)
	if !u.Valid() {
		return "", &FieldError{Field: "maintenance.urgency", Value: s}
	}
	return u, nil
}

// MaintenanceStatus tracks a maintenance request from planning to completion.
type MaintenanceStatus string

const (
	MaintenancePlanned    MaintenanceStatus = "Planifié"
	MaintenanceInProgress MaintenanceStatus = "En cours"
	MaintenanceDone       MaintenanceStatus = "Terminé"
	MaintenanceCancelled  MaintenanceStatus = "Annulé"
)

func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenancePlanned, MaintenanceInProgress, MaintenanceDone, MaintenanceCancelled:
		return true
	}
	return false
}

// ParseMaintenanceStatus parses a maintenance status. Empty means Planifié.
func ParseMaintenanceStatus(s string) (MaintenanceStatus, error) {
	if s == "" {
		return MaintenancePlanned, nil
	}
	st := MaintenanceStatus(s)
	if !st.Valid() {
		return "", &FieldError{Field: "maintenance.status", Value: s}
	}
	return st, nil
}

// =============================================================================
// RECORDS
// =============================================================================

// Property is a rentable unit ("bien").
type Property struct {
	Code     string
	Type     string
	Building string
	Unit     string
	Address  string
	City     string
	Surface  string
	Rooms    string
	Rent     Amount
	Charges  Amount
	Status   PropertyStatus
	Owner    string
	Notes    string
}

// Tenant is a lessee ("locataire"). Rent is copied from the property when the
// lease is signed and may diverge from the property's current rent.
type Tenant struct {
	Code         string
	Name         string
	Phone        string
	Email        string
	IDNumber     string
	Profession   string
	PropertyCode string // empty when no property is assigned
	LeaseStart   time.Time
	LeaseMonths  int
	Rent         Amount
	Deposit      Amount
	Status       TenantStatus
	Contract     string // original filename of the contract document
}

// IsActive reports whether arrears are tracked for the tenant.
func (t Tenant) IsActive() bool { return t.Status == TenantActive }

// Payment is one immutable rent payment record. Several records may share a
// tenant and period; partial payments accumulate.
type Payment struct {
	Number     string
	TenantCode string
	Period     Period
	Amount     Amount
	Date       time.Time
	Method     PaymentMethod
	Reference  string
	Status     PaymentStatus
}

// Charge is an operating expense for a property, independent of tenants.
type Charge struct {
	Number       string
	PropertyCode string
	Category     string
	Date         time.Time
	Amount       Amount
	Supplier     string
	Reference    string
	Description  string
	Status       ChargeStatus
}

// MaintenanceRequest is a planned or completed intervention on a property.
type MaintenanceRequest struct {
	Number       string
	PropertyCode string
	Category     string
	Urgency      Urgency
	RequestedOn  time.Time
	ScheduledOn  time.Time
	Provider     string
	Cost         Amount
	Description  string
	Status       MaintenanceStatus
}

// DateLayout is the calendar-date format used in storage and on the wire.
const DateLayout = "2006-01-02"

// FormatDate renders a date as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate parses YYYY-MM-DD. Empty input yields the zero time. Longer ISO
// timestamps are accepted and truncated to their date part.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &FieldError{Field: "date", Value: s, Err: err}
	}
	return t, nil
}
