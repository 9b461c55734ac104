/*
store.go - Persistence interfaces for the rental portfolio

PURPOSE:
  Defines the boundary between the workflows and the database. The core
  algorithms (arrears, allocation, reminders, reports) never call these;
  workflows read a snapshot through them and pass it in as plain data.

KEY INTERFACES:
  PropertyStore:  Properties and their occupancy flag
  TenantStore:    Tenants, lease data, contract reference
  PaymentStore:   Append-only payment records
  ExpenseStore:   Charges and maintenance requests
  Sequencer:      Existing codes, for identifier issuance
  Store:          All of the above
  TxStore:        Store + WithTx for atomic multi-table writes

LOOKUPS:
  Get* methods return (nil, nil) when the record does not exist, like the
  rest of the storage layer. Delete* methods return ErrNotFound (or the
  entity-specific sentinel) when nothing was deleted.

ATOMICITY:
  Payment allocation, lease signing/termination, property deletion and
  bulk import each run inside one WithTx call. Inside fn, only use the
  Store passed in: it is the transactional view.

IMPLEMENTATIONS:
  - store/sqlite: SQLite with goose migrations
  - rental/store: In-memory for tests and development

SEE ALSO:
  - portfolio/: Workflows that use these interfaces
*/
package rental

import "context"

// =============================================================================
// STORE - Per-entity persistence interfaces
// =============================================================================

type PropertyStore interface {
	GetProperty(ctx context.Context, code string) (*Property, error)
	ListProperties(ctx context.Context) ([]Property, error)

	// SaveProperty inserts or replaces a property.
	SaveProperty(ctx context.Context, p Property) error
	SetPropertyStatus(ctx context.Context, code string, status PropertyStatus) error
	DeleteProperty(ctx context.Context, code string) error
}

type TenantStore interface {
	GetTenant(ctx context.Context, code string) (*Tenant, error)
	ListTenants(ctx context.Context) ([]Tenant, error)
	ListActiveTenants(ctx context.Context) ([]Tenant, error)

	// ActiveTenantsOf returns the active tenants referencing a property.
	ActiveTenantsOf(ctx context.Context, propertyCode string) ([]Tenant, error)

	// SaveTenant inserts or replaces a tenant.
	SaveTenant(ctx context.Context, t Tenant) error

	// SetTenantContract records the contract filename; "" clears it.
	SetTenantContract(ctx context.Context, code, filename string) error
	DeleteTenant(ctx context.Context, code string) error
}

// PaymentStore is append-only apart from deletion of whole records.
type PaymentStore interface {
	// PaidPayments returns the Payé payments of a tenant ordered by period.
	PaidPayments(ctx context.Context, tenantCode string) ([]Payment, error)
	PaymentsForPeriod(ctx context.Context, period Period) ([]Payment, error)
	ListPayments(ctx context.Context) ([]Payment, error)

	// InsertPayments appends records. Numbers must be unique.
	InsertPayments(ctx context.Context, payments []Payment) error
	DeletePayment(ctx context.Context, number string) error
}

type ExpenseStore interface {
	ListCharges(ctx context.Context) ([]Charge, error)
	SaveCharge(ctx context.Context, c Charge) error
	DeleteCharge(ctx context.Context, number string) error

	ListMaintenance(ctx context.Context) ([]MaintenanceRequest, error)
	SaveMaintenance(ctx context.Context, m MaintenanceRequest) error
	DeleteMaintenance(ctx context.Context, number string) error
}

// Sequencer exposes existing codes so the caller can issue the next one.
type Sequencer interface {
	Codes(ctx context.Context, kind CodeKind) ([]string, error)
}

// Store is the full persistence surface.
type Store interface {
	PropertyStore
	TenantStore
	PaymentStore
	ExpenseStore
	Sequencer

	// ReplaceAll overwrites every table present in the data set. Nil
	// slices leave their table untouched.
	ReplaceAll(ctx context.Context, data DataSet) error

	// Reset deletes every record.
	Reset(ctx context.Context) error
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// DataSet is a full or partial copy of the portfolio, used by backup
// export/import. A nil slice means "not present".
type DataSet struct {
	Properties  []Property
	Tenants     []Tenant
	Payments    []Payment
	Charges     []Charge
	Maintenance []MaintenanceRequest
}
