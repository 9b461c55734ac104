/*
Package sqlite provides a SQLite-backed implementation of rental.TxStore.

PURPOSE:
  Persists the portfolio (properties, tenants, payments, charges,
  maintenance requests) in a single SQLite file. The same patterns apply to
  PostgreSQL with minor SQL dialect differences.

KEY TABLES:
  biens:       Properties and their occupancy status
  locataires:  Tenants, lease data, contract filename
  paiements:   Append-only payment records (several per tenant + period)
  charges:     Operating expenses
  entretiens:  Maintenance requests

PERIOD ORDERING:
  Periods are stored as fixed-width "YYYY-MM" text. ORDER BY period is
  chronological only because of the zero padding; rental.Period.String
  guarantees it.

CONCURRENCY:
  One open connection (":memory:" databases are per-connection) and a
  sync.RWMutex. WithTx holds the write lock for the whole transaction, so
  arrears computation and the payment inserts derived from it never
  interleave with another writer.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better crash recovery.

USAGE:
  store, err := sqlite.New("./data/rental.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is versioned with goose (migrations/*.sql, embedded) and applied
  on New().

SEE ALSO:
  - rental/store.go: Interface definitions
  - rental/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/soprimec/rental-engine/rental"
)

// Store implements rental.TxStore using SQLite.
type Store struct {
	db *sql.DB
	q  *queries
	mu sync.RWMutex
}

var _ rental.TxStore = (*Store)(nil)

// New creates a new SQLite store with the given database path and applies
// pending migrations. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, q: &queries{db: db}}
	if err := store.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx executes fn within a transaction.
// If fn returns error, transaction is rolled back.
func (s *Store) WithTx(ctx context.Context, fn func(rental.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, fn)
}

// withTx requires the write lock.
func (s *Store) withTx(ctx context.Context, fn func(rental.Store) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&queries{db: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// =============================================================================
// PROPERTY STORE
// =============================================================================

func (s *Store) GetProperty(ctx context.Context, code string) (*rental.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.GetProperty(ctx, code)
}

func (s *Store) ListProperties(ctx context.Context) ([]rental.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListProperties(ctx)
}

func (s *Store) SaveProperty(ctx context.Context, p rental.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.SaveProperty(ctx, p)
}

func (s *Store) SetPropertyStatus(ctx context.Context, code string, status rental.PropertyStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.SetPropertyStatus(ctx, code, status)
}

func (s *Store) DeleteProperty(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.DeleteProperty(ctx, code)
}

// =============================================================================
// TENANT STORE
// =============================================================================

func (s *Store) GetTenant(ctx context.Context, code string) (*rental.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.GetTenant(ctx, code)
}

func (s *Store) ListTenants(ctx context.Context) ([]rental.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListTenants(ctx)
}

func (s *Store) ListActiveTenants(ctx context.Context) ([]rental.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListActiveTenants(ctx)
}

func (s *Store) ActiveTenantsOf(ctx context.Context, propertyCode string) ([]rental.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ActiveTenantsOf(ctx, propertyCode)
}

func (s *Store) SaveTenant(ctx context.Context, t rental.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.SaveTenant(ctx, t)
}

func (s *Store) SetTenantContract(ctx context.Context, code, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.SetTenantContract(ctx, code, filename)
}

func (s *Store) DeleteTenant(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.DeleteTenant(ctx, code)
}

// =============================================================================
// PAYMENT STORE
// =============================================================================

func (s *Store) PaidPayments(ctx context.Context, tenantCode string) ([]rental.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.PaidPayments(ctx, tenantCode)
}

func (s *Store) PaymentsForPeriod(ctx context.Context, period rental.Period) ([]rental.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.PaymentsForPeriod(ctx, period)
}

func (s *Store) ListPayments(ctx context.Context) ([]rental.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListPayments(ctx)
}

// InsertPayments adds records atomically.
func (s *Store) InsertPayments(ctx context.Context, payments []rental.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withTx(ctx, func(tx rental.Store) error {
		return tx.InsertPayments(ctx, payments)
	})
}

func (s *Store) DeletePayment(ctx context.Context, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.DeletePayment(ctx, number)
}

// =============================================================================
// EXPENSE STORE
// =============================================================================

func (s *Store) ListCharges(ctx context.Context) ([]rental.Charge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListCharges(ctx)
}

func (s *Store) SaveCharge(ctx context.Context, c rental.Charge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.SaveCharge(ctx, c)
}

func (s *Store) DeleteCharge(ctx context.Context, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.DeleteCharge(ctx, number)
}

func (s *Store) ListMaintenance(ctx context.Context) ([]rental.MaintenanceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.ListMaintenance(ctx)
}

func (s *Store) SaveMaintenance(ctx context.Context, m rental.MaintenanceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.SaveMaintenance(ctx, m)
}

func (s *Store) DeleteMaintenance(ctx context.Context, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q.DeleteMaintenance(ctx, number)
}

// =============================================================================
// SEQUENCES AND BULK OPERATIONS
// =============================================================================

func (s *Store) Codes(ctx context.Context, kind rental.CodeKind) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.q.Codes(ctx, kind)
}

// ReplaceAll overwrites the tables present in data atomically.
func (s *Store) ReplaceAll(ctx context.Context, data rental.DataSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withTx(ctx, func(tx rental.Store) error {
		return tx.ReplaceAll(ctx, data)
	})
}

// Reset clears all data (for testing and demo resets).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withTx(ctx, func(tx rental.Store) error {
		return tx.Reset(ctx)
	})
}
