package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/soprimec/rental-engine/rental"
)

// =============================================================================
// QUERIES - SQL for every rental.Store method
// =============================================================================

// conn is satisfied by both *sql.DB and *sql.Tx, so the same queries serve
// the locked Store methods and the transactional view handed to WithTx.
type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements rental.Store without locking. Callers serialize access.
type queries struct {
	db conn
}

var _ rental.Store = (*queries)(nil)

type scanner interface {
	Scan(dest ...any) error
}

// =============================================================================
// PROPERTIES
// =============================================================================

const propertyColumns = `code, type, building, unit, address, city, surface, rooms, rent, charges, status, owner, notes`

func scanProperty(row scanner) (rental.Property, error) {
	var p rental.Property
	var status string
	err := row.Scan(&p.Code, &p.Type, &p.Building, &p.Unit, &p.Address, &p.City,
		&p.Surface, &p.Rooms, &p.Rent, &p.Charges, &status, &p.Owner, &p.Notes)
	if err != nil {
		return p, err
	}
	p.Status = rental.PropertyStatus(status)
	return p, nil
}

func (q *queries) GetProperty(ctx context.Context, code string) (*rental.Property, error) {
	p, err := scanProperty(q.db.QueryRowContext(ctx,
		"SELECT "+propertyColumns+" FROM biens WHERE code = ?", code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property %s: %w", code, err)
	}
	return &p, nil
}

func (q *queries) ListProperties(ctx context.Context) ([]rental.Property, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT "+propertyColumns+" FROM biens ORDER BY code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	properties := []rental.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func (q *queries) SaveProperty(ctx context.Context, p rental.Property) error {
	query := `
		INSERT INTO biens (` + propertyColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			type = excluded.type,
			building = excluded.building,
			unit = excluded.unit,
			address = excluded.address,
			city = excluded.city,
			surface = excluded.surface,
			rooms = excluded.rooms,
			rent = excluded.rent,
			charges = excluded.charges,
			status = excluded.status,
			owner = excluded.owner,
			notes = excluded.notes
	`
	_, err := q.db.ExecContext(ctx, query,
		p.Code, p.Type, p.Building, p.Unit, p.Address, p.City, p.Surface, p.Rooms,
		p.Rent, p.Charges, p.Status, p.Owner, p.Notes, now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save property %s: %w", p.Code, err)
	}
	return nil
}

func (q *queries) SetPropertyStatus(ctx context.Context, code string, status rental.PropertyStatus) error {
	res, err := q.db.ExecContext(ctx, "UPDATE biens SET status = ? WHERE code = ?", status, code)
	return affected(res, err, rental.ErrPropertyNotFound)
}

func (q *queries) DeleteProperty(ctx context.Context, code string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM biens WHERE code = ?", code)
	return affected(res, err, rental.ErrPropertyNotFound)
}

// =============================================================================
// TENANTS
// =============================================================================

const tenantColumns = `code, name, phone, email, id_number, profession, property_code, lease_start, lease_months, rent, deposit, status, contract`

func scanTenant(row scanner) (rental.Tenant, error) {
	var t rental.Tenant
	var property, leaseStart, contract sql.NullString
	var status string
	err := row.Scan(&t.Code, &t.Name, &t.Phone, &t.Email, &t.IDNumber, &t.Profession,
		&property, &leaseStart, &t.LeaseMonths, &t.Rent, &t.Deposit, &status, &contract)
	if err != nil {
		return t, err
	}
	t.PropertyCode = property.String
	t.Contract = contract.String
	t.Status = rental.TenantStatus(status)
	if t.LeaseStart, err = rental.ParseDate(leaseStart.String); err != nil {
		return t, fmt.Errorf("tenant %s: %w", t.Code, err)
	}
	return t, nil
}

func (q *queries) GetTenant(ctx context.Context, code string) (*rental.Tenant, error) {
	t, err := scanTenant(q.db.QueryRowContext(ctx,
		"SELECT "+tenantColumns+" FROM locataires WHERE code = ?", code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant %s: %w", code, err)
	}
	return &t, nil
}

func (q *queries) ListTenants(ctx context.Context) ([]rental.Tenant, error) {
	return q.queryTenants(ctx, "SELECT "+tenantColumns+" FROM locataires ORDER BY code")
}

func (q *queries) ListActiveTenants(ctx context.Context) ([]rental.Tenant, error) {
	return q.queryTenants(ctx,
		"SELECT "+tenantColumns+" FROM locataires WHERE status = ? ORDER BY code",
		rental.TenantActive)
}

func (q *queries) ActiveTenantsOf(ctx context.Context, propertyCode string) ([]rental.Tenant, error) {
	return q.queryTenants(ctx,
		"SELECT "+tenantColumns+" FROM locataires WHERE property_code = ? AND status = ? ORDER BY code",
		propertyCode, rental.TenantActive)
}

func (q *queries) queryTenants(ctx context.Context, query string, args ...any) ([]rental.Tenant, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := []rental.Tenant{}
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (q *queries) SaveTenant(ctx context.Context, t rental.Tenant) error {
	query := `
		INSERT INTO locataires (` + tenantColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			email = excluded.email,
			id_number = excluded.id_number,
			profession = excluded.profession,
			property_code = excluded.property_code,
			lease_start = excluded.lease_start,
			lease_months = excluded.lease_months,
			rent = excluded.rent,
			deposit = excluded.deposit,
			status = excluded.status,
			contract = excluded.contract
	`
	_, err := q.db.ExecContext(ctx, query,
		t.Code, t.Name, t.Phone, t.Email, t.IDNumber, t.Profession,
		nullString(t.PropertyCode), nullString(rental.FormatDate(t.LeaseStart)),
		t.LeaseMonths, t.Rent, t.Deposit, t.Status, nullString(t.Contract), now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save tenant %s: %w", t.Code, err)
	}
	return nil
}

func (q *queries) SetTenantContract(ctx context.Context, code, filename string) error {
	res, err := q.db.ExecContext(ctx, "UPDATE locataires SET contract = ? WHERE code = ?", nullString(filename), code)
	return affected(res, err, rental.ErrTenantNotFound)
}

func (q *queries) DeleteTenant(ctx context.Context, code string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM locataires WHERE code = ?", code)
	return affected(res, err, rental.ErrTenantNotFound)
}

// =============================================================================
// PAYMENTS
// =============================================================================

const paymentColumns = `number, tenant_code, period, amount, paid_on, method, reference, status`

func scanPayment(row scanner) (rental.Payment, error) {
	var p rental.Payment
	var period, method, status string
	var paidOn sql.NullString
	err := row.Scan(&p.Number, &p.TenantCode, &period, &p.Amount, &paidOn, &method, &p.Reference, &status)
	if err != nil {
		return p, err
	}
	if p.Period, err = rental.ParsePeriod(period); err != nil {
		return p, fmt.Errorf("payment %s: %w", p.Number, err)
	}
	if p.Date, err = rental.ParseDate(paidOn.String); err != nil {
		return p, fmt.Errorf("payment %s: %w", p.Number, err)
	}
	p.Method = rental.PaymentMethod(method)
	p.Status = rental.PaymentStatus(status)
	return p, nil
}

// PaidPayments relies on the fixed-width period text: ORDER BY period is
// chronological.
func (q *queries) PaidPayments(ctx context.Context, tenantCode string) ([]rental.Payment, error) {
	return q.queryPayments(ctx,
		"SELECT "+paymentColumns+" FROM paiements WHERE tenant_code = ? AND status = ? ORDER BY period, number",
		tenantCode, rental.PaymentPaid)
}

func (q *queries) PaymentsForPeriod(ctx context.Context, period rental.Period) ([]rental.Payment, error) {
	return q.queryPayments(ctx,
		"SELECT "+paymentColumns+" FROM paiements WHERE period = ? ORDER BY number",
		period.String())
}

func (q *queries) ListPayments(ctx context.Context) ([]rental.Payment, error) {
	return q.queryPayments(ctx, "SELECT "+paymentColumns+" FROM paiements ORDER BY period, number")
}

func (q *queries) queryPayments(ctx context.Context, query string, args ...any) ([]rental.Payment, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []rental.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// InsertPayments is not atomic on its own; Store wraps it in a transaction.
func (q *queries) InsertPayments(ctx context.Context, payments []rental.Payment) error {
	query := `
		INSERT INTO paiements (` + paymentColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, p := range payments {
		_, err := q.db.ExecContext(ctx, query,
			p.Number, p.TenantCode, p.Period.String(), p.Amount,
			nullString(rental.FormatDate(p.Date)), p.Method, p.Reference, p.Status, now(),
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return &rental.FieldError{Field: "payment.number", Value: p.Number, Err: err}
			}
			return fmt.Errorf("failed to insert payment %s: %w", p.Number, err)
		}
	}
	return nil
}

func (q *queries) DeletePayment(ctx context.Context, number string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM paiements WHERE number = ?", number)
	return affected(res, err, rental.ErrNotFound)
}

// =============================================================================
// CHARGES AND MAINTENANCE
// =============================================================================

const chargeColumns = `number, property_code, category, charged_on, amount, supplier, reference, description, status`

func scanCharge(row scanner) (rental.Charge, error) {
	var c rental.Charge
	var chargedOn sql.NullString
	var status string
	err := row.Scan(&c.Number, &c.PropertyCode, &c.Category, &chargedOn, &c.Amount,
		&c.Supplier, &c.Reference, &c.Description, &status)
	if err != nil {
		return c, err
	}
	if c.Date, err = rental.ParseDate(chargedOn.String); err != nil {
		return c, fmt.Errorf("charge %s: %w", c.Number, err)
	}
	c.Status = rental.ChargeStatus(status)
	return c, nil
}

func (q *queries) ListCharges(ctx context.Context) ([]rental.Charge, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT "+chargeColumns+" FROM charges ORDER BY number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	charges := []rental.Charge{}
	for rows.Next() {
		c, err := scanCharge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan charge: %w", err)
		}
		charges = append(charges, c)
	}
	return charges, rows.Err()
}

func (q *queries) SaveCharge(ctx context.Context, c rental.Charge) error {
	query := `
		INSERT INTO charges (` + chargeColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
			property_code = excluded.property_code,
			category = excluded.category,
			charged_on = excluded.charged_on,
			amount = excluded.amount,
			supplier = excluded.supplier,
			reference = excluded.reference,
			description = excluded.description,
			status = excluded.status
	`
	_, err := q.db.ExecContext(ctx, query,
		c.Number, c.PropertyCode, c.Category, nullString(rental.FormatDate(c.Date)), c.Amount,
		c.Supplier, c.Reference, c.Description, c.Status, now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save charge %s: %w", c.Number, err)
	}
	return nil
}

func (q *queries) DeleteCharge(ctx context.Context, number string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM charges WHERE number = ?", number)
	return affected(res, err, rental.ErrNotFound)
}

const maintenanceColumns = `number, property_code, category, urgency, requested_on, scheduled_on, provider, cost, description, status`

func scanMaintenance(row scanner) (rental.MaintenanceRequest, error) {
	var m rental.MaintenanceRequest
	var requested, scheduled sql.NullString
	var urgency, status string
	err := row.Scan(&m.Number, &m.PropertyCode, &m.Category, &urgency, &requested, &scheduled,
		&m.Provider, &m.Cost, &m.Description, &status)
	if err != nil {
		return m, err
	}
	if m.RequestedOn, err = rental.ParseDate(requested.String); err != nil {
		return m, fmt.Errorf("maintenance %s: %w", m.Number, err)
	}
	if m.ScheduledOn, err = rental.ParseDate(scheduled.String); err != nil {
		return m, fmt.Errorf("maintenance %s: %w", m.Number, err)
	}
	m.Urgency = rental.Urgency(urgency)
	m.Status = rental.MaintenanceStatus(status)
	return m, nil
}

func (q *queries) ListMaintenance(ctx context.Context) ([]rental.MaintenanceRequest, error) {
	rows, err := q.db.QueryContext(ctx, "SELECT "+maintenanceColumns+" FROM entretiens ORDER BY number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []rental.MaintenanceRequest{}
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maintenance request: %w", err)
		}
		requests = append(requests, m)
	}
	return requests, rows.Err()
}

func (q *queries) SaveMaintenance(ctx context.Context, m rental.MaintenanceRequest) error {
	query := `
		INSERT INTO entretiens (` + maintenanceColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
			property_code = excluded.property_code,
			category = excluded.category,
			urgency = excluded.urgency,
			requested_on = excluded.requested_on,
			scheduled_on = excluded.scheduled_on,
			provider = excluded.provider,
			cost = excluded.cost,
			description = excluded.description,
			status = excluded.status
	`
	_, err := q.db.ExecContext(ctx, query,
		m.Number, m.PropertyCode, m.Category, m.Urgency,
		nullString(rental.FormatDate(m.RequestedOn)), nullString(rental.FormatDate(m.ScheduledOn)),
		m.Provider, m.Cost, m.Description, m.Status, now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save maintenance request %s: %w", m.Number, err)
	}
	return nil
}

func (q *queries) DeleteMaintenance(ctx context.Context, number string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM entretiens WHERE number = ?", number)
	return affected(res, err, rental.ErrNotFound)
}

// =============================================================================
// SEQUENCES AND BULK OPERATIONS
// =============================================================================

// codeSources maps each code kind to its table and key column.
var codeSources = map[rental.CodeKind]string{
	rental.KindProperty:    "SELECT code FROM biens",
	rental.KindTenant:      "SELECT code FROM locataires",
	rental.KindPayment:     "SELECT number FROM paiements",
	rental.KindCharge:      "SELECT number FROM charges",
	rental.KindMaintenance: "SELECT number FROM entretiens",
}

func (q *queries) Codes(ctx context.Context, kind rental.CodeKind) ([]string, error) {
	query, ok := codeSources[kind]
	if !ok {
		return nil, fmt.Errorf("unknown code kind %q", kind)
	}
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// ReplaceAll is not atomic on its own; Store wraps it in a transaction.
func (q *queries) ReplaceAll(ctx context.Context, data rental.DataSet) error {
	if data.Properties != nil {
		if err := q.clear(ctx, "biens"); err != nil {
			return err
		}
		for _, p := range data.Properties {
			if err := q.SaveProperty(ctx, p); err != nil {
				return err
			}
		}
	}
	if data.Tenants != nil {
		if err := q.clear(ctx, "locataires"); err != nil {
			return err
		}
		for _, t := range data.Tenants {
			if err := q.SaveTenant(ctx, t); err != nil {
				return err
			}
		}
	}
	if data.Payments != nil {
		if err := q.clear(ctx, "paiements"); err != nil {
			return err
		}
		if err := q.InsertPayments(ctx, data.Payments); err != nil {
			return err
		}
	}
	if data.Charges != nil {
		if err := q.clear(ctx, "charges"); err != nil {
			return err
		}
		for _, c := range data.Charges {
			if err := q.SaveCharge(ctx, c); err != nil {
				return err
			}
		}
	}
	if data.Maintenance != nil {
		if err := q.clear(ctx, "entretiens"); err != nil {
			return err
		}
		for _, m := range data.Maintenance {
			if err := q.SaveMaintenance(ctx, m); err != nil {
				return err
			}
		}
	}
	return nil
}

var allTables = []string{"paiements", "charges", "entretiens", "locataires", "biens"}

func (q *queries) Reset(ctx context.Context) error {
	for _, table := range allTables {
		if err := q.clear(ctx, table); err != nil {
			return err
		}
	}
	return nil
}

// clear only receives table names from this file.
func (q *queries) clear(ctx context.Context, table string) error {
	if _, err := q.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// affected maps "no row touched" to notFound.
func affected(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
