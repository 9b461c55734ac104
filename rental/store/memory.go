// Package store provides an in-memory rental.TxStore.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/soprimec/rental-engine/rental"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type tables struct {
	properties  map[string]rental.Property
	tenants     map[string]rental.Tenant
	payments    map[string]rental.Payment
	charges     map[string]rental.Charge
	maintenance map[string]rental.MaintenanceRequest
}

func newTables() tables {
	return tables{
		properties:  make(map[string]rental.Property),
		tenants:     make(map[string]rental.Tenant),
		payments:    make(map[string]rental.Payment),
		charges:     make(map[string]rental.Charge),
		maintenance: make(map[string]rental.MaintenanceRequest),
	}
}

func (t tables) clone() tables {
	c := newTables()
	for k, v := range t.properties {
		c.properties[k] = v
	}
	for k, v := range t.tenants {
		c.tenants[k] = v
	}
	for k, v := range t.payments {
		c.payments[k] = v
	}
	for k, v := range t.charges {
		c.charges[k] = v
	}
	for k, v := range t.maintenance {
		c.maintenance[k] = v
	}
	return c
}

// Memory implements rental.TxStore in memory.
type Memory struct {
	mu   sync.RWMutex
	data tables
}

func NewMemory() *Memory {
	return &Memory{data: newTables()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
// The write lock is held for the whole call, so transactions are serial.
func (m *Memory) WithTx(ctx context.Context, fn func(rental.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.data.clone()
	if err := fn(&view{t: &m.data}); err != nil {
		m.data = snapshot
		return err
	}
	return nil
}

// The non-transactional methods take the lock and delegate to a view.

func (m *Memory) read() *view {
	return &view{t: &m.data}
}

func (m *Memory) GetProperty(ctx context.Context, code string) (*rental.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().GetProperty(ctx, code)
}

func (m *Memory) ListProperties(ctx context.Context) ([]rental.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().ListProperties(ctx)
}

func (m *Memory) SaveProperty(ctx context.Context, p rental.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().SaveProperty(ctx, p)
}

func (m *Memory) SetPropertyStatus(ctx context.Context, code string, status rental.PropertyStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().SetPropertyStatus(ctx, code, status)
}

func (m *Memory) DeleteProperty(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().DeleteProperty(ctx, code)
}

func (m *Memory) GetTenant(ctx context.Context, code string) (*rental.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().GetTenant(ctx, code)
}

func (m *Memory) ListTenants(ctx context.Context) ([]rental.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().ListTenants(ctx)
}

func (m *Memory) ListActiveTenants(ctx context.Context) ([]rental.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().ListActiveTenants(ctx)
}

func (m *Memory) ActiveTenantsOf(ctx context.Context, propertyCode string) ([]rental.Tenant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().ActiveTenantsOf(ctx, propertyCode)
}

func (m *Memory) SaveTenant(ctx context.Context, t rental.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().SaveTenant(ctx, t)
}

func (m *Memory) SetTenantContract(ctx context.Context, code, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().SetTenantContract(ctx, code, filename)
}

func (m *Memory) DeleteTenant(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().DeleteTenant(ctx, code)
}

func (m *Memory) PaidPayments(ctx context.Context, tenantCode string) ([]rental.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().PaidPayments(ctx, tenantCode)
}

func (m *Memory) PaymentsForPeriod(ctx context.Context, period rental.Period) ([]rental.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().PaymentsForPeriod(ctx, period)
}

func (m *Memory) ListPayments(ctx context.Context) ([]rental.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().ListPayments(ctx)
}

func (m *Memory) InsertPayments(ctx context.Context, payments []rental.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.data.clone()
	if err := m.read().InsertPayments(ctx, payments); err != nil {
		m.data = snapshot
		return err
	}
	return nil
}

func (m *Memory) DeletePayment(ctx context.Context, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().DeletePayment(ctx, number)
}

func (m *Memory) ListCharges(ctx context.Context) ([]rental.Charge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().ListCharges(ctx)
}

func (m *Memory) SaveCharge(ctx context.Context, c rental.Charge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().SaveCharge(ctx, c)
}

func (m *Memory) DeleteCharge(ctx context.Context, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().DeleteCharge(ctx, number)
}

func (m *Memory) ListMaintenance(ctx context.Context) ([]rental.MaintenanceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().ListMaintenance(ctx)
}

func (m *Memory) SaveMaintenance(ctx context.Context, r rental.MaintenanceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().SaveMaintenance(ctx, r)
}

func (m *Memory) DeleteMaintenance(ctx context.Context, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().DeleteMaintenance(ctx, number)
}

func (m *Memory) Codes(ctx context.Context, kind rental.CodeKind) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.read().Codes(ctx, kind)
}

func (m *Memory) ReplaceAll(ctx context.Context, data rental.DataSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().ReplaceAll(ctx, data)
}

func (m *Memory) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.read().Reset(ctx)
}

// =============================================================================
// VIEW - Lock-free access to the tables (caller holds the lock)
// =============================================================================

type view struct {
	t *tables
}

func (v *view) GetProperty(_ context.Context, code string) (*rental.Property, error) {
	p, ok := v.t.properties[code]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (v *view) ListProperties(_ context.Context) ([]rental.Property, error) {
	out := make([]rental.Property, 0, len(v.t.properties))
	for _, p := range v.t.properties {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (v *view) SaveProperty(_ context.Context, p rental.Property) error {
	v.t.properties[p.Code] = p
	return nil
}

func (v *view) SetPropertyStatus(_ context.Context, code string, status rental.PropertyStatus) error {
	p, ok := v.t.properties[code]
	if !ok {
		return rental.ErrPropertyNotFound
	}
	p.Status = status
	v.t.properties[code] = p
	return nil
}

func (v *view) DeleteProperty(_ context.Context, code string) error {
	if _, ok := v.t.properties[code]; !ok {
		return rental.ErrPropertyNotFound
	}
	delete(v.t.properties, code)
	return nil
}

func (v *view) GetTenant(_ context.Context, code string) (*rental.Tenant, error) {
	t, ok := v.t.tenants[code]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (v *view) ListTenants(_ context.Context) ([]rental.Tenant, error) {
	return v.tenantsWhere(func(rental.Tenant) bool { return true }), nil
}

func (v *view) ListActiveTenants(_ context.Context) ([]rental.Tenant, error) {
	return v.tenantsWhere(rental.Tenant.IsActive), nil
}

func (v *view) ActiveTenantsOf(_ context.Context, propertyCode string) ([]rental.Tenant, error) {
	return v.tenantsWhere(func(t rental.Tenant) bool {
		return t.IsActive() && t.PropertyCode == propertyCode
	}), nil
}

func (v *view) tenantsWhere(keep func(rental.Tenant) bool) []rental.Tenant {
	out := make([]rental.Tenant, 0, len(v.t.tenants))
	for _, t := range v.t.tenants {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (v *view) SaveTenant(_ context.Context, t rental.Tenant) error {
	v.t.tenants[t.Code] = t
	return nil
}

func (v *view) SetTenantContract(_ context.Context, code, filename string) error {
	t, ok := v.t.tenants[code]
	if !ok {
		return rental.ErrTenantNotFound
	}
	t.Contract = filename
	v.t.tenants[code] = t
	return nil
}

func (v *view) DeleteTenant(_ context.Context, code string) error {
	if _, ok := v.t.tenants[code]; !ok {
		return rental.ErrTenantNotFound
	}
	delete(v.t.tenants, code)
	return nil
}

func (v *view) PaidPayments(_ context.Context, tenantCode string) ([]rental.Payment, error) {
	return v.paymentsWhere(func(p rental.Payment) bool {
		return p.TenantCode == tenantCode && p.Status == rental.PaymentPaid
	}), nil
}

func (v *view) PaymentsForPeriod(_ context.Context, period rental.Period) ([]rental.Payment, error) {
	return v.paymentsWhere(func(p rental.Payment) bool { return p.Period == period }), nil
}

func (v *view) ListPayments(_ context.Context) ([]rental.Payment, error) {
	return v.paymentsWhere(func(rental.Payment) bool { return true }), nil
}

// paymentsWhere returns matching payments ordered by period, then number.
func (v *view) paymentsWhere(keep func(rental.Payment) bool) []rental.Payment {
	out := make([]rental.Payment, 0)
	for _, p := range v.t.payments {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Period.Compare(out[j].Period); c != 0 {
			return c < 0
		}
		return out[i].Number < out[j].Number
	})
	return out
}

func (v *view) InsertPayments(_ context.Context, payments []rental.Payment) error {
	for _, p := range payments {
		if _, exists := v.t.payments[p.Number]; exists {
			return &rental.FieldError{Field: "payment.number", Value: p.Number}
		}
		v.t.payments[p.Number] = p
	}
	return nil
}

func (v *view) DeletePayment(_ context.Context, number string) error {
	if _, ok := v.t.payments[number]; !ok {
		return rental.ErrNotFound
	}
	delete(v.t.payments, number)
	return nil
}

func (v *view) ListCharges(_ context.Context) ([]rental.Charge, error) {
	out := make([]rental.Charge, 0, len(v.t.charges))
	for _, c := range v.t.charges {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (v *view) SaveCharge(_ context.Context, c rental.Charge) error {
	v.t.charges[c.Number] = c
	return nil
}

func (v *view) DeleteCharge(_ context.Context, number string) error {
	if _, ok := v.t.charges[number]; !ok {
		return rental.ErrNotFound
	}
	delete(v.t.charges, number)
	return nil
}

func (v *view) ListMaintenance(_ context.Context) ([]rental.MaintenanceRequest, error) {
	out := make([]rental.MaintenanceRequest, 0, len(v.t.maintenance))
	for _, m := range v.t.maintenance {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (v *view) SaveMaintenance(_ context.Context, m rental.MaintenanceRequest) error {
	v.t.maintenance[m.Number] = m
	return nil
}

func (v *view) DeleteMaintenance(_ context.Context, number string) error {
	if _, ok := v.t.maintenance[number]; !ok {
		return rental.ErrNotFound
	}
	delete(v.t.maintenance, number)
	return nil
}

func (v *view) Codes(_ context.Context, kind rental.CodeKind) ([]string, error) {
	var codes []string
	switch kind {
	case rental.KindProperty:
		for k := range v.t.properties {
			codes = append(codes, k)
		}
	case rental.KindTenant:
		for k := range v.t.tenants {
			codes = append(codes, k)
		}
	case rental.KindPayment:
		for k := range v.t.payments {
			codes = append(codes, k)
		}
	case rental.KindCharge:
		for k := range v.t.charges {
			codes = append(codes, k)
		}
	case rental.KindMaintenance:
		for k := range v.t.maintenance {
			codes = append(codes, k)
		}
	}
	return codes, nil
}

func (v *view) ReplaceAll(_ context.Context, data rental.DataSet) error {
	if data.Properties != nil {
		v.t.properties = make(map[string]rental.Property)
		for _, p := range data.Properties {
			v.t.properties[p.Code] = p
		}
	}
	if data.Tenants != nil {
		v.t.tenants = make(map[string]rental.Tenant)
		for _, t := range data.Tenants {
			v.t.tenants[t.Code] = t
		}
	}
	if data.Payments != nil {
		v.t.payments = make(map[string]rental.Payment)
		for _, p := range data.Payments {
			v.t.payments[p.Number] = p
		}
	}
	if data.Charges != nil {
		v.t.charges = make(map[string]rental.Charge)
		for _, c := range data.Charges {
			v.t.charges[c.Number] = c
		}
	}
	if data.Maintenance != nil {
		v.t.maintenance = make(map[string]rental.MaintenanceRequest)
		for _, m := range data.Maintenance {
			v.t.maintenance[m.Number] = m
		}
	}
	return nil
}

func (v *view) Reset(_ context.Context) error {
	*v.t = newTables()
	return nil
}
