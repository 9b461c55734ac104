package portfolio_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soprimec/rental-engine/portfolio"
	"github.com/soprimec/rental-engine/rental"
	"github.com/soprimec/rental-engine/rental/store"
	"github.com/soprimec/rental-engine/store/contracts"
	"github.com/soprimec/rental-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// Today is past the 10th: June is due.
var today = time.Date(2024, time.June, 20, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return today }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newService(t *testing.T, st rental.TxStore) (*portfolio.Service, *contracts.Dir) {
	t.Helper()
	docs, err := contracts.New(t.TempDir())
	require.NoError(t, err)
	return portfolio.New(st, portfolio.WithClock(fixedClock), portfolio.WithContracts(docs)), docs
}

func newSQLite(t *testing.T) rental.TxStore {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// stores runs a test against both store implementations.
var stores = []struct {
	name string
	open func(t *testing.T) rental.TxStore
}{
	{"memory", func(*testing.T) rental.TxStore { return store.NewMemory() }},
	{"sqlite", newSQLite},
}

// seedLet stores a let property with one active tenant.
func seedLet(t *testing.T, st rental.TxStore, rent rental.Amount, leaseStart time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.SaveProperty(ctx, rental.Property{Code: "B001", Rent: rent, Status: rental.PropertyLet}))
	require.NoError(t, st.SaveTenant(ctx, rental.Tenant{
		Code:         "L001",
		Name:         "DIOP Awa",
		PropertyCode: "B001",
		LeaseStart:   leaseStart,
		LeaseMonths:  12,
		Rent:         rent,
		Status:       rental.TenantActive,
	}))
}

func TestService_Today_TruncatesClock(t *testing.T) {
	svc := portfolio.New(store.NewMemory(), portfolio.WithClock(fixedClock))
	assert.Equal(t, date(2024, time.June, 20), svc.Today())
}

// =============================================================================
// PAYMENTS
// =============================================================================

func TestRecordPayment_AllocatesAcrossPeriods(t *testing.T) {
	for _, tc := range stores {
		t.Run(tc.name, func(t *testing.T) {
			// GIVEN: April fully paid, May partially paid, June due
			ctx := context.Background()
			st := tc.open(t)
			seedLet(t, st, 100000, date(2024, time.April, 1))
			require.NoError(t, st.InsertPayments(ctx, []rental.Payment{
				{Number: "P0001", TenantCode: "L001", Period: rental.MustParsePeriod("2024-04"), Amount: 100000, Status: rental.PaymentPaid},
				{Number: "P0002", TenantCode: "L001", Period: rental.MustParsePeriod("2024-05"), Amount: 40000, Status: rental.PaymentPaid},
			}))
			svc, _ := newService(t, st)

			// WHEN: 200 000 arrives
			created, err := svc.RecordPayment(ctx, portfolio.PaymentRequest{
				TenantCode: "L001",
				Amount:     200000,
				Method:     rental.MethodMobileMoney,
				Reference:  "OM-77",
			})
			require.NoError(t, err)

			// THEN: May balance, June, then the surplus on July
			require.Len(t, created, 3)
			assert.Equal(t, "P0003", created[0].Number)
			assert.Equal(t, "2024-05", created[0].Period.String())
			assert.Equal(t, rental.Amount(60000), created[0].Amount)
			assert.Equal(t, "P0004", created[1].Number)
			assert.Equal(t, "2024-06", created[1].Period.String())
			assert.Equal(t, rental.Amount(100000), created[1].Amount)
			assert.Equal(t, "P0005", created[2].Number)
			assert.Equal(t, "2024-07", created[2].Period.String())
			assert.Equal(t, rental.Amount(40000), created[2].Amount)

			var sum rental.Amount
			for _, p := range created {
				sum += p.Amount
				assert.Equal(t, rental.PaymentPaid, p.Status)
				assert.Equal(t, rental.MethodMobileMoney, p.Method)
				assert.Equal(t, "OM-77", p.Reference)
				assert.Equal(t, date(2024, time.June, 20), p.Date)
			}
			assert.Equal(t, rental.Amount(200000), sum)

			// AND: The tenant is now up to date
			arr, err := svc.ArrearsFor(ctx, "L001")
			require.NoError(t, err)
			assert.False(t, arr.Arrears.HasArrears())
			require.NotNil(t, arr.Property)
			assert.Equal(t, "B001", arr.Property.Code)

			stored, err := st.ListPayments(ctx)
			require.NoError(t, err)
			assert.Len(t, stored, 5)
		})
	}
}

func TestRecordPayment_RejectionsLeaveStoreUntouched(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		prepare func(t *testing.T, st rental.TxStore)
		req     portfolio.PaymentRequest
		wantErr error
	}{
		{
			name:    "zero amount",
			req:     portfolio.PaymentRequest{TenantCode: "L001", Amount: 0},
			wantErr: rental.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			req:     portfolio.PaymentRequest{TenantCode: "L001", Amount: -5},
			wantErr: rental.ErrInvalidAmount,
		},
		{
			name:    "unknown tenant",
			req:     portfolio.PaymentRequest{TenantCode: "L404", Amount: 1000},
			wantErr: rental.ErrTenantNotFound,
		},
		{
			name: "inactive tenant",
			prepare: func(t *testing.T, st rental.TxStore) {
				require.NoError(t, st.SaveTenant(ctx, rental.Tenant{
					Code: "L002", Name: "X", LeaseStart: date(2024, time.January, 1), Rent: 1000, Status: rental.TenantInactive,
				}))
			},
			req:     portfolio.PaymentRequest{TenantCode: "L002", Amount: 1000},
			wantErr: rental.ErrPrecondition,
		},
		{
			name:    "unknown method",
			req:     portfolio.PaymentRequest{TenantCode: "L001", Amount: 1000, Method: "Bitcoin"},
			wantErr: rental.ErrInvalidField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN
			st := store.NewMemory()
			seedLet(t, st, 100000, date(2024, time.January, 1))
			if tt.prepare != nil {
				tt.prepare(t, st)
			}
			svc, _ := newService(t, st)

			// WHEN
			created, err := svc.RecordPayment(ctx, tt.req)

			// THEN
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, created)
			stored, err := st.ListPayments(ctx)
			require.NoError(t, err)
			assert.Empty(t, stored)
		})
	}
}

func TestRecordPayment_DefaultsMethodAndKeepsDate(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedLet(t, st, 100000, date(2024, time.June, 1))
	svc, _ := newService(t, st)

	created, err := svc.RecordPayment(ctx, portfolio.PaymentRequest{
		TenantCode: "L001",
		Amount:     100000,
		Date:       date(2024, time.June, 3),
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, rental.MethodCash, created[0].Method)
	assert.Equal(t, date(2024, time.June, 3), created[0].Date)
}

func TestDeletePayment(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedLet(t, st, 100000, date(2024, time.June, 1))
	svc, _ := newService(t, st)

	created, err := svc.RecordPayment(ctx, portfolio.PaymentRequest{TenantCode: "L001", Amount: 100000})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePayment(ctx, created[0].Number))
	assert.ErrorIs(t, svc.DeletePayment(ctx, created[0].Number), rental.ErrNotFound)

	arr, err := svc.ArrearsFor(ctx, "L001")
	require.NoError(t, err)
	assert.Equal(t, rental.Amount(100000), arr.Arrears.TotalOwed)
}

func TestArrearsFor_UnknownTenant(t *testing.T) {
	svc, _ := newService(t, store.NewMemory())
	_, err := svc.ArrearsFor(context.Background(), "L404")
	assert.ErrorIs(t, err, rental.ErrTenantNotFound)
}

// =============================================================================
// LEASES
// =============================================================================

func TestSignLease_MarksPropertyLet(t *testing.T) {
	for _, tc := range stores {
		t.Run(tc.name, func(t *testing.T) {
			// GIVEN: A vacant property
			ctx := context.Background()
			st := tc.open(t)
			svc, _ := newService(t, st)
			property, err := svc.RegisterProperty(ctx, rental.Property{Type: "Studio", Rent: 120000})
			require.NoError(t, err)
			assert.Equal(t, "B001", property.Code)
			assert.Equal(t, rental.PropertyVacant, property.Status)
			assert.Equal(t, "Dakar", property.City)

			// WHEN: A lease is signed without rent or duration
			tenant, err := svc.SignLease(ctx, rental.Tenant{Name: "NDIAYE Moussa", PropertyCode: "B001"})
			require.NoError(t, err)

			// THEN: Defaults apply and the property is let
			assert.Equal(t, "L001", tenant.Code)
			assert.Equal(t, rental.Amount(120000), tenant.Rent)
			assert.Equal(t, portfolio.DefaultLeaseMonths, tenant.LeaseMonths)
			assert.Equal(t, date(2024, time.June, 20), tenant.LeaseStart)
			assert.Equal(t, rental.TenantActive, tenant.Status)

			got, err := st.GetProperty(ctx, "B001")
			require.NoError(t, err)
			assert.Equal(t, rental.PropertyLet, got.Status)

			// AND: A second lease on the same property is refused
			_, err = svc.SignLease(ctx, rental.Tenant{Name: "BA Khady", PropertyCode: "B001"})
			assert.ErrorIs(t, err, rental.ErrPropertyOccupied)
			tenants, err := st.ListTenants(ctx)
			require.NoError(t, err)
			assert.Len(t, tenants, 1)
		})
	}
}

func TestSignLease_Rejections(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, store.NewMemory())

	_, err := svc.SignLease(ctx, rental.Tenant{Name: "X", PropertyCode: "B404"})
	assert.ErrorIs(t, err, rental.ErrPropertyNotFound)

	_, err = svc.SignLease(ctx, rental.Tenant{PropertyCode: "B001"})
	assert.ErrorIs(t, err, rental.ErrInvalidField)

	_, err = svc.SignLease(ctx, rental.Tenant{Name: "X", Rent: -1})
	assert.ErrorIs(t, err, rental.ErrInvalidAmount)

	// No property assigned is allowed
	tenant, err := svc.SignLease(ctx, rental.Tenant{Name: "X", Rent: 50000})
	require.NoError(t, err)
	assert.Equal(t, "L001", tenant.Code)
}

func TestTerminateLease_FreesPropertyAndRemovesContract(t *testing.T) {
	for _, tc := range stores {
		t.Run(tc.name, func(t *testing.T) {
			// GIVEN: A let property with a contract on file
			ctx := context.Background()
			st := tc.open(t)
			seedLet(t, st, 100000, date(2024, time.January, 1))
			svc, docs := newService(t, st)
			require.NoError(t, svc.AttachContract(ctx, "L001", "bail.pdf", strings.NewReader("%PDF-1.4")))
			require.True(t, docs.Exists("L001"))

			// WHEN
			require.NoError(t, svc.TerminateLease(ctx, "L001"))

			// THEN
			p, err := st.GetProperty(ctx, "B001")
			require.NoError(t, err)
			assert.Equal(t, rental.PropertyVacant, p.Status)
			tenant, err := st.GetTenant(ctx, "L001")
			require.NoError(t, err)
			assert.Nil(t, tenant)
			assert.False(t, docs.Exists("L001"))

			assert.ErrorIs(t, svc.TerminateLease(ctx, "L001"), rental.ErrTenantNotFound)
		})
	}
}

func TestTerminateLease_KeepsPropertyLetForRemainingTenant(t *testing.T) {
	for _, tc := range stores {
		t.Run(tc.name, func(t *testing.T) {
			// GIVEN: A vacant property still referenced by an inactive tenant
			ctx := context.Background()
			st := tc.open(t)
			require.NoError(t, st.SaveProperty(ctx, rental.Property{Code: "B001", Rent: 100000, Status: rental.PropertyVacant}))
			require.NoError(t, st.SaveTenant(ctx, rental.Tenant{
				Code: "L001", Name: "Ancien", PropertyCode: "B001",
				LeaseStart: date(2023, time.January, 1), LeaseMonths: 12, Rent: 100000,
				Status: rental.TenantInactive,
			}))
			svc, _ := newService(t, st)

			// AND: A new lease signed on it
			signed, err := svc.SignLease(ctx, rental.Tenant{Name: "Nouveau", PropertyCode: "B001"})
			require.NoError(t, err)
			assert.Equal(t, "L002", signed.Code)

			// WHEN: The old record is terminated
			require.NoError(t, svc.TerminateLease(ctx, "L001"))

			// THEN: The property stays let for the active tenant
			p, err := st.GetProperty(ctx, "B001")
			require.NoError(t, err)
			assert.Equal(t, rental.PropertyLet, p.Status)
			active, err := st.ActiveTenantsOf(ctx, "B001")
			require.NoError(t, err)
			require.Len(t, active, 1)
			assert.Equal(t, "L002", active[0].Code)
		})
	}
}

func TestTerminateLease_PropertyAlreadyGone(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.SaveTenant(ctx, rental.Tenant{Code: "L001", Name: "X", PropertyCode: "B009", Status: rental.TenantActive}))
	svc, _ := newService(t, st)

	require.NoError(t, svc.TerminateLease(ctx, "L001"))
}

func TestContracts_AttachOpenDetach(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedLet(t, st, 100000, date(2024, time.January, 1))
	svc, _ := newService(t, st)

	_, _, err := svc.OpenContract(ctx, "L001")
	assert.ErrorIs(t, err, rental.ErrNotFound)

	require.NoError(t, svc.AttachContract(ctx, "L001", "bail signé.pdf", strings.NewReader("%PDF-1.7 body")))

	tenant, f, err := svc.OpenContract(ctx, "L001")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "bail signé.pdf", tenant.Contract)

	require.NoError(t, svc.DetachContract(ctx, "L001"))
	got, err := svc.GetTenant(ctx, "L001")
	require.NoError(t, err)
	assert.Empty(t, got.Contract)

	err = svc.AttachContract(ctx, "L404", "x.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, rental.ErrTenantNotFound)

	noDocs := portfolio.New(st)
	assert.ErrorIs(t, noDocs.AttachContract(ctx, "L001", "x.pdf", strings.NewReader("x")), portfolio.ErrNoContractStore)
}

// =============================================================================
// PROPERTIES AND EXPENSES
// =============================================================================

func TestDeleteProperty_RefusedWhileLet(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedLet(t, st, 100000, date(2024, time.January, 1))
	svc, _ := newService(t, st)

	err := svc.DeleteProperty(ctx, "B001")
	assert.ErrorIs(t, err, rental.ErrPropertyInUse)
	var inUse *rental.PropertyInUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, "L001", inUse.TenantCode)

	require.NoError(t, svc.TerminateLease(ctx, "L001"))
	require.NoError(t, svc.DeleteProperty(ctx, "B001"))
	assert.ErrorIs(t, svc.DeleteProperty(ctx, "B001"), rental.ErrPropertyNotFound)
}

func TestRegisterProperty_ContinuesSequence(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	require.NoError(t, st.SaveProperty(ctx, rental.Property{Code: "B007"}))
	svc, _ := newService(t, st)

	p, err := svc.RegisterProperty(ctx, rental.Property{City: "Thiès", Status: rental.PropertyLet})
	require.NoError(t, err)
	assert.Equal(t, "B008", p.Code)
	assert.Equal(t, "Thiès", p.City)
	assert.Equal(t, rental.PropertyLet, p.Status)

	_, err = svc.RegisterProperty(ctx, rental.Property{Status: "Squatté"})
	assert.ErrorIs(t, err, rental.ErrInvalidField)
}

func TestExpenses(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, store.NewMemory())

	c, err := svc.RecordCharge(ctx, rental.Charge{PropertyCode: "B001", Category: "Eau/SDE", Amount: 28000})
	require.NoError(t, err)
	assert.Equal(t, "C0001", c.Number)
	assert.Equal(t, rental.ChargePaid, c.Status)
	assert.Equal(t, date(2024, time.June, 20), c.Date)

	_, err = svc.RecordCharge(ctx, rental.Charge{Amount: -1})
	assert.ErrorIs(t, err, rental.ErrInvalidAmount)

	m, err := svc.RequestMaintenance(ctx, rental.MaintenanceRequest{PropertyCode: "B001", Category: "Plomberie", Urgency: rental.UrgencyCritical})
	require.NoError(t, err)
	assert.Equal(t, "INT001", m.Number)
	assert.Equal(t, rental.MaintenancePlanned, m.Status)

	_, err = svc.RequestMaintenance(ctx, rental.MaintenanceRequest{Urgency: "Demain"})
	assert.ErrorIs(t, err, rental.ErrInvalidField)

	require.NoError(t, svc.DeleteCharge(ctx, "C0001"))
	require.NoError(t, svc.DeleteMaintenance(ctx, "INT001"))
	charges, err := svc.ListCharges(ctx)
	require.NoError(t, err)
	assert.Empty(t, charges)
}
