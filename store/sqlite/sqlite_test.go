package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soprimec/rental-engine/rental"
	"github.com/soprimec/rental-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func payment(number, tenant, period string, amount rental.Amount) rental.Payment {
	return rental.Payment{
		Number:     number,
		TenantCode: tenant,
		Period:     rental.MustParsePeriod(period),
		Amount:     amount,
		Date:       time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC),
		Method:     rental.MethodMobileMoney,
		Reference:  "OM-123",
		Status:     rental.PaymentPaid,
	}
}

// =============================================================================
// MIGRATIONS
// =============================================================================

func TestNew_AppliesMigrations(t *testing.T) {
	store := newTestStore(t)

	version, err := store.MigrationVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// Idempotent
	require.NoError(t, store.Migrate(context.Background()))
}

// =============================================================================
// ROUND TRIPS
// =============================================================================

func TestStore_TenantRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tenant := rental.Tenant{
		Code:         "L001",
		Name:         "Fatou Sall",
		Phone:        "77 000 00 00",
		PropertyCode: "B001",
		LeaseStart:   time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		LeaseMonths:  24,
		Rent:         250000,
		Deposit:      500000,
		Status:       rental.TenantActive,
	}
	require.NoError(t, store.SaveTenant(ctx, tenant))

	got, err := store.GetTenant(ctx, "L001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tenant, *got)

	require.NoError(t, store.SetTenantContract(ctx, "L001", "bail.pdf"))
	got, _ = store.GetTenant(ctx, "L001")
	assert.Equal(t, "bail.pdf", got.Contract)

	missing, err := store.GetTenant(ctx, "L999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_PaidPayments_OrderedByPeriod(t *testing.T) {
	// GIVEN: Payments inserted out of order, across a year boundary
	store := newTestStore(t)
	ctx := context.Background()

	cancelled := payment("P0004", "L001", "2023-11", 50000)
	cancelled.Status = rental.PaymentCancelled
	require.NoError(t, store.InsertPayments(ctx, []rental.Payment{
		payment("P0001", "L001", "2024-02", 100000),
		payment("P0002", "L001", "2023-12", 100000),
		payment("P0003", "L002", "2024-01", 100000),
		cancelled,
		payment("P0005", "L001", "2024-01", 100000),
	}))

	// WHEN
	got, err := store.PaidPayments(ctx, "L001")
	require.NoError(t, err)

	// THEN: Only Payé records of L001, chronologically
	require.Len(t, got, 3)
	assert.Equal(t, "2023-12", got[0].Period.String())
	assert.Equal(t, "2024-01", got[1].Period.String())
	assert.Equal(t, "2024-02", got[2].Period.String())
	assert.Equal(t, rental.MethodMobileMoney, got[0].Method)
	assert.Equal(t, "OM-123", got[0].Reference)
}

func TestStore_InsertPayments_DuplicateRollsBackBatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.InsertPayments(ctx, []rental.Payment{payment("P0001", "L001", "2024-01", 1)}))

	err := store.InsertPayments(ctx, []rental.Payment{
		payment("P0002", "L001", "2024-02", 1),
		payment("P0001", "L001", "2024-03", 1),
	})
	assert.ErrorIs(t, err, rental.ErrInvalidField)

	all, err := store.ListPayments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_WithTx_RollsBack(t *testing.T) {
	// GIVEN: A vacant property
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveProperty(ctx, rental.Property{Code: "B001", Rent: 100000, Status: rental.PropertyVacant}))

	// WHEN: A lease signature fails halfway
	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx rental.Store) error {
		require.NoError(t, tx.SaveTenant(ctx, rental.Tenant{Code: "L001", Name: "X", PropertyCode: "B001", Status: rental.TenantActive}))
		require.NoError(t, tx.SetPropertyStatus(ctx, "B001", rental.PropertyLet))

		// Reads inside the transaction see its writes
		active, err := tx.ActiveTenantsOf(ctx, "B001")
		require.NoError(t, err)
		require.Len(t, active, 1)
		return boom
	})

	// THEN: Neither write survives
	assert.ErrorIs(t, err, boom)
	p, err := store.GetProperty(ctx, "B001")
	require.NoError(t, err)
	assert.Equal(t, rental.PropertyVacant, p.Status)
	tenants, err := store.ListTenants(ctx)
	require.NoError(t, err)
	assert.Empty(t, tenants)
}

func TestStore_DeleteMissing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.DeletePayment(ctx, "P0001"), rental.ErrNotFound)
	assert.ErrorIs(t, store.DeleteProperty(ctx, "B001"), rental.ErrPropertyNotFound)
	assert.ErrorIs(t, store.SetPropertyStatus(ctx, "B001", rental.PropertyLet), rental.ErrPropertyNotFound)
	assert.ErrorIs(t, store.DeleteTenant(ctx, "L001"), rental.ErrTenantNotFound)
	assert.ErrorIs(t, store.DeleteMaintenance(ctx, "INT001"), rental.ErrNotFound)
}

func TestStore_CodesAndReplaceAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCharge(ctx, rental.Charge{Number: "C0001", Amount: 5000, Status: rental.ChargePaid}))
	require.NoError(t, store.SaveMaintenance(ctx, rental.MaintenanceRequest{
		Number: "INT001", Urgency: rental.UrgencyHigh, Status: rental.MaintenancePlanned,
		RequestedOn: time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC),
	}))

	err := store.ReplaceAll(ctx, rental.DataSet{
		Properties: []rental.Property{{Code: "B004", Status: rental.PropertyVacant}, {Code: "B010", Status: rental.PropertyLet}},
		Charges:    []rental.Charge{},
	})
	require.NoError(t, err)

	codes, err := store.Codes(ctx, rental.KindProperty)
	require.NoError(t, err)
	assert.Equal(t, "B011", rental.NextCode(rental.KindProperty, codes))

	charges, err := store.ListCharges(ctx)
	require.NoError(t, err)
	assert.Empty(t, charges)

	maintenance, err := store.ListMaintenance(ctx)
	require.NoError(t, err)
	require.Len(t, maintenance, 1)
	assert.Equal(t, rental.UrgencyHigh, maintenance[0].Urgency)
	assert.True(t, maintenance[0].ScheduledOn.IsZero())

	require.NoError(t, store.Reset(ctx))
	props, err := store.ListProperties(ctx)
	require.NoError(t, err)
	assert.Empty(t, props)
}
