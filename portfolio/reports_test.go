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
)

// Demo data as of 2024-06-20:
//
//	L001  lease 2023-12, paid 2024-03..2024-06 -> Dec, Jan, Feb unpaid (750 000)
//	L002  lease 2023-06, paid 2023-07..2024-06 -> Jun 2023 unpaid     (650 000)
func seededService(t *testing.T) (*portfolio.Service, rental.TxStore) {
	t.Helper()
	st := store.NewMemory()
	svc, _ := newService(t, st)
	loaded, err := svc.SeedDemo(context.Background(), false)
	require.NoError(t, err)
	require.True(t, loaded)
	return svc, st
}

func TestDemoData_Shape(t *testing.T) {
	data := portfolio.DemoData(today)

	assert.Len(t, data.Properties, 5)
	assert.Len(t, data.Tenants, 2)
	assert.Len(t, data.Payments, 16)
	assert.Len(t, data.Charges, 2)
	assert.Len(t, data.Maintenance, 1)

	// L002's payments come first, numbered from P0001
	assert.Equal(t, "P0001", data.Payments[0].Number)
	assert.Equal(t, "L002", data.Payments[0].TenantCode)
	assert.Equal(t, "2023-07", data.Payments[0].Period.String())
	assert.Equal(t, "P0016", data.Payments[15].Number)
	assert.Equal(t, "2024-06", data.Payments[15].Period.String())
	assert.Equal(t, date(2024, time.June, 5), data.Payments[15].Date)

	assert.Equal(t, date(2023, time.December, 1), data.Tenants[0].LeaseStart)
	assert.Equal(t, date(2024, time.May, 15), data.Charges[0].Date)
}

func TestDemoData_YearBoundary(t *testing.T) {
	data := portfolio.DemoData(date(2025, time.February, 3))

	assert.Equal(t, date(2024, time.August, 1), data.Tenants[0].LeaseStart)
	assert.Equal(t, date(2024, time.February, 1), data.Tenants[1].LeaseStart)
	assert.Equal(t, date(2025, time.January, 15), data.Charges[0].Date)
	assert.Equal(t, "2024-03", data.Payments[0].Period.String())
}

func TestSeedDemo_SkipsNonEmptyUnlessForced(t *testing.T) {
	ctx := context.Background()
	svc, st := seededService(t)
	require.NoError(t, st.DeletePayment(ctx, "P0001"))

	loaded, err := svc.SeedDemo(ctx, false)
	require.NoError(t, err)
	assert.False(t, loaded)
	payments, _ := st.ListPayments(ctx)
	assert.Len(t, payments, 15)

	loaded, err = svc.SeedDemo(ctx, true)
	require.NoError(t, err)
	assert.True(t, loaded)
	payments, _ = st.ListPayments(ctx)
	assert.Len(t, payments, 16)
}

func TestDashboard(t *testing.T) {
	svc, _ := seededService(t)

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, d.TotalProperties)
	assert.Equal(t, 2, d.Let)
	assert.Equal(t, 40, d.OccupancyRate)
	assert.Equal(t, rental.Amount(900000), d.ExpectedRent)
	assert.Equal(t, 2, d.ActiveTenants)
	assert.Equal(t, rental.Amount(1400000), d.TotalArrears)
	assert.Equal(t, 2, d.ReminderCount)
	require.Len(t, d.Arrears, 2)
	assert.Equal(t, "L001", d.Arrears[0].Tenant.Code)
	assert.Equal(t, rental.Amount(750000), d.Arrears[0].Arrears.TotalOwed)
}

func TestReminders(t *testing.T) {
	svc, _ := seededService(t)

	reminders, err := svc.Reminders(context.Background())
	require.NoError(t, err)
	require.Len(t, reminders, 2)

	r := reminders[0]
	assert.Equal(t, "L001", r.Tenant.Code)
	assert.Equal(t, 3, r.MonthsUnpaid)
	assert.Equal(t, "3 mois impayé(s)", r.Badge)
	assert.Equal(t, "Décembre 2023, Janvier 2024, Février 2024", r.Periods)
	assert.True(t, strings.HasPrefix(r.Message, "Bonjour Mr/Mme FALL Aïssatou, l'agence SOPRIMEC"))
	assert.Contains(t, r.Message, "78 893 27 87")
	require.NotNil(t, r.Property)
	assert.Equal(t, "B001", r.Property.Code)

	assert.Equal(t, "Juin 2023", reminders[1].Periods)
}

func TestReminders_CustomTemplate(t *testing.T) {
	st := store.NewMemory()
	require.NoError(t, st.ReplaceAll(context.Background(), portfolio.DemoData(today)))
	svc := portfolio.New(st,
		portfolio.WithClock(fixedClock),
		portfolio.WithReminderTemplate(rental.ReminderTemplate{AgencyName: "IMMO PLUS", AgencyPhone: "33 800 00 00"}))

	reminders, err := svc.Reminders(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, reminders)
	assert.Contains(t, reminders[0].Message, "l'agence IMMO PLUS")
	assert.Contains(t, reminders[0].Message, "33 800 00 00")
}

func TestAllArrears_OnlyDebtors(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededService(t)

	_, err := svc.RecordPayment(ctx, portfolio.PaymentRequest{TenantCode: "L002", Amount: 650000})
	require.NoError(t, err)

	all, err := svc.AllArrears(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "L001", all[0].Tenant.Code)
}

func TestPeriodReport(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededService(t)

	tests := []struct {
		period    string
		collected rental.Amount
		charges   rental.Amount
		rate      int
	}{
		{"2024-06", 900000, 0, 100},
		{"2024-05", 900000, 73000, 100},
		{"2024-01", 650000, 0, 72},
		{"2023-05", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			r, err := svc.PeriodReport(ctx, rental.MustParsePeriod(tt.period))
			require.NoError(t, err)

			assert.Equal(t, rental.Amount(900000), r.Expected)
			assert.Equal(t, tt.collected, r.Collected)
			assert.Equal(t, r.Expected-tt.collected, r.Unpaid)
			assert.Equal(t, tt.charges, r.TotalCharges)
			assert.Equal(t, tt.collected-tt.charges, r.Net)
			assert.Equal(t, tt.rate, r.CollectionRate)
		})
	}
}

// =============================================================================
// EXPORT / IMPORT / RESET
// =============================================================================

func TestExportImport_RoundTrip(t *testing.T) {
	for _, tc := range stores {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			source, _ := newService(t, store.NewMemory())
			_, err := source.SeedDemo(ctx, false)
			require.NoError(t, err)

			exported, err := source.Export(ctx)
			require.NoError(t, err)

			target, _ := newService(t, tc.open(t))
			require.NoError(t, target.Import(ctx, exported))

			reimported, err := target.Export(ctx)
			require.NoError(t, err)
			assert.Equal(t, exported, reimported)
		})
	}
}

func TestImport_PartialKeepsOtherTables(t *testing.T) {
	ctx := context.Background()
	svc, st := seededService(t)

	require.NoError(t, svc.Import(ctx, rental.DataSet{Charges: []rental.Charge{}}))

	charges, _ := st.ListCharges(ctx)
	assert.Empty(t, charges)
	tenants, _ := st.ListTenants(ctx)
	assert.Len(t, tenants, 2)
}

func TestReset_RemovesDataAndContracts(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	svc, docs := newService(t, st)
	_, err := svc.SeedDemo(ctx, false)
	require.NoError(t, err)
	require.NoError(t, svc.AttachContract(ctx, "L001", "bail.pdf", strings.NewReader("%PDF")))

	require.NoError(t, svc.Reset(ctx))

	data, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Empty(t, data.Properties)
	assert.Empty(t, data.Payments)
	assert.False(t, docs.Exists("L001"))
}
