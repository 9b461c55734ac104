package rental_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soprimec/rental-engine/rental"
)

func activeTenant(code string, rent rental.Amount, leaseStart time.Time) rental.Tenant {
	return rental.Tenant{
		Code:         code,
		Name:         "Awa Diop",
		PropertyCode: "B001",
		LeaseStart:   leaseStart,
		LeaseMonths:  12,
		Rent:         rent,
		Status:       rental.TenantActive,
	}
}

func paid(tenant, p string, amount rental.Amount) rental.Payment {
	return rental.Payment{
		Number:     tenant + "-" + p,
		TenantCode: tenant,
		Period:     period(p),
		Amount:     amount,
		Status:     rental.PaymentPaid,
	}
}

func periodsOf(dues []rental.PeriodDue) []string {
	out := make([]string, len(dues))
	for i, d := range dues {
		out[i] = d.Period.String()
	}
	return out
}

// =============================================================================
// ARREARS CALCULATOR
// =============================================================================

func TestComputeArrears_NoPayments_AfterGraceDay(t *testing.T) {
	// GIVEN: Rent 250000, lease started 6 months before today, nothing paid
	// WHEN: Evaluated on the 15th
	// THEN: 7 periods due (lease month through current month)

	tenant := activeTenant("L001", 250000, date(2024, time.January, 5))
	today := date(2024, time.July, 15)

	arr, err := rental.ComputeArrears(tenant, nil, today)
	require.NoError(t, err)

	assert.Len(t, arr.UnpaidPeriods, 7)
	assert.Equal(t, rental.Amount(7*250000), arr.TotalOwed)
	assert.Equal(t, period("2024-07"), arr.Cutoff)
	assert.Equal(t, 7, arr.PeriodsInRange)
	assert.Nil(t, arr.LastFullyPaid)
}

func TestComputeArrears_CutoffBoundary(t *testing.T) {
	// GIVEN: Lease starts in the current month, nothing paid
	tenant := activeTenant("L001", 100000, date(2024, time.March, 1))

	// WHEN: Evaluated on the 9th
	// THEN: Current month not yet due
	arr, err := rental.ComputeArrears(tenant, nil, date(2024, time.March, 9))
	require.NoError(t, err)
	assert.Empty(t, arr.UnpaidPeriods)
	assert.Equal(t, 0, arr.PeriodsInRange)
	assert.False(t, arr.HasArrears())

	// WHEN: Evaluated on the 10th
	// THEN: Current month is due
	arr, err = rental.ComputeArrears(tenant, nil, date(2024, time.March, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03"}, periodsOf(arr.UnpaidPeriods))
	assert.Equal(t, rental.Amount(100000), arr.TotalOwed)
}

func TestComputeArrears_PartialPaymentsAccumulate(t *testing.T) {
	// GIVEN: Two partial payments for February, one short
	tenant := activeTenant("L001", 250000, date(2024, time.January, 1))
	history := []rental.Payment{
		paid("L001", "2024-01", 250000),
		paid("L001", "2024-02", 100000),
		paid("L001", "2024-02", 100000),
	}

	// WHEN: Evaluated on the 5th of March (cutoff February)
	arr, err := rental.ComputeArrears(tenant, history, date(2024, time.March, 5))
	require.NoError(t, err)

	// THEN: February owes only the remainder
	require.Len(t, arr.UnpaidPeriods, 1)
	due := arr.UnpaidPeriods[0]
	assert.Equal(t, period("2024-02"), due.Period)
	assert.Equal(t, rental.Amount(50000), due.Owed)
	assert.Equal(t, rental.Amount(200000), due.AlreadyPaid)
	assert.True(t, due.IsPartial())
	require.NotNil(t, arr.LastFullyPaid)
	assert.Equal(t, period("2024-01"), *arr.LastFullyPaid)
}

func TestComputeArrears_IgnoresOtherTenantsAndUnpaidStatus(t *testing.T) {
	tenant := activeTenant("L001", 100000, date(2024, time.January, 1))
	pending := paid("L001", "2024-01", 100000)
	pending.Status = rental.PaymentPending
	history := []rental.Payment{
		paid("L002", "2024-01", 100000),
		pending,
	}

	arr, err := rental.ComputeArrears(tenant, history, date(2024, time.January, 20))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01"}, periodsOf(arr.UnpaidPeriods))
}

func TestComputeArrears_LastFullyPaidStopsAtFirstGap(t *testing.T) {
	// GIVEN: Jan paid, Feb missing, Mar paid
	tenant := activeTenant("L001", 100000, date(2024, time.January, 1))
	history := []rental.Payment{
		paid("L001", "2024-01", 100000),
		paid("L001", "2024-03", 100000),
	}

	arr, err := rental.ComputeArrears(tenant, history, date(2024, time.March, 20))
	require.NoError(t, err)

	// THEN: March does not move the last consecutive paid month
	require.NotNil(t, arr.LastFullyPaid)
	assert.Equal(t, period("2024-01"), *arr.LastFullyPaid)
	assert.Equal(t, []string{"2024-02"}, periodsOf(arr.UnpaidPeriods))
}

func TestComputeArrears_YearRollover(t *testing.T) {
	tenant := activeTenant("L001", 100000, date(2023, time.November, 20))

	arr, err := rental.ComputeArrears(tenant, nil, date(2024, time.February, 3))
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-11", "2023-12", "2024-01"}, periodsOf(arr.UnpaidPeriods))
}

func TestComputeArrears_InactiveTenant(t *testing.T) {
	tenant := activeTenant("L001", 100000, date(2024, time.January, 1))
	tenant.Status = rental.TenantInactive

	arr, err := rental.ComputeArrears(tenant, nil, date(2024, time.June, 20))
	require.NoError(t, err)
	assert.False(t, arr.HasArrears())
	assert.Zero(t, arr.TotalOwed)
}

func TestComputeArrears_MissingLeaseStart(t *testing.T) {
	tenant := activeTenant("L001", 100000, time.Time{})

	_, err := rental.ComputeArrears(tenant, nil, date(2024, time.June, 20))

	var pe *rental.PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "L001", pe.TenantCode)
	assert.ErrorIs(t, err, rental.ErrPrecondition)
}

func TestComputeArrears_LeaseInFuture(t *testing.T) {
	tenant := activeTenant("L001", 100000, date(2024, time.September, 1))

	arr, err := rental.ComputeArrears(tenant, nil, date(2024, time.June, 20))
	require.NoError(t, err)
	assert.Empty(t, arr.UnpaidPeriods)
	assert.Nil(t, arr.LastFullyPaid)
}

func TestComputeArrears_ZeroRent(t *testing.T) {
	// GIVEN: A free lease running for six months, no payments
	tenant := activeTenant("L001", 0, date(2024, time.January, 1))

	// WHEN
	arr, err := rental.ComputeArrears(tenant, nil, date(2024, time.June, 20))

	// THEN: Nothing is ever outstanding
	require.NoError(t, err)
	assert.Empty(t, arr.UnpaidPeriods)
	assert.Zero(t, arr.TotalOwed)
	require.NotNil(t, arr.LastFullyPaid)
	assert.Equal(t, period("2024-06"), *arr.LastFullyPaid)
}

func TestComputeArrears_Conservation(t *testing.T) {
	// For every history: owed plus already-paid on unpaid periods, plus rent
	// on fully paid periods, equals rent times the number of periods in range.
	const rent = rental.Amount(180000)
	tenant := activeTenant("L001", rent, date(2023, time.October, 1))
	today := date(2024, time.April, 12)

	histories := [][]rental.Payment{
		nil,
		{paid("L001", "2023-10", rent), paid("L001", "2023-12", 60000)},
		{paid("L001", "2023-10", rent), paid("L001", "2023-11", rent), paid("L001", "2023-12", rent),
			paid("L001", "2024-01", rent), paid("L001", "2024-02", rent), paid("L001", "2024-03", rent),
			paid("L001", "2024-04", rent)},
		{paid("L001", "2024-02", 1), paid("L001", "2024-02", 2), paid("L001", "2024-04", rent)},
	}

	for i, history := range histories {
		arr, err := rental.ComputeArrears(tenant, history, today)
		require.NoError(t, err, "history %d", i)

		unpaid := make(map[rental.Period]bool)
		var partial rental.Amount
		for _, d := range arr.UnpaidPeriods {
			unpaid[d.Period] = true
			partial += d.AlreadyPaid
		}
		paidByPeriod := rental.PaidByPeriod(tenant.Code, history)

		var fullyPaid rental.Amount
		for _, p := range rental.PeriodsBetween(leasePeriod(tenant), arr.Cutoff) {
			if !unpaid[p] {
				fullyPaid += paidByPeriod[p].Min(rent)
			}
		}

		assert.Equal(t, rent*rental.Amount(arr.PeriodsInRange), arr.TotalOwed+partial+fullyPaid, "history %d", i)
	}
}

func leasePeriod(t rental.Tenant) rental.Period {
	return rental.PeriodOf(t.LeaseStart)
}

func TestComputeArrears_Deterministic(t *testing.T) {
	tenant := activeTenant("L001", 100000, date(2024, time.January, 1))
	history := []rental.Payment{paid("L001", "2024-02", 40000)}
	today := date(2024, time.May, 11)

	first, err := rental.ComputeArrears(tenant, history, today)
	require.NoError(t, err)
	second, err := rental.ComputeArrears(tenant, history, today)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
