package rental

import "time"

// =============================================================================
// PAYMENT ALLOCATOR - Splits an incoming payment across periods
// =============================================================================

// Allocation is the share of an incoming payment applied to one period.
// Each allocation becomes one new payment record; existing records are
// never modified.
type Allocation struct {
	Period Period
	Amount Amount
}

// TotalAllocated sums the allocations.
func TotalAllocated(allocs []Allocation) Amount {
	var total Amount
	for _, a := range allocs {
		total += a.Amount
	}
	return total
}

// AllocatePayment decides where an incoming payment goes:
//
//  1. Outstanding periods, oldest first, each receiving min(remaining, owed).
//  2. Any surplus, as a single allocation, to the period after the last
//     outstanding one. When nothing was outstanding the surplus goes to the
//     calendar month of today if it is not fully paid yet, otherwise to the
//     month after it. The calendar month is used here, not the billing
//     cutoff: advances always target the real current month.
//
// The allocations always sum to amount exactly.
func AllocatePayment(tenant *Tenant, history []Payment, amount Amount, today time.Time) ([]Allocation, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	if !tenant.IsActive() {
		return nil, &PreconditionError{TenantCode: tenant.Code, Reason: "tenant is not active"}
	}

	arrears, err := ComputeArrears(*tenant, history, today)
	if err != nil {
		return nil, err
	}

	var allocs []Allocation
	remaining := amount

	for _, due := range arrears.UnpaidPeriods {
		if remaining.IsZero() {
			break
		}
		apply := remaining.Min(due.Owed)
		allocs = append(allocs, Allocation{Period: due.Period, Amount: apply})
		remaining -= apply
	}

	if remaining.IsPositive() {
		allocs = append(allocs, Allocation{
			Period: surplusTarget(tenant, history, arrears, today),
			Amount: remaining,
		})
	}

	return allocs, nil
}

// surplusTarget picks the future period that receives funds left over after
// every outstanding period has been covered.
func surplusTarget(tenant *Tenant, history []Payment, arrears Arrears, today time.Time) Period {
	if n := len(arrears.UnpaidPeriods); n > 0 {
		return arrears.UnpaidPeriods[n-1].Period.Next()
	}
	current := PeriodOf(today)
	paid := PaidByPeriod(tenant.Code, history)
	if paid[current] < tenant.Rent {
		return current
	}
	return current.Next()
}
