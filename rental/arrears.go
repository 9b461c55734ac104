package rental

import "time"

// =============================================================================
// ARREARS - Unpaid periods derived from the payment history
// =============================================================================

// PeriodDue is an outstanding billing period.
type PeriodDue struct {
	Period      Period
	Owed        Amount // rent still due for the period
	AlreadyPaid Amount // partial payments already received
}

// IsPartial reports whether something was already paid for the period.
func (d PeriodDue) IsPartial() bool { return d.AlreadyPaid > 0 }

// Arrears is the computed debt of one tenant at a given date.
type Arrears struct {
	UnpaidPeriods []PeriodDue
	TotalOwed     Amount

	// LastFullyPaid is the end of the run of fully paid periods starting at
	// the lease start. Full payments after the first gap do not move it.
	LastFullyPaid *Period

	// Cutoff is the last period evaluated. PeriodsInRange counts the periods
	// from lease start to Cutoff; zero when nothing is due yet.
	Cutoff         Period
	PeriodsInRange int
}

// HasArrears reports whether any period is outstanding.
func (a Arrears) HasArrears() bool { return len(a.UnpaidPeriods) > 0 }

// PaidByPeriod sums the Payé payments of tenantCode per period. Several
// partial payments for the same period accumulate. An empty tenantCode
// accepts every record.
func PaidByPeriod(tenantCode string, history []Payment) map[Period]Amount {
	paid := make(map[Period]Amount)
	for _, p := range history {
		if p.Status != PaymentPaid {
			continue
		}
		if tenantCode != "" && p.TenantCode != tenantCode {
			continue
		}
		paid[p.Period] += p.Amount
	}
	return paid
}

// ComputeArrears walks the tenant's billing periods from lease start up to
// the billing cutoff of today and reports every period whose accumulated
// payments fall short of the rent.
//
// Inactive tenants have no tracked arrears. A tenant without lease start
// date violates the caller's precondition.
func ComputeArrears(tenant Tenant, history []Payment, today time.Time) (Arrears, error) {
	if !tenant.IsActive() {
		return Arrears{}, nil
	}
	if tenant.LeaseStart.IsZero() {
		return Arrears{}, &PreconditionError{TenantCode: tenant.Code, Reason: "missing lease start date"}
	}

	paid := PaidByPeriod(tenant.Code, history)
	cutoff := BillingCutoff(today)
	result := Arrears{Cutoff: cutoff}

	for p := PeriodOf(tenant.LeaseStart); !p.After(cutoff); p = p.Next() {
		result.PeriodsInRange++
		got := paid[p]
		if got >= tenant.Rent {
			if len(result.UnpaidPeriods) == 0 {
				last := p
				result.LastFullyPaid = &last
			}
			continue
		}
		due := PeriodDue{Period: p, Owed: tenant.Rent - got, AlreadyPaid: got}
		result.UnpaidPeriods = append(result.UnpaidPeriods, due)
		result.TotalOwed += due.Owed
	}

	return result, nil
}
