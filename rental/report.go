package rental

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REPORTING - Portfolio-wide projections
// =============================================================================

// TenantArrears pairs a tenant with its outstanding debt.
type TenantArrears struct {
	Tenant   Tenant
	Property *Property
	Arrears  Arrears
}

// Dashboard is the portfolio summary shown on the home screen.
type Dashboard struct {
	TotalProperties int
	Let             int
	OccupancyRate   int // percent, rounded
	ExpectedRent    Amount
	ActiveTenants   int
	TotalArrears    Amount
	ReminderCount   int
	Arrears         []TenantArrears
}

// PeriodReport compares expected and collected rent for one month.
type PeriodReport struct {
	Period         Period
	Expected       Amount
	Collected      Amount
	Unpaid         Amount // negative when advances exceed the expected rent
	CollectionRate int    // percent, rounded
	TotalCharges   Amount
	Net            Amount
}

// BuildDashboard aggregates occupancy, expected rent and arrears. accounts
// should hold the active tenants; inactive ones are ignored.
func BuildDashboard(properties []Property, accounts []Account, today time.Time, tmpl ReminderTemplate) Dashboard {
	d := Dashboard{TotalProperties: len(properties)}
	for _, p := range properties {
		if p.Status == PropertyLet {
			d.Let++
		}
	}
	d.OccupancyRate = Percent(Amount(d.Let), Amount(d.TotalProperties))

	for _, acc := range accounts {
		if !acc.Tenant.IsActive() {
			continue
		}
		d.ActiveTenants++
		d.ExpectedRent += acc.Tenant.Rent

		arr, err := ComputeArrears(acc.Tenant, acc.History, today)
		if err != nil || arr.TotalOwed <= 0 {
			continue
		}
		d.TotalArrears += arr.TotalOwed
		d.Arrears = append(d.Arrears, TenantArrears{Tenant: acc.Tenant, Property: acc.Property, Arrears: arr})
	}

	d.ReminderCount = len(GenerateReminders(accounts, today, tmpl))
	return d
}

// BuildPeriodReport computes the rent and cash flow figures of one period.
// payments may contain any records; only Payé ones for the period count.
// Charges count when dated inside the period.
func BuildPeriodReport(period Period, activeTenants []Tenant, payments []Payment, charges []Charge) PeriodReport {
	r := PeriodReport{Period: period}
	for _, t := range activeTenants {
		if t.IsActive() {
			r.Expected += t.Rent
		}
	}
	for _, p := range payments {
		if p.Period == period && p.Status == PaymentPaid {
			r.Collected += p.Amount
		}
	}
	for _, c := range charges {
		if period.Contains(c.Date) {
			r.TotalCharges += c.Amount
		}
	}
	r.Unpaid = r.Expected - r.Collected
	r.CollectionRate = Percent(r.Collected, r.Expected)
	r.Net = r.Collected - r.TotalCharges
	return r
}

// Percent returns part/whole as a whole percentage rounded half away from
// zero, or 0 when whole is zero.
func Percent(part, whole Amount) int {
	if whole == 0 {
		return 0
	}
	ratio := decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(whole)))
	return int(ratio.Round(0).IntPart())
}
