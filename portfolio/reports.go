package portfolio

import (
	"context"
	"fmt"

	"github.com/soprimec/rental-engine/rental"
)

// =============================================================================
// READ PATH - Dashboard, reminders, period reports
// =============================================================================

// Dashboard summarizes occupancy, expected rent and arrears as of today.
func (s *Service) Dashboard(ctx context.Context) (rental.Dashboard, error) {
	properties, err := s.store.ListProperties(ctx)
	if err != nil {
		return rental.Dashboard{}, fmt.Errorf("list properties: %w", err)
	}
	accounts, err := s.accounts(ctx)
	if err != nil {
		return rental.Dashboard{}, err
	}
	return rental.BuildDashboard(properties, accounts, s.Today(), s.tmpl), nil
}

// Reminders returns one arrears notice per active tenant that owes rent.
func (s *Service) Reminders(ctx context.Context) ([]rental.Reminder, error) {
	accounts, err := s.accounts(ctx)
	if err != nil {
		return nil, err
	}
	return rental.GenerateReminders(accounts, s.Today(), s.tmpl), nil
}

// PeriodReport compares expected and collected rent for one month.
func (s *Service) PeriodReport(ctx context.Context, period rental.Period) (rental.PeriodReport, error) {
	tenants, err := s.store.ListActiveTenants(ctx)
	if err != nil {
		return rental.PeriodReport{}, fmt.Errorf("list active tenants: %w", err)
	}
	payments, err := s.store.PaymentsForPeriod(ctx, period)
	if err != nil {
		return rental.PeriodReport{}, fmt.Errorf("list payments: %w", err)
	}
	charges, err := s.store.ListCharges(ctx)
	if err != nil {
		return rental.PeriodReport{}, fmt.Errorf("list charges: %w", err)
	}
	return rental.BuildPeriodReport(period, tenants, payments, charges), nil
}

// accounts loads every active tenant with its property and Payé history.
func (s *Service) accounts(ctx context.Context) ([]rental.Account, error) {
	tenants, err := s.store.ListActiveTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}
	properties, err := s.store.ListProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	byCode := make(map[string]*rental.Property, len(properties))
	for i := range properties {
		byCode[properties[i].Code] = &properties[i]
	}
	history := make(map[string][]rental.Payment)
	for _, p := range payments {
		if p.Status == rental.PaymentPaid {
			history[p.TenantCode] = append(history[p.TenantCode], p)
		}
	}

	accounts := make([]rental.Account, 0, len(tenants))
	for _, t := range tenants {
		accounts = append(accounts, rental.Account{
			Tenant:   t,
			Property: byCode[t.PropertyCode],
			History:  history[t.Code],
		})
	}
	return accounts, nil
}
