package portfolio

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/soprimec/rental-engine/rental"
)

// =============================================================================
// DEMO DATA - Sample portfolio relative to today
// =============================================================================

// DemoData builds the sample portfolio used for demos and manual testing:
// five properties, two tenants, a year of payments, two charges and one
// maintenance request. Dates are relative to today so the arrears picture
// stays the same whenever it is loaded:
//
//	L001  lease 6 months ago, only the last 4 months paid -> arrears
//	L002  lease 12 months ago, every month paid           -> up to date
func DemoData(today time.Time) rental.DataSet {
	y, m := today.Year(), today.Month()
	day := func(monthOffset, d int) time.Time {
		return time.Date(y, m+time.Month(monthOffset), d, 0, 0, 0, 0, time.UTC)
	}

	properties := []rental.Property{
		{Code: "B001", Type: "Appartement", Building: "Résidence Océan - Plateau", Unit: "Appt A3", Address: "15 Rue Jules Ferry", City: DefaultCity, Surface: "85", Rooms: "3", Rent: 250000, Charges: 15000, Status: rental.PropertyLet, Owner: "M. Diallo"},
		{Code: "B002", Type: "Villa", Building: "Mermoz", Address: "28 Avenue Bourguiba", City: DefaultCity, Surface: "200", Rooms: "5", Rent: 650000, Charges: 35000, Status: rental.PropertyLet, Owner: "Mme Ndiaye", Notes: "Piscine"},
		{Code: "B003", Type: "Studio", Building: "Résidence Liberté 6", Unit: "Studio 1A", Address: "45 Rue 10", City: DefaultCity, Surface: "35", Rooms: "1", Rent: 120000, Charges: 8000, Status: rental.PropertyVacant, Owner: "M. Sarr"},
		{Code: "B004", Type: "Studio", Building: "Résidence Liberté 6", Unit: "Studio 2B", Address: "45 Rue 10", City: DefaultCity, Surface: "40", Rooms: "1", Rent: 130000, Charges: 8000, Status: rental.PropertyVacant, Owner: "M. Sarr"},
		{Code: "B005", Type: "Appartement", Building: "Résidence Océan - Plateau", Unit: "Appt B1", Address: "15 Rue Jules Ferry", City: DefaultCity, Surface: "70", Rooms: "2", Rent: 200000, Charges: 12000, Status: rental.PropertyVacant, Owner: "M. Diallo"},
	}

	tenants := []rental.Tenant{
		{Code: "L001", Name: "FALL Aïssatou", Phone: "77 123 45 67", Email: "aissatou.fall@email.com", IDNumber: "1234567890", Profession: "Comptable", PropertyCode: "B001", LeaseStart: day(-6, 1), LeaseMonths: 12, Rent: 250000, Deposit: 500000, Status: rental.TenantActive},
		{Code: "L002", Name: "SECK Ibrahima", Phone: "76 234 56 78", Email: "ibrahima.seck@email.com", IDNumber: "0987654321", Profession: "Ingénieur", PropertyCode: "B002", LeaseStart: day(-12, 1), LeaseMonths: 24, Rent: 650000, Deposit: 1300000, Status: rental.TenantActive},
	}

	seq := rental.NewSequence(rental.KindPayment, nil)
	var payments []rental.Payment
	monthly := func(tenant string, months int, amount rental.Amount, method rental.PaymentMethod) {
		for i := months - 1; i >= 0; i-- {
			paidOn := day(-i, 5)
			payments = append(payments, rental.Payment{
				Number:     seq.Next(),
				TenantCode: tenant,
				Period:     rental.PeriodOf(paidOn),
				Amount:     amount,
				Date:       paidOn,
				Method:     method,
				Status:     rental.PaymentPaid,
			})
		}
	}
	monthly("L002", 12, 650000, rental.MethodTransfer)
	monthly("L001", 4, 250000, rental.MethodCash)

	charges := []rental.Charge{
		{Number: "C0001", PropertyCode: "B001", Category: "Électricité/SENELEC", Date: day(-1, 15), Amount: 45000, Supplier: "SENELEC", Description: "Facture mensuelle", Status: rental.ChargePaid},
		{Number: "C0002", PropertyCode: "B002", Category: "Eau/SDE", Date: day(-1, 20), Amount: 28000, Supplier: "SDE", Description: "Facture mensuelle", Status: rental.ChargePaid},
	}

	maintenance := []rental.MaintenanceRequest{
		{Number: "INT001", PropertyCode: "B001", Category: "Plomberie", Urgency: rental.UrgencyMedium, RequestedOn: day(-1, 10), ScheduledOn: day(-1, 15), Provider: "Ets Diop", Cost: 75000, Description: "Réparation fuite salle de bain", Status: rental.MaintenanceDone},
	}

	return rental.DataSet{
		Properties:  properties,
		Tenants:     tenants,
		Payments:    payments,
		Charges:     charges,
		Maintenance: maintenance,
	}
}

// SeedDemo loads DemoData into an empty portfolio. It reports false and
// leaves the data alone when properties already exist, unless force is
// set, in which case everything is wiped first.
func (s *Service) SeedDemo(ctx context.Context, force bool) (bool, error) {
	if force {
		if err := s.Reset(ctx); err != nil {
			return false, err
		}
	} else {
		existing, err := s.store.ListProperties(ctx)
		if err != nil {
			return false, fmt.Errorf("list properties: %w", err)
		}
		if len(existing) > 0 {
			s.log.Info("demo seed skipped: portfolio not empty", zap.Int("properties", len(existing)))
			return false, nil
		}
	}

	data := DemoData(s.Today())
	if err := s.store.ReplaceAll(ctx, data); err != nil {
		return false, fmt.Errorf("load demo data: %w", err)
	}
	s.log.Info("demo data loaded", zap.Int("payments", len(data.Payments)))
	return true, nil
}
