package portfolio

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/soprimec/rental-engine/logger"
	"github.com/soprimec/rental-engine/rental"
)

// =============================================================================
// EXPENSES - Operating charges and maintenance requests
// =============================================================================

// RecordCharge issues a charge number and stores the charge. A zero date
// is today.
func (s *Service) RecordCharge(ctx context.Context, c rental.Charge) (rental.Charge, error) {
	if c.Amount.IsNegative() {
		return rental.Charge{}, rental.ErrInvalidAmount
	}
	if c.Date.IsZero() {
		c.Date = s.Today()
	}
	if c.Status == "" {
		c.Status = rental.ChargePaid
	}
	if !c.Status.Valid() {
		return rental.Charge{}, &rental.FieldError{Field: "charge.status", Value: string(c.Status)}
	}

	err := s.store.WithTx(ctx, func(tx rental.Store) error {
		codes, err := tx.Codes(ctx, rental.KindCharge)
		if err != nil {
			return fmt.Errorf("get charge numbers: %w", err)
		}
		c.Number = rental.NextCode(rental.KindCharge, codes)
		return tx.SaveCharge(ctx, c)
	})
	if err != nil {
		return rental.Charge{}, err
	}

	s.log.Info("charge recorded",
		zap.String("charge", c.Number),
		logger.Property(c.PropertyCode),
		logger.Amount(c.Amount))
	return c, nil
}

func (s *Service) ListCharges(ctx context.Context) ([]rental.Charge, error) {
	return s.store.ListCharges(ctx)
}

func (s *Service) DeleteCharge(ctx context.Context, number string) error {
	return s.store.DeleteCharge(ctx, number)
}

// RequestMaintenance issues an intervention number and stores the request.
func (s *Service) RequestMaintenance(ctx context.Context, m rental.MaintenanceRequest) (rental.MaintenanceRequest, error) {
	if m.Cost.IsNegative() {
		return rental.MaintenanceRequest{}, rental.ErrInvalidAmount
	}
	if m.RequestedOn.IsZero() {
		m.RequestedOn = s.Today()
	}
	if m.Urgency == "" {
		m.Urgency = rental.UrgencyLow
	}
	if m.Status == "" {
		m.Status = rental.MaintenancePlanned
	}
	if !m.Urgency.Valid() {
		return rental.MaintenanceRequest{}, &rental.FieldError{Field: "maintenance.urgency", Value: string(m.Urgency)}
	}
	if !m.Status.Valid() {
		return rental.MaintenanceRequest{}, &rental.FieldError{Field: "maintenance.status", Value: string(m.Status)}
	}

	err := s.store.WithTx(ctx, func(tx rental.Store) error {
		codes, err := tx.Codes(ctx, rental.KindMaintenance)
		if err != nil {
			return fmt.Errorf("get maintenance numbers: %w", err)
		}
		m.Number = rental.NextCode(rental.KindMaintenance, codes)
		return tx.SaveMaintenance(ctx, m)
	})
	if err != nil {
		return rental.MaintenanceRequest{}, err
	}

	s.log.Info("maintenance requested",
		zap.String("maintenance", m.Number),
		logger.Property(m.PropertyCode),
		zap.String("urgency", string(m.Urgency)))
	return m, nil
}

func (s *Service) ListMaintenance(ctx context.Context) ([]rental.MaintenanceRequest, error) {
	return s.store.ListMaintenance(ctx)
}

func (s *Service) DeleteMaintenance(ctx context.Context, number string) error {
	return s.store.DeleteMaintenance(ctx, number)
}
