package portfolio

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/soprimec/rental-engine/logger"
	"github.com/soprimec/rental-engine/rental"
)

// DefaultCity applies to properties registered without a city.
const DefaultCity = "Dakar"

// RegisterProperty issues a property code and stores the property. New
// properties are vacant unless the caller says otherwise.
func (s *Service) RegisterProperty(ctx context.Context, p rental.Property) (rental.Property, error) {
	if p.Rent.IsNegative() || p.Charges.IsNegative() {
		return rental.Property{}, rental.ErrInvalidAmount
	}
	if p.City == "" {
		p.City = DefaultCity
	}
	if p.Status == "" {
		p.Status = rental.PropertyVacant
	}
	if !p.Status.Valid() {
		return rental.Property{}, &rental.FieldError{Field: "property.status", Value: string(p.Status)}
	}

	err := s.store.WithTx(ctx, func(tx rental.Store) error {
		codes, err := tx.Codes(ctx, rental.KindProperty)
		if err != nil {
			return fmt.Errorf("get property codes: %w", err)
		}
		p.Code = rental.NextCode(rental.KindProperty, codes)
		return tx.SaveProperty(ctx, p)
	})
	if err != nil {
		return rental.Property{}, err
	}

	s.log.Info("property registered", logger.Property(p.Code), logger.Amount(p.Rent))
	return p, nil
}

func (s *Service) ListProperties(ctx context.Context) ([]rental.Property, error) {
	return s.store.ListProperties(ctx)
}

// DeleteProperty removes a property unless an active tenant still rents it.
func (s *Service) DeleteProperty(ctx context.Context, code string) error {
	err := s.store.WithTx(ctx, func(tx rental.Store) error {
		occupants, err := tx.ActiveTenantsOf(ctx, code)
		if err != nil {
			return fmt.Errorf("get occupants: %w", err)
		}
		if len(occupants) > 0 {
			return &rental.PropertyInUseError{PropertyCode: code, TenantCode: occupants[0].Code}
		}
		return tx.DeleteProperty(ctx, code)
	})
	if err != nil {
		s.log.Warn("property deletion rejected", logger.Property(code), zap.Error(err))
		return err
	}
	s.log.Info("property deleted", logger.Property(code))
	return nil
}
