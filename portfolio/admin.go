package portfolio

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/soprimec/rental-engine/rental"
)

// Export reads the whole portfolio.
func (s *Service) Export(ctx context.Context) (rental.DataSet, error) {
	var (
		data rental.DataSet
		err  error
	)
	if data.Properties, err = s.store.ListProperties(ctx); err != nil {
		return rental.DataSet{}, fmt.Errorf("list properties: %w", err)
	}
	if data.Tenants, err = s.store.ListTenants(ctx); err != nil {
		return rental.DataSet{}, fmt.Errorf("list tenants: %w", err)
	}
	if data.Payments, err = s.store.ListPayments(ctx); err != nil {
		return rental.DataSet{}, fmt.Errorf("list payments: %w", err)
	}
	if data.Charges, err = s.store.ListCharges(ctx); err != nil {
		return rental.DataSet{}, fmt.Errorf("list charges: %w", err)
	}
	if data.Maintenance, err = s.store.ListMaintenance(ctx); err != nil {
		return rental.DataSet{}, fmt.Errorf("list maintenance: %w", err)
	}
	return data, nil
}

// Import replaces every table present in data, atomically. Tables absent
// from data keep their content.
func (s *Service) Import(ctx context.Context, data rental.DataSet) error {
	if err := s.store.ReplaceAll(ctx, data); err != nil {
		s.log.Warn("import rejected", zap.Error(err))
		return err
	}
	s.log.Info("data imported",
		zap.Int("properties", len(data.Properties)),
		zap.Int("tenants", len(data.Tenants)),
		zap.Int("payments", len(data.Payments)),
		zap.Int("charges", len(data.Charges)),
		zap.Int("maintenance", len(data.Maintenance)))
	return nil
}

// Reset deletes every record and every stored contract.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	if s.contracts != nil {
		if err := s.contracts.RemoveAll(); err != nil {
			return fmt.Errorf("remove contracts: %w", err)
		}
	}
	s.log.Info("portfolio reset")
	return nil
}
