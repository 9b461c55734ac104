package portfolio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/soprimec/rental-engine/logger"
	"github.com/soprimec/rental-engine/rental"
	"github.com/soprimec/rental-engine/store/contracts"
)

// =============================================================================
// LEASES - Tenant lifecycle and property occupancy
// =============================================================================

// DefaultLeaseMonths applies when a lease is signed without a duration.
const DefaultLeaseMonths = 12

// SignLease registers a new tenant and marks the property as let, in one
// transaction. The tenant code is issued here; any code on t is ignored.
// A zero rent is taken from the property, a zero lease start is today.
func (s *Service) SignLease(ctx context.Context, t rental.Tenant) (rental.Tenant, error) {
	if t.Name == "" {
		return rental.Tenant{}, &rental.FieldError{Field: "tenant.name", Value: t.Name}
	}
	if t.Rent.IsNegative() || t.Deposit.IsNegative() {
		return rental.Tenant{}, rental.ErrInvalidAmount
	}
	if t.LeaseStart.IsZero() {
		t.LeaseStart = s.Today()
	}
	if t.LeaseMonths <= 0 {
		t.LeaseMonths = DefaultLeaseMonths
	}
	t.Status = rental.TenantActive
	t.Contract = ""

	err := s.store.WithTx(ctx, func(tx rental.Store) error {
		if t.PropertyCode != "" {
			property, err := tx.GetProperty(ctx, t.PropertyCode)
			if err != nil {
				return fmt.Errorf("get property: %w", err)
			}
			if property == nil {
				return fmt.Errorf("%w: %s", rental.ErrPropertyNotFound, t.PropertyCode)
			}
			occupants, err := tx.ActiveTenantsOf(ctx, property.Code)
			if err != nil {
				return fmt.Errorf("get occupants: %w", err)
			}
			if len(occupants) > 0 {
				return fmt.Errorf("%w: %s is let to %s", rental.ErrPropertyOccupied, property.Code, occupants[0].Code)
			}
			if t.Rent.IsZero() {
				t.Rent = property.Rent
			}
		}

		codes, err := tx.Codes(ctx, rental.KindTenant)
		if err != nil {
			return fmt.Errorf("get tenant codes: %w", err)
		}
		t.Code = rental.NextCode(rental.KindTenant, codes)

		if err := tx.SaveTenant(ctx, t); err != nil {
			return fmt.Errorf("save tenant: %w", err)
		}
		if t.PropertyCode != "" {
			if err := tx.SetPropertyStatus(ctx, t.PropertyCode, rental.PropertyLet); err != nil {
				return fmt.Errorf("mark property let: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warn("lease rejected", logger.Property(t.PropertyCode), zap.Error(err))
		return rental.Tenant{}, err
	}

	s.log.Info("lease signed",
		logger.Tenant(t.Code),
		logger.Property(t.PropertyCode),
		logger.Amount(t.Rent))
	return t, nil
}

// TerminateLease removes the tenant and frees the property in one
// transaction, then deletes the contract document. Payment records are
// kept for the reports.
func (s *Service) TerminateLease(ctx context.Context, tenantCode string) error {
	var propertyCode string
	err := s.store.WithTx(ctx, func(tx rental.Store) error {
		tenant, err := tx.GetTenant(ctx, tenantCode)
		if err != nil {
			return fmt.Errorf("get tenant: %w", err)
		}
		if tenant == nil {
			return fmt.Errorf("%w: %s", rental.ErrTenantNotFound, tenantCode)
		}
		propertyCode = tenant.PropertyCode

		if err := tx.DeleteTenant(ctx, tenant.Code); err != nil {
			return fmt.Errorf("delete tenant: %w", err)
		}
		if propertyCode == "" {
			return nil
		}

		property, err := tx.GetProperty(ctx, propertyCode)
		if err != nil {
			return fmt.Errorf("get property: %w", err)
		}
		if property == nil {
			return nil
		}

		// Another active lease may still reference the property.
		occupants, err := tx.ActiveTenantsOf(ctx, property.Code)
		if err != nil {
			return fmt.Errorf("active tenants: %w", err)
		}
		if len(occupants) > 0 {
			return nil
		}
		return tx.SetPropertyStatus(ctx, property.Code, rental.PropertyVacant)
	})
	if err != nil {
		s.log.Warn("termination rejected", logger.Tenant(tenantCode), zap.Error(err))
		return err
	}

	if s.contracts != nil {
		if err := s.contracts.Remove(tenantCode); err != nil {
			s.log.Warn("contract not removed", logger.Tenant(tenantCode), zap.Error(err))
		}
	}

	s.log.Info("lease terminated", logger.Tenant(tenantCode), logger.Property(propertyCode))
	return nil
}

// GetTenant returns a tenant or ErrTenantNotFound.
func (s *Service) GetTenant(ctx context.Context, code string) (*rental.Tenant, error) {
	t, err := s.store.GetTenant(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s", rental.ErrTenantNotFound, code)
	}
	return t, nil
}

func (s *Service) ListTenants(ctx context.Context) ([]rental.Tenant, error) {
	return s.store.ListTenants(ctx)
}

// =============================================================================
// CONTRACT DOCUMENTS
// =============================================================================

// ErrNoContractStore is returned by contract operations when the service
// was built without WithContracts.
var ErrNoContractStore = errors.New("contract storage not configured")

// AttachContract stores the document and records its original filename on
// the tenant. A previous document is replaced.
func (s *Service) AttachContract(ctx context.Context, tenantCode, filename string, r io.Reader) error {
	if s.contracts == nil {
		return ErrNoContractStore
	}
	if _, err := s.GetTenant(ctx, tenantCode); err != nil {
		return err
	}
	if err := s.contracts.Save(tenantCode, r); err != nil {
		return fmt.Errorf("save contract: %w", err)
	}
	if err := s.store.SetTenantContract(ctx, tenantCode, filename); err != nil {
		return fmt.Errorf("record contract: %w", err)
	}
	s.log.Info("contract attached", logger.Tenant(tenantCode), zap.String("filename", filename))
	return nil
}

// OpenContract returns the tenant and its stored document. The caller
// closes the file.
func (s *Service) OpenContract(ctx context.Context, tenantCode string) (*rental.Tenant, *os.File, error) {
	if s.contracts == nil {
		return nil, nil, ErrNoContractStore
	}
	tenant, err := s.GetTenant(ctx, tenantCode)
	if err != nil {
		return nil, nil, err
	}
	if tenant.Contract == "" {
		return nil, nil, fmt.Errorf("%w: no contract for %s", rental.ErrNotFound, tenantCode)
	}
	f, err := s.contracts.Open(tenantCode)
	if errors.Is(err, contracts.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: contract file of %s", rental.ErrNotFound, tenantCode)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open contract: %w", err)
	}
	return tenant, f, nil
}

// DetachContract deletes the document and clears the filename.
func (s *Service) DetachContract(ctx context.Context, tenantCode string) error {
	if s.contracts == nil {
		return ErrNoContractStore
	}
	if _, err := s.GetTenant(ctx, tenantCode); err != nil {
		return err
	}
	if err := s.contracts.Remove(tenantCode); err != nil {
		return fmt.Errorf("remove contract: %w", err)
	}
	if err := s.store.SetTenantContract(ctx, tenantCode, ""); err != nil {
		return fmt.Errorf("clear contract: %w", err)
	}
	s.log.Info("contract removed", logger.Tenant(tenantCode))
	return nil
}
