package portfolio

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/soprimec/rental-engine/logger"
	"github.com/soprimec/rental-engine/rental"
)

// =============================================================================
// PAYMENTS - Allocation write path
// =============================================================================

// PaymentRequest is an incoming rent payment before allocation.
type PaymentRequest struct {
	TenantCode string
	Amount     rental.Amount
	Date       time.Time // zero means today
	Method     rental.PaymentMethod
	Reference  string
}

// RecordPayment splits an incoming payment across the tenant's outstanding
// periods and stores one Payé record per allocation. The read of the
// payment history, the allocation and the inserts happen in one
// transaction; on any error nothing is written.
func (s *Service) RecordPayment(ctx context.Context, req PaymentRequest) ([]rental.Payment, error) {
	today := s.Today()
	if req.Date.IsZero() {
		req.Date = today
	}
	if req.Method == "" {
		req.Method = rental.MethodCash
	}
	if !req.Method.Valid() {
		return nil, &rental.FieldError{Field: "payment.method", Value: string(req.Method)}
	}

	var created []rental.Payment
	err := s.store.WithTx(ctx, func(tx rental.Store) error {
		tenant, err := tx.GetTenant(ctx, req.TenantCode)
		if err != nil {
			return fmt.Errorf("get tenant: %w", err)
		}
		if tenant == nil {
			return fmt.Errorf("%w: %s", rental.ErrTenantNotFound, req.TenantCode)
		}

		history, err := tx.PaidPayments(ctx, tenant.Code)
		if err != nil {
			return fmt.Errorf("get payment history: %w", err)
		}

		allocs, err := rental.AllocatePayment(tenant, history, req.Amount, today)
		if err != nil {
			return err
		}

		codes, err := tx.Codes(ctx, rental.KindPayment)
		if err != nil {
			return fmt.Errorf("get payment numbers: %w", err)
		}
		seq := rental.NewSequence(rental.KindPayment, codes)

		created = make([]rental.Payment, 0, len(allocs))
		for _, a := range allocs {
			created = append(created, rental.Payment{
				Number:     seq.Next(),
				TenantCode: tenant.Code,
				Period:     a.Period,
				Amount:     a.Amount,
				Date:       req.Date,
				Method:     req.Method,
				Reference:  req.Reference,
				Status:     rental.PaymentPaid,
			})
		}
		if err := tx.InsertPayments(ctx, created); err != nil {
			return fmt.Errorf("insert payments: %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Warn("payment rejected",
			logger.Tenant(req.TenantCode),
			logger.Amount(req.Amount),
			zap.Error(err))
		return nil, err
	}

	s.log.Info("payment recorded",
		logger.Tenant(req.TenantCode),
		logger.Amount(req.Amount),
		zap.Int("records", len(created)),
		logger.Period(created[0].Period))
	return created, nil
}

// ListPayments returns every payment record.
func (s *Service) ListPayments(ctx context.Context) ([]rental.Payment, error) {
	return s.store.ListPayments(ctx)
}

// DeletePayment removes one payment record. Arrears are recomputed from
// the remaining history on the next read.
func (s *Service) DeletePayment(ctx context.Context, number string) error {
	if err := s.store.DeletePayment(ctx, number); err != nil {
		return err
	}
	s.log.Info("payment deleted", zap.String("payment", number))
	return nil
}

// =============================================================================
// ARREARS QUERIES
// =============================================================================

// ArrearsFor computes the current arrears of one tenant.
func (s *Service) ArrearsFor(ctx context.Context, tenantCode string) (rental.TenantArrears, error) {
	tenant, err := s.store.GetTenant(ctx, tenantCode)
	if err != nil {
		return rental.TenantArrears{}, fmt.Errorf("get tenant: %w", err)
	}
	if tenant == nil {
		return rental.TenantArrears{}, fmt.Errorf("%w: %s", rental.ErrTenantNotFound, tenantCode)
	}

	history, err := s.store.PaidPayments(ctx, tenant.Code)
	if err != nil {
		return rental.TenantArrears{}, fmt.Errorf("get payment history: %w", err)
	}
	arr, err := rental.ComputeArrears(*tenant, history, s.Today())
	if err != nil {
		return rental.TenantArrears{}, err
	}

	property, err := s.propertyOf(ctx, s.store, *tenant)
	if err != nil {
		return rental.TenantArrears{}, err
	}
	return rental.TenantArrears{Tenant: *tenant, Property: property, Arrears: arr}, nil
}

// AllArrears returns every active tenant that owes something, in tenant
// code order.
func (s *Service) AllArrears(ctx context.Context) ([]rental.TenantArrears, error) {
	accounts, err := s.accounts(ctx)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	var out []rental.TenantArrears
	for _, acc := range accounts {
		arr, err := rental.ComputeArrears(acc.Tenant, acc.History, today)
		if err != nil {
			s.log.Warn("arrears skipped", logger.Tenant(acc.Tenant.Code), zap.Error(err))
			continue
		}
		if arr.TotalOwed > 0 {
			out = append(out, rental.TenantArrears{Tenant: acc.Tenant, Property: acc.Property, Arrears: arr})
		}
	}
	return out, nil
}

func (s *Service) propertyOf(ctx context.Context, st rental.Store, t rental.Tenant) (*rental.Property, error) {
	if t.PropertyCode == "" {
		return nil, nil
	}
	p, err := st.GetProperty(ctx, t.PropertyCode)
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	return p, nil
}
