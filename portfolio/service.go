/*
Package portfolio runs the rental workflows against a transactional store.

PURPOSE:
  The rental package holds pure algorithms; this package feeds them. Each
  write workflow loads what it needs through the transactional view of a
  rental.TxStore, calls the pure function, and writes the outcome in the
  same transaction.

WORKFLOWS:
  RecordPayment:   Arrears -> allocation -> one payment record per period
  SignLease:       New tenant + property flips to Loué
  TerminateLease:  Tenant removed + property back to Vacant + contract gone
  DeleteProperty:  Refused while an active tenant references the property
  Import / Reset:  Bulk replacement of the data set

CLOCK:
  "Today" comes from the injected Clock only. The rental functions never
  read the wall clock.

SEE ALSO:
  - rental/: Algorithms and store interfaces
  - api/: HTTP surface over this package
*/
package portfolio

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/soprimec/rental-engine/rental"
)

// Clock returns the current time.
type Clock func() time.Time

// ContractStore keeps the contract document of each tenant.
type ContractStore interface {
	Save(tenantCode string, r io.Reader) error
	Open(tenantCode string) (*os.File, error)
	Remove(tenantCode string) error
	RemoveAll() error
}

// Service exposes every portfolio operation.
type Service struct {
	store     rental.TxStore
	contracts ContractStore
	log       *zap.Logger
	now       Clock
	tmpl      rental.ReminderTemplate
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

func WithClock(c Clock) Option { return func(s *Service) { s.now = c } }

func WithContracts(c ContractStore) Option { return func(s *Service) { s.contracts = c } }

func WithReminderTemplate(t rental.ReminderTemplate) Option {
	return func(s *Service) { s.tmpl = t }
}

// New creates a Service. Without options it logs nowhere, uses the wall
// clock and keeps no contract documents.
func New(store rental.TxStore, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   zap.NewNop(),
		now:   time.Now,
		tmpl:  rental.DefaultReminderTemplate(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current date in UTC, without time of day.
func (s *Service) Today() time.Time {
	t := s.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

