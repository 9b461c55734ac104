/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Field names follow
  the French keys the web client and the backup files already use
  ("loyer", "locataire", "periode"), so records read from the API can be
  pasted into a backup and the other way round.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Records:   exchange.*Record (shared with the JSON backup)
  Arrears:   ArrearsDTO, UnpaidMonthDTO, DebtorDTO
  Dashboard: DashboardDTO, DashboardArrearsDTO
  Reminders: ReminderDTO
  Reports:   ReportDTO
  Payments:  CreatePaymentRequest, PaymentCreatedDTO

VALIDATION:
  Request types carry go-playground/validator tags for shape checks.
  Enum values and business rules are checked by the rental core so the
  same rules apply to the CLI and imports.

SEE ALSO:
  - handlers.go: Uses these types
  - exchange/backup.go: Record types
*/
package api

import (
	"github.com/soprimec/rental-engine/exchange"
	"github.com/soprimec/rental-engine/rental"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreatePropertyRequest is the request to register a property.
type CreatePropertyRequest struct {
	Type     string `json:"type" validate:"max=100"`
	Building string `json:"immeuble" validate:"max=200"`
	Unit     string `json:"appartement" validate:"max=100"`
	Address  string `json:"adresse" validate:"max=300"`
	City     string `json:"ville" validate:"max=100"`
	Surface  string `json:"surface" validate:"max=20"`
	Rooms    string `json:"chambres" validate:"max=20"`
	Rent     int64  `json:"loyer" validate:"gte=0"`
	Charges  int64  `json:"charges" validate:"gte=0"`
	Status   string `json:"statut"`
	Owner    string `json:"proprietaire" validate:"max=200"`
	Notes    string `json:"notes"`
}

// CreateTenantRequest signs a lease.
type CreateTenantRequest struct {
	Name         string `json:"nom" validate:"required,max=200"`
	Phone        string `json:"telephone" validate:"max=50"`
	Email        string `json:"email" validate:"omitempty,email"`
	IDNumber     string `json:"cni" validate:"max=50"`
	Profession   string `json:"profession" validate:"max=100"`
	PropertyCode string `json:"bien" validate:"max=20"`
	LeaseStart   string `json:"dateEntree" validate:"omitempty,datetime=2006-01-02"`
	LeaseMonths  int    `json:"bail" validate:"gte=0,lte=600"`
	Rent         int64  `json:"loyer" validate:"gte=0"`
	Deposit      int64  `json:"caution" validate:"gte=0"`
}

// CreatePaymentRequest is an incoming payment to allocate. The amount is
// checked by the allocator, not here, so that the error is the same
// whatever the entry point.
type CreatePaymentRequest struct {
	TenantCode string `json:"locataire" validate:"required"`
	Amount     int64  `json:"montant"`
	Date       string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Method     string `json:"mode"`
	Reference  string `json:"reference" validate:"max=100"`
}

// CreateChargeRequest records an operating charge.
type CreateChargeRequest struct {
	PropertyCode string `json:"bien" validate:"max=20"`
	Category     string `json:"type" validate:"required,max=100"`
	Date         string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Amount       int64  `json:"montant" validate:"gte=0"`
	Supplier     string `json:"fournisseur" validate:"max=200"`
	Reference    string `json:"reference" validate:"max=100"`
	Description  string `json:"description"`
	Status       string `json:"statut"`
}

// CreateMaintenanceRequest records an intervention.
type CreateMaintenanceRequest struct {
	PropertyCode string `json:"bien" validate:"max=20"`
	Category     string `json:"type" validate:"required,max=100"`
	Urgency      string `json:"urgence"`
	RequestedOn  string `json:"dateDemande" validate:"omitempty,datetime=2006-01-02"`
	ScheduledOn  string `json:"datePrevue" validate:"omitempty,datetime=2006-01-02"`
	Provider     string `json:"prestataire" validate:"max=200"`
	Cost         int64  `json:"cout" validate:"gte=0"`
	Description  string `json:"description"`
	Status       string `json:"statut"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// UnpaidMonthDTO is one outstanding period.
type UnpaidMonthDTO struct {
	Period  string `json:"periode"`
	Label   string `json:"mois"`
	Owed    int64  `json:"reste"`
	Advance int64  `json:"avance"`
}

// PaidMonthDTO identifies the last fully paid period.
type PaidMonthDTO struct {
	Period string `json:"periode"`
	Label  string `json:"mois"`
}

// ArrearsDTO is the arrears of one tenant.
type ArrearsDTO struct {
	UnpaidMonths []UnpaidMonthDTO `json:"moisImpayes"`
	Total        int64            `json:"total"`
	LastPaid     *PaidMonthDTO    `json:"dernierMoisPaye"`
}

// DebtorDTO is a tenant with its arrears, flattened.
type DebtorDTO struct {
	Tenant exchange.TenantRecord `json:"loc"`
	ArrearsDTO
}

// DashboardArrearsDTO is one entry of the dashboard arrears list.
type DashboardArrearsDTO struct {
	Tenant   exchange.TenantRecord    `json:"loc"`
	Property *exchange.PropertyRecord `json:"bien"`
	Arrears  ArrearsDTO               `json:"arr"`
}

// DashboardDTO is the portfolio summary.
type DashboardDTO struct {
	TotalProperties int                   `json:"totalBiens"`
	Let             int                   `json:"loues"`
	OccupancyRate   int                   `json:"taux"`
	ExpectedRent    int64                 `json:"loyersAttendus"`
	ActiveTenants   int                   `json:"locatairesActifs"`
	TotalArrears    int64                 `json:"totalArrieres"`
	ReminderCount   int                   `json:"rappelsCount"`
	Arrears         []DashboardArrearsDTO `json:"arList"`
}

// ReminderDTO is one arrears notice.
type ReminderDTO struct {
	Tenant   exchange.TenantRecord    `json:"loc"`
	Property *exchange.PropertyRecord `json:"bien,omitempty"`
	Type     string                   `json:"type"`
	Badge    string                   `json:"badge"`
	Label    string                   `json:"label"`
	Amount   int64                    `json:"montant"`
	Months   string                   `json:"mois"`
	LastPaid string                   `json:"dernierMoisPaye,omitempty"`
	Message  string                   `json:"message"`
}

// ReportDTO is the rent and cash flow summary of one period.
type ReportDTO struct {
	Period         string `json:"periode"`
	Expected       int64  `json:"loyersAttendus"`
	Collected      int64  `json:"loyersEncaisses"`
	Unpaid         int64  `json:"impayes"`
	CollectionRate int    `json:"taux"`
	TotalCharges   int64  `json:"totalCharges"`
	Net            int64  `json:"net"`
}

// CreatedPaymentDTO is one record produced by an allocation.
type CreatedPaymentDTO struct {
	Number string `json:"numero"`
	Period string `json:"periode"`
	Amount int64  `json:"montant"`
}

// PaymentCreatedDTO is the response after recording a payment.
type PaymentCreatedDTO struct {
	Created []CreatedPaymentDTO `json:"created"`
	Count   int                 `json:"count"`
}

// ContractUploadedDTO is the response after a contract upload.
type ContractUploadedDTO struct {
	OK       bool   `json:"ok"`
	Filename string `json:"filename"`
}

// SeedResultDTO reports whether demo data was loaded.
type SeedResultDTO struct {
	Loaded bool `json:"loaded"`
}

// OKResponse acknowledges a write without payload.
type OKResponse struct {
	OK bool `json:"ok"`
}

// ValidationDetail describes one invalid request field.
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toPropertyDTOs(ps []rental.Property) []exchange.PropertyRecord {
	return exchange.NewBackup(rental.DataSet{Properties: ps}).Properties
}

func toPropertyDTO(p rental.Property) exchange.PropertyRecord {
	return toPropertyDTOs([]rental.Property{p})[0]
}

func toPropertyDTOPtr(p *rental.Property) *exchange.PropertyRecord {
	if p == nil {
		return nil
	}
	dto := toPropertyDTO(*p)
	return &dto
}

func toTenantDTOs(ts []rental.Tenant) []exchange.TenantRecord {
	return exchange.NewBackup(rental.DataSet{Tenants: ts}).Tenants
}

func toTenantDTO(t rental.Tenant) exchange.TenantRecord {
	return toTenantDTOs([]rental.Tenant{t})[0]
}

func toPaymentDTOs(ps []rental.Payment) []exchange.PaymentRecord {
	return exchange.NewBackup(rental.DataSet{Payments: ps}).Payments
}

func toChargeDTOs(cs []rental.Charge) []exchange.ChargeRecord {
	return exchange.NewBackup(rental.DataSet{Charges: cs}).Charges
}

func toMaintenanceDTOs(ms []rental.MaintenanceRequest) []exchange.MaintenanceRecord {
	return exchange.NewBackup(rental.DataSet{Maintenance: ms}).Maintenance
}

func toArrearsDTO(a rental.Arrears) ArrearsDTO {
	dto := ArrearsDTO{
		UnpaidMonths: make([]UnpaidMonthDTO, 0, len(a.UnpaidPeriods)),
		Total:        int64(a.TotalOwed),
	}
	for _, d := range a.UnpaidPeriods {
		dto.UnpaidMonths = append(dto.UnpaidMonths, UnpaidMonthDTO{
			Period:  d.Period.String(),
			Label:   d.Period.Label(),
			Owed:    int64(d.Owed),
			Advance: int64(d.AlreadyPaid),
		})
	}
	if a.LastFullyPaid != nil {
		dto.LastPaid = &PaidMonthDTO{Period: a.LastFullyPaid.String(), Label: a.LastFullyPaid.Label()}
	}
	return dto
}

func toDashboardDTO(d rental.Dashboard) DashboardDTO {
	dto := DashboardDTO{
		TotalProperties: d.TotalProperties,
		Let:             d.Let,
		OccupancyRate:   d.OccupancyRate,
		ExpectedRent:    int64(d.ExpectedRent),
		ActiveTenants:   d.ActiveTenants,
		TotalArrears:    int64(d.TotalArrears),
		ReminderCount:   d.ReminderCount,
		Arrears:         make([]DashboardArrearsDTO, 0, len(d.Arrears)),
	}
	for _, ta := range d.Arrears {
		dto.Arrears = append(dto.Arrears, DashboardArrearsDTO{
			Tenant:   toTenantDTO(ta.Tenant),
			Property: toPropertyDTOPtr(ta.Property),
			Arrears:  toArrearsDTO(ta.Arrears),
		})
	}
	return dto
}

func toReminderDTOs(rs []rental.Reminder) []ReminderDTO {
	dtos := make([]ReminderDTO, 0, len(rs))
	for _, r := range rs {
		dtos = append(dtos, ReminderDTO{
			Tenant:   toTenantDTO(r.Tenant),
			Property: toPropertyDTOPtr(r.Property),
			Type:     string(r.Category),
			Badge:    "badge-danger",
			Label:    r.Badge,
			Amount:   int64(r.Total),
			Months:   r.Periods,
			LastPaid: r.LastPaid,
			Message:  r.Message,
		})
	}
	return dtos
}

func toReportDTO(r rental.PeriodReport) ReportDTO {
	return ReportDTO{
		Period:         r.Period.String(),
		Expected:       int64(r.Expected),
		Collected:      int64(r.Collected),
		Unpaid:         int64(r.Unpaid),
		CollectionRate: r.CollectionRate,
		TotalCharges:   int64(r.TotalCharges),
		Net:            int64(r.Net),
	}
}
