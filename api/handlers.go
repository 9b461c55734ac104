/*
handlers.go - HTTP API handlers for the rental portfolio

PURPOSE:
  Exposes the portfolio workflows via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the portfolio
  service.

ENDPOINTS:
  Properties:
    GET    /api/biens                  List properties
    POST   /api/biens                  Register property
    DELETE /api/biens/{code}           Delete property (409 while let)

  Tenants:
    GET    /api/locataires             List tenants
    GET    /api/locataires/{code}      Get tenant
    POST   /api/locataires             Sign lease
    DELETE /api/locataires/{code}      Terminate lease

  Payments:
    GET    /api/paiements              List payment records
    POST   /api/paiements              Allocate an incoming payment
    DELETE /api/paiements/{numero}     Delete one record

  Expenses:
    GET|POST /api/charges, DELETE /api/charges/{numero}
    GET|POST /api/entretiens, DELETE /api/entretiens/{numero}

  Read path:
    GET    /api/dashboard              Portfolio summary (cached)
    GET    /api/arrieres               Tenants with arrears
    GET    /api/arrieres/{code}        Arrears of one tenant
    GET    /api/rappels                Reminder notices (cached)
    GET    /api/rapports/{periode}     Period report (YYYY-MM)

  See contracts.go and admin.go for documents, backup and demo data.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, broken preconditions
  - 404: Tenant, property or record not found
  - 409: Property in use or already let
  - 413: Upload too large
  - 500: Internal errors (logged)

SECURITY NOTE:
  No authentication. Deploy behind an authenticating reverse proxy.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/soprimec/rental-engine/cache"
	"github.com/soprimec/rental-engine/logger"
	"github.com/soprimec/rental-engine/portfolio"
	"github.com/soprimec/rental-engine/rental"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// DefaultMaxUploadBytes bounds contract uploads when no limit is given.
const DefaultMaxUploadBytes = 20 << 20

// maxImportBytes bounds JSON backup uploads.
const maxImportBytes = 50 << 20

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	svc       *portfolio.Service
	cache     *cache.Cache
	validate  *validator.Validate
	maxUpload int64

	// generation is bumped after every write; cache keys carry it.
	generation atomic.Uint64
}

// NewHandler creates a handler. c may be nil to disable caching.
func NewHandler(svc *portfolio.Service, c *cache.Cache, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		svc:       svc,
		cache:     c,
		validate:  newValidator(),
		maxUpload: maxUploadBytes,
	}
}

// newValidator reports fields under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// =============================================================================
// PROPERTY HANDLERS
// =============================================================================

func (h *Handler) ListProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := h.svc.ListProperties(r.Context())
	if err != nil {
		writeStoreError(w, r, "Failed to list properties", err)
		return
	}
	writeJSON(w, http.StatusOK, toPropertyDTOs(properties))
}

func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var req CreatePropertyRequest
	if !h.decode(w, r, &req) {
		return
	}
	status, err := rental.ParsePropertyStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid property status", err)
		return
	}

	p, err := h.svc.RegisterProperty(r.Context(), rental.Property{
		Type:     req.Type,
		Building: req.Building,
		Unit:     req.Unit,
		Address:  req.Address,
		City:     req.City,
		Surface:  req.Surface,
		Rooms:    req.Rooms,
		Rent:     rental.Amount(req.Rent),
		Charges:  rental.Amount(req.Charges),
		Status:   status,
		Owner:    req.Owner,
		Notes:    req.Notes,
	})
	if err != nil {
		writeStoreError(w, r, "Failed to create property", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPropertyDTO(p))
}

func (h *Handler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProperty(r.Context(), chi.URLParam(r, "code")); err != nil {
		writeStoreError(w, r, "Failed to delete property", err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// =============================================================================
// TENANT HANDLERS
// =============================================================================

func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.svc.ListTenants(r.Context())
	if err != nil {
		writeStoreError(w, r, "Failed to list tenants", err)
		return
	}
	writeJSON(w, http.StatusOK, toTenantDTOs(tenants))
}

func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.svc.GetTenant(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeStoreError(w, r, "Failed to get tenant", err)
		return
	}
	writeJSON(w, http.StatusOK, toTenantDTO(*tenant))
}

// CreateTenant signs a lease.
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if !h.decode(w, r, &req) {
		return
	}
	start, err := rental.ParseDate(req.LeaseStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid dateEntree (use YYYY-MM-DD)", err)
		return
	}

	tenant, err := h.svc.SignLease(r.Context(), rental.Tenant{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		IDNumber:     req.IDNumber,
		Profession:   req.Profession,
		PropertyCode: req.PropertyCode,
		LeaseStart:   start,
		LeaseMonths:  req.LeaseMonths,
		Rent:         rental.Amount(req.Rent),
		Deposit:      rental.Amount(req.Deposit),
	})
	if err != nil {
		writeStoreError(w, r, "Failed to sign lease", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTenantDTO(tenant))
}

// DeleteTenant terminates the lease.
func (h *Handler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.TerminateLease(r.Context(), chi.URLParam(r, "code")); err != nil {
		writeStoreError(w, r, "Failed to terminate lease", err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.ListPayments(r.Context())
	if err != nil {
		writeStoreError(w, r, "Failed to list payments", err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTOs(payments))
}

// CreatePayment allocates an incoming payment across the tenant's periods.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := rental.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	method, err := rental.ParsePaymentMethod(req.Method)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payment method", err)
		return
	}

	created, err := h.svc.RecordPayment(r.Context(), portfolio.PaymentRequest{
		TenantCode: req.TenantCode,
		Amount:     rental.Amount(req.Amount),
		Date:       date,
		Method:     method,
		Reference:  req.Reference,
	})
	if err != nil {
		writeStoreError(w, r, "Failed to record payment", err)
		return
	}

	resp := PaymentCreatedDTO{Created: make([]CreatedPaymentDTO, 0, len(created)), Count: len(created)}
	for _, p := range created {
		resp.Created = append(resp.Created, CreatedPaymentDTO{
			Number: p.Number,
			Period: p.Period.String(),
			Amount: int64(p.Amount),
		})
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePayment(r.Context(), chi.URLParam(r, "numero")); err != nil {
		writeStoreError(w, r, "Failed to delete payment", err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// =============================================================================
// EXPENSE HANDLERS
// =============================================================================

func (h *Handler) ListCharges(w http.ResponseWriter, r *http.Request) {
	charges, err := h.svc.ListCharges(r.Context())
	if err != nil {
		writeStoreError(w, r, "Failed to list charges", err)
		return
	}
	writeJSON(w, http.StatusOK, toChargeDTOs(charges))
}

func (h *Handler) CreateCharge(w http.ResponseWriter, r *http.Request) {
	var req CreateChargeRequest
	if !h.decode(w, r, &req) {
		return
	}
	date, err := rental.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	status, err := rental.ParseChargeStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid charge status", err)
		return
	}

	c, err := h.svc.RecordCharge(r.Context(), rental.Charge{
		PropertyCode: req.PropertyCode,
		Category:     req.Category,
		Date:         date,
		Amount:       rental.Amount(req.Amount),
		Supplier:     req.Supplier,
		Reference:    req.Reference,
		Description:  req.Description,
		Status:       status,
	})
	if err != nil {
		writeStoreError(w, r, "Failed to record charge", err)
		return
	}
	writeJSON(w, http.StatusCreated, toChargeDTOs([]rental.Charge{c})[0])
}

func (h *Handler) DeleteCharge(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCharge(r.Context(), chi.URLParam(r, "numero")); err != nil {
		writeStoreError(w, r, "Failed to delete charge", err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func (h *Handler) ListMaintenance(w http.ResponseWriter, r *http.Request) {
	requests, err := h.svc.ListMaintenance(r.Context())
	if err != nil {
		writeStoreError(w, r, "Failed to list maintenance", err)
		return
	}
	writeJSON(w, http.StatusOK, toMaintenanceDTOs(requests))
}

func (h *Handler) CreateMaintenance(w http.ResponseWriter, r *http.Request) {
	var req CreateMaintenanceRequest
	if !h.decode(w, r, &req) {
		return
	}
	requested, err := rental.ParseDate(req.RequestedOn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid dateDemande (use YYYY-MM-DD)", err)
		return
	}
	scheduled, err := rental.ParseDate(req.ScheduledOn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid datePrevue (use YYYY-MM-DD)", err)
		return
	}
	urgency, err := rental.ParseUrgency(req.Urgency)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid urgency", err)
		return
	}
	status, err := rental.ParseMaintenanceStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid maintenance status", err)
		return
	}

	m, err := h.svc.RequestMaintenance(r.Context(), rental.MaintenanceRequest{
		PropertyCode: req.PropertyCode,
		Category:     req.Category,
		Urgency:      urgency,
		RequestedOn:  requested,
		ScheduledOn:  scheduled,
		Provider:     req.Provider,
		Cost:         rental.Amount(req.Cost),
		Description:  req.Description,
		Status:       status,
	})
	if err != nil {
		writeStoreError(w, r, "Failed to record maintenance", err)
		return
	}
	writeJSON(w, http.StatusCreated, toMaintenanceDTOs([]rental.MaintenanceRequest{m})[0])
}

func (h *Handler) DeleteMaintenance(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMaintenance(r.Context(), chi.URLParam(r, "numero")); err != nil {
		writeStoreError(w, r, "Failed to delete maintenance", err)
		return
	}
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// =============================================================================
// READ PATH HANDLERS
// =============================================================================

// Dashboard is cached per day until the next write.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "dashboard", func() (any, error) {
		d, err := h.svc.Dashboard(r.Context())
		if err != nil {
			return nil, err
		}
		return toDashboardDTO(d), nil
	})
}

// Reminders is cached per day until the next write.
func (h *Handler) Reminders(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "reminders", func() (any, error) {
		reminders, err := h.svc.Reminders(r.Context())
		if err != nil {
			return nil, err
		}
		return toReminderDTOs(reminders), nil
	})
}

func (h *Handler) ListArrears(w http.ResponseWriter, r *http.Request) {
	all, err := h.svc.AllArrears(r.Context())
	if err != nil {
		writeStoreError(w, r, "Failed to compute arrears", err)
		return
	}
	dtos := make([]DebtorDTO, 0, len(all))
	for _, ta := range all {
		dtos = append(dtos, DebtorDTO{Tenant: toTenantDTO(ta.Tenant), ArrearsDTO: toArrearsDTO(ta.Arrears)})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetArrears(w http.ResponseWriter, r *http.Request) {
	ta, err := h.svc.ArrearsFor(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeStoreError(w, r, "Failed to compute arrears", err)
		return
	}
	writeJSON(w, http.StatusOK, toArrearsDTO(ta.Arrears))
}

func (h *Handler) PeriodReport(w http.ResponseWriter, r *http.Request) {
	period, err := rental.ParsePeriod(chi.URLParam(r, "periode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return
	}
	report, err := h.svc.PeriodReport(r.Context(), period)
	if err != nil {
		writeStoreError(w, r, "Failed to build report", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// cached serves a JSON projection from the cache, computing and storing it
// on a miss. Keys include today's date so entries roll over at midnight, and
// the write generation so a build that raced a write is never stored.
func (h *Handler) cached(w http.ResponseWriter, r *http.Request, name string, build func() (any, error)) {
	gen := h.generation.Load()
	key := name + ":" + h.svc.Today().Format(rental.DateLayout) + ":" + strconv.FormatUint(gen, 10)
	if body, ok := h.cache.Get(key); ok {
		writeRaw(w, http.StatusOK, body)
		return
	}

	v, err := build()
	if err != nil {
		writeStoreError(w, r, "Failed to build "+name, err)
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		writeStoreError(w, r, "Failed to encode "+name, err)
		return
	}
	if h.generation.Load() == gen {
		h.cache.Set(key, body)
	}
	writeRaw(w, http.StatusOK, body)
}

// =============================================================================
// HELPERS
// =============================================================================

// decode reads and validates a JSON body. On failure it writes the error
// response and returns false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make([]ValidationDetail, 0, len(verrs))
			for _, e := range verrs {
				details = append(details, ValidationDetail{Field: e.Field(), Message: validationMessage(e)})
			}
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Request validation failed", Details: details})
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "datetime":
		return "Must be a date formatted " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	default:
		return "Invalid value"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeStoreError maps workflow errors to HTTP status codes. Unclassified
// errors are logged and returned as 500.
func writeStoreError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case rental.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case rental.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case rental.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		logger.FromContext(r.Context()).Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

// invalidateCache drops cached projections after every write request.
func (h *Handler) invalidateCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			h.invalidate()
		}
	})
}

// invalidate retires every cached projection.
func (h *Handler) invalidate() {
	h.generation.Add(1)
	h.cache.Clear()
}
