/*
Package exchange converts the portfolio to and from its file formats.

FORMATS:
  JSON backup:  The whole data set, one array per table, with the French
                field names of the legacy backups ("biens", "locataires",
                "paiements", "charges", "entretiens"). Older files written
                by hand or by spreadsheet exports carry numbers as strings
                and the other way round; both are accepted on import.
  CSV export:   One line per tenant with property details and the current
                arrears, for spreadsheet use.

IMPORT SEMANTICS:
  A table key present in the document replaces that table; an absent (or
  null) key leaves it untouched. Enum values are validated here so a bad
  file is rejected before anything is written.

SEE ALSO:
  - portfolio/admin.go: Export / Import against the store
*/
package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/soprimec/rental-engine/rental"
)

// BackupFilename is the download name of a JSON backup taken on day.
func BackupFilename(day time.Time) string {
	return "soprimec_backup_" + day.Format(rental.DateLayout) + ".json"
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Backup is the JSON backup document.
type Backup struct {
	Properties  []PropertyRecord    `json:"biens"`
	Tenants     []TenantRecord      `json:"locataires"`
	Payments    []PaymentRecord     `json:"paiements"`
	Charges     []ChargeRecord      `json:"charges"`
	Maintenance []MaintenanceRecord `json:"entretiens"`
}

type PropertyRecord struct {
	Code     string `json:"code"`
	Type     string `json:"type"`
	Building string `json:"immeuble"`
	Unit     string `json:"appartement"`
	Address  string `json:"adresse"`
	City     string `json:"ville"`
	Surface  Text   `json:"surface"`
	Rooms    Text   `json:"chambres"`
	Rent     Number `json:"loyer"`
	Charges  Number `json:"charges"`
	Status   string `json:"statut"`
	Owner    string `json:"proprietaire"`
	Notes    string `json:"notes"`
}

type TenantRecord struct {
	Code         string `json:"code"`
	Name         string `json:"nom"`
	Phone        Text   `json:"telephone"`
	Email        string `json:"email"`
	IDNumber     Text   `json:"cni"`
	Profession   string `json:"profession"`
	PropertyCode string `json:"bien"`
	LeaseStart   string `json:"dateEntree"`
	LeaseMonths  Number `json:"bail"`
	Rent         Number `json:"loyer"`
	Deposit      Number `json:"caution"`
	Status       string `json:"statut"`
	Contract     string `json:"contrat,omitempty"`
}

type PaymentRecord struct {
	Number     string `json:"numero"`
	TenantCode string `json:"locataire"`
	Period     string `json:"periode"`
	Amount     Number `json:"montant"`
	Date       string `json:"date"`
	Method     string `json:"mode"`
	Reference  string `json:"reference"`
	Status     string `json:"statut"`
}

type ChargeRecord struct {
	Number       string `json:"numero"`
	PropertyCode string `json:"bien"`
	Category     string `json:"type"`
	Date         string `json:"date"`
	Amount       Number `json:"montant"`
	Supplier     string `json:"fournisseur"`
	Reference    string `json:"reference"`
	Description  string `json:"description"`
	Status       string `json:"statut"`
}

type MaintenanceRecord struct {
	Number       string `json:"numero"`
	PropertyCode string `json:"bien"`
	Category     string `json:"type"`
	Urgency      string `json:"urgence"`
	RequestedOn  string `json:"dateDemande"`
	ScheduledOn  string `json:"datePrevue"`
	Provider     string `json:"prestataire"`
	Cost         Number `json:"cout"`
	Description  string `json:"description"`
	Status       string `json:"statut"`
}

// =============================================================================
// LENIENT SCALARS
// =============================================================================

// Number is an integer that also decodes from a numeric string or null.
// Fractional values are truncated.
type Number int64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.TrimSpace(s)
	if s == "" {
		*n = 0
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = Number(i)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	*n = Number(int64(f))
	return nil
}

// Text is a string that also decodes from a JSON number or null.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*t = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	default:
		*t = Text(b)
		return nil
	}
}

// =============================================================================
// CONVERSION
// =============================================================================

// NewBackup converts a data set to its document form. Every table is
// present, empty tables as [].
func NewBackup(data rental.DataSet) Backup {
	b := Backup{
		Properties:  make([]PropertyRecord, 0, len(data.Properties)),
		Tenants:     make([]TenantRecord, 0, len(data.Tenants)),
		Payments:    make([]PaymentRecord, 0, len(data.Payments)),
		Charges:     make([]ChargeRecord, 0, len(data.Charges)),
		Maintenance: make([]MaintenanceRecord, 0, len(data.Maintenance)),
	}
	for _, p := range data.Properties {
		b.Properties = append(b.Properties, PropertyRecord{
			Code: p.Code, Type: p.Type, Building: p.Building, Unit: p.Unit,
			Address: p.Address, City: p.City, Surface: Text(p.Surface), Rooms: Text(p.Rooms),
			Rent: Number(p.Rent), Charges: Number(p.Charges), Status: string(p.Status),
			Owner: p.Owner, Notes: p.Notes,
		})
	}
	for _, t := range data.Tenants {
		b.Tenants = append(b.Tenants, TenantRecord{
			Code: t.Code, Name: t.Name, Phone: Text(t.Phone), Email: t.Email,
			IDNumber: Text(t.IDNumber), Profession: t.Profession, PropertyCode: t.PropertyCode,
			LeaseStart: rental.FormatDate(t.LeaseStart), LeaseMonths: Number(t.LeaseMonths),
			Rent: Number(t.Rent), Deposit: Number(t.Deposit), Status: string(t.Status),
			Contract: t.Contract,
		})
	}
	for _, p := range data.Payments {
		b.Payments = append(b.Payments, PaymentRecord{
			Number: p.Number, TenantCode: p.TenantCode, Period: p.Period.String(),
			Amount: Number(p.Amount), Date: rental.FormatDate(p.Date), Method: string(p.Method),
			Reference: p.Reference, Status: string(p.Status),
		})
	}
	for _, c := range data.Charges {
		b.Charges = append(b.Charges, ChargeRecord{
			Number: c.Number, PropertyCode: c.PropertyCode, Category: c.Category,
			Date: rental.FormatDate(c.Date), Amount: Number(c.Amount), Supplier: c.Supplier,
			Reference: c.Reference, Description: c.Description, Status: string(c.Status),
		})
	}
	for _, m := range data.Maintenance {
		b.Maintenance = append(b.Maintenance, MaintenanceRecord{
			Number: m.Number, PropertyCode: m.PropertyCode, Category: m.Category,
			Urgency: string(m.Urgency), RequestedOn: rental.FormatDate(m.RequestedOn),
			ScheduledOn: rental.FormatDate(m.ScheduledOn), Provider: m.Provider,
			Cost: Number(m.Cost), Description: m.Description, Status: string(m.Status),
		})
	}
	return b
}

// DataSet validates the document and converts it back. Tables missing
// from the document stay nil.
func (b Backup) DataSet() (rental.DataSet, error) {
	var data rental.DataSet

	if b.Properties != nil {
		data.Properties = make([]rental.Property, 0, len(b.Properties))
		for _, r := range b.Properties {
			status, err := rental.ParsePropertyStatus(r.Status)
			if err != nil {
				return rental.DataSet{}, recordError("biens", r.Code, err)
			}
			data.Properties = append(data.Properties, rental.Property{
				Code: r.Code, Type: r.Type, Building: r.Building, Unit: r.Unit,
				Address: r.Address, City: r.City, Surface: string(r.Surface), Rooms: string(r.Rooms),
				Rent: rental.Amount(r.Rent), Charges: rental.Amount(r.Charges), Status: status,
				Owner: r.Owner, Notes: r.Notes,
			})
		}
	}

	if b.Tenants != nil {
		data.Tenants = make([]rental.Tenant, 0, len(b.Tenants))
		for _, r := range b.Tenants {
			status := tenantStatus(r.Status)
			start, err := rental.ParseDate(r.LeaseStart)
			if err != nil {
				return rental.DataSet{}, recordError("locataires", r.Code, err)
			}
			data.Tenants = append(data.Tenants, rental.Tenant{
				Code: r.Code, Name: r.Name, Phone: string(r.Phone), Email: r.Email,
				IDNumber: string(r.IDNumber), Profession: r.Profession, PropertyCode: r.PropertyCode,
				LeaseStart: start, LeaseMonths: int(r.LeaseMonths),
				Rent: rental.Amount(r.Rent), Deposit: rental.Amount(r.Deposit), Status: status,
				Contract: r.Contract,
			})
		}
	}

	if b.Payments != nil {
		data.Payments = make([]rental.Payment, 0, len(b.Payments))
		for _, r := range b.Payments {
			p, err := r.payment()
			if err != nil {
				return rental.DataSet{}, recordError("paiements", r.Number, err)
			}
			data.Payments = append(data.Payments, p)
		}
	}

	if b.Charges != nil {
		data.Charges = make([]rental.Charge, 0, len(b.Charges))
		for _, r := range b.Charges {
			status, err := rental.ParseChargeStatus(r.Status)
			if err != nil {
				return rental.DataSet{}, recordError("charges", r.Number, err)
			}
			day, err := rental.ParseDate(r.Date)
			if err != nil {
				return rental.DataSet{}, recordError("charges", r.Number, err)
			}
			data.Charges = append(data.Charges, rental.Charge{
				Number: r.Number, PropertyCode: r.PropertyCode, Category: r.Category,
				Date: day, Amount: rental.Amount(r.Amount), Supplier: r.Supplier,
				Reference: r.Reference, Description: r.Description, Status: status,
			})
		}
	}

	if b.Maintenance != nil {
		data.Maintenance = make([]rental.MaintenanceRequest, 0, len(b.Maintenance))
		for _, r := range b.Maintenance {
			m, err := r.request()
			if err != nil {
				return rental.DataSet{}, recordError("entretiens", r.Number, err)
			}
			data.Maintenance = append(data.Maintenance, m)
		}
	}

	return data, nil
}

func (r PaymentRecord) payment() (rental.Payment, error) {
	period, err := rental.ParsePeriod(r.Period)
	if err != nil {
		return rental.Payment{}, err
	}
	day, err := rental.ParseDate(r.Date)
	if err != nil {
		return rental.Payment{}, err
	}
	method, err := rental.ParsePaymentMethod(r.Method)
	if err != nil {
		return rental.Payment{}, err
	}
	status, err := rental.ParsePaymentStatus(r.Status)
	if err != nil {
		return rental.Payment{}, err
	}
	return rental.Payment{
		Number: r.Number, TenantCode: r.TenantCode, Period: period,
		Amount: rental.Amount(r.Amount), Date: day, Method: method,
		Reference: r.Reference, Status: status,
	}, nil
}

func (r MaintenanceRecord) request() (rental.MaintenanceRequest, error) {
	urgency, err := rental.ParseUrgency(r.Urgency)
	if err != nil {
		return rental.MaintenanceRequest{}, err
	}
	status, err := rental.ParseMaintenanceStatus(r.Status)
	if err != nil {
		return rental.MaintenanceRequest{}, err
	}
	requested, err := rental.ParseDate(r.RequestedOn)
	if err != nil {
		return rental.MaintenanceRequest{}, err
	}
	scheduled, err := rental.ParseDate(r.ScheduledOn)
	if err != nil {
		return rental.MaintenanceRequest{}, err
	}
	return rental.MaintenanceRequest{
		Number: r.Number, PropertyCode: r.PropertyCode, Category: r.Category,
		Urgency: urgency, RequestedOn: requested, ScheduledOn: scheduled,
		Provider: r.Provider, Cost: rental.Amount(r.Cost), Description: r.Description,
		Status: status,
	}, nil
}

// tenantStatus reads a stored tenant status. Only Actif is tracked for
// arrears; any other non-empty value is an ended lease.
func tenantStatus(s string) rental.TenantStatus {
	if status, err := rental.ParseTenantStatus(s); err == nil {
		return status
	}
	return rental.TenantInactive
}

func recordError(table, code string, err error) error {
	return fmt.Errorf("%s %s: %w", table, code, err)
}

// =============================================================================
// ENCODING
// =============================================================================

// WriteJSON writes the data set as an indented backup document.
func WriteJSON(w io.Writer, data rental.DataSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewBackup(data)); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// ReadJSON decodes and validates a backup document. Malformed JSON is
// reported as rental.ErrInvalidField.
func ReadJSON(r io.Reader) (rental.DataSet, error) {
	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return rental.DataSet{}, &rental.FieldError{Field: "backup", Value: "json", Err: err}
	}
	return b.DataSet()
}
