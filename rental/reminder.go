package rental

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// =============================================================================
// REMINDERS - Arrears notices addressed to tenants
// =============================================================================

// ReminderCategory classifies a notice. With partial-payment-aware arrears a
// single category is enough: a due-but-unpaid current month is already one
// of the unpaid periods, and a not-yet-due one is excluded by the cutoff.
type ReminderCategory string

const ReminderArrears ReminderCategory = "arrieres"

// Currency is the display suffix for amounts.
const Currency = "FCFA"

var amountPrinter = message.NewPrinter(language.French)

// FormatAmount renders an amount with French digit grouping, without currency.
func FormatAmount(a Amount) string {
	return amountPrinter.Sprintf("%d", int64(a))
}

// ReminderTemplate carries the agency details interpolated in messages.
type ReminderTemplate struct {
	AgencyName  string
	AgencyPhone string
}

// DefaultReminderTemplate returns the agency details of the demo setup.
func DefaultReminderTemplate() ReminderTemplate {
	return ReminderTemplate{AgencyName: "SOPRIMEC", AgencyPhone: "78 893 27 87"}
}

// Account bundles what the read path knows about one tenant.
type Account struct {
	Tenant   Tenant
	Property *Property
	History  []Payment
}

// Reminder is one arrears notice for one tenant.
type Reminder struct {
	Tenant       Tenant
	Property     *Property
	Category     ReminderCategory
	MonthsUnpaid int
	Badge        string // e.g. "3 mois impayé(s)"
	Total        Amount
	Periods      string // formatted unpaid-period list
	LastPaid     string // label of the last fully paid period, if known
	Message      string
	Arrears      Arrears
}

// GenerateReminders emits one notice per active tenant with unpaid periods.
// It is a pure function of the accounts and today; tenants whose arrears
// cannot be computed (no lease start) are skipped.
func GenerateReminders(accounts []Account, today time.Time, tmpl ReminderTemplate) []Reminder {
	var reminders []Reminder
	for _, acc := range accounts {
		if !acc.Tenant.IsActive() {
			continue
		}
		arr, err := ComputeArrears(acc.Tenant, acc.History, today)
		if err != nil || !arr.HasArrears() {
			continue
		}
		reminders = append(reminders, buildReminder(acc, arr, tmpl))
	}
	return reminders
}

func buildReminder(acc Account, arr Arrears, tmpl ReminderTemplate) Reminder {
	periods := FormatUnpaidPeriods(arr.UnpaidPeriods)

	var lastPaid, lastInfo string
	if arr.LastFullyPaid != nil {
		lastPaid = arr.LastFullyPaid.Label()
		lastInfo = fmt.Sprintf("Dernier mois payé: %s. ", lastPaid)
	}

	msg := fmt.Sprintf(
		"Bonjour Mr/Mme %s, l'agence %s vous rappelle que vous avez des arriérés de %s %s pour les mois de %s. %sMerci de régulariser votre situation auprès de l'agence au %s.",
		acc.Tenant.Name, tmpl.AgencyName, FormatAmount(arr.TotalOwed), Currency, periods, lastInfo, tmpl.AgencyPhone,
	)

	return Reminder{
		Tenant:       acc.Tenant,
		Property:     acc.Property,
		Category:     ReminderArrears,
		MonthsUnpaid: len(arr.UnpaidPeriods),
		Badge:        fmt.Sprintf("%d mois impayé(s)", len(arr.UnpaidPeriods)),
		Total:        arr.TotalOwed,
		Periods:      periods,
		LastPaid:     lastPaid,
		Message:      msg,
		Arrears:      arr,
	}
}

// FormatUnpaidPeriods joins period labels, annotating partially paid periods
// with their remaining balance.
func FormatUnpaidPeriods(dues []PeriodDue) string {
	labels := make([]string, len(dues))
	for i, d := range dues {
		if d.IsPartial() {
			labels[i] = fmt.Sprintf("%s (reste %s %s)", d.Period.Label(), FormatAmount(d.Owed), Currency)
			continue
		}
		labels[i] = d.Period.Label()
	}
	return strings.Join(labels, ", ")
}
