package rental_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soprimec/rental-engine/rental"
)

func TestGenerateReminders_OnlyTenantsInArrears(t *testing.T) {
	// GIVEN: One tenant in arrears, one up to date, one inactive
	late := activeTenant("L001", 100000, date(2024, time.January, 1))
	late.Name = "Moussa Ndiaye"
	upToDate := activeTenant("L002", 100000, date(2024, time.March, 1))
	gone := activeTenant("L003", 100000, date(2023, time.January, 1))
	gone.Status = rental.TenantInactive

	prop := &rental.Property{Code: "B001", Type: "Appartement", Rent: 100000, Status: rental.PropertyLet}
	accounts := []rental.Account{
		{Tenant: late, Property: prop, History: []rental.Payment{
			paid("L001", "2024-01", 100000),
			paid("L001", "2024-02", 40000),
		}},
		{Tenant: upToDate, History: []rental.Payment{paid("L002", "2024-03", 100000)}},
		{Tenant: gone},
	}

	// WHEN: Generated on March 12
	reminders := rental.GenerateReminders(accounts, date(2024, time.March, 12), rental.DefaultReminderTemplate())

	// THEN: Only the late tenant gets a notice
	require.Len(t, reminders, 1)
	r := reminders[0]
	assert.Equal(t, "L001", r.Tenant.Code)
	assert.Same(t, prop, r.Property)
	assert.Equal(t, rental.ReminderArrears, r.Category)
	assert.Equal(t, 2, r.MonthsUnpaid)
	assert.Equal(t, "2 mois impayé(s)", r.Badge)
	assert.Equal(t, rental.Amount(160000), r.Total)
	assert.Equal(t, "Janvier 2024", r.LastPaid)

	assert.Contains(t, r.Message, "Bonjour Mr/Mme Moussa Ndiaye, l'agence SOPRIMEC")
	assert.Contains(t, r.Message, "Février 2024 (reste ")
	assert.Contains(t, r.Message, "Mars 2024")
	assert.Contains(t, r.Message, "Dernier mois payé: Janvier 2024. ")
	assert.Contains(t, r.Message, "au 78 893 27 87.")
}

func TestGenerateReminders_NoLastPaidClause(t *testing.T) {
	tenant := activeTenant("L001", 100000, date(2024, time.January, 1))

	reminders := rental.GenerateReminders(
		[]rental.Account{{Tenant: tenant}},
		date(2024, time.January, 15),
		rental.ReminderTemplate{AgencyName: "Agence Test", AgencyPhone: "00"},
	)

	require.Len(t, reminders, 1)
	assert.Empty(t, reminders[0].LastPaid)
	assert.NotContains(t, reminders[0].Message, "Dernier mois payé")
	assert.Contains(t, reminders[0].Message, "l'agence Agence Test")
}

func TestGenerateReminders_SkipsTenantWithoutLeaseStart(t *testing.T) {
	broken := activeTenant("L001", 100000, time.Time{})

	reminders := rental.GenerateReminders([]rental.Account{{Tenant: broken}}, date(2024, time.June, 20), rental.DefaultReminderTemplate())
	assert.Empty(t, reminders)
}

func TestFormatUnpaidPeriods(t *testing.T) {
	dues := []rental.PeriodDue{
		{Period: period("2024-01"), Owed: 100000},
		{Period: period("2024-02"), Owed: 500, AlreadyPaid: 99500},
	}
	assert.Equal(t, "Janvier 2024, Février 2024 (reste 500 FCFA)", rental.FormatUnpaidPeriods(dues))
	assert.Equal(t, "", rental.FormatUnpaidPeriods(nil))
}
