package rental

import (
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// PERIOD - A billing month
// =============================================================================

// Period identifies a billing month. Its canonical form is "YYYY-MM" with a
// zero-padded month, so comparing the strings lexicographically gives the
// same order as comparing the months chronologically. Storage relies on this
// (ORDER BY period) and String must keep the fixed width.
type Period struct {
	Year  int
	Month time.Month
}

// GraceDay is the day of month from which the current month's rent is due.
const GraceDay = 10

// NewPeriod returns the period for year and month.
func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

// PeriodOf returns the billing period containing date.
func PeriodOf(date time.Time) Period {
	return Period{Year: date.Year(), Month: date.Month()}
}

// ParsePeriod parses a canonical "YYYY-MM" identifier.
func ParsePeriod(s string) (Period, error) {
	if len(s) != 7 || s[4] != '-' {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	month, err := strconv.Atoi(s[5:])
	if err != nil || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// MustParsePeriod is ParsePeriod for literals in tests and seed data.
func MustParsePeriod(s string) Period {
	p, err := ParsePeriod(s)
	if err != nil {
		panic(err)
	}
	return p
}

// BillingCutoff returns the latest period whose rent is due on today: the
// current month from the 10th on, the previous month before that.
func BillingCutoff(today time.Time) Period {
	current := PeriodOf(today)
	if today.Day() >= GraceDay {
		return current
	}
	return current.Prev()
}

// Next returns the following month, rolling December over to January.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Prev returns the preceding month, rolling January back to December.
func (p Period) Prev() Period {
	if p.Month == time.January {
		return Period{Year: p.Year - 1, Month: time.December}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Compare returns -1, 0 or +1.
func (p Period) Compare(other Period) int {
	switch {
	case p.Year < other.Year:
		return -1
	case p.Year > other.Year:
		return 1
	case p.Month < other.Month:
		return -1
	case p.Month > other.Month:
		return 1
	}
	return 0
}

func (p Period) Before(other Period) bool { return p.Compare(other) < 0 }
func (p Period) After(other Period) bool  { return p.Compare(other) > 0 }
func (p Period) IsZero() bool             { return p.Year == 0 && p.Month == 0 }

// Contains reports whether date falls inside the period.
func (p Period) Contains(date time.Time) bool {
	return !date.IsZero() && PeriodOf(date) == p
}

// Start returns the first day of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// String returns the canonical "YYYY-MM" form.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Label returns the French display label, e.g. "Mars 2024".
func (p Period) Label() string {
	return MonthName(int(p.Month)-1) + " " + strconv.Itoa(p.Year)
}

func (p Period) MarshalText() ([]byte, error) {
	if p.IsZero() {
		return []byte{}, nil
	}
	return []byte(p.String()), nil
}

func (p *Period) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*p = Period{}
		return nil
	}
	parsed, err := ParsePeriod(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// PeriodsBetween returns every period from first to last inclusive. It is
// empty when first is after last.
func PeriodsBetween(first, last Period) []Period {
	var out []Period
	for p := first; !p.After(last); p = p.Next() {
		out = append(out, p)
	}
	return out
}

// =============================================================================
// MONTH NAMES
// =============================================================================

var monthNames = [12]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// MonthName returns the French name for a zero-based month index. Callers
// only pass 0-11; anything else panics.
func MonthName(index int) string {
	return monthNames[index]
}
