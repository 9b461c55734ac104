package rental

import (
	"fmt"
	"regexp"
	"strconv"
)

// =============================================================================
// CODE SEQUENCES - Human-readable record identifiers
// =============================================================================

// CodeKind identifies a record table and its code format.
type CodeKind string

const (
	KindProperty    CodeKind = "property"
	KindTenant      CodeKind = "tenant"
	KindPayment     CodeKind = "payment"
	KindCharge      CodeKind = "charge"
	KindMaintenance CodeKind = "maintenance"
)

// Prefix returns the letter prefix of codes of this kind.
func (k CodeKind) Prefix() string {
	switch k {
	case KindProperty:
		return "B"
	case KindTenant:
		return "L"
	case KindPayment:
		return "P"
	case KindCharge:
		return "C"
	case KindMaintenance:
		return "INT"
	}
	return ""
}

// Width is the zero-padded width of the numeric suffix: 4 digits for
// payments and charges, 3 otherwise.
func (k CodeKind) Width() int {
	if k == KindPayment || k == KindCharge {
		return 4
	}
	return 3
}

// Format renders code number n of this kind.
func (k CodeKind) Format(n int) string {
	return fmt.Sprintf("%s%0*d", k.Prefix(), k.Width(), n)
}

var digits = regexp.MustCompile(`\d+`)

// NextCode returns the code following the numerically highest suffix among
// existing codes. Codes without digits are ignored.
func NextCode(kind CodeKind, existing []string) string {
	return kind.Format(maxSuffix(existing) + 1)
}

func maxSuffix(codes []string) int {
	highest := 0
	for _, c := range codes {
		m := digits.FindString(c)
		if m == "" {
			continue
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest
}

// Sequence hands out consecutive codes of one kind inside a transaction.
type Sequence struct {
	kind CodeKind
	last int
}

// NewSequence starts a sequence after the highest existing code.
func NewSequence(kind CodeKind, existing []string) *Sequence {
	return &Sequence{kind: kind, last: maxSuffix(existing)}
}

// Next returns the next unused code.
func (s *Sequence) Next() string {
	s.last++
	return s.kind.Format(s.last)
}
