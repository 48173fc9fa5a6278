package core

import (
	"strconv"
	"strings"
)

// Cycle is the backend's fixed billing-unit ordinal.
type Cycle int

const (
	Daily   Cycle = 1
	Weekly  Cycle = 2
	Monthly Cycle = 3
	Yearly  Cycle = 4
)

// ProtectedCategoryID is the backend's reserved default category. It is
// never created, edited, or deleted through this engine.
const ProtectedCategoryID = 1

// String implements fmt.Stringer
func (c Cycle) String() string {
	switch c {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Yearly:
		return "yearly"
	default:
		return "cycle(" + strconv.Itoa(int(c)) + ")"
	}
}

// IsValid returns true if the cycle ordinal is one the backend accepts.
func (c Cycle) IsValid() bool {
	return c >= Daily && c <= Yearly
}

type (
	Category struct {
		ID    int
		Name  string
		InUse bool
	}

	PaymentMethod struct {
		ID      int
		Name    string
		Enabled bool
		InUse   bool
	}

	Currency struct {
		ID     int
		Name   string
		Symbol string
		Code   string
		Rate   string
		InUse  bool
	}

	Member struct {
		ID    int
		Name  string
		Email string
		InUse bool
	}

	Subscription struct {
		ID               int
		Name             string
		Price            float64
		CurrencyID       int
		Cycle            Cycle
		Frequency        int
		CategoryID       int
		PaymentMethodID  int
		PayerUserID      int
		StartDate        string
		NextPayment      string
		AutoRenew        bool
		Notify           bool
		NotifyDaysBefore int
		Notes            string
		URL              string
		Inactive         bool
	}
)

// NameEquals reports whether a and b name the same entity. Name lookups
// are case-insensitive and ignore surrounding whitespace everywhere in
// this engine.
func NameEquals(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
