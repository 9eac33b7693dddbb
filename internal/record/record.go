// Package record defines the typed records a chat line can turn into and
// the parsers that produce them.
package record

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/chatledger/internal/reference"
)

// Parser failures. Every error returned by a parser wraps exactly one of them.
var (
	// ErrFormat marks malformed text the user has to fix.
	ErrFormat = errors.New("malformed entry")
	// ErrMissingReference marks a well-formed entry with no matching reference data.
	ErrMissingReference = errors.New("missing reference")
	// ErrDuplicateRegistration marks a registration of an existing (description, unit) pair.
	ErrDuplicateRegistration = errors.New("duplicate registration")
)

// Kind identifies the variant of a Record.
type Kind int

const (
	KindConsumption Kind = iota
	KindRegistration
	KindExpense
	KindHelpRequest
)

func (k Kind) String() string {
	switch k {
	case KindConsumption:
		return "consumption"
	case KindRegistration:
		return "registration"
	case KindExpense:
		return "expense"
	case KindHelpRequest:
		return "help_request"
	}

	return "unknown"
}

// Meta is the provenance shared by every record.
type Meta struct {
	MessageID int64
	Date      time.Time // date only, UTC midnight
	ChatID    int64
}

func (m Meta) Source() Meta { return m }

// Record is implemented by *Registration, *Consumption, *Expense and
// *HelpRequest only.
type Record interface {
	Kind() Kind
	Source() Meta
	String() string
	sealed()
}

// Day truncates t to its calendar date in t's location, returned as UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const displayDate = "02/01/2006"

// Registration declares how many calories Quantity of Unit of Description has.
type Registration struct {
	Meta
	Description string
	Calories    decimal.Decimal
	Quantity    decimal.Decimal
	Unit        string
}

func (*Registration) Kind() Kind { return KindRegistration }
func (*Registration) sealed()    {}

func (r *Registration) String() string {
	return fmt.Sprintf("%s: %s cal per %s %s", r.Description, r.Calories, r.Quantity, r.Unit)
}

// Item converts the registration into a reference catalog entry.
func (r *Registration) Item() reference.Item {
	return reference.Item{
		Description: r.Description,
		Unit:        r.Unit,
		Calories:    r.Calories,
		Quantity:    r.Quantity,
		MessageID:   r.MessageID,
	}
}

// Consumption is a food entry. It carries either a quantity and unit priced
// through Reference, or a direct calorie amount.
type Consumption struct {
	Meta
	Description string
	Quantity    decimal.NullDecimal
	Unit        string
	Calories    decimal.NullDecimal
	Note        string
	Reference   *reference.Item
}

// NewConsumption builds a Consumption, refusing records that have neither
// a quantity with unit nor a calorie amount.
func NewConsumption(meta Meta, description string, qty decimal.NullDecimal, unit string, calories decimal.NullDecimal) (*Consumption, error) {
	hasQuantity := qty.Valid && unit != ""
	if !hasQuantity && !calories.Valid {
		return nil, fmt.Errorf("%w: entry %q has neither quantity nor calories", ErrFormat, description)
	}

	return &Consumption{
		Meta:        meta,
		Description: description,
		Quantity:    qty,
		Unit:        unit,
		Calories:    calories,
	}, nil
}

func (*Consumption) Kind() Kind { return KindConsumption }
func (*Consumption) sealed()    {}

func (c *Consumption) String() string {
	var qty, cals string

	if c.Quantity.Valid {
		qty = fmt.Sprintf(" %s [%s]", c.Quantity.Decimal, c.Unit)
	}

	if c.Calories.Valid {
		cals = fmt.Sprintf(" (%s cal)", c.Calories.Decimal)
	}

	return fmt.Sprintf("%s:%s%s @ %s", c.Description, qty, cals, c.Date.Format(displayDate))
}

// TotalCalories returns the calories of the entry, computing them from the
// matched reference when the entry was given as a quantity.
func (c *Consumption) TotalCalories() (decimal.Decimal, bool) {
	if c.Calories.Valid {
		return c.Calories.Decimal, true
	}

	if c.Reference == nil || !c.Quantity.Valid {
		return decimal.Zero, false
	}

	return c.Reference.CaloriesFor(c.Quantity.Decimal)
}

// Expense is a payment booked against one of the known accounts.
type Expense struct {
	Meta
	Price        decimal.Decimal
	Counterparty string
	Description  string
	Account      string
}

func (*Expense) Kind() Kind { return KindExpense }
func (*Expense) sealed()    {}

func (e *Expense) String() string {
	return fmt.Sprintf("%s - %s - %s - %s - %s",
		e.Price, e.Counterparty, e.Description, e.Account, e.Date.Format(time.DateOnly))
}

// HelpRequest is a "?" line asking for the usage instructions.
type HelpRequest struct {
	Meta
}

func (*HelpRequest) Kind() Kind     { return KindHelpRequest }
func (*HelpRequest) sealed()        {}
func (*HelpRequest) String() string { return "?" }

// MissingReference keeps the original text of a line that parsed but could
// not be matched against reference data.
type MissingReference struct {
	Meta
	Text string
}

func (m *MissingReference) String() string { return m.Text }

// Unparsed keeps the original text of a line that failed to parse.
type Unparsed struct {
	Meta
	Text string
	Err  error
}

func (u *Unparsed) String() string { return u.Text }
