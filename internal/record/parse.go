package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/chatledger/internal/normalize"
	"github.com/MrJamesThe3rd/chatledger/internal/quantity"
	"github.com/MrJamesThe3rd/chatledger/internal/reference"
)

const (
	// RegistrationPrefix starts every calorie registration line.
	RegistrationPrefix = "@"
	// HelpToken is the whole content of a help request line.
	HelpToken = "?"

	entryDate = "02/01/2006"
)

// calorieUnits are the units that turn a consumption into a direct calorie amount.
var calorieUnits = map[string]struct{}{"cal": {}, "cals": {}}

// IsHelpRequest reports whether line asks for the usage instructions.
func IsHelpRequest(line string) bool {
	return strings.TrimSpace(line) == HelpToken
}

// IsRegistration reports whether line is a calorie registration.
func IsRegistration(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), RegistrationPrefix)
}

// ParseRegistration parses "@ <description> - <calories> cal/<quantity><unit>".
func ParseRegistration(line string, meta Meta, catalog *reference.Catalog) (*Registration, error) {
	body := strings.TrimPrefix(strings.TrimSpace(line), RegistrationPrefix)

	items := splitItems(body)
	if len(items) != 2 {
		return nil, fmt.Errorf("%w: registration needs 2 parts separated by '-', got %d", ErrFormat, len(items))
	}

	desc := items[0]
	if desc == "" {
		return nil, fmt.Errorf("%w: registration without description", ErrFormat)
	}

	calPart, qtyPart, ok := strings.Cut(items[1], "/")
	if !ok {
		return nil, fmt.Errorf("%w: registration %q has no '/' between calories and quantity", ErrFormat, items[1])
	}

	calories, err := parseCalories(calPart)
	if err != nil {
		return nil, err
	}

	qty, unit, err := quantity.Split(qtyPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	if catalog.Has(desc, unit) {
		return nil, fmt.Errorf("%w: item %q, unit %q already registered", ErrDuplicateRegistration, desc, unit)
	}

	return &Registration{
		Meta:        meta,
		Description: desc,
		Calories:    calories,
		Quantity:    qty,
		Unit:        unit,
	}, nil
}

// ParseConsumption parses "<description> - <quantity><unit>[ - <note>[ - dd/mm/yyyy]]".
// A unit of "cal" or "cals" records the calories directly.
func ParseConsumption(line string, meta Meta, catalog *reference.Catalog) (*Consumption, error) {
	items := splitItems(line)
	if len(items) < 2 || len(items) > 4 {
		return nil, fmt.Errorf("%w: entry needs 2 to 4 parts separated by '-', got %d", ErrFormat, len(items))
	}

	desc := items[0]
	if desc == "" {
		return nil, fmt.Errorf("%w: entry without description", ErrFormat)
	}

	value, unit, err := quantity.Split(items[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	if len(items) == 4 {
		d, err := parseDate(items[3])
		if err != nil {
			return nil, err
		}

		meta.Date = d
	}

	var note string
	if len(items) >= 3 {
		note = items[2]
	}

	if _, ok := calorieUnits[normalize.Text(unit)]; ok {
		c, err := NewConsumption(meta, desc, decimal.NullDecimal{}, "", decimal.NewNullDecimal(value))
		if err != nil {
			return nil, err
		}

		c.Note = note

		return c, nil
	}

	ref, ok := catalog.Match(desc, unit)
	if !ok {
		return nil, fmt.Errorf("%w: no registration for item %q, unit %q", ErrMissingReference, desc, unit)
	}

	c, err := NewConsumption(meta, ref.Description, decimal.NewNullDecimal(value), ref.Unit, decimal.NullDecimal{})
	if err != nil {
		return nil, err
	}

	c.Note = note
	c.Reference = &ref

	return c, nil
}

// ParseExpense parses "<price> - <counterparty> - <description> - <account>[ - dd/mm/yyyy]".
// The price accepts a comma as decimal separator.
func ParseExpense(line string, meta Meta, accounts *reference.Accounts) (*Expense, error) {
	items := splitItems(line)
	if len(items) < 4 || len(items) > 5 {
		return nil, fmt.Errorf("%w: expense needs 4 or 5 parts separated by '-', got %d", ErrFormat, len(items))
	}

	price, err := decimal.NewFromString(strings.ReplaceAll(items[0], ",", "."))
	if err != nil {
		return nil, fmt.Errorf("%w: price %q is not a number", ErrFormat, items[0])
	}

	if len(items) == 5 {
		d, err := parseDate(items[4])
		if err != nil {
			return nil, err
		}

		meta.Date = d
	}

	account, ok := accounts.Resolve(items[3])
	if !ok {
		return nil, fmt.Errorf("%w: unknown account %q", ErrMissingReference, items[3])
	}

	return &Expense{
		Meta:         meta,
		Price:        price,
		Counterparty: items[1],
		Description:  items[2],
		Account:      account,
	}, nil
}

func splitItems(s string) []string {
	items := strings.Split(s, "-")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}

	return items
}

func parseCalories(s string) (decimal.Decimal, error) {
	clean := strings.ToLower(strings.TrimSpace(s))
	clean = strings.TrimSuffix(clean, "cals")
	clean = strings.TrimSuffix(clean, "cal")

	d, err := decimal.NewFromString(strings.TrimSpace(clean))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: calories %q are not a number", ErrFormat, s)
	}

	return d, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(entryDate, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not dd/mm/yyyy", ErrFormat, s)
	}

	return t, nil
}
