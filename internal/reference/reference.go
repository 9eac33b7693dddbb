// Package reference holds the read-mostly reference data that free-text
// entries are validated against: calorie registrations and account names.
package reference

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/chatledger/internal/normalize"
)

// Item is a calorie registration: Calories per Quantity of Unit.
type Item struct {
	Description string
	Unit        string
	Calories    decimal.Decimal
	Quantity    decimal.Decimal
	MessageID   int64
}

// CaloriesFor returns the calories of qty units of the item. It returns
// false when the registration has no usable quantity.
func (i Item) CaloriesFor(qty decimal.Decimal) (decimal.Decimal, bool) {
	if i.Quantity.IsZero() {
		return decimal.Zero, false
	}

	return i.Calories.Div(i.Quantity).Mul(qty), true
}

// Catalog is the ordered set of calorie registrations known to a run.
// It only grows: registrations parsed during a run are added in place.
type Catalog struct {
	items []Item
}

func NewCatalog(items ...Item) *Catalog {
	c := &Catalog{items: make([]Item, 0, len(items))}
	c.items = append(c.items, items...)

	return c
}

// Has reports whether the exact (description, unit) pair is registered.
func (c *Catalog) Has(description, unit string) bool {
	for _, it := range c.items {
		if it.Description == description && it.Unit == unit {
			return true
		}
	}

	return false
}

// Match finds the first item whose normalized description and unit equal
// the normalized arguments.
func (c *Catalog) Match(description, unit string) (Item, bool) {
	desc, un := normalize.Text(description), normalize.Text(unit)

	for _, it := range c.items {
		if normalize.Text(it.Description) == desc && normalize.Text(it.Unit) == un {
			return it, true
		}
	}

	return Item{}, false
}

func (c *Catalog) Add(it Item) {
	c.items = append(c.items, it)
}

func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns a copy of the registered items.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)

	return out
}

// Accounts is the set of canonical account names expenses may be booked to.
type Accounts struct {
	names []string
}

func NewAccounts(names ...string) *Accounts {
	seen := make(map[string]struct{}, len(names))
	a := &Accounts{}

	for _, n := range names {
		if n == "" {
			continue
		}

		if _, ok := seen[n]; ok {
			continue
		}

		seen[n] = struct{}{}
		a.names = append(a.names, n)
	}

	return a
}

// Resolve maps a user-typed account to its canonical name. It succeeds only
// when exactly one account matches after normalization.
func (a *Accounts) Resolve(name string) (string, bool) {
	want := normalize.Text(name)

	var found []string

	for _, n := range a.names {
		if normalize.Text(n) == want {
			found = append(found, n)
		}
	}

	if len(found) != 1 {
		return "", false
	}

	return found[0], true
}

func (a *Accounts) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)

	return out
}
