package tracker

import (
	"github.com/MrJamesThe3rd/chatledger/internal/batch"
	"github.com/MrJamesThe3rd/chatledger/internal/ledger"
	"github.com/MrJamesThe3rd/chatledger/internal/record"
	"github.com/MrJamesThe3rd/chatledger/internal/report"
	"github.com/MrJamesThe3rd/chatledger/internal/table"
)

// Profile describes a kind of tracker: how its lines are read, how it
// answers and where its ledger lives.
// Adding a tracker kind is adding a Profile to the profiles slice.
type Profile struct {
	Kind      string
	Rules     batch.Rules
	Templates report.Templates
	NewBook   func(store table.Store, tableID string) ledger.Book
}

var profiles = []Profile{
	{
		Kind: "calories",
		Rules: batch.Rules{
			Registrations: true,
			Default:       record.KindConsumption,
			Marker:        batch.DefaultMarker,
		},
		Templates: report.Calories(),
		NewBook: func(store table.Store, tableID string) ledger.Book {
			return ledger.NewCalories(store, tableID)
		},
	},
	{
		Kind: "expenses",
		Rules: batch.Rules{
			Default: record.KindExpense,
			Marker:  batch.DefaultMarker,
		},
		Templates: report.Expenses(),
		NewBook: func(store table.Store, tableID string) ledger.Book {
			return ledger.NewExpenses(store, tableID)
		},
	},
}

// Lookup finds the profile of a tracker kind.
func Lookup(kind string) (Profile, bool) {
	for _, p := range profiles {
		if p.Kind == kind {
			return p, true
		}
	}

	return Profile{}, false
}

// Kinds lists the known tracker kinds.
func Kinds() []string {
	kinds := make([]string, 0, len(profiles))
	for _, p := range profiles {
		kinds = append(kinds, p.Kind)
	}

	return kinds
}
