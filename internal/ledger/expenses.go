package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/MrJamesThe3rd/chatledger/internal/batch"
	"github.com/MrJamesThe3rd/chatledger/internal/record"
	"github.com/MrJamesThe3rd/chatledger/internal/reference"
	"github.com/MrJamesThe3rd/chatledger/internal/stats"
	"github.com/MrJamesThe3rd/chatledger/internal/table"
)

// ExpenseAccount is the account every expense is debited to.
const ExpenseAccount = "Despesa"

// bookableTypes are the account types an expense may be paid from.
var bookableTypes = []string{"Asset", "Liability"}

// Expenses is the book of the expenses tracker.
type Expenses struct {
	*Ledger
}

func NewExpenses(store table.Store, tableID string) *Expenses {
	return &Expenses{Ledger: NewLedger(store, tableID)}
}

func (e *Expenses) Regions() []Region {
	return []Region{ProcessedRegion, ExpenseEntriesRegion, AccountsRegion}
}

// Snapshot loads the asset and liability accounts.
func (e *Expenses) Snapshot(ctx context.Context) (*batch.Snapshot, error) {
	rows, err := e.read(ctx, AccountsRegion)
	if err != nil {
		return nil, err
	}

	var names []string

	for _, row := range rows {
		if slices.Contains(bookableTypes, row.Get("Tipo")) {
			names = append(names, row.Get("Conta"))
		}
	}

	return &batch.Snapshot{Accounts: reference.NewAccounts(names...)}, nil
}

// History reads the debit side of every booked expense.
func (e *Expenses) History(ctx context.Context) (History, error) {
	rows, err := e.read(ctx, ExpenseEntriesRegion)
	if err != nil {
		return History{}, err
	}

	var h History

	for _, row := range rows {
		if row.Get("Conta") != ExpenseAccount {
			continue
		}

		day, err := parseExpenseDate(row.Get("Data"))
		if err != nil {
			slog.Debug("skipping expense with invalid date", "date", row.Get("Data"), "error", err)
			continue
		}

		value, err := parseNumber(row.Get("Valor (R$)"))
		if err != nil {
			continue
		}

		h.Points = append(h.Points, stats.Point{Date: day, Value: value})
	}

	return h, nil
}

func (e *Expenses) Append(ctx context.Context, b *batch.Buckets) error {
	rows := make([][]string, 0, 2*len(b.ToUpload))

	for _, r := range b.ToUpload {
		exp, ok := r.(*record.Expense)
		if !ok {
			return fmt.Errorf("append expenses: unexpected %s record", r.Kind())
		}

		rows = append(rows, ExpenseRows(exp)...)
	}

	return e.append(ctx, ExpenseEntriesRegion, rows)
}

func (e *Expenses) Points(b *batch.Buckets) []stats.Point {
	var points []stats.Point

	for _, r := range b.ToUpload {
		if exp, ok := r.(*record.Expense); ok {
			points = append(points, stats.Point{Date: exp.Date, Value: exp.Price})
		}
	}

	return points
}

// ExpenseRows encodes an expense as a balanced pair: the expense account is
// debited and the paying account credited.
func ExpenseRows(e *record.Expense) [][]string {
	date := formatExpenseDate(e.Date)
	id := formatID(e.MessageID)

	return [][]string{
		{date, e.Counterparty, e.Description, ExpenseAccount, formatComma(e.Price), id},
		{date, e.Counterparty, e.Description, e.Account, formatComma(e.Price.Neg()), id},
	}
}
