// Package ledger maps trackers onto the regions of a table: it reads the
// reference data and history a run needs and encodes new records as rows.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/MrJamesThe3rd/chatledger/internal/batch"
	"github.com/MrJamesThe3rd/chatledger/internal/stats"
	"github.com/MrJamesThe3rd/chatledger/internal/table"
)

// Region is a named block of columns inside a table. Its first row is the
// header the columns are looked up by.
type Region struct {
	Name    string
	Columns string
	Header  []string
}

var (
	ProcessedRegion = Region{
		Name: "Telegram", Columns: "A:B",
		Header: []string{"MsgId", "Status"},
	}
	CalorieEntriesRegion = Region{
		Name: "Acompanhamento", Columns: "A:F",
		Header: []string{"Dia", "Comida", "Quantidade", "Unidade", "Calorias", "MsgId"},
	}
	CalorieReferencesRegion = Region{
		Name: "Referência", Columns: "A:G",
		Header: []string{"Comida", "Calorias", "Quantidade", "Unidade", "Cal/Qtd", "Chave", "MsgId"},
	}
	ExpenseEntriesRegion = Region{
		Name: "Entradas", Columns: "A:F",
		Header: []string{"Data", "Contraparte", "Descrição", "Conta", "Valor (R$)", "MsgId"},
	}
	AccountsRegion = Region{
		Name: "Contas", Columns: "B2:C999",
		Header: []string{"Conta", "Tipo"},
	}
)

// History is the ledger data the closing statistics are computed from.
type History struct {
	Points []stats.Point
	// Flagged describes ledger rows the user has to fix.
	Flagged []string
}

// Book is the ledger of one tracker.
type Book interface {
	Processed(ctx context.Context) (batch.Processed, error)
	Snapshot(ctx context.Context) (*batch.Snapshot, error)
	History(ctx context.Context) (History, error)
	// Append writes the entries and registrations of a run, in that order.
	Append(ctx context.Context, b *batch.Buckets) error
	MarkProcessed(ctx context.Context, outcomes []batch.Outcome) error
	// Points converts the uploads of a run into statistics points.
	Points(b *batch.Buckets) []stats.Point
	// Regions lists every region the book reads or writes.
	Regions() []Region
}

// Ledger is the part shared by every book: the store, the table and the
// processed-messages region.
type Ledger struct {
	store   table.Store
	tableID string
}

func NewLedger(store table.Store, tableID string) *Ledger {
	return &Ledger{store: store, tableID: tableID}
}

func (l *Ledger) read(ctx context.Context, r Region) ([]table.Row, error) {
	rows, err := l.store.ReadRows(ctx, l.tableID, r.Name, r.Columns)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.Name, err)
	}

	return rows, nil
}

func (l *Ledger) append(ctx context.Context, r Region, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	if err := l.store.AppendRows(ctx, l.tableID, r.Name, r.Columns, rows); err != nil {
		return fmt.Errorf("append %s: %w", r.Name, err)
	}

	slog.Debug("appended rows", "table", l.tableID, "region", r.Name, "count", len(rows))

	return nil
}

// Processed reads the ids of messages handled by earlier runs.
func (l *Ledger) Processed(ctx context.Context) (batch.Processed, error) {
	rows, err := l.read(ctx, ProcessedRegion)
	if err != nil {
		return nil, err
	}

	processed := make(batch.Processed, len(rows))

	for _, row := range rows {
		id, err := parseID(row.Get("MsgId"))
		if err != nil {
			continue
		}

		processed[id] = batch.Status(row.Get("Status"))
	}

	return processed, nil
}

// MarkProcessed appends one row per outcome.
func (l *Ledger) MarkProcessed(ctx context.Context, outcomes []batch.Outcome) error {
	rows := make([][]string, 0, len(outcomes))

	for _, o := range outcomes {
		rows = append(rows, []string{formatID(o.MessageID), string(o.Status)})
	}

	return l.append(ctx, ProcessedRegion, rows)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

var (
	_ Book = (*Calories)(nil)
	_ Book = (*Expenses)(nil)
)
