package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/chatledger/internal/batch"
	"github.com/MrJamesThe3rd/chatledger/internal/record"
	"github.com/MrJamesThe3rd/chatledger/internal/reference"
	"github.com/MrJamesThe3rd/chatledger/internal/stats"
	"github.com/MrJamesThe3rd/chatledger/internal/table"
)

// notAvailable is what a lookup formula evaluates to when the item has no registration.
const notAvailable = "#N/A"

const (
	calorieFormula = `=INDEX('Referência'!E:E, MATCH(CONCAT(INDIRECT(CONCAT("B", ROW())), INDIRECT(CONCAT("D", ROW()))), 'Referência'!F:F, 0))*INDIRECT(CONCAT("C", ROW()))`
	perUnitFormula = `=INDIRECT(CONCAT("B", ROW()))/INDIRECT(CONCAT("C", ROW()))`
	keyFormula     = `=CONCAT(INDIRECT(CONCAT("A", ROW())), INDIRECT(CONCAT("D", ROW())))`
)

// Calories is the book of the calories tracker.
type Calories struct {
	*Ledger
	// Formulas writes spreadsheet formulas for derived cells. Stores that
	// cannot evaluate them get the computed values instead.
	Formulas bool
}

func NewCalories(store table.Store, tableID string) *Calories {
	return &Calories{Ledger: NewLedger(store, tableID), Formulas: true}
}

func (c *Calories) Regions() []Region {
	return []Region{ProcessedRegion, CalorieEntriesRegion, CalorieReferencesRegion}
}

// Snapshot loads every registration as the reference catalog.
func (c *Calories) Snapshot(ctx context.Context) (*batch.Snapshot, error) {
	rows, err := c.read(ctx, CalorieReferencesRegion)
	if err != nil {
		return nil, err
	}

	items := make([]reference.Item, 0, len(rows))

	for _, row := range rows {
		desc := row.Get("Comida")
		if desc == "" {
			continue
		}

		it := reference.Item{Description: desc, Unit: row.Get("Unidade")}

		if v, err := parseNumber(row.Get("Calorias")); err == nil {
			it.Calories = v
		}

		if v, err := parseNumber(row.Get("Quantidade")); err == nil {
			it.Quantity = v
		}

		if id, err := parseID(row.Get("MsgId")); err == nil {
			it.MessageID = id
		}

		items = append(items, it)
	}

	return &batch.Snapshot{Catalog: reference.NewCatalog(items...)}, nil
}

// History reads the calories of every entry and flags entries whose lookup failed.
func (c *Calories) History(ctx context.Context) (History, error) {
	rows, err := c.read(ctx, CalorieEntriesRegion)
	if err != nil {
		return History{}, err
	}

	var h History

	for _, row := range rows {
		cell := row.Get("Calorias")

		if cell == notAvailable {
			h.Flagged = append(h.Flagged, fmt.Sprintf("%s [%s]", row.Get("Comida"), row.Get("Unidade")))
			continue
		}

		day, err := time.Parse(calorieDate, row.Get("Dia"))
		if err != nil {
			slog.Debug("skipping entry with invalid date", "date", row.Get("Dia"))
			continue
		}

		value, err := parseNumber(cell)
		if err != nil {
			continue
		}

		h.Points = append(h.Points, stats.Point{Date: day, Value: value})
	}

	return h, nil
}

func (c *Calories) Append(ctx context.Context, b *batch.Buckets) error {
	entries := make([][]string, 0, len(b.ToUpload))

	for _, r := range b.ToUpload {
		cons, ok := r.(*record.Consumption)
		if !ok {
			return fmt.Errorf("append calories: unexpected %s record", r.Kind())
		}

		entries = append(entries, ConsumptionRow(cons, c.Formulas))
	}

	if err := c.append(ctx, CalorieEntriesRegion, entries); err != nil {
		return err
	}

	regs := make([][]string, 0, len(b.NewReferences))
	for _, r := range b.NewReferences {
		regs = append(regs, RegistrationRow(r, c.Formulas))
	}

	return c.append(ctx, CalorieReferencesRegion, regs)
}

func (c *Calories) Points(b *batch.Buckets) []stats.Point {
	var points []stats.Point

	for _, r := range b.ToUpload {
		cons, ok := r.(*record.Consumption)
		if !ok {
			continue
		}

		if total, ok := cons.TotalCalories(); ok {
			points = append(points, stats.Point{Date: cons.Date, Value: total})
		}
	}

	return points
}

// ConsumptionRow encodes an entry. With formulas, quantity entries get a
// lookup formula so the sheet follows later edits of the registration.
func ConsumptionRow(c *record.Consumption, formulas bool) []string {
	var qty, cals string

	if c.Quantity.Valid {
		qty = c.Quantity.Decimal.String()
	}

	switch {
	case c.Calories.Valid:
		cals = c.Calories.Decimal.String()
	case formulas:
		cals = calorieFormula
	default:
		if total, ok := c.TotalCalories(); ok {
			cals = total.String()
		} else {
			cals = notAvailable
		}
	}

	return []string{c.Date.Format(calorieDate), c.Description, qty, c.Unit, cals, formatID(c.MessageID)}
}

func RegistrationRow(r *record.Registration, formulas bool) []string {
	perUnit, key := perUnitFormula, keyFormula

	if !formulas {
		perUnit, key = "", r.Description+r.Unit
		if !r.Quantity.IsZero() {
			perUnit = r.Calories.Div(r.Quantity).String()
		}
	}

	return []string{
		r.Description,
		r.Calories.String(),
		r.Quantity.String(),
		r.Unit,
		perUnit,
		key,
		formatID(r.MessageID),
	}
}
