// Package table describes the spreadsheet-like store the ledger lives in.
// A table holds named regions; the first row of a region is its header.
package table

import (
	"context"
	"errors"
	"strings"
)

//go:generate mockgen -source=table.go -destination=mock_table.go -package=table

// ErrRegionNotFound is returned when a table or region does not exist.
var ErrRegionNotFound = errors.New("region not found")

// Store reads and appends rows of a region. columns is a column span such
// as "A:F".
type Store interface {
	ReadRows(ctx context.Context, tableID, region, columns string) ([]Row, error)
	AppendRows(ctx context.Context, tableID, region, columns string, rows [][]string) error
}

// Row is a data row addressed by header name.
type Row struct {
	index  map[string]int
	Values []string
}

// Get returns the cell under column, or "" when the row has no such cell.
func (r Row) Get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.Values) {
		return ""
	}

	return strings.TrimSpace(r.Values[i])
}

// Rows turns raw cells into rows keyed by the first line. Empty lines are skipped.
func Rows(cells [][]string) []Row {
	if len(cells) == 0 {
		return nil
	}

	index := make(map[string]int, len(cells[0]))
	for i, h := range cells[0] {
		index[strings.TrimSpace(h)] = i
	}

	rows := make([]Row, 0, len(cells)-1)

	for _, values := range cells[1:] {
		if blank(values) {
			continue
		}

		rows = append(rows, Row{index: index, Values: values})
	}

	return rows
}

func blank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}

	return true
}
