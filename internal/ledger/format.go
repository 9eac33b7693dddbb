package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const calorieDate = "02-Jan-2006"

var ptMonths = [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

// formatExpenseDate renders t as "05-jan.-2024".
func formatExpenseDate(t time.Time) string {
	return fmt.Sprintf("%02d-%s.-%d", t.Day(), ptMonths[t.Month()-1], t.Year())
}

// parseExpenseDate reads dates written by formatExpenseDate. Cells edited by
// hand in dd/mm/yyyy are accepted too.
func parseExpenseDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Parse("02/01/2006", s)
	}

	name := strings.ToLower(strings.TrimSuffix(parts[1], "."))

	for i, m := range ptMonths {
		if m != name {
			continue
		}

		day, err := strconv.Atoi(parts[0])
		if err != nil {
			return time.Time{}, fmt.Errorf("parse day %q: %w", parts[0], err)
		}

		year, err := strconv.Atoi(parts[2])
		if err != nil {
			return time.Time{}, fmt.Errorf("parse year %q: %w", parts[2], err)
		}

		return time.Date(year, time.Month(i+1), day, 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("unknown month %q", parts[1])
}

// formatComma renders d with a comma as decimal separator.
func formatComma(d decimal.Decimal) string {
	return strings.Replace(d.String(), ".", ",", 1)
}

// parseNumber reads a cell value in either "1234.5" or "R$ 1.234,50" form.
func parseNumber(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	clean = strings.ReplaceAll(clean, " ", "")

	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	}

	return decimal.NewFromString(clean)
}
