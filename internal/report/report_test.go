package report_test

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/chatledger/internal/batch"
	"github.com/MrJamesThe3rd/chatledger/internal/record"
	"github.com/MrJamesThe3rd/chatledger/internal/report"
	"github.com/MrJamesThe3rd/chatledger/internal/stats"
)

var ref = time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)

func meta(id int64) record.Meta {
	return record.Meta{MessageID: id, Date: ref}
}

func pizza(id int64) *record.Consumption {
	c, _ := record.NewConsumption(meta(id), "Pizza", decimal.NullDecimal{}, "", decimal.NewNullDecimal(decimal.NewFromInt(300)))
	return c
}

func TestCompose(t *testing.T) {
	tpl := report.Calories()

	type args struct {
		buckets *batch.Buckets
		stats   *stats.Monthly
		flagged []string
	}

	type testCase struct {
		name   string
		args   args
		verify func(t *testing.T, text string)
	}

	monthly := &stats.Monthly{
		PeriodTotal: decimal.NewFromInt(30),
		DayTotal:    decimal.NewFromInt(5),
		Mean:        15,
		StdDev:      math.Sqrt(50),
	}

	tests := []testCase{
		{
			name: "Success Section With Stats",
			args: args{
				buckets: &batch.Buckets{ToUpload: []record.Record{pizza(1)}},
				stats:   monthly,
			},
			verify: func(t *testing.T, text string) {
				want := batch.DefaultMarker + "\n\n" +
					tpl.Success + "\n\n" +
					"\t-> Pizza: (300 cal) @ 05/01/2024\n\n\n" +
					"No mês 01/2024 (excluindo hoje) foram gastas 30.00 calorias (média 15.00 +- 7.07).\n" +
					"Hoje foram gastas 5.00 calorias.\n\n" +
					tpl.Closing

				assert.Equal(t, want, text)
			},
		},
		{
			name: "Registrations Follow Uploads",
			args: args{
				buckets: &batch.Buckets{
					ToUpload: []record.Record{pizza(2)},
					NewReferences: []*record.Registration{{
						Meta:        meta(1),
						Description: "Apple",
						Calories:    decimal.NewFromInt(52),
						Quantity:    decimal.NewFromInt(100),
						Unit:        "g",
					}},
				},
			},
			verify: func(t *testing.T, text string) {
				assert.Contains(t, text, "\t-> Pizza: (300 cal) @ 05/01/2024\n\n\t-> Apple: 52 cal per 100 g\n\n\n")
				assert.NotContains(t, text, "No mês")
			},
		},
		{
			name: "Failures Are Deduplicated",
			args: args{
				buckets: &batch.Buckets{FailedToParse: []*record.Unparsed{
					{Meta: meta(1), Text: "broken", Err: record.ErrFormat},
					{Meta: meta(2), Text: "broken", Err: record.ErrFormat},
					{Meta: meta(3), Text: "other", Err: record.ErrFormat},
				}},
				stats: monthly,
			},
			verify: func(t *testing.T, text string) {
				assert.Equal(t, 1, strings.Count(text, "\t-> broken"))
				assert.Contains(t, text, tpl.Format+"\n\n\t-> broken\n\n\t-> other\n\n\n")
				assert.NotContains(t, text, "No mês")
			},
		},
		{
			name: "Duplicates Get Their Own Section",
			args: args{
				buckets: &batch.Buckets{FailedToParse: []*record.Unparsed{
					{Meta: meta(1), Text: "@ Apple - 1 cal/1g", Err: fmt.Errorf("%w: again", record.ErrDuplicateRegistration)},
				}},
			},
			verify: func(t *testing.T, text string) {
				assert.Contains(t, text, tpl.Duplicate+"\n\n\t-> @ Apple - 1 cal/1g")
				assert.NotContains(t, text, tpl.Format)
			},
		},
		{
			name: "Missing And Flagged In Order",
			args: args{
				buckets: &batch.Buckets{MissingReference: []*record.MissingReference{{Meta: meta(1), Text: "Kiwi - 1 un"}}},
				flagged: []string{"Kiwi: 2 [un]"},
			},
			verify: func(t *testing.T, text string) {
				missing := strings.Index(text, tpl.MissingReference)
				flagged := strings.Index(text, tpl.Flagged)

				assert.Greater(t, missing, 0)
				assert.Greater(t, flagged, missing)
				assert.Contains(t, text, "\t-> Kiwi: 2 [un]")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.verify(t, report.Compose(tpl, tt.args.buckets, tt.args.stats, tt.args.flagged, ref))
		})
	}
}

func TestCompose_ExpensesStats(t *testing.T) {
	e := &record.Expense{Meta: meta(1), Price: decimal.RequireFromString("19.94"), Counterparty: "Uber", Description: "Casa", Account: "Nubank"}

	m := &stats.Monthly{
		PeriodTotal: decimal.RequireFromString("100.5"),
		DayTotal:    decimal.RequireFromString("19.94"),
		Count:       4,
	}

	text := report.Compose(report.Expenses(), &batch.Buckets{ToUpload: []record.Record{e}}, m, nil, ref)

	assert.Contains(t, text, "\t-> 19.94 - Uber - Casa - Nubank - 2024-01-05")
	assert.Contains(t, text, "No mês 01/2024 houveram 4 despesas totalizando R$ 120.44 gastos")
}

func TestHelp(t *testing.T) {
	t.Run("Calories Has No Accounts", func(t *testing.T) {
		text := report.Help(report.Calories(), []string{"Nubank"})

		assert.True(t, strings.HasPrefix(text, batch.DefaultMarker+"\n\n"))
		assert.NotContains(t, text, "Contas válidas")
	})

	t.Run("Expenses Lists Sorted Accounts", func(t *testing.T) {
		text := report.Help(report.Expenses(), []string{"Nubank", "Dinheiro"})

		assert.True(t, strings.HasSuffix(text, "\n\nContas válidas: Dinheiro, Nubank"))
	})
}

func TestShouldSend(t *testing.T) {
	assert.False(t, report.ShouldSend(&batch.Buckets{}))
	assert.False(t, report.ShouldSend(&batch.Buckets{HelpRequested: []*record.HelpRequest{{Meta: meta(1)}}}))
	assert.True(t, report.ShouldSend(&batch.Buckets{MissingReference: []*record.MissingReference{{Meta: meta(1)}}}))
	assert.True(t, report.ShouldSend(&batch.Buckets{ToUpload: []record.Record{pizza(1)}}))
}
