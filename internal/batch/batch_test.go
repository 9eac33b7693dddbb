package batch_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/chatledger/internal/batch"
	"github.com/MrJamesThe3rd/chatledger/internal/message"
	"github.com/MrJamesThe3rd/chatledger/internal/record"
	"github.com/MrJamesThe3rd/chatledger/internal/reference"
)

var caloriesRules = batch.Rules{
	Registrations: true,
	Default:       record.KindConsumption,
	Marker:        batch.DefaultMarker,
}

var expenseRules = batch.Rules{
	Default: record.KindExpense,
	Marker:  batch.DefaultMarker,
}

var base = time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

// msg builds a message whose date grows with its id.
func msg(id int64, text string) message.Message {
	return message.Message{ID: id, Date: base.Add(time.Duration(id) * time.Minute), ChatID: -100, Text: text}
}

func reply(id, to int64, text string) message.Message {
	m := msg(id, text)
	m.ReplyTo = new(to)

	return m
}

// newestFirst reverses chronologically listed messages into fetch order.
func newestFirst(msgs ...message.Message) []message.Message {
	out := make([]message.Message, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		out = append(out, msgs[i])
	}

	return out
}

func apple() reference.Item {
	return reference.Item{
		Description: "Apple",
		Unit:        "g",
		Calories:    decimal.NewFromInt(52),
		Quantity:    decimal.NewFromInt(100),
	}
}

func snapshot(items ...reference.Item) *batch.Snapshot {
	return &batch.Snapshot{
		Catalog:  reference.NewCatalog(items...),
		Accounts: reference.NewAccounts("Dinheiro", "Nubank"),
	}
}

func ids[T interface{ Source() record.Meta }](recs []T) []int64 {
	out := make([]int64, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Source().MessageID)
	}

	return out
}

func TestProcess_Calories(t *testing.T) {
	type args struct {
		msgs      []message.Message
		snap      *batch.Snapshot
		processed batch.Processed
	}

	type testCase struct {
		name   string
		args   args
		verify func(t *testing.T, b *batch.Buckets)
	}

	tests := []testCase{
		{
			name: "Known Item Is Uploaded",
			args: args{
				msgs: newestFirst(msg(1, "apple - 50g")),
				snap: snapshot(apple()),
			},
			verify: func(t *testing.T, b *batch.Buckets) {
				require.Len(t, b.ToUpload, 1)

				c, ok := b.ToUpload[0].(*record.Consumption)
				require.True(t, ok)
				assert.Equal(t, "Apple", c.Description)
				require.NotNil(t, c.Reference)

				total, ok := c.TotalCalories()
				require.True(t, ok)
				assert.True(t, decimal.NewFromInt(26).Equal(total))
			},
		},
		{
			name: "Registration And Entry In The Same Message",
			args: args{
				msgs: newestFirst(msg(1, "Apple - 50g\n@ Apple - 52 cal/100g")),
				snap: snapshot(),
			},
			verify: func(t *testing.T, b *batch.Buckets) {
				require.Len(t, b.NewReferences, 1)
				require.Len(t, b.ToUpload, 1)
				assert.Empty(t, b.MissingReference)
				assert.Empty(t, b.FailedToParse)
			},
		},
		{
			name: "Registration In A Later Message Still Applies",
			args: args{
				msgs: newestFirst(msg(1, "Banana - 1 un"), msg(2, "@ Banana - 90 cal/1 un")),
				snap: snapshot(),
			},
			verify: func(t *testing.T, b *batch.Buckets) {
				require.Len(t, b.NewReferences, 1)
				assert.Equal(t, []int64{1}, ids(b.ToUpload))
			},
		},
		{
			name: "Unknown Item Is Missing Reference",
			args: args{
				msgs: newestFirst(msg(1, "Kiwi - 1 un")),
				snap: snapshot(apple()),
			},
			verify: func(t *testing.T, b *batch.Buckets) {
				assert.Empty(t, b.ToUpload)
				require.Len(t, b.MissingReference, 1)
				assert.Equal(t, "Kiwi - 1 un", b.MissingReference[0].Text)
			},
		},
		{
			name: "Malformed Line Fails Without Aborting",
			args: args{
				msgs: newestFirst(msg(1, "apple 50g"), msg(2, "apple - 20g")),
				snap: snapshot(apple()),
			},
			verify: func(t *testing.T, b *batch.Buckets) {
				assert.Equal(t, []int64{2}, ids(b.ToUpload))
				require.Len(t, b.FailedToParse, 1)
				assert.ErrorIs(t, b.FailedToParse[0].Err, record.ErrFormat)
			},
		},
		{
			name: "Duplicate Registration Is Rejected",
			args: args{
				msgs: newestFirst(msg(1, "@ Apple - 60 cal/100g")),
				snap: snapshot(apple()),
			},
			verify: func(t *testing.T, b *batch.Buckets) {
				assert.Empty(t, b.NewReferences)
				require.Len(t, b.FailedToParse, 1)
				assert.ErrorIs(t, b.FailedToParse[0].Err, record.ErrDuplicateRegistration)
			},
		},
		{
			name: "Second Registration In Batch Is Duplicate",
			args: args{
				msgs: newestFirst(msg(1, "@ Pear - 57 cal/100g"), msg(2, "@ Pear - 60 cal/100g")),
				snap: snapshot(),
			},
			verify: func(t *testing.T, b *batch.Buckets) {
				require.Len(t, b.NewReferences, 1)
				assert.True(t, decimal.NewFromInt(57).Equal(b.NewReferences[0].Calories))
				require.Len(t, b.FailedToParse, 1)
				assert.Equal(t, int64(2), b.FailedToParse[0].MessageID)
			},
		},
		{
			name: "Second Registration In The Same Message Is Duplicate",
			args: args{
				msgs: newestFirst(msg(1, "@ Pear - 57 cal/100g\n@ Pear - 60 cal/100g")),
				snap: snapshot(),
			},
			verify: func(t *testing.T, b *batch.Buckets) {
				require.Len(t, b.NewReferences, 1)
				assert.True(t, decimal.NewFromInt(57).Equal(b.NewReferences[0].Calories))
				require.Len(t, b.FailedToParse, 1)
				assert.Equal(t, "@ Pear - 60 cal/100g", b.FailedToParse[0].Text)
				assert.ErrorIs(t, b.FailedToParse[0].Err, record.ErrDuplicateRegistration)
			},
		},
		{
			name: "Comments And Blank Lines Are Skipped",
			args: args{
				msgs: newestFirst(msg(1, "# lunch was late"), msg(2, "\n  \napple - 10g\n")),
				snap: snapshot(apple()),
			},
			verify: func(t *testing.T, b *batch.Buckets) {
				assert.Equal(t, []int64{2}, ids(b.ToUpload))
				assert.Empty(t, b.FailedToParse)
			},
		},
		{
			name: "Latest Message From Bot Stops The Pass",
			args: args{
				msgs: newestFirst(msg(1, "apple - 10g"), msg(2, batch.DefaultMarker+"\n\nreport")),
				snap: snapshot(apple()),
			},
			verify: func(t *testing.T, b *batch.Buckets) {
				assert.True(t, b.Empty())
			},
		},
		{
			name: "Older Bot Message Is Skipped",
			args: args{
				msgs:      newestFirst(msg(1, "apple - 10g"), msg(2, batch.DefaultMarker+"\n\nreport"), msg(3, "apple - 5g")),
				snap:      snapshot(apple()),
				processed: batch.Processed{1: batch.StatusSuccess},
			},
			verify: func(t *testing.T, b *batch.Buckets) {
				assert.Equal(t, []int64{3}, ids(b.ToUpload))
			},
		},
		{
			name: "Buckets Are Chronological",
			args: args{
				msgs: newestFirst(msg(1, "apple - 1g"), msg(2, "apple - 2g\napple - 3g"), msg(3, "apple - 4g")),
				snap: snapshot(apple()),
			},
			verify: func(t *testing.T, b *batch.Buckets) {
				require.Len(t, b.ToUpload, 4)

				var got []string
				for _, r := range b.ToUpload {
					got = append(got, r.(*record.Consumption).Quantity.Decimal.String())
				}

				assert.Equal(t, []string{"1", "2", "3", "4"}, got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := batch.Process(tt.args.msgs, tt.args.snap, tt.args.processed, caloriesRules)
			tt.verify(t, b)
		})
	}
}

func TestProcess_Expenses(t *testing.T) {
	msgs := newestFirst(
		msg(1, "20,50 - Padaria - Pão - nubank"),
		msg(2, "10 - Bar - Cerveja - Itau"),
		msg(3, "@ Apple - 52 cal/100g"),
		msg(4, "?"),
	)

	b := batch.Process(msgs, snapshot(), nil, expenseRules)

	require.Len(t, b.ToUpload, 1)
	e, ok := b.ToUpload[0].(*record.Expense)
	require.True(t, ok)
	assert.Equal(t, "Nubank", e.Account)
	assert.True(t, decimal.RequireFromString("20.5").Equal(e.Price))

	assert.Equal(t, []int64{2}, ids(b.MissingReference))

	// "@" has no meaning for expenses and is parsed as an expense line.
	assert.Empty(t, b.NewReferences)
	assert.Equal(t, []int64{3}, ids(b.FailedToParse))

	assert.Equal(t, []int64{4}, ids(b.HelpRequested))
}

func TestProcess_HelpRequests(t *testing.T) {
	type testCase struct {
		name string
		msgs []message.Message
		want []int64
	}

	tests := []testCase{
		{
			name: "Unanswered Request Is Kept",
			msgs: newestFirst(msg(1, "?")),
			want: []int64{1},
		},
		{
			name: "Answered Request Is Dropped",
			msgs: newestFirst(msg(1, "?"), reply(2, 1, batch.DefaultMarker+"\n\nhelp")),
			want: []int64{},
		},
		{
			name: "Only Answered One Is Dropped",
			msgs: newestFirst(msg(1, "?"), reply(2, 1, "thanks"), msg(3, "?")),
			want: []int64{3},
		},
		{
			name: "Several Unanswered In Order",
			msgs: newestFirst(msg(1, " ? "), msg(2, "apple - 1g"), msg(3, "?")),
			want: []int64{1, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := batch.Process(tt.msgs, snapshot(apple()), nil, caloriesRules)
			assert.Equal(t, tt.want, ids(b.HelpRequested))
		})
	}
}

func TestProcess_AnsweredHelpAcrossRuns(t *testing.T) {
	type testCase struct {
		name       string
		first      []message.Message
		second     []message.Message
		wantUpload []int64
	}

	tests := []testCase{
		{
			name:       "Reply Is The Latest Message",
			first:      newestFirst(msg(1, "?"), reply(2, 1, "thanks")),
			second:     newestFirst(msg(1, "?"), reply(2, 1, "thanks"), msg(3, "apple - 1g")),
			wantUpload: []int64{3},
		},
		{
			name:       "Reply Among Entries",
			first:      newestFirst(msg(1, "?"), reply(2, 1, "thanks"), msg(3, "apple - 1g")),
			second:     newestFirst(msg(1, "?"), reply(2, 1, "thanks"), msg(3, "apple - 1g"), msg(4, "apple - 2g")),
			wantUpload: []int64{4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := batch.Process(tt.first, snapshot(apple()), nil, caloriesRules)
			assert.Empty(t, first.HelpRequested)
			assert.Equal(t, []int64{1}, ids(first.Answered))
			assert.False(t, first.Empty())

			processed := batch.Processed{}
			for _, o := range first.Outcomes() {
				processed[o.MessageID] = o.Status
			}

			assert.Equal(t, batch.StatusAskedForHelp, processed[1])

			second := batch.Process(tt.second, snapshot(apple()), processed, caloriesRules)
			assert.Empty(t, second.HelpRequested)
			assert.Empty(t, second.Answered)
			assert.Equal(t, tt.wantUpload, ids(second.ToUpload))
		})
	}
}

func TestProcess_IsIdempotent(t *testing.T) {
	msgs := newestFirst(
		msg(1, "@ Apple - 52 cal/100g"),
		msg(2, "apple - 50g\nKiwi - 1 un"),
		msg(3, "broken"),
		msg(4, "?"),
	)

	first := batch.Process(msgs, snapshot(), nil, caloriesRules)
	require.False(t, first.Empty())

	processed := batch.Processed{}
	for _, o := range first.Outcomes() {
		processed[o.MessageID] = o.Status
	}

	// The catalog of the next run includes what the first run registered.
	next := snapshot()
	for _, r := range first.NewReferences {
		next.Catalog.Add(r.Item())
	}

	second := batch.Process(msgs, next, processed, caloriesRules)
	assert.True(t, second.Empty())
}

func TestProcess_UsesLocationForDates(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)

	m := message.Message{ID: 1, Date: time.Date(2024, 1, 6, 1, 0, 0, 0, time.UTC), Text: "apple - 1g"}

	rules := caloriesRules
	rules.Location = loc

	b := batch.Process([]message.Message{m}, snapshot(apple()), nil, rules)
	require.Len(t, b.ToUpload, 1)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), b.ToUpload[0].Source().Date)
}

func TestBuckets_Outcomes(t *testing.T) {
	msgs := newestFirst(
		msg(1, "@ Apple - 52 cal/100g"),
		msg(2, "apple - 50g"),
		msg(3, "Kiwi - 1 un"),
		msg(4, "broken"),
		msg(5, "?"),
	)

	b := batch.Process(msgs, snapshot(), nil, caloriesRules)

	assert.ElementsMatch(t, []batch.Outcome{
		{MessageID: 1, Status: batch.StatusSuccess},
		{MessageID: 2, Status: batch.StatusSuccess},
		{MessageID: 3, Status: batch.StatusMissingReference},
		{MessageID: 4, Status: batch.StatusFailure},
		{MessageID: 5, Status: batch.StatusAskedForHelp},
	}, b.Outcomes())
	assert.True(t, b.Succeeded())
}
