package reference_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/chatledger/internal/reference"
)

func TestCatalog_HasIsExact(t *testing.T) {
	c := reference.NewCatalog(reference.Item{Description: "Apple", Unit: "g"})

	assert.True(t, c.Has("Apple", "g"))
	assert.False(t, c.Has("apple", "g"))
	assert.False(t, c.Has("Apple", "G"))
}

func TestCatalog_MatchIsNormalized(t *testing.T) {
	c := reference.NewCatalog(
		reference.Item{Description: "Mini Pão Swift", Unit: "un"},
		reference.Item{Description: "Apple", Unit: "g"},
	)

	it, ok := c.Match("MINI PAO SWIFT", " UN ")
	require.True(t, ok)
	assert.Equal(t, "Mini Pão Swift", it.Description)
	assert.Equal(t, "un", it.Unit)

	_, ok = c.Match("Apple", "kg")
	assert.False(t, ok)
}

func TestCatalog_AddGrows(t *testing.T) {
	c := reference.NewCatalog()
	assert.Equal(t, 0, c.Len())

	c.Add(reference.Item{Description: "Apple", Unit: "g"})

	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Has("Apple", "g"))
}

func TestItem_CaloriesFor(t *testing.T) {
	it := reference.Item{
		Calories: decimal.NewFromInt(52),
		Quantity: decimal.NewFromInt(100),
	}

	got, ok := it.CaloriesFor(decimal.NewFromInt(50))
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(26).Equal(got), "got %s", got)

	_, ok = reference.Item{Calories: decimal.NewFromInt(1)}.CaloriesFor(decimal.NewFromInt(1))
	assert.False(t, ok)
}

func TestAccounts_Resolve(t *testing.T) {
	type testCase struct {
		name     string
		accounts []string
		input    string
		want     string
		wantOK   bool
	}

	tests := []testCase{
		{name: "Exact", accounts: []string{"NuBank Credito"}, input: "NuBank Credito", want: "NuBank Credito", wantOK: true},
		{name: "Normalized", accounts: []string{"NuBank Crédito", "Dinheiro"}, input: "nubank credito", want: "NuBank Crédito", wantOK: true},
		{name: "Unknown", accounts: []string{"Dinheiro"}, input: "Carteira", wantOK: false},
		{name: "Ambiguous", accounts: []string{"Conta Única", "Conta Unica"}, input: "conta unica", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := reference.NewAccounts(tt.accounts...).Resolve(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
