package portfolio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanCurrency(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "plain number", input: "123.45", want: 123.45},
		{name: "dollar sign", input: "$42.50", want: 42.50},
		{name: "thousands separator", input: "1,200", want: 1200},
		{name: "hk currency marker", input: "HK$55.00", want: 55},
		{name: "surrounding whitespace", input: "  99.9  ", want: 99.9},
		{name: "everything at once", input: " HK$1,234.56 ", want: 1234.56},
		{name: "unparsable becomes zero", input: "n/a", want: 0},
		{name: "empty becomes zero", input: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CleanCurrency(tt.input), 1e-9)
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{name: "iso dash", input: "2024-03-15"},
		{name: "iso slash", input: "2024/03/15"},
		{name: "day first", input: "15/03/2024"},
		{name: "whitespace trimmed", input: " 2024-03-15 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "got %v", got)
		})
	}

	t.Run("month first layout", func(t *testing.T) {
		// Ambiguous dates resolve day-first; 03/15 is only valid month-first.
		got, err := ParseDate("03/15/2024")
		require.NoError(t, err)
		assert.True(t, got.Equal(want), "got %v", got)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseDate("yesterday")
		assert.Error(t, err)
	})
}

func TestLoad(t *testing.T) {
	csv := `Date,Investment Category,Stock,Type,Transacted Units,Transacted Price (per unit)
2023-01-10,HK Stock,0700,Buy,100,"HK$320.00"
2023-02-20,HK Stock,0700,Buy,100,"HK$280.00"
2023-05-05,HK Stock,0700,Sell,50,"HK$350.00"
2023-03-01,HK Stock,0005,Buy,400,"$55.10"
2023-04-01,HK Stock,0005,Sell,400,"$60.00"
2023-06-15,US Stock,AAPL,Buy,10,150.00
2023-07-01,HK Stock,70,Buy,100,1.00
bad-date,HK Stock,0700,Buy,100,300.00
2023-08-01,HK Stock,0388,Dividend,0,0
`
	path := filepath.Join(t.TempDir(), "profolio.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	positions, err := Load(path)
	require.NoError(t, err)

	// 0005 sold flat, AAPL wrong category, "70" not a 4-digit code, the
	// bad-date row and the dividend row are all dropped.
	require.Len(t, positions, 1)

	p := positions[0]
	assert.Equal(t, "0700", p.Code)
	assert.InDelta(t, 150, p.NetUnits(), 1e-9)

	require.Len(t, p.Transactions, 3)
	for i := 1; i < len(p.Transactions); i++ {
		assert.False(t, p.Transactions[i].Date.Before(p.Transactions[i-1].Date),
			"transactions out of order")
	}
	assert.Equal(t, Buy, p.Transactions[0].Kind)
	assert.InDelta(t, 320, p.Transactions[0].Price, 1e-9)
	assert.Equal(t, Sell, p.Transactions[2].Kind)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestNetUnits(t *testing.T) {
	p := Position{Transactions: []Transaction{
		{Kind: Buy, Units: 300},
		{Kind: Sell, Units: 100},
		{Kind: Buy, Units: 50},
	}}
	assert.InDelta(t, 250, p.NetUnits(), 1e-9)
}
