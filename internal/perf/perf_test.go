package perf

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkfolio/hkfolio/internal/portfolio"
	"github.com/hkfolio/hkfolio/internal/prices"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func tableOf(code string, start int, closes ...float64) *prices.Table {
	t := &prices.Table{Closes: map[string][]float64{code: closes}}
	for i := range closes {
		t.Dates = append(t.Dates, day(start+i))
	}
	return t
}

func TestApplyTransaction(t *testing.T) {
	// Two buys at different prices.
	cost, units := applyTransaction(0, 0, portfolio.Transaction{Kind: portfolio.Buy, Units: 100, Price: 10})
	cost, units = applyTransaction(cost, units, portfolio.Transaction{Kind: portfolio.Buy, Units: 100, Price: 20})
	assert.InDelta(t, 3000, cost, 1e-9)
	assert.InDelta(t, 200, units, 1e-9)

	// Selling half removes half the cost and keeps the average at 15.
	cost, units = applyTransaction(cost, units, portfolio.Transaction{Kind: portfolio.Sell, Units: 100})
	assert.InDelta(t, 1500, cost, 1e-9)
	assert.InDelta(t, 100, units, 1e-9)
	assert.InDelta(t, 15, cost/units, 1e-9)
}

func TestApplyTransactionSellWhenFlat(t *testing.T) {
	cost, units := applyTransaction(0, 0, portfolio.Transaction{Kind: portfolio.Sell, Units: 50})
	assert.Zero(t, cost)
	assert.Zero(t, units)
}

func TestReturnSeriesStartsAtZero(t *testing.T) {
	txs := []portfolio.Transaction{
		{Date: day(1), Kind: portfolio.Buy, Units: 100, Price: 10},
	}
	dates, returns := returnSeries(txs, []time.Time{day(1), day(2), day(3)}, []float64{12, 11, 13}, day(1))

	require.Len(t, returns, 3)
	assert.Zero(t, returns[0], "first point must be 0%%")
	assert.InDelta(t, 10, returns[1], 1e-9) // 11 vs cost 10
	assert.InDelta(t, 30, returns[2], 1e-9)
	assert.Equal(t, day(1), dates[0])
}

func TestReturnSeriesSkipsBeforeEntry(t *testing.T) {
	txs := []portfolio.Transaction{
		{Date: day(3), Kind: portfolio.Buy, Units: 10, Price: 5},
	}
	dates, returns := returnSeries(txs, []time.Time{day(1), day(2), day(3), day(4)}, []float64{4, 4, 5, 6}, day(3))

	require.Len(t, returns, 2)
	assert.Equal(t, day(3), dates[0])
	assert.Zero(t, returns[0])
	assert.InDelta(t, 20, returns[1], 1e-9)
}

func TestReturnSeriesClamps(t *testing.T) {
	txs := []portfolio.Transaction{
		{Date: day(1), Kind: portfolio.Buy, Units: 10, Price: 1},
	}
	_, returns := returnSeries(txs, []time.Time{day(1), day(2), day(3)}, []float64{1, 200, 0.0001}, day(1))

	require.Len(t, returns, 3)
	assert.InDelta(t, float64(maxReturn), returns[1], 1e-9)
	assert.InDelta(t, float64(minReturn), returns[2], 1e-9)
}

func TestReturnSeriesFlatPositionCarriesZero(t *testing.T) {
	txs := []portfolio.Transaction{
		{Date: day(1), Kind: portfolio.Buy, Units: 100, Price: 10},
		{Date: day(2), Kind: portfolio.Sell, Units: 100},
	}
	_, returns := returnSeries(txs, []time.Time{day(1), day(2), day(3)}, []float64{11, 12, 13}, day(1))

	require.Len(t, returns, 3)
	assert.Zero(t, returns[1])
	assert.Zero(t, returns[2])
}

func TestReplayMidSeriesBuyShiftsCostBasis(t *testing.T) {
	txs := []portfolio.Transaction{
		{Date: day(1), Kind: portfolio.Buy, Units: 100, Price: 10},
		{Date: day(3), Kind: portfolio.Buy, Units: 100, Price: 20},
	}
	_, returns := returnSeries(txs, []time.Time{day(1), day(2), day(3)}, []float64{10, 15, 15}, day(1))

	require.Len(t, returns, 3)
	assert.InDelta(t, 50, returns[1], 1e-9) // 15 vs cost 10
	assert.InDelta(t, 0, returns[2], 1e-9)  // 15 vs blended cost 15
}

func TestComputeSummary(t *testing.T) {
	positions := []portfolio.Position{
		{
			Code: "0700",
			Transactions: []portfolio.Transaction{
				{Date: day(1), Kind: portfolio.Buy, Units: 100, Price: 10},
				{Date: day(2), Kind: portfolio.Buy, Units: 100, Price: 20},
				{Date: day(3), Kind: portfolio.Sell, Units: 100},
			},
		},
	}
	table := tableOf("0700", 1, 10, 14, 18, 21)

	stocks, err := Compute(context.Background(), positions, table)
	require.NoError(t, err)
	require.Len(t, stocks, 1)

	s := stocks[0]
	assert.Equal(t, "0700", s.Code)
	assert.InDelta(t, 15, s.AvgCost, 1e-9)
	assert.InDelta(t, 21, s.CurrentPrice, 1e-9)
	assert.InDelta(t, 40, s.CurrentReturn, 1e-9)
	assert.InDelta(t, 100, s.Units, 1e-9)
	assert.Equal(t, day(1), s.EntryDate)
	assert.InDelta(t, 600, s.UnrealizedPnL, 1e-9)

	require.True(t, s.HasDailyDelta)
	// Yesterday: (18-15)/15 = 20%; today 40%.
	assert.InDelta(t, 20, s.DailyDelta, 1e-9)
}

func TestComputeOrdersByReturnDescending(t *testing.T) {
	positions := []portfolio.Position{
		{Code: "0005", Transactions: []portfolio.Transaction{
			{Date: day(1), Kind: portfolio.Buy, Units: 10, Price: 10},
		}},
		{Code: "0700", Transactions: []portfolio.Transaction{
			{Date: day(1), Kind: portfolio.Buy, Units: 10, Price: 10},
		}},
	}
	table := &prices.Table{
		Dates: []time.Time{day(1), day(2)},
		Closes: map[string][]float64{
			"0005": {10, 11},
			"0700": {10, 15},
		},
	}

	stocks, err := Compute(context.Background(), positions, table)
	require.NoError(t, err)
	require.Len(t, stocks, 2)
	assert.Equal(t, "0700", stocks[0].Code)
	assert.Equal(t, "0005", stocks[1].Code)
}

func TestComputeSkipsMissingPriceColumn(t *testing.T) {
	positions := []portfolio.Position{
		{Code: "9999", Transactions: []portfolio.Transaction{
			{Date: day(1), Kind: portfolio.Buy, Units: 10, Price: 10},
		}},
	}
	table := tableOf("0700", 1, 10, 11)

	stocks, err := Compute(context.Background(), positions, table)
	require.NoError(t, err)
	assert.Empty(t, stocks)
}

func TestComputeSingleCloseHasNoDailyDelta(t *testing.T) {
	positions := []portfolio.Position{
		{Code: "0700", Transactions: []portfolio.Transaction{
			{Date: day(1), Kind: portfolio.Buy, Units: 10, Price: 10},
		}},
	}
	table := tableOf("0700", 1, 12)

	stocks, err := Compute(context.Background(), positions, table)
	require.NoError(t, err)
	require.Len(t, stocks, 1)
	assert.False(t, stocks[0].HasDailyDelta)
}
