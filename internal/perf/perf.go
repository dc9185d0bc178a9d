package perf

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hkfolio/hkfolio/internal/portfolio"
	"github.com/hkfolio/hkfolio/internal/prices"
)

// Return series values are clamped to this range so a single mispriced row
// cannot blow out the chart scale.
const (
	maxReturn = 1000
	minReturn = -100
)

// Computed performance for one held stock.
type Stock struct {
	Code          string
	AvgCost       float64   // Weighted average cost per unit after all buys and sells.
	CurrentPrice  float64   // Most recent close.
	CurrentReturn float64   // Percent return of the current price vs. average cost.
	Units         float64   // Units held after all transactions.
	EntryDate     time.Time // Date of the first buy.
	UnrealizedPnL float64   // (current price - average cost) * units held.
	DailyDelta    float64   // Today's return minus yesterday's, in percentage points.
	HasDailyDelta bool      // False when fewer than two closes are available.

	// Daily return series from the entry date, aligned slices.
	Dates   []time.Time
	Returns []float64
}

// Computes per-stock performance for all positions against the price table.
//
// Stocks are computed concurrently. Positions without a price column, or
// with no prices on or after their entry date, are skipped. Results are
// ordered by current return, best first.
func Compute(ctx context.Context, positions []portfolio.Position, table *prices.Table) ([]Stock, error) {
	results := make([]*Stock, len(positions))

	g, _ := errgroup.WithContext(ctx)
	for i, pos := range positions {
		g.Go(func() error {
			results[i] = computeStock(pos, table)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stocks := make([]Stock, 0, len(results))
	for _, s := range results {
		if s != nil {
			stocks = append(stocks, *s)
		}
	}

	sort.Slice(stocks, func(i, j int) bool {
		return stocks[i].CurrentReturn > stocks[j].CurrentReturn
	})
	return stocks, nil
}

// Computes the full performance record for a single position.
//
// Returns nil when the stock has no usable price series.
func computeStock(pos portfolio.Position, table *prices.Table) *Stock {
	dates, closes, ok := table.Series(pos.Code)
	if !ok || len(closes) == 0 {
		return nil
	}

	entry, ok := firstBuyDate(pos.Transactions)
	if !ok {
		return nil
	}

	seriesDates, seriesReturns := returnSeries(pos.Transactions, dates, closes, entry)
	if len(seriesReturns) == 0 {
		return nil
	}

	cost, units := replay(pos.Transactions, time.Time{})
	if units <= 0 {
		return nil
	}
	avgCost := cost / units

	current := closes[len(closes)-1]
	currentReturn := percentReturn(current, avgCost)

	s := &Stock{
		Code:          pos.Code,
		AvgCost:       avgCost,
		CurrentPrice:  current,
		CurrentReturn: currentReturn,
		Units:         units,
		EntryDate:     entry,
		UnrealizedPnL: (current - avgCost) * units,
		Dates:         seriesDates,
		Returns:       seriesReturns,
	}

	// Daily delta compares today's return with yesterday's against the same
	// cost basis, so it isolates the price move from transaction effects.
	if len(closes) >= 2 {
		yesterday := percentReturn(closes[len(closes)-2], avgCost)
		s.DailyDelta = currentReturn - yesterday
		s.HasDailyDelta = true
	}

	return s
}

// Builds the daily return series from the entry date onwards.
//
// The cost basis is replayed incrementally: for each price date, all
// transactions dated on or before it are folded into the running position
// before the return is computed. Returns are clamped, the first point is
// forced to 0%, and dates where the position is flat carry 0% once the
// series has started.
func returnSeries(txs []portfolio.Transaction, dates []time.Time, closes []float64, entry time.Time) ([]time.Time, []float64) {
	var (
		outDates   []time.Time
		outReturns []float64
		cost       float64
		units      float64
		next       int
	)

	for i, date := range dates {
		if date.Before(entry) {
			continue
		}

		for next < len(txs) && !txs[next].Date.After(date) {
			cost, units = applyTransaction(cost, units, txs[next])
			next++
		}

		switch {
		case units > 0:
			r := clampReturn(percentReturn(closes[i], cost/units))
			outDates = append(outDates, date)
			outReturns = append(outReturns, r)
		case len(outReturns) > 0:
			outDates = append(outDates, date)
			outReturns = append(outReturns, 0)
		}
	}

	if len(outReturns) > 0 {
		outReturns[0] = 0
	}
	return outDates, outReturns
}

// Replays transactions dated on or before cutoff, returning the running cost
// and units. A zero cutoff replays everything.
func replay(txs []portfolio.Transaction, cutoff time.Time) (cost, units float64) {
	for _, tx := range txs {
		if !cutoff.IsZero() && tx.Date.After(cutoff) {
			break
		}
		cost, units = applyTransaction(cost, units, tx)
	}
	return cost, units
}

// Folds one transaction into the running position.
//
// Buys add their full cost. Sells remove cost proportionally at the current
// per-unit cost, which keeps the average cost of the remaining units stable.
func applyTransaction(cost, units float64, tx portfolio.Transaction) (float64, float64) {
	switch tx.Kind {
	case portfolio.Buy:
		return cost + tx.Units*tx.Price, units + tx.Units
	case portfolio.Sell:
		if units > 0 {
			perUnit := cost / units
			return cost - perUnit*tx.Units, units - tx.Units
		}
	}
	return cost, units
}

// Date of the first buy transaction. Transactions are chronological, so the
// first buy found is the earliest.
func firstBuyDate(txs []portfolio.Transaction) (time.Time, bool) {
	for _, tx := range txs {
		if tx.Kind == portfolio.Buy {
			return tx.Date, true
		}
	}
	return time.Time{}, false
}

// Percent return of price against a cost basis.
func percentReturn(price, avgCost float64) float64 {
	if avgCost <= 0 {
		return 0
	}
	return (price - avgCost) / avgCost * 100
}

// Clamps a return value to the chartable range.
func clampReturn(r float64) float64 {
	if r > maxReturn {
		return maxReturn
	}
	if r < minReturn {
		return minReturn
	}
	return r
}
