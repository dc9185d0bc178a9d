package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkfolio/hkfolio/internal/perf"
)

func sampleStocks() []perf.Stock {
	dates := []time.Time{
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
	}
	return []perf.Stock{
		{
			Code: "0700", CurrentReturn: 12.34, DailyDelta: 1.5, HasDailyDelta: true,
			Dates: dates, Returns: []float64{0, 5, 12.34},
		},
		{
			Code: "0005", CurrentReturn: -3.21, DailyDelta: -0.25, HasDailyDelta: true,
			Dates: dates, Returns: []float64{0, -1, -3.21},
		},
	}
}

func TestCaption(t *testing.T) {
	now := time.Date(2024, 8, 23, 14, 30, 0, 0, time.UTC)
	got := Caption(sampleStocks(), now)

	assert.Contains(t, got, "📊 Portfolio Update 2024-08-23 14:30")
	assert.Contains(t, got, "🏆 Best: 0700 +12.3%")
	assert.Contains(t, got, "📉 Worst: 0005 -3.2%")
	assert.Contains(t, got, "🏆 Winners:\n• 0700: +12.3% (+1.50% today)")
	assert.Contains(t, got, "📉 Losers:\n• 0005: -3.2% (-0.25% today)")
}

func TestCaptionNoHoldings(t *testing.T) {
	got := Caption(nil, time.Date(2024, 8, 23, 14, 30, 0, 0, time.UTC))
	assert.Contains(t, got, "No current holdings.")
}

func TestCaptionOmitsDailyWhenUnknown(t *testing.T) {
	stocks := []perf.Stock{{Code: "0700", CurrentReturn: 5}}
	got := Caption(stocks, time.Now())
	assert.Contains(t, got, "• 0700: +5.0%\n")
	assert.NotContains(t, got, "today")
}

func TestSeriesColorCycles(t *testing.T) {
	first := seriesColor(0)
	assert.Equal(t, first, seriesColor(len(paletteHex)))
	assert.NotEqual(t, first, seriesColor(1))
	assert.EqualValues(t, 255, first.A)
}

func TestRenderChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), ChartFilename)
	require.NoError(t, RenderChart(sampleStocks(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRenderChartNoSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), ChartFilename)
	err := RenderChart(nil, path)
	assert.ErrorIs(t, err, ErrNoSeries)

	// A single-point series cannot be drawn either.
	err = RenderChart([]perf.Stock{{
		Code:    "0700",
		Dates:   []time.Time{time.Now()},
		Returns: []float64{0},
	}}, path)
	assert.ErrorIs(t, err, ErrNoSeries)
}
