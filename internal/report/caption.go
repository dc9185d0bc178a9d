package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/hkfolio/hkfolio/internal/perf"
)

// Builds the Telegram caption accompanying the chart.
//
// Stocks are expected in best-to-worst order. The caption carries a
// timestamp header, the best and worst performer, and a winners/losers
// breakdown of all holdings.
func Caption(stocks []perf.Stock, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 Portfolio Update %s\n", now.Format("2006-01-02 15:04"))

	if len(stocks) == 0 {
		b.WriteString("No current holdings.")
		return b.String()
	}

	best := stocks[0]
	worst := stocks[len(stocks)-1]
	fmt.Fprintf(&b, "🏆 Best: %s %+.1f%%\n", best.Code, best.CurrentReturn)
	fmt.Fprintf(&b, "📉 Worst: %s %+.1f%%\n", worst.Code, worst.CurrentReturn)

	var winners, losers []perf.Stock
	for _, s := range stocks {
		if s.CurrentReturn >= 0 {
			winners = append(winners, s)
		} else {
			losers = append(losers, s)
		}
	}

	if len(winners) > 0 {
		b.WriteString("\n🏆 Winners:\n")
		writeLines(&b, winners)
	}
	if len(losers) > 0 {
		b.WriteString("\n📉 Losers:\n")
		writeLines(&b, losers)
	}

	return b.String()
}

// Writes one bullet line per stock, with the daily move when available.
func writeLines(b *strings.Builder, stocks []perf.Stock) {
	for _, s := range stocks {
		fmt.Fprintf(b, "• %s: %+.1f%%", s.Code, s.CurrentReturn)
		if s.HasDailyDelta {
			fmt.Fprintf(b, " (%+.2f%% today)", s.DailyDelta)
		}
		b.WriteString("\n")
	}
}
