package report

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gopkg.in/go-playground/colors.v1"

	"github.com/hkfolio/hkfolio/internal/perf"
)

// Filename of the rendered chart inside the output directory.
const ChartFilename = "portfolio.png"

var ErrNoSeries = errors.New("no series to chart")

// Qualitative palette cycled across stock series.
var paletteHex = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA",
	"#FFA15A", "#19D3F3", "#FF6692",
}

// Dark theme colors.
var (
	colorBackground = drawing.Color{R: 17, G: 17, B: 17, A: 255}
	colorText       = drawing.Color{R: 220, G: 220, B: 220, A: 255}
	colorGrid       = drawing.Color{R: 60, G: 60, B: 60, A: 255}
	colorBaseline   = drawing.Color{R: 128, G: 128, B: 128, A: 255}
)

// Renders the return series of all stocks as a dark-themed PNG line chart.
//
// Each stock gets one line in the palette color for its rank. A dashed gray
// line marks the 0% baseline. Stocks without at least two points cannot be
// drawn as a line and are skipped.
func RenderChart(stocks []perf.Stock, path string) error {
	var series []chart.Series
	for i, s := range stocks {
		if len(s.Dates) < 2 {
			continue
		}
		series = append(series, chart.TimeSeries{
			Name:    s.Code,
			XValues: s.Dates,
			YValues: s.Returns,
			Style: chart.Style{
				StrokeColor: seriesColor(i),
				StrokeWidth: 2.0,
			},
		})
	}
	if len(series) == 0 {
		return ErrNoSeries
	}

	if baseline, ok := zeroBaseline(stocks); ok {
		series = append(series, baseline)
	}

	graph := chart.Chart{
		Width:      1200,
		Height:     700,
		Title:      "Portfolio Performance",
		TitleStyle: chart.Style{FontColor: colorText},
		Background: chart.Style{FillColor: colorBackground},
		Canvas:     chart.Style{FillColor: colorBackground},
		XAxis: chart.XAxis{
			Style:          chart.Style{FontColor: colorText, StrokeColor: colorGrid},
			GridMajorStyle: chart.Style{StrokeColor: colorGrid, StrokeWidth: 1.0},
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		YAxis: chart.YAxis{
			Style:          chart.Style{FontColor: colorText, StrokeColor: colorGrid},
			GridMajorStyle: chart.Style{StrokeColor: colorGrid, StrokeWidth: 1.0},
			ValueFormatter: percentFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendThin(&graph, chart.Style{
		FontColor: colorText,
		FillColor: colorBackground,
	})}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating chart file")
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return errors.Wrap(err, "rendering chart")
	}
	return nil
}

// Builds the dashed 0% baseline spanning the full date range of all stocks.
func zeroBaseline(stocks []perf.Stock) (chart.Series, bool) {
	var min, max time.Time
	for _, s := range stocks {
		if len(s.Dates) == 0 {
			continue
		}
		if min.IsZero() || s.Dates[0].Before(min) {
			min = s.Dates[0]
		}
		if last := s.Dates[len(s.Dates)-1]; last.After(max) {
			max = last
		}
	}
	if min.IsZero() || !max.After(min) {
		return nil, false
	}

	return chart.TimeSeries{
		XValues: []time.Time{min, max},
		YValues: []float64{0, 0},
		Style: chart.Style{
			StrokeColor:     colorBaseline,
			StrokeWidth:     1.0,
			StrokeDashArray: []float64{5.0, 5.0},
		},
	}, true
}

// Returns the palette color for a series index, cycling when there are more
// stocks than palette entries.
func seriesColor(i int) drawing.Color {
	hex, err := colors.ParseHEX(paletteHex[i%len(paletteHex)])
	if err != nil {
		return colorText
	}
	rgb := hex.ToRGB()
	return drawing.Color{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// Formats Y axis ticks as whole percentages.
func percentFormatter(v any) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f%%", f)
	}
	return ""
}
