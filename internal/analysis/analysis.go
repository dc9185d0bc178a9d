package analysis

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/hkfolio/hkfolio/internal/paths"
	"github.com/hkfolio/hkfolio/internal/perf"
	"github.com/hkfolio/hkfolio/internal/portfolio"
	"github.com/hkfolio/hkfolio/internal/prices"
	"github.com/hkfolio/hkfolio/internal/report"
	"github.com/hkfolio/hkfolio/internal/telegram"
)

// Defaults matching the portfolio tracker's export conventions.
const (
	DefaultPortfolio = "profolio.csv"
	DefaultSheetID   = "1ZfEwBs4fo_py2qmTzAKj-eou8r4fNDoCvQdTUHpxDHs"
)

var (
	ErrNoHoldings = errors.New("no current holdings in portfolio")
	ErrNoResults  = errors.New("no stocks with usable price data")
)

// Inputs for one analysis run.
type Options struct {
	PortfolioPath string // Path to the portfolio CSV.
	SheetID       string // Google Sheets document ID for price history.
	OutputDir     string // Directory receiving the rendered chart.
	Token         string // Telegram bot token.
	ChatID        string // Telegram chat ID.
}

// Outcome of a completed run.
type Result struct {
	Chart  string // Path of the rendered chart.
	Stocks int    // Holdings included in the chart and caption.
}

// Runs the full analysis pipeline: load transactions, fetch prices, compute
// performance, render the chart, and deliver it to Telegram.
//
// Credentials are validated before any work happens so a misconfigured run
// fails fast instead of after the price fetch.
func Run(ctx context.Context, opts Options) (*Result, error) {
	client, err := telegram.New(opts.Token, opts.ChatID)
	if err != nil {
		return nil, err
	}

	positions, err := portfolio.Load(opts.PortfolioPath)
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, errors.Wrapf(ErrNoHoldings, "%s", opts.PortfolioPath)
	}
	slog.Info("portfolio loaded", "path", opts.PortfolioPath, "positions", len(positions))

	table, err := prices.Fetch(ctx, opts.SheetID)
	if err != nil {
		return nil, err
	}

	stocks, err := perf.Compute(ctx, positions, table)
	if err != nil {
		return nil, err
	}
	if len(stocks) == 0 {
		return nil, ErrNoResults
	}

	if err := os.MkdirAll(opts.OutputDir, paths.DefaultDirMode); err != nil {
		return nil, errors.Wrap(err, "creating output directory")
	}

	chartPath := filepath.Join(opts.OutputDir, report.ChartFilename)
	if err := report.RenderChart(stocks, chartPath); err != nil {
		return nil, err
	}
	slog.Info("chart rendered", "path", chartPath, "stocks", len(stocks))

	caption := report.Caption(stocks, time.Now())
	if err := client.SendPhoto(ctx, chartPath, caption); err != nil {
		return nil, err
	}

	return &Result{Chart: chartPath, Stocks: len(stocks)}, nil
}

// Posts a failure notice to the Telegram chat.
//
// Used by the daemon so a broken scheduled run is visible in the same chat
// that normally receives the chart. Delivery is best effort.
func Notify(ctx context.Context, token, chatID, message string) error {
	client, err := telegram.New(token, chatID)
	if err != nil {
		return err
	}
	return client.SendMessage(ctx, message)
}
