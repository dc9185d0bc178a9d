package cli

import (
	"context"
	"log/slog"

	"github.com/hkfolio/hkfolio/internal/analysis"
)

// Represents the 'hkfolio analyze' command.
type AnalyzeCmd struct {
	Portfolio string `help:"Path to the portfolio CSV." default:"${defaultPortfolio}" placeholder:"PATH"`
	Sheet     string `help:"Google Sheets document ID holding daily closes." default:"${defaultSheet}" placeholder:"ID"`
	Output    string `short:"o" help:"Directory for the rendered chart." default:"${defaultOutput}" placeholder:"DIR"`
	Token     string `env:"TELEGRAM_BOT_TOKEN" help:"Telegram bot token."`
	ChatID    string `env:"TELEGRAM_CHAT_ID" name:"chat-id" help:"Telegram chat ID."`
}

// Executes the analyze command.
//
// Runs the full pipeline on the host: load transactions, fetch prices,
// compute performance, render the chart, and deliver it to Telegram.
func (c *AnalyzeCmd) Run(ctx context.Context) error {
	result, err := analysis.Run(ctx, analysis.Options{
		PortfolioPath: c.Portfolio,
		SheetID:       c.Sheet,
		OutputDir:     c.Output,
		Token:         c.Token,
		ChatID:        c.ChatID,
	})
	if err != nil {
		return err
	}

	slog.Info("analysis complete", "chart", result.Chart, "stocks", result.Stocks)
	return nil
}
