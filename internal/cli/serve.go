package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/hkfolio/hkfolio/internal/analysis"
	"github.com/hkfolio/hkfolio/internal/server"
)

// Represents the 'hkfolio serve' command.
type ServeCmd struct {
	Interval  time.Duration `help:"Time between scheduled analysis runs." default:"24h"`
	Portfolio string        `help:"Path to the portfolio CSV." default:"${defaultPortfolio}" placeholder:"PATH"`
	Sheet     string        `help:"Google Sheets document ID holding daily closes." default:"${defaultSheet}" placeholder:"ID"`
	Output    string        `short:"o" help:"Directory for rendered charts." default:"${defaultOutput}" placeholder:"DIR"`
	Token     string        `env:"TELEGRAM_BOT_TOKEN" help:"Telegram bot token."`
	ChatID    string        `env:"TELEGRAM_CHAT_ID" name:"chat-id" help:"Telegram chat ID."`
}

// Executes the serve command.
//
// Starts the daemon on a Unix domain socket and blocks until the context is
// cancelled (e.g. via SIGINT or SIGTERM) or a shutdown command arrives on
// the socket.
func (c *ServeCmd) Run(ctx context.Context) error {
	if c.Token == "" || c.ChatID == "" {
		return ErrNoCredentials
	}

	srv := server.New(server.Config{
		SocketPath: RootCmd.Socket,
		Interval:   c.Interval,
		Analysis: analysis.Options{
			PortfolioPath: c.Portfolio,
			SheetID:       c.Sheet,
			OutputDir:     c.Output,
			Token:         c.Token,
			ChatID:        c.ChatID,
		},
	})

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("hkfolio daemon is running")

	stopped := make(chan struct{})
	go func() {
		srv.Wait()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		return srv.Stop()
	case <-stopped:
		return nil
	}
}
