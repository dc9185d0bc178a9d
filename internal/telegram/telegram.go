package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

const (
	// Delivery attempts before giving up.
	sendAttempts = 3

	// Pause between delivery attempts.
	retryDelay = 5 * time.Second
)

var (
	ErrNoCredentials = errors.New("telegram credentials missing")
	ErrSend          = errors.New("telegram send failed")
)

// Client delivers charts and messages to a single Telegram chat.
type Client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// Creates a client for the given bot token and chat ID.
//
// Both values are required and normally come from the TELEGRAM_BOT_TOKEN and
// TELEGRAM_CHAT_ID environment variables. Construction verifies the token
// against the Telegram API.
func New(token, chatID string) (*Client, error) {
	if token == "" || chatID == "" {
		return nil, ErrNoCredentials
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(ErrNoCredentials, "chat ID %q is not numeric", chatID)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "authorizing bot")
	}

	slog.Debug("telegram bot authorized", "username", bot.Self.UserName)
	return &Client{bot: bot, chatID: id}, nil
}

// Sends a photo from the local filesystem with a caption.
//
// Delivery is retried with a fixed pause between attempts; the last error is
// returned when all attempts fail.
func (c *Client) SendPhoto(ctx context.Context, path, caption string) error {
	return c.withRetries(ctx, "photo", func() error {
		photo := tgbotapi.NewPhoto(c.chatID, tgbotapi.FilePath(path))
		photo.Caption = caption
		_, err := c.bot.Send(photo)
		return err
	})
}

// Sends a plain text message, retried like photos.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	return c.withRetries(ctx, "message", func() error {
		_, err := c.bot.Send(tgbotapi.NewMessage(c.chatID, text))
		return err
	})
}

// Runs send until it succeeds or the attempts are exhausted.
func (c *Client) withRetries(ctx context.Context, kind string, send func() error) error {
	var lastErr error

	for attempt := 1; attempt <= sendAttempts; attempt++ {
		if err := send(); err != nil {
			slog.Warn("telegram delivery attempt failed",
				"kind", kind, "attempt", attempt, "error", err)
			lastErr = err

			if attempt < sendAttempts {
				select {
				case <-time.After(retryDelay):
				case <-ctx.Done():
					return errors.Wrapf(ErrSend, "%v", ctx.Err())
				}
			}
			continue
		}

		slog.Info("telegram delivery succeeded", "kind", kind, "attempt", attempt)
		return nil
	}

	return errors.Wrapf(ErrSend, "%d attempts: %v", sendAttempts, lastErr)
}
