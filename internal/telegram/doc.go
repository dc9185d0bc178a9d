// Package telegram is a thin delivery client over the Telegram Bot API,
// used to post the rendered chart and failure notices to a single chat.
package telegram
