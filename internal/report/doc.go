// Package report renders computed performance into deliverables: a PNG
// line chart for the output directory and a text caption for Telegram.
package report
