// Package prices downloads daily close prices from a published Google
// Sheets spreadsheet and exposes them as an aligned date/price table.
package prices
