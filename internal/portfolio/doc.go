// Package portfolio loads stock transactions from the portfolio tracker's
// CSV export and reduces them to currently held Hong Kong positions.
package portfolio
