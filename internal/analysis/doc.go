// Package analysis wires the portfolio, prices, perf, report, and telegram
// packages into the end-to-end pipeline behind the analyze command and the
// daemon's scheduled runs.
package analysis
