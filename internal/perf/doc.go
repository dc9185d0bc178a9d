// Package perf turns transaction histories and daily close prices into
// per-stock return series and summary figures.
//
// The cost basis is a weighted average: buys add cost, sells remove cost
// proportionally at the prevailing per-unit cost, so selling never changes
// the average cost of what remains.
package perf
