package prices

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

const (
	// Per-request timeout for sheet downloads.
	fetchTimeout = 30 * time.Second

	// Retries per URL before falling back to the next format.
	fetchRetries = 3

	// Google blocks default library user agents on some export endpoints.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// Date layout used in the sheet's date column.
	dateLayout = "2006/01/02"
)

var (
	ErrFetch   = errors.New("price fetch failed")
	ErrNoDates = errors.New("no usable date column in sheet")
)

// Published CSV export URL formats, tried in order. Publicly shared sheets
// do not serve all formats consistently, so each is attempted in turn.
var urlFormats = []string{
	"https://docs.google.com/spreadsheets/d/%s/export?format=csv&gid=0",
	"https://docs.google.com/spreadsheets/d/%s/export?format=csv",
	"https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv",
}

// Daily close prices for a set of stocks over a shared date axis.
//
// Closes are aligned with Dates. Leading entries with no recorded price are
// NaN; use [Table.Series] to get a per-stock view with those rows removed.
type Table struct {
	Dates  []time.Time
	Closes map[string][]float64
}

// Returns the date and close series for a stock with NaN rows removed.
//
// Reports false when the table has no column for the code.
func (t *Table) Series(code string) ([]time.Time, []float64, bool) {
	closes, ok := t.Closes[code]
	if !ok {
		return nil, nil, false
	}

	dates := make([]time.Time, 0, len(t.Dates))
	values := make([]float64, 0, len(closes))
	for i, v := range closes {
		if math.IsNaN(v) {
			continue
		}
		dates = append(dates, t.Dates[i])
		values = append(values, v)
	}
	return dates, values, true
}

// Downloads and parses the price sheet for the given spreadsheet ID.
//
// Each export URL format is tried in order with per-request retries. The
// first response that downloads and parses successfully wins.
func Fetch(ctx context.Context, sheetID string) (*Table, error) {
	client := newClient()

	var lastErr error
	for i, format := range urlFormats {
		url := fmt.Sprintf(format, sheetID)
		slog.Debug("fetching price sheet", "attempt", i+1, "url", url)

		table, err := fetchURL(ctx, client, url)
		if err != nil {
			slog.Warn("price sheet fetch attempt failed", "attempt", i+1, "error", err)
			lastErr = err
			continue
		}

		slog.Info("price sheet loaded", "rows", len(table.Dates), "stocks", len(table.Closes))
		return table, nil
	}

	return nil, errors.Wrapf(ErrFetch, "all %d url formats failed, last: %v", len(urlFormats), lastErr)
}

// Builds the retrying HTTP client used for sheet downloads.
func newClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = fetchRetries
	client.HTTPClient.Timeout = fetchTimeout
	client.Logger = nil
	return client
}

// Downloads one URL and parses the body as a price sheet.
func fetchURL(ctx context.Context, client *retryablehttp.Client, url string) (*Table, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "downloading sheet")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %s", resp.Status)
	}

	return Parse(resp.Body)
}

// Parses a price sheet CSV into a [Table].
//
// The sheet layout puts 4-digit stock codes in the header row; the column
// under each code's right-hand neighbor holds that stock's daily closes.
// Dates live under the first code's own column. The row directly below the
// header repeats per-column labels and is skipped. Unparsable prices are
// carried forward from the previous row; rows with unparsable dates are
// dropped.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading sheet CSV")
	}
	if len(records) < 3 {
		return nil, errors.Wrap(ErrNoDates, "sheet too short")
	}

	header := records[0]
	codes, dateCol := findCodeColumns(header)
	if dateCol < 0 {
		return nil, ErrNoDates
	}

	// Skip the header and the label row beneath it.
	rows := records[2:]

	raw := make(map[string][]float64, len(codes))
	for code, col := range codes {
		raw[code] = readCloses(rows, col)
	}

	return alignDates(rows, dateCol, raw)
}

// Locates 4-digit stock code columns in the header.
//
// Returns a map of code to the adjacent close column index, and the column
// index of the first code, whose own column carries the dates. Codes in the
// last column have no adjacent close column and are ignored.
func findCodeColumns(header []string) (map[string]int, int) {
	codes := make(map[string]int)
	dateCol := -1

	for i, cell := range header {
		if !isStockCode(cell) {
			continue
		}
		if dateCol < 0 {
			dateCol = i
		}
		if i+1 < len(header) {
			codes[cell] = i + 1
		}
	}

	return codes, dateCol
}

// Reads one close column, forward-filling unparsable cells.
//
// Cells before the first valid price stay NaN.
func readCloses(rows [][]string, col int) []float64 {
	closes := make([]float64, len(rows))
	last := math.NaN()

	for i, row := range rows {
		v := math.NaN()
		if col < len(row) {
			if parsed, err := parsePrice(row[col]); err == nil {
				v = parsed
			}
		}
		if math.IsNaN(v) {
			v = last
		}
		closes[i] = v
		last = v
	}

	return closes
}

// Filters out rows whose date cell does not parse and builds the final table.
func alignDates(rows [][]string, dateCol int, raw map[string][]float64) (*Table, error) {
	table := &Table{Closes: make(map[string][]float64, len(raw))}

	for i, row := range rows {
		if dateCol >= len(row) {
			continue
		}
		date, err := time.Parse(dateLayout, row[dateCol])
		if err != nil {
			continue
		}

		table.Dates = append(table.Dates, date)
		for code, closes := range raw {
			table.Closes[code] = append(table.Closes[code], closes[i])
		}
	}

	if len(table.Dates) == 0 {
		return nil, ErrNoDates
	}
	return table, nil
}

// Parses a close price cell, tolerating thousands separators.
func parsePrice(s string) (float64, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	return strconv.ParseFloat(cleaned, 64)
}

// Reports whether s is exactly 4 ASCII digits.
func isStockCode(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
