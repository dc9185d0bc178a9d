package portfolio

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

// Transaction direction.
type Kind string

const (
	Buy  Kind = "Buy"
	Sell Kind = "Sell"
)

// Investment category marker for rows that belong to the Hong Kong portfolio.
const hkCategory = "HK Stock"

// A single buy or sell of a stock.
type Transaction struct {
	Date  time.Time
	Kind  Kind
	Units float64
	Price float64 // Transacted price per unit, in HKD.
}

// A held stock with its transaction history, oldest first.
type Position struct {
	Code         string // 4-digit HKEX stock code.
	Transactions []Transaction
}

// Net units currently held, buys minus sells.
func (p Position) NetUnits() float64 {
	var net float64
	for _, tx := range p.Transactions {
		switch tx.Kind {
		case Buy:
			net += tx.Units
		case Sell:
			net -= tx.Units
		}
	}
	return net
}

// Raw CSV row as exported by the portfolio tracker.
type row struct {
	Date     string `csv:"Date"`
	Category string `csv:"Investment Category"`
	Stock    string `csv:"Stock"`
	Type     string `csv:"Type"`
	Units    string `csv:"Transacted Units"`
	Price    string `csv:"Transacted Price (per unit)"`
}

// Reads portfolio transactions from a CSV file and returns the currently
// held Hong Kong stock positions.
//
// Rows are kept when their category contains "HK Stock", the stock code is
// exactly 4 digits, the date parses, and the transaction is a buy or sell of
// a positive number of units. Positions with zero or negative net units are
// dropped. Results are sorted by stock code, transactions by date.
func Load(path string) ([]Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening portfolio file")
	}
	defer f.Close()

	var rows []*row
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, errors.Wrap(err, "parsing portfolio CSV")
	}

	return collect(rows), nil
}

// Groups valid rows into positions and filters out closed positions.
func collect(rows []*row) []Position {
	byCode := make(map[string][]Transaction)

	for _, r := range rows {
		tx, code, ok := parseRow(r)
		if !ok {
			continue
		}
		byCode[code] = append(byCode[code], tx)
	}

	positions := make([]Position, 0, len(byCode))
	for code, txs := range byCode {
		p := Position{Code: code, Transactions: txs}
		if p.NetUnits() <= 0 {
			continue
		}
		sort.Slice(p.Transactions, func(i, j int) bool {
			return p.Transactions[i].Date.Before(p.Transactions[j].Date)
		})
		positions = append(positions, p)
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Code < positions[j].Code
	})
	return positions
}

// Validates a raw row and converts it to a transaction.
//
// Returns false when the row does not belong to the Hong Kong portfolio or
// does not describe a positive-unit buy or sell.
func parseRow(r *row) (Transaction, string, bool) {
	if !strings.Contains(r.Category, hkCategory) {
		return Transaction{}, "", false
	}

	code := strings.TrimSpace(r.Stock)
	if !isStockCode(code) {
		return Transaction{}, "", false
	}

	date, err := ParseDate(r.Date)
	if err != nil {
		return Transaction{}, "", false
	}

	kind := Kind(strings.TrimSpace(r.Type))
	if kind != Buy && kind != Sell {
		return Transaction{}, "", false
	}

	units := CleanCurrency(r.Units)
	if units <= 0 {
		return Transaction{}, "", false
	}

	return Transaction{
		Date:  date,
		Kind:  kind,
		Units: units,
		Price: CleanCurrency(r.Price),
	}, code, true
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

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
}

// Parses a transaction date in any of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("unrecognized date %q", s)
}

// Parses a currency or numeric cell, tolerating common formatting.
//
// Dollar signs, thousands separators, and the "HK" currency marker are
// stripped before parsing. Values that still do not parse become 0 so a
// single malformed cell never aborts a load.
func CleanCurrency(s string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "", "HK", "").Replace(s)
	v, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return 0
	}
	return v
}
