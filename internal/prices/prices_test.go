package prices

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSheet = `9988,Close,0388,Close
Date,Price,Date,Price
2024/01/02,72.5,2024/01/02,245.0
2024/01/03,73.1,2024/01/03,n/a
2024/01/04,,2024/01/04,250.2
not-a-date,99.9,x,99.9
2024/01/05,74.0,2024/01/05,252.8
`

func TestParse(t *testing.T) {
	table, err := Parse(strings.NewReader(sampleSheet))
	require.NoError(t, err)

	// The row with the bad date is dropped.
	require.Len(t, table.Dates, 4)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), table.Dates[0])
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), table.Dates[3])

	require.Contains(t, table.Closes, "9988")
	require.Contains(t, table.Closes, "0388")

	// Empty cell on 01/04 carries the previous close forward.
	assert.InDelta(t, 73.1, table.Closes["9988"][2], 1e-9)

	// The unparsable "n/a" carries forward too.
	assert.InDelta(t, 245.0, table.Closes["0388"][1], 1e-9)
	assert.InDelta(t, 250.2, table.Closes["0388"][2], 1e-9)
}

func TestParseLeadingGapStaysNaN(t *testing.T) {
	sheet := `9988,Close
Date,Price
2024/01/02,
2024/01/03,73.1
`
	table, err := Parse(strings.NewReader(sheet))
	require.NoError(t, err)

	require.Len(t, table.Closes["9988"], 2)
	assert.True(t, math.IsNaN(table.Closes["9988"][0]))
	assert.InDelta(t, 73.1, table.Closes["9988"][1], 1e-9)
}

func TestParseNoCodes(t *testing.T) {
	sheet := `Name,Close
Date,Price
2024/01/02,10
`
	_, err := Parse(strings.NewReader(sheet))
	assert.ErrorIs(t, err, ErrNoDates)
}

func TestParseTooShort(t *testing.T) {
	_, err := Parse(strings.NewReader("9988,Close\n"))
	assert.ErrorIs(t, err, ErrNoDates)
}

func TestSeries(t *testing.T) {
	table, err := Parse(strings.NewReader(`9988,Close
Date,Price
2024/01/02,
2024/01/03,73.1
2024/01/04,74.2
`))
	require.NoError(t, err)

	dates, closes, ok := table.Series("9988")
	require.True(t, ok)

	// The leading NaN row is dropped from the series view.
	require.Len(t, dates, 2)
	require.Len(t, closes, 2)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), dates[0])
	assert.InDelta(t, 73.1, closes[0], 1e-9)

	_, _, ok = table.Series("0000")
	assert.False(t, ok)
}

func TestFindCodeColumns(t *testing.T) {
	codes, dateCol := findCodeColumns([]string{"9988", "Close", "0388", "Close", "2700"})
	assert.Equal(t, 0, dateCol)

	// "2700" sits in the last column with no adjacent close column.
	assert.Equal(t, map[string]int{"9988": 1, "0388": 3}, codes)
}
