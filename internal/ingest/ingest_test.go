package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/pfopt/internal/contracts"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTickerFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"RELIANCE_prices.csv", "RELIANCE"},
		{"/tmp/uploads/TCS_PRICES.xlsx", "TCS"},
		{"INFY.csv", "INFY"},
		{"HDFC_BANK_prices.csv", "HDFC_BANK"},
		{"noext", "noext"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TickerFromFilename(tt.name))
		})
	}
}

func TestLoadCSV(t *testing.T) {
	data := `Date, Open, Close, Adj Close
2024-01-03,10,"1,010.5","1,000.5"
2024-01-02,10,990,980
not-a-date,1,1,1
2024-01-04,10,1020,abc
04-01-2024,10,1030,1025
`
	s, err := LoadCSV(strings.NewReader(data), "ACME_prices.csv")
	require.NoError(t, err)

	assert.Equal(t, "ACME", s.Ticker)
	// 2024-01-04 row with bad price is dropped, day-first 04-01-2024 is the same day and kept
	assert.Equal(t, []time.Time{day(2024, 1, 2), day(2024, 1, 3), day(2024, 1, 4)}, s.Dates)
	assert.Equal(t, []float64{980, 1000.5, 1025}, s.Prices)
}

func TestLoadCSV_DuplicateDatesKeepLast(t *testing.T) {
	data := "date,close\n2024-01-02,1\n2024-01-02,2\n2024-01-03,3\n"
	s, err := LoadCSV(strings.NewReader(data), "X.csv")
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 3}, s.Prices)
}

func TestLoadCSV_SkipsNonFinitePrices(t *testing.T) {
	data := "Date,Close\n2024-01-02,10\n2024-01-03,NaN\n2024-01-04,+Inf\n2024-01-05,0\n2024-01-08,11\n"
	s, err := LoadCSV(strings.NewReader(data), "X.csv")
	require.NoError(t, err)

	assert.Equal(t, []time.Time{day(2024, 1, 2), day(2024, 1, 8)}, s.Dates)
	assert.Equal(t, []float64{10, 11}, s.Prices)
}

func TestLoadCSV_PriceColumnFallbacks(t *testing.T) {
	tests := []struct {
		header string
	}{
		{"Date,Adj_Close"},
		{"DATE,adj close*"},
		{"Date,close"},
		{"Date,Price"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			s, err := LoadCSV(strings.NewReader(tt.header+"\n2024/01/02,5\n"), "T.csv")
			require.NoError(t, err)
			assert.Equal(t, []float64{5}, s.Prices)
		})
	}
}

func TestLoadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"no price column", "Date,Open\n2024-01-02,1\n", ErrMissingColumn},
		{"no date column", "Day,Close\n2024-01-02,1\n", ErrMissingColumn},
		{"empty", "", ErrEmptySeries},
		{"no usable rows", "Date,Close\nbad,1\n", ErrEmptySeries},
		{"non-finite prices", "Date,Close\n2024-01-02,NaN\n2024-01-03,Inf\n2024-01-04,-Inf\n", ErrEmptySeries},
		{"non-positive prices", "Date,Close\n2024-01-02,0\n2024-01-03,-12.5\n", ErrEmptySeries},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tt.data), "T.csv")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Date", "Close"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"2024-01-02", 100.0}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"03-01-2024", "1,101.25"}))
	require.NoError(t, f.SetCellValue(sheet, "A4", day(2024, 1, 4)))
	require.NoError(t, f.SetCellValue(sheet, "B4", 102.0))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	s, err := LoadXLSX(bytes.NewReader(buf.Bytes()), "WIDGET_prices.xlsx")
	require.NoError(t, err)

	assert.Equal(t, "WIDGET", s.Ticker)
	assert.Equal(t, []time.Time{day(2024, 1, 2), day(2024, 1, 3), day(2024, 1, 4)}, s.Dates)
	assert.Equal(t, []float64{100, 1101.25, 102}, s.Prices)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	a := write("A_prices.csv", "Date,Close\n2024-01-02,1\n2024-01-03,2\n")
	b := write("B_prices.csv", "Date,Close\n2024-01-02,3\n2024-01-03,4\n")
	bad := write("C.txt", "whatever")

	series, err := LoadFiles([]string{a, b, bad, filepath.Join(dir, "missing.csv")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	require.Len(t, series, 2)
	assert.Equal(t, "A", series[0].Ticker)
	assert.Equal(t, "B", series[1].Ticker)

	series, err = LoadFiles([]string{a, b})
	require.NoError(t, err)
	assert.Len(t, series, 2)
}

func TestAlign(t *testing.T) {
	a := Series{Ticker: "A", Dates: []time.Time{day(2024, 1, 1), day(2024, 1, 2), day(2024, 1, 3), day(2024, 1, 4)}, Prices: []float64{1, 2, 3, 4}}
	b := Series{Ticker: "B", Dates: []time.Time{day(2024, 1, 2), day(2024, 1, 3), day(2024, 1, 4)}, Prices: []float64{20, 30, 40}}
	c := Series{Ticker: "C", Dates: []time.Time{day(2024, 1, 1), day(2024, 1, 2), day(2024, 1, 4)}, Prices: []float64{100, 200, 400}}

	pm, err := Align(a, b, c)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, pm.Tickers)
	assert.Equal(t, []time.Time{day(2024, 1, 2), day(2024, 1, 4)}, pm.Dates)
	assert.Equal(t, [][]float64{{2, 20, 200}, {4, 40, 400}}, pm.Rows)
	assert.NoError(t, pm.Validate())
}

func TestAlign_Errors(t *testing.T) {
	a := Series{Ticker: "A", Dates: []time.Time{day(2024, 1, 1)}, Prices: []float64{1}}
	b := Series{Ticker: "B", Dates: []time.Time{day(2024, 2, 1)}, Prices: []float64{1}}

	_, err := Align(a, b)
	assert.ErrorIs(t, err, ErrNoOverlap)

	_, err = Align(a, a)
	assert.ErrorIs(t, err, contracts.ErrInvalidParameter)

	_, err = Align()
	assert.ErrorIs(t, err, contracts.ErrInvalidParameter)
}
