// Package ingest loads per-ticker price files (CSV or XLSX) and aligns them
// into a PriceMatrix on their common dates.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/pfopt/internal/contracts"
)

var (
	// ErrMissingColumn no recognised price or date column
	ErrMissingColumn = errors.New("missing column")

	// ErrNoOverlap aligned series share no dates
	ErrNoOverlap = errors.New("no overlapping dates")

	// ErrUnsupportedFormat file extension is neither .csv nor .xlsx
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptySeries no usable rows after parsing
	ErrEmptySeries = errors.New("no usable price rows")
)

// Series one ticker's price history, ascending by date
type Series struct {
	Ticker string
	Dates  []time.Time
	Prices []float64
}

// Len returns the number of observations
func (s Series) Len() int {
	return len(s.Dates)
}

// price column candidates in preference order (normalised header)
var priceColumns = []string{"adjclose", "close", "price"}

// accepted date layouts: ISO first, then day-first
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// TickerFromFilename "RELIANCE_prices.csv" → "RELIANCE"
func TickerFromFilename(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if strings.HasSuffix(strings.ToLower(base), "_prices") {
		return base[:len(base)-len("_prices")]
	}
	return base
}

// LoadFile dispatches on the file extension
func LoadFile(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(f, path)
	case ".xlsx", ".xlsm":
		return LoadXLSX(f, path)
	default:
		return Series{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadFiles loads every path; per-file errors are joined and returned
// together with the series that did load.
func LoadFiles(paths []string) ([]Series, error) {
	series := make([]Series, 0, len(paths))
	var errs []error

	for _, p := range paths {
		s, err := LoadFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		series = append(series, s)
	}

	return series, errors.Join(errs...)
}

// LoadCSV parses a CSV price file; filename supplies the ticker
func LoadCSV(r io.Reader, filename string) (Series, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return Series{}, fmt.Errorf("read csv %s: %w", filename, err)
	}
	return parseRows(rows, filename)
}

// LoadXLSX parses the first sheet of a workbook; filename supplies the ticker
func LoadXLSX(r io.Reader, filename string) (Series, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Series{}, fmt.Errorf("open workbook %s: %w", filename, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Series{}, fmt.Errorf("%w: %s has no sheets", ErrEmptySeries, filename)
	}

	// raw values: 날짜 셀은 시리얼 번호로 읽힘
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return Series{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return parseRows(rows, filename)
}

func parseRows(rows [][]string, filename string) (Series, error) {
	if len(rows) == 0 {
		return Series{}, fmt.Errorf("%w: %s is empty", ErrEmptySeries, filename)
	}

	dateIdx, priceIdx := findColumns(rows[0])
	if dateIdx < 0 {
		return Series{}, fmt.Errorf("%w: %s has no Date column", ErrMissingColumn, filename)
	}
	if priceIdx < 0 {
		return Series{}, fmt.Errorf("%w: %s has no Adj Close, Close or Price column", ErrMissingColumn, filename)
	}

	type obs struct {
		date  time.Time
		price float64
	}
	points := make([]obs, 0, len(rows)-1)

	for _, row := range rows[1:] {
		if dateIdx >= len(row) || priceIdx >= len(row) {
			continue
		}
		d, ok := parseDate(row[dateIdx])
		if !ok {
			continue
		}
		p, ok := parsePrice(row[priceIdx])
		if !ok {
			continue
		}
		points = append(points, obs{date: d, price: p})
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].date.Before(points[j].date) })

	s := Series{Ticker: TickerFromFilename(filename)}
	for _, pt := range points {
		// 중복 날짜 → 마지막 값 유지
		if n := len(s.Dates); n > 0 && s.Dates[n-1].Equal(pt.date) {
			s.Prices[n-1] = pt.price
			continue
		}
		s.Dates = append(s.Dates, pt.date)
		s.Prices = append(s.Prices, pt.price)
	}

	if s.Len() == 0 {
		return Series{}, fmt.Errorf("%w: %s", ErrEmptySeries, filename)
	}
	return s, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.NewReplacer(" ", "", "_", "", "*", "", ".", "").Replace(h)
}

func findColumns(header []string) (dateIdx, priceIdx int) {
	dateIdx, priceIdx = -1, -1

	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeHeader(h)
		if normalized[i] == "date" && dateIdx < 0 {
			dateIdx = i
		}
	}

	for _, candidate := range priceColumns {
		for i, h := range normalized {
			if h == candidate {
				return dateIdx, i
			}
		}
	}
	return dateIdx, -1
}

func parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(24 * time.Hour), true
		}
	}

	// Excel 날짜 시리얼 (1900 기준)
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 && serial < 2958466 {
		// 시간 부분 제거 후 변환 (부동소수 오차로 전날이 되는 것 방지)
		if t, err := excelize.ExcelDateToTime(math.Floor(serial+1e-6), false); err == nil {
			return t.UTC().Truncate(24 * time.Hour), true
		}
	}
	return time.Time{}, false
}

func parsePrice(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	// ParseFloat는 "NaN", "Inf"도 허용 → 양의 유한값만
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

// Align inner-joins the series on their common dates.
// Column order follows the argument order.
func Align(series ...Series) (contracts.PriceMatrix, error) {
	if len(series) == 0 {
		return contracts.PriceMatrix{}, fmt.Errorf("%w: no series to align", contracts.ErrInvalidParameter)
	}

	seen := make(map[string]bool, len(series))
	lookups := make([]map[int64]float64, len(series))
	for i, s := range series {
		if seen[s.Ticker] {
			return contracts.PriceMatrix{}, fmt.Errorf("%w: duplicate ticker %s", contracts.ErrInvalidParameter, s.Ticker)
		}
		seen[s.Ticker] = true

		m := make(map[int64]float64, s.Len())
		for j, d := range s.Dates {
			m[d.Unix()] = s.Prices[j]
		}
		lookups[i] = m
	}

	pm := contracts.PriceMatrix{Tickers: make([]string, len(series))}
	for i, s := range series {
		pm.Tickers[i] = s.Ticker
	}

	for j, d := range series[0].Dates {
		row := make([]float64, len(series))
		row[0] = series[0].Prices[j]

		complete := true
		for i := 1; i < len(series); i++ {
			v, ok := lookups[i][d.Unix()]
			if !ok {
				complete = false
				break
			}
			row[i] = v
		}
		if complete {
			pm.Dates = append(pm.Dates, d)
			pm.Rows = append(pm.Rows, row)
		}
	}

	if pm.Len() == 0 {
		return contracts.PriceMatrix{}, fmt.Errorf("%w: %d series", ErrNoOverlap, len(series))
	}
	return pm, nil
}
