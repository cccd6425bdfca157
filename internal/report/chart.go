package report

import (
	"fmt"

	"github.com/vicanso/go-charts/v2"

	"github.com/wonny/pfopt/internal/advisor"
)

// Chart size in pixels
const (
	ChartWidth  = 800
	ChartHeight = 600
)

// AllocationChart PNG pie of the chosen weights
func AllocationChart(rec *advisor.Recommendation) ([]byte, error) {
	alloc := sortedAllocation(rec)
	if len(alloc) == 0 {
		return nil, fmt.Errorf("no allocation to chart")
	}

	values := make([]float64, len(alloc))
	labels := make([]string, len(alloc))
	for i, a := range alloc {
		values[i] = a.Weight
		labels[i] = fmt.Sprintf("%s (%.1f%%)", a.Ticker, a.Weight*100)
	}

	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc("Recommended Allocation", rec.Label),
		charts.LegendOptionFunc(charts.LegendOption{
			Data: labels,
			Top:  charts.PositionBottom,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(ChartWidth),
		charts.HeightOptionFunc(ChartHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}
