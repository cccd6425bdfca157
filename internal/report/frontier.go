package report

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/wonny/pfopt/internal/advisor"
	"github.com/wonny/pfopt/internal/contracts"
)

// FrontierChart PNG scatter of every horizon-scaled trial (x = volatility, y = return),
// dots colored by Sharpe on the viridis scale, chosen portfolio drawn on top
func FrontierChart(rec *advisor.Recommendation) ([]byte, error) {
	if len(rec.Scaled) == 0 {
		return nil, fmt.Errorf("%w: no simulated portfolios to chart", contracts.ErrInvalidParameter)
	}

	n := len(rec.Scaled)
	vols := make([]float64, n)
	rets := make([]float64, n)
	sharpes := make([]float64, n)
	for i, r := range rec.Scaled {
		vols[i] = r.Volatility
		rets[i] = r.Return
		sharpes[i] = r.Sharpe
	}

	lo, hi := sharpes[0], sharpes[0]
	for _, s := range sharpes[1:] {
		lo = min(lo, s)
		hi = max(hi, s)
	}
	if hi == lo {
		hi = lo + 1
	}

	// dot index == trial order of rec.Scaled
	bySharpe := func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
		return chart.Viridis(sharpes[index], lo, hi)
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Efficient Frontier (%dY, horizon-scaled)", rec.HorizonYears),
		Width:  ChartWidth,
		Height: ChartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Volatility",
			ValueFormatter: chart.PercentValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Return",
			ValueFormatter: chart.PercentValueFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "Simulated portfolios",
				Style: chart.Style{
					StrokeWidth:      chart.Disabled,
					DotWidth:         3,
					DotColorProvider: bySharpe,
				},
				XValues: vols,
				YValues: rets,
			},
			chart.ContinuousSeries{
				Name: "Chosen: " + rec.Label,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    9,
					DotColor:    drawing.ColorRed,
				},
				XValues: []float64{rec.Chosen.Volatility},
				YValues: []float64{rec.Chosen.Return},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render frontier chart: %w", err)
	}
	return buf.Bytes(), nil
}
