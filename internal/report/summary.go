package report

import (
	"fmt"
	"strings"

	"github.com/wonny/pfopt/internal/advisor"
	"github.com/wonny/pfopt/internal/contracts"
)

// Summary executive summary of a recommendation
func Summary(rec *advisor.Recommendation) string {
	var b strings.Builder

	name := rec.Profile.Name
	if name == "" {
		name = "Investor"
	}

	fmt.Fprintf(&b, "Portfolio Recommendation for %s\n", name)
	fmt.Fprintf(&b, "Run %s (%s)\n\n", rec.RunID, rec.CreatedAt.Format("2006-01-02 15:04 MST"))

	fmt.Fprintf(&b, "Profile:    %s, %s, %d-year horizon\n", rec.RiskLabel, rec.Profile.Goal, rec.HorizonYears)
	fmt.Fprintf(&b, "Market:     %s, risk-free %.2f%%, ERP %.2f%%, CRP %.2f%%\n",
		rec.Market.Country, rec.Market.RiskFreeRate*100, rec.Market.ERP*100, rec.Market.CRP*100)
	fmt.Fprintf(&b, "Data:       %d observations (%s to %s), %s\n",
		rec.Observations, rec.StartDate.Format("2006-01-02"), rec.EndDate.Format("2006-01-02"), rec.Frequency)
	fmt.Fprintf(&b, "Simulation: %d portfolios, seed %d\n\n", rec.Portfolios, rec.Seed)

	fmt.Fprintf(&b, "Selection: %s\n", rec.Label)
	fmt.Fprintf(&b, "  Expected return  %7.2f%%\n", rec.Chosen.Return*100)
	fmt.Fprintf(&b, "  Volatility       %7.2f%%\n", rec.Chosen.Volatility*100)
	fmt.Fprintf(&b, "  Sharpe ratio     %7.3f\n\n", rec.Chosen.Sharpe)

	if rec.Risk.Observations > 0 {
		fmt.Fprintf(&b, "Tail risk (per %s period, %d observations):\n", periodName(rec), rec.Risk.Observations)
		fmt.Fprintf(&b, "  VaR 95%%          %7.2f%%   CVaR 95%% %7.2f%%\n",
			rec.Risk.Historical95.VaR*100, rec.Risk.Historical95.CVaR*100)
		fmt.Fprintf(&b, "  VaR 99%%          %7.2f%%   CVaR 99%% %7.2f%%\n",
			rec.Risk.Historical99.VaR*100, rec.Risk.Historical99.CVaR*100)
		fmt.Fprintf(&b, "  Max drawdown     %7.2f%%\n\n", rec.Risk.MaxDrawdown*100)
	}

	b.WriteString("Allocation:\n")
	for _, a := range sortedAllocation(rec) {
		fmt.Fprintf(&b, "  %-10s %6.2f%%\n", a.Ticker, a.Weight*100)
	}

	if rec.Notes != "" {
		b.WriteString("\n")
		b.WriteString(rec.Notes)
		b.WriteString("\n")
	}
	return b.String()
}

func periodName(rec *advisor.Recommendation) string {
	switch rec.Frequency {
	case contracts.FrequencyWeekly:
		return "weekly"
	case contracts.FrequencyMonthly:
		return "monthly"
	default:
		return "daily"
	}
}
