package advisor

import (
	"fmt"

	"github.com/wonny/pfopt/internal/contracts"
)

var riskPhrases = map[contracts.RiskTier]string{
	contracts.RiskLow:      "You prefer a cautious approach",
	contracts.RiskModerate: "You are comfortable with a balanced risk profile",
	contracts.RiskHigh:     "You embrace an aggressive risk stance",
}

var goalPhrases = map[contracts.GoalTier]string{
	contracts.GoalCapitalPreservation: "focus on safeguarding your capital",
	contracts.GoalLongTermGrowth:      "seek sustained growth over time",
	contracts.GoalBalanced:            "aim for a blend of growth and stability",
	contracts.GoalHighRiskHighReturn:  "are targeting high returns despite volatility",
}

var horizonPhrases = map[string]string{
	contracts.Horizon1Y:  "over a short 1-year horizon",
	contracts.Horizon3Y:  "over the next 3 years",
	contracts.Horizon5Y:  "over the next 5 years",
	contracts.Horizon10Y: "over a long-term horizon exceeding 10 years",
}

// Notes personalised narrative for the profile.
// Unknown tiers fall back to Moderate / Balanced / 1Y phrasing.
func Notes(p Profile) string {
	risk, ok := riskPhrases[p.RiskTolerance]
	if !ok {
		risk = riskPhrases[contracts.RiskModerate]
	}
	goal, ok := goalPhrases[p.Goal]
	if !ok {
		goal = goalPhrases[contracts.GoalBalanced]
	}
	horizon, ok := horizonPhrases[p.Horizon]
	if !ok {
		horizon = horizonPhrases[contracts.Horizon1Y]
	}

	return fmt.Sprintf("%s and %s, %s. The recommended portfolio is designed to honor these "+
		"preferences by selecting assets that align with the desired risk-return balance.",
		risk, goal, horizon)
}
