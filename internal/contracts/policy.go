package contracts

// RiskTier investor risk tolerance
type RiskTier string

const (
	RiskLow      RiskTier = "Low"
	RiskModerate RiskTier = "Moderate" // keeps every candidate, same as RiskHigh
	RiskHigh     RiskTier = "High"
)

// GoalTier investment goal
type GoalTier string

const (
	GoalCapitalPreservation GoalTier = "Capital Preservation"
	GoalLongTermGrowth      GoalTier = "Long-Term Growth"
	GoalBalanced            GoalTier = "Balanced"
	GoalHighRiskHighReturn  GoalTier = "High Risk-High Return"
)

// Horizon tier labels
const (
	Horizon1Y  = "1Y"
	Horizon3Y  = "3Y"
	Horizon5Y  = "5Y"
	Horizon10Y = "10+Y"
)

// SelectionPolicy risk/goal pair mapping to a selection rule
type SelectionPolicy struct {
	Risk RiskTier `json:"risk_tolerance"`
	Goal GoalTier `json:"goal"`
}

// Label returns the display label of the tier, e.g. "Low Risk"
func (r RiskTier) Label() string {
	return string(r) + " Risk"
}

// Label returns the short label of the goal's selection rule
func (g GoalTier) Label() string {
	switch g {
	case GoalCapitalPreservation:
		return "Min Volatility"
	case GoalHighRiskHighReturn:
		return "High Return"
	case GoalLongTermGrowth:
		return "Max Sharpe"
	default:
		return "Balanced"
	}
}

// Label returns "<risk> + <goal>" as shown on the recommendation
func (p SelectionPolicy) Label() string {
	return p.Risk.Label() + " + " + p.Goal.Label()
}
