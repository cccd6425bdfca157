package advisor

import (
	"time"

	"github.com/wonny/pfopt/internal/contracts"
	"github.com/wonny/pfopt/internal/risk"
	"github.com/wonny/pfopt/internal/simulation"
)

// Ticker count bounds of a request
const (
	MinTickers = 3
	MaxTickers = 10
)

// Profile investor profile
type Profile struct {
	Name          string             `json:"name,omitempty"`
	Country       string             `json:"country"`
	RiskTolerance contracts.RiskTier `json:"risk_tolerance"`
	Goal          contracts.GoalTier `json:"goal"`
	Horizon       string             `json:"horizon"`
}

// Request one recommendation request
type Request struct {
	Prices  contracts.PriceMatrix `json:"prices"`
	Profile Profile               `json:"profile"`

	// RiskFreeRate percent override (e.g. 6.92); nil → country default
	RiskFreeRate *float64 `json:"risk_free_rate,omitempty"`
	Portfolios   int      `json:"portfolios"` // 0 → advisor default
	Seed         uint64   `json:"seed"`       // 0 → random, not cached

	Progress simulation.ProgressFunc `json:"-"`
}

// MarketAssumptions market inputs used for the run, as decimals
type MarketAssumptions struct {
	Country      string  `json:"country"`
	AsOf         string  `json:"as_of,omitempty"`
	RiskFreeRate float64 `json:"risk_free_rate"`
	ERP          float64 `json:"erp"`
	CRP          float64 `json:"crp"`
	MatureERP    float64 `json:"mature_erp"`
}

// Recommendation result of one run
type Recommendation struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Cached    bool      `json:"cached"`

	Profile      Profile             `json:"profile"`
	Market       MarketAssumptions   `json:"market"`
	HorizonYears int                 `json:"horizon_years"`
	Portfolios   int                 `json:"portfolios"`
	Seed         uint64              `json:"seed"`
	Frequency    contracts.Frequency `json:"frequency"`
	Observations int                 `json:"observations"` // aligned price rows
	StartDate    time.Time           `json:"start_date"`
	EndDate      time.Time           `json:"end_date"`

	Tickers    []string                      `json:"tickers"`
	RiskLabel  string                        `json:"risk_label"`
	GoalLabel  string                        `json:"goal_label"`
	Label      string                        `json:"label"`
	Chosen     contracts.HorizonScaledRecord `json:"chosen"`
	Allocation map[string]float64            `json:"allocation"`
	Risk       risk.Metrics                  `json:"risk"` // chosen weights, per period

	MaxSharpe     contracts.PortfolioRecord `json:"max_sharpe"`
	MinVolatility contracts.PortfolioRecord `json:"min_volatility"`

	Records []contracts.PortfolioRecord     `json:"records"`
	Scaled  []contracts.HorizonScaledRecord `json:"scaled"`

	Notes string `json:"notes"`
}
