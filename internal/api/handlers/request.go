package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/pfopt/internal/advisor"
	"github.com/wonny/pfopt/internal/contracts"
)

// PricesPayload aligned closing prices keyed by ticker
type PricesPayload struct {
	Dates  []string             `json:"dates" validate:"required,min=2,dive,required"`
	Series map[string][]float64 `json:"series" validate:"required,min=3,max=10,dive,keys,required,endkeys,required"`
}

// SimulationRequest body of POST /api/simulations and the websocket request message
type SimulationRequest struct {
	Name          string        `json:"name" validate:"max=100"`
	Country       string        `json:"country" validate:"required"`
	RiskFreeRate  *float64      `json:"risk_free_rate" validate:"omitempty,gte=0,lte=100"` // percent
	Portfolios    int           `json:"portfolios" validate:"omitempty,gte=100,lte=5000"`
	Seed          uint64        `json:"seed"`
	RiskTolerance string        `json:"risk_tolerance" validate:"required"`
	Goal          string        `json:"goal"`
	Horizon       string        `json:"horizon" validate:"max=8"`
	Prices        PricesPayload `json:"prices"`
}

// NewValidator validator reporting JSON field names
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage one line per failed field
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Namespace(), fe.Param()))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Namespace(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

var payloadDateLayouts = []string{"2006-01-02", time.RFC3339}

func parsePayloadDate(s string) (time.Time, error) {
	for _, layout := range payloadDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q (expected YYYY-MM-DD)", contracts.ErrInvalidParameter, s)
}

// PriceMatrix tickers sorted, dates strictly ascending
func (p PricesPayload) PriceMatrix() (contracts.PriceMatrix, error) {
	dates := make([]time.Time, len(p.Dates))
	for i, s := range p.Dates {
		d, err := parsePayloadDate(s)
		if err != nil {
			return contracts.PriceMatrix{}, err
		}
		if i > 0 && !d.After(dates[i-1]) {
			return contracts.PriceMatrix{}, fmt.Errorf("%w: dates must be strictly ascending at %s",
				contracts.ErrInvalidParameter, s)
		}
		dates[i] = d
	}

	tickers := make([]string, 0, len(p.Series))
	for t, prices := range p.Series {
		if len(prices) != len(dates) {
			return contracts.PriceMatrix{}, fmt.Errorf("%w: %s has %d prices for %d dates",
				contracts.ErrInvalidParameter, t, len(prices), len(dates))
		}
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	rows := make([][]float64, len(dates))
	for i := range dates {
		row := make([]float64, len(tickers))
		for j, t := range tickers {
			row[j] = p.Series[t][i]
		}
		rows[i] = row
	}

	pm := contracts.PriceMatrix{Tickers: tickers, Dates: dates, Rows: rows}
	if err := pm.Validate(); err != nil {
		return contracts.PriceMatrix{}, err
	}
	return pm, nil
}

// AdvisorRequest converts the payload into an advisor request
func (r SimulationRequest) AdvisorRequest() (advisor.Request, error) {
	prices, err := r.Prices.PriceMatrix()
	if err != nil {
		return advisor.Request{}, err
	}

	return advisor.Request{
		Prices: prices,
		Profile: advisor.Profile{
			Name:          r.Name,
			Country:       r.Country,
			RiskTolerance: contracts.RiskTier(r.RiskTolerance),
			Goal:          contracts.GoalTier(r.Goal),
			Horizon:       r.Horizon,
		},
		RiskFreeRate: r.RiskFreeRate,
		Portfolios:   r.Portfolios,
		Seed:         r.Seed,
	}, nil
}
