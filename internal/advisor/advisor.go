// Package advisor orchestrates a full recommendation: market assumptions,
// returns, simulation, horizon scaling and selection, plus caching and
// persistence of the run.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/pfopt/internal/contracts"
	"github.com/wonny/pfopt/internal/horizon"
	"github.com/wonny/pfopt/internal/marketdata"
	"github.com/wonny/pfopt/internal/returns"
	"github.com/wonny/pfopt/internal/risk"
	"github.com/wonny/pfopt/internal/runs"
	"github.com/wonny/pfopt/internal/selection"
	"github.com/wonny/pfopt/internal/simulation"
	"github.com/wonny/pfopt/pkg/config"
	"github.com/wonny/pfopt/pkg/logger"
	"github.com/wonny/pfopt/pkg/redis"
)

// Advisor recommendation service
// ⭐ SSOT: 요청 → 추천 파이프라인은 여기서만 조립
type Advisor struct {
	engine     *simulation.Engine
	market     marketdata.Provider
	store      runs.Store   // optional
	cache      *redis.Cache // optional
	ttl        time.Duration
	portfolios int
	logger     *logger.Logger
}

// Option configures an Advisor
type Option func(*Advisor)

// WithStore persists every run
func WithStore(store runs.Store) Option {
	return func(a *Advisor) { a.store = store }
}

// WithCache caches seeded recommendations for ttl
func WithCache(cache *redis.Cache, ttl time.Duration) Option {
	return func(a *Advisor) {
		a.cache = cache
		a.ttl = ttl
	}
}

// WithDefaultPortfolios portfolio count used when a request leaves it at 0
func WithDefaultPortfolios(n int) Option {
	return func(a *Advisor) { a.portfolios = n }
}

// New creates an advisor
func New(engine *simulation.Engine, market marketdata.Provider, log *logger.Logger, opts ...Option) *Advisor {
	a := &Advisor{
		engine:     engine,
		market:     market,
		ttl:        redis.TTLRun,
		portfolios: 500,
		logger:     log.WithComponent("advisor"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Recommend runs the full pipeline for req
func (a *Advisor) Recommend(ctx context.Context, req Request) (*Recommendation, error) {
	profile, err := normalizeProfile(req.Profile)
	if err != nil {
		return nil, err
	}
	req.Profile = profile

	if req.Portfolios == 0 {
		req.Portfolios = a.portfolios
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	market, err := a.assumptions(profile.Country, req.RiskFreeRate)
	if err != nil {
		return nil, err
	}

	// 시드 고정 요청만 캐시 (결과가 결정적)
	var cacheKey string
	if req.Seed != 0 && a.cache != nil {
		cacheKey, err = requestKey(req, market)
		if err == nil {
			var cached Recommendation
			found, cerr := a.cache.Get(ctx, cacheKey, &cached)
			if cerr != nil {
				a.logger.WithError(cerr).Warn("Recommendation cache read failed")
			}
			if found {
				cached.Cached = true
				a.logger.WithField("run_id", cached.RunID).Info("Recommendation served from cache")
				return &cached, nil
			}
		}
	}

	rets, err := returns.ComputeReturns(req.Prices)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := a.engine.Simulate(ctx, rets, simulation.Params{
		RiskFreeRate: market.RiskFreeRate,
		N:            req.Portfolios,
		Seed:         req.Seed,
		Progress:     req.Progress,
	})
	if err != nil {
		return nil, err
	}

	years := horizon.ParseHorizon(profile.Horizon)
	scaled := horizon.ScaleToHorizon(result.Records, years, market.RiskFreeRate)

	chosen, err := selection.Select(scaled, profile.RiskTolerance, profile.Goal)
	if err != nil {
		return nil, err
	}

	tail, err := risk.Assess(rets, chosen.Weights)
	if err != nil {
		return nil, err
	}

	policy := contracts.SelectionPolicy{Risk: profile.RiskTolerance, Goal: profile.Goal}
	rec := &Recommendation{
		RunID:         uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Profile:       profile,
		Market:        market,
		HorizonYears:  years,
		Portfolios:    req.Portfolios,
		Seed:          result.Seed,
		Frequency:     result.Frequency,
		Observations:  req.Prices.Len(),
		StartDate:     req.Prices.Dates[0],
		EndDate:       req.Prices.Dates[req.Prices.Len()-1],
		Tickers:       result.Tickers,
		RiskLabel:     policy.Risk.Label(),
		GoalLabel:     policy.Goal.Label(),
		Label:         policy.Label(),
		Chosen:        chosen,
		Allocation:    chosen.Weights.ByTicker(result.Tickers),
		Risk:          tail,
		MaxSharpe:     result.MaxSharpe,
		MinVolatility: result.MinVolatility,
		Records:       result.Records,
		Scaled:        scaled,
		Notes:         Notes(profile),
	}

	a.logger.WithFields(map[string]interface{}{
		"run_id":     rec.RunID,
		"tickers":    len(rec.Tickers),
		"portfolios": rec.Portfolios,
		"seed":       rec.Seed,
		"label":      rec.Label,
		"duration":   time.Since(start).String(),
	}).Info("Recommendation computed")

	a.persist(ctx, rec)

	if cacheKey != "" {
		if err := a.cache.Set(ctx, cacheKey, rec, a.ttl); err != nil {
			a.logger.WithError(err).Warn("Recommendation cache write failed")
		}
	}

	return rec, nil
}

// persist 저장 실패는 추천 결과를 막지 않음 (경고 로그)
func (a *Advisor) persist(ctx context.Context, rec *Recommendation) {
	if a.store == nil {
		return
	}

	run := &runs.Run{
		ID:        rec.RunID,
		CreatedAt: rec.CreatedAt,
		Params: runs.Params{
			Name:          rec.Profile.Name,
			Country:       rec.Profile.Country,
			RiskFreeRate:  rec.Market.RiskFreeRate,
			Portfolios:    rec.Portfolios,
			Seed:          rec.Seed,
			RiskTolerance: rec.Profile.RiskTolerance,
			Goal:          rec.Profile.Goal,
			Horizon:       rec.Profile.Horizon,
			StartDate:     rec.StartDate,
			EndDate:       rec.EndDate,
		},
		Tickers:       rec.Tickers,
		Chosen:        rec.Chosen,
		MaxSharpe:     rec.MaxSharpe,
		MinVolatility: rec.MinVolatility,
	}

	if err := a.store.Save(ctx, run); err != nil {
		a.logger.WithError(err).WithField("run_id", rec.RunID).Warn("Failed to persist run")
	}
}

// Run stored run by id; nil store → runs.ErrNotFound
func (a *Advisor) Run(ctx context.Context, id string) (*runs.Run, error) {
	if a.store == nil {
		return nil, fmt.Errorf("%w: persistence disabled", runs.ErrNotFound)
	}

	// stored runs never change, so the cache is read-through
	key := redis.RunKey(id)
	if a.cache != nil {
		var cached runs.Run
		if found, err := a.cache.Get(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	run, err := a.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.cache != nil {
		if err := a.cache.Set(ctx, key, run, a.ttl); err != nil {
			a.logger.WithError(err).WithField("run_id", id).Warn("Run cache write failed")
		}
	}
	return run, nil
}

// RecentRuns newest stored runs
func (a *Advisor) RecentRuns(ctx context.Context, limit int) ([]runs.Run, error) {
	if a.store == nil {
		return []runs.Run{}, nil
	}
	return a.store.List(ctx, limit)
}

// Market country table used by the advisor
func (a *Advisor) Market() marketdata.Provider {
	return a.market
}

func normalizeProfile(p Profile) (Profile, error) {
	risk, err := selection.ParseRiskTier(string(p.RiskTolerance))
	if err != nil {
		return Profile{}, err
	}
	p.RiskTolerance = risk
	p.Goal = selection.ParseGoalTier(string(p.Goal))
	if p.Horizon == "" {
		p.Horizon = contracts.Horizon1Y
	}
	return p, nil
}

func validate(req Request) error {
	n := req.Prices.NumAssets()
	if n < MinTickers || n > MaxTickers {
		return fmt.Errorf("%w: need between %d and %d tickers, got %d",
			contracts.ErrInvalidParameter, MinTickers, MaxTickers, n)
	}
	if req.Portfolios < config.MinPortfolios || req.Portfolios > config.MaxPortfolios {
		return fmt.Errorf("%w: portfolios must be between %d and %d, got %d",
			contracts.ErrInvalidParameter, config.MinPortfolios, config.MaxPortfolios, req.Portfolios)
	}
	if req.Prices.Len() < 2 {
		return fmt.Errorf("%w: need at least 2 aligned observations, got %d",
			contracts.ErrInsufficientData, req.Prices.Len())
	}
	return req.Prices.Validate()
}

// assumptions country table → decimals, with optional rf override (percent)
func (a *Advisor) assumptions(country string, rfOverride *float64) (MarketAssumptions, error) {
	c, err := a.market.Lookup(country)
	if err != nil {
		return MarketAssumptions{}, err
	}

	rf := c.RF
	if rfOverride != nil {
		rf = *rfOverride
		if math.IsNaN(rf) || rf < 0 || rf > 100 {
			return MarketAssumptions{}, fmt.Errorf("%w: risk-free rate %v%% outside [0, 100]",
				contracts.ErrInvalidParameter, rf)
		}
	}

	m := MarketAssumptions{
		Country:      c.Country,
		RiskFreeRate: rf / 100,
		ERP:          c.ERP / 100,
		CRP:          c.CRP / 100,
		MatureERP:    c.MatureERP() / 100,
	}
	if sp, ok := a.market.(*marketdata.StaticProvider); ok {
		m.AsOf = sp.AsOf()
	}
	return m, nil
}

// requestKey canonical JSON of everything that determines the result
func requestKey(req Request, market MarketAssumptions) (string, error) {
	canonical, err := json.Marshal(struct {
		Prices     contracts.PriceMatrix `json:"prices"`
		Profile    Profile               `json:"profile"`
		Market     MarketAssumptions     `json:"market"`
		Portfolios int                   `json:"portfolios"`
		Seed       uint64                `json:"seed"`
	}{req.Prices, req.Profile, market, req.Portfolios, req.Seed})
	if err != nil {
		return "", err
	}
	return redis.RecommendationKey(canonical), nil
}
