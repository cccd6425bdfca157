package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/pfopt/internal/advisor"
	"github.com/wonny/pfopt/internal/external/damodaran"
	"github.com/wonny/pfopt/internal/marketdata"
	"github.com/wonny/pfopt/internal/runs"
	"github.com/wonny/pfopt/internal/scheduler/jobs"
	"github.com/wonny/pfopt/internal/simulation"
	"github.com/wonny/pfopt/pkg/config"
	"github.com/wonny/pfopt/pkg/database"
	"github.com/wonny/pfopt/pkg/httputil"
	"github.com/wonny/pfopt/pkg/logger"
	"github.com/wonny/pfopt/pkg/redis"
)

// cachePrefix key namespace in Redis
const cachePrefix = "pfopt"

// deps shared wiring of the commands
// ⭐ SSOT: 의존성 조립은 여기서만
type deps struct {
	cfg     *config.Config
	log     *logger.Logger
	market  *marketdata.StaticProvider
	redis   *redis.Client
	cache   *redis.Cache
	db      *database.DB // nil when DATABASE_URL is unset
	advisor *advisor.Advisor
}

// newDeps connects optional backends and builds the advisor
func newDeps(ctx context.Context, cfg *config.Config, log *logger.Logger) (*deps, error) {
	d := &deps{cfg: cfg, log: log}

	rc, err := redis.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rc = redis.Disabled()
	}
	d.redis = rc
	d.cache = redis.NewCache(rc, cachePrefix)

	d.market, err = loadMarket(ctx, cfg, d.cache, log)
	if err != nil {
		d.Close()
		return nil, err
	}

	opts := []advisor.Option{
		advisor.WithDefaultPortfolios(cfg.Simulation.Portfolios),
		advisor.WithCache(d.cache, cfg.Simulation.ResultTTL),
	}

	db, err := database.New(ctx, cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		log.Debug("DATABASE_URL not set, runs are not persisted")
	case err != nil:
		d.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	default:
		d.db = db
		repo := runs.NewRepository(db.Pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			d.Close()
			return nil, err
		}
		opts = append(opts, advisor.WithStore(repo))
		log.Info("Connected to database")
	}

	d.advisor = advisor.New(simulation.NewEngine(cfg.Simulation.Workers), d.market, log, opts...)
	return d, nil
}

// Close releases backend connections
func (d *deps) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.redis != nil {
		d.redis.Close()
	}
}

// loadMarket built-in table, optional YAML override, then the last refresh from Redis (cache may be nil)
func loadMarket(ctx context.Context, cfg *config.Config, cache *redis.Cache, log *logger.Logger) (*marketdata.StaticProvider, error) {
	market, err := marketdata.Load(cfg.MarketData.CountryFile)
	if err != nil {
		return nil, fmt.Errorf("load country file: %w", err)
	}

	if cache == nil {
		return market, nil
	}

	restored, err := jobs.RestoreFromCache(ctx, cache, market)
	if err != nil {
		log.WithError(err).Warn("Failed to restore country table from cache")
	}
	if restored {
		log.WithField("as_of", market.AsOf()).Info("Country table restored from cache")
	}
	return market, nil
}

// newDamodaranClient rate-limited client for the country premium page
func newDamodaranClient(cfg *config.Config, log *logger.Logger) *damodaran.Client {
	httpClient := httputil.New(log).WithRateLimit(cfg.MarketData.RequestsPerSec, 1)
	return damodaran.NewClient(httpClient, log, cfg.MarketData.DamodaranURL)
}

// newRefreshJob country refresh job bound to d's table and cache
func (d *deps) newRefreshJob() *jobs.CountryRefreshJob {
	return jobs.NewCountryRefreshJob(
		newDamodaranClient(d.cfg, d.log),
		d.market,
		d.cache,
		d.cfg.MarketData.RefreshSchedule,
		d.log,
	)
}
