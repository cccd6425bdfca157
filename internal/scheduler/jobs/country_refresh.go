// Package jobs holds the scheduled jobs of the service.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/pfopt/internal/marketdata"
	"github.com/wonny/pfopt/pkg/logger"
	"github.com/wonny/pfopt/pkg/redis"
)

// PremiumFetcher source of country premia (damodaran.Client)
type PremiumFetcher interface {
	Fetch(ctx context.Context) ([]marketdata.Premium, error)
}

// CountryRefreshJob refreshes ERP/CRP of the country table
type CountryRefreshJob struct {
	fetcher  PremiumFetcher
	provider *marketdata.StaticProvider
	cache    *redis.Cache // optional
	schedule string
	now      func() time.Time
	logger   *logger.Logger
}

// NewCountryRefreshJob creates a new country refresh job
func NewCountryRefreshJob(
	fetcher PremiumFetcher,
	provider *marketdata.StaticProvider,
	cache *redis.Cache,
	schedule string,
	log *logger.Logger,
) *CountryRefreshJob {
	return &CountryRefreshJob{
		fetcher:  fetcher,
		provider: provider,
		cache:    cache,
		schedule: schedule,
		now:      time.Now,
		logger:   log.WithComponent("job.country_refresh"),
	}
}

// Name returns the job name
func (j *CountryRefreshJob) Name() string {
	return "country_refresh"
}

// Schedule returns the cron schedule
func (j *CountryRefreshJob) Schedule() string {
	return j.schedule
}

// Run fetches the premia, merges them and publishes the table to Redis
func (j *CountryRefreshJob) Run(ctx context.Context) error {
	premiums, err := j.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch country premia: %w", err)
	}

	asOf := j.now().UTC().Format("2006-01")
	updated := j.provider.MergePremiums(asOf, premiums)
	if updated == 0 {
		return fmt.Errorf("none of %d fetched rows matched a known country", len(premiums))
	}

	j.logger.WithFields(map[string]interface{}{
		"fetched": len(premiums),
		"updated": updated,
		"as_of":   asOf,
	}).Info("Country table refreshed")

	if j.cache != nil {
		snap := Snapshot{AsOf: asOf, Countries: j.provider.Entries()}
		if err := j.cache.Set(ctx, redis.CountryTableKey(), snap, redis.TTLCountryTable); err != nil {
			j.logger.WithError(err).Warn("Failed to publish country table")
		}
	}

	return nil
}

// Snapshot country table as published to Redis
type Snapshot struct {
	AsOf      string                       `json:"as_of"`
	Countries []marketdata.CountryRiskData `json:"countries"`
}

// RestoreFromCache loads the last published table into provider.
// Returns false when nothing is cached.
func RestoreFromCache(ctx context.Context, cache *redis.Cache, provider *marketdata.StaticProvider) (bool, error) {
	var snap Snapshot
	found, err := cache.Get(ctx, redis.CountryTableKey(), &snap)
	if err != nil || !found {
		return false, err
	}

	provider.Upsert(snap.Countries...)
	if snap.AsOf != "" {
		provider.SetAsOf(snap.AsOf)
	}
	return true, nil
}
