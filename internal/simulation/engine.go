// Package simulation runs the random-portfolio Monte Carlo: N independent
// sample+score trials against one set of asset statistics.
package simulation

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/pfopt/internal/contracts"
	"github.com/wonny/pfopt/internal/returns"
	"github.com/wonny/pfopt/internal/sampler"
	"github.com/wonny/pfopt/internal/scorer"
)

// ProgressFunc receives (completed, total) after each finished trial.
// Calls are serialised but may come from any worker goroutine.
type ProgressFunc func(completed, total int)

// Params 시뮬레이션 실행 파라미터
type Params struct {
	RiskFreeRate float64      // decimal, e.g. 0.0421
	N            int          // number of trials
	Seed         uint64       // 0 = 비결정적 (랜덤 시드 사용 후 결과에 기록)
	Workers      int          // 0 = Engine 기본값
	Progress     ProgressFunc // optional
}

// Engine 시뮬레이션 엔진
type Engine struct {
	workers int
}

// NewEngine creates an engine with a default worker count.
// workers < 1 means runtime.NumCPU().
func NewEngine(workers int) *Engine {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Engine{workers: workers}
}

// Simulate 수익률 행렬로부터 N개 랜덤 포트폴리오 생성/평가
// Covariance needs at least 2 return rows (3 price rows); a single row fails
// with contracts.ErrInsufficientData before any trial runs.
// ⭐ 재현성: trial i 는 (seed, i) 스트림만 사용 → worker 수와 무관하게 동일 결과
func (e *Engine) Simulate(ctx context.Context, r contracts.ReturnMatrix, p Params) (*contracts.SimulationResult, error) {
	if p.N < 1 {
		return nil, fmt.Errorf("%w: portfolio count must be >= 1, got %d", contracts.ErrInvalidParameter, p.N)
	}
	if r.NumAssets() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 assets, got %d", contracts.ErrInvalidParameter, r.NumAssets())
	}
	if math.IsNaN(p.RiskFreeRate) || math.IsInf(p.RiskFreeRate, 0) {
		return nil, fmt.Errorf("%w: risk-free rate %v", contracts.ErrInvalidParameter, p.RiskFreeRate)
	}

	freq := returns.InferFrequency(r.Dates)
	stats, err := returns.ComputeStatistics(r, freq)
	if err != nil {
		return nil, err
	}
	sc, err := scorer.New(stats)
	if err != nil {
		return nil, err
	}

	seed := p.Seed
	if seed == 0 {
		seed = sampler.RandomSeed()
	}

	workers := p.Workers
	if workers < 1 {
		workers = e.workers
	}
	if workers > p.N {
		workers = p.N
	}

	nAssets := r.NumAssets()
	records := make([]contracts.PortfolioRecord, p.N)

	var (
		mu        sync.Mutex
		completed int
	)
	report := func() {
		if p.Progress == nil {
			return
		}
		mu.Lock()
		completed++
		p.Progress(completed, p.N)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < p.N; i++ {
		if err := gctx.Err(); err != nil {
			break
		}

		trial := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			w := sampler.Sample(nAssets, sampler.NewSource(seed, uint64(trial)))
			s, err := sc.Score(w, p.RiskFreeRate)
			if err != nil {
				return err
			}

			records[trial] = contracts.PortfolioRecord{
				Trial:      trial,
				Return:     s.Return,
				Volatility: s.Volatility,
				Sharpe:     s.Sharpe,
				Weights:    w,
			}
			report()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulation aborted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("simulation aborted: %w", err)
	}

	maxSharpe, minVol := referencePortfolios(records)

	tickers := make([]string, len(r.Tickers))
	copy(tickers, r.Tickers)

	return &contracts.SimulationResult{
		Tickers:       tickers,
		Frequency:     freq,
		RiskFreeRate:  p.RiskFreeRate,
		Seed:          seed,
		Statistics:    stats,
		Records:       records,
		MaxSharpe:     maxSharpe,
		MinVolatility: minVol,
	}, nil
}

// referencePortfolios max Sharpe / min volatility (동률 → 먼저 나온 trial)
func referencePortfolios(records []contracts.PortfolioRecord) (maxSharpe, minVol contracts.PortfolioRecord) {
	if len(records) == 0 {
		return
	}

	best, low := 0, 0
	for i := 1; i < len(records); i++ {
		if records[i].Sharpe > records[best].Sharpe {
			best = i
		}
		if records[i].Volatility < records[low].Volatility {
			low = i
		}
	}
	return records[best], records[low]
}
