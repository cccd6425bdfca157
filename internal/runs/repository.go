// Package runs persists simulation runs in PostgreSQL.
package runs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/pfopt/internal/contracts"
)

// ErrNotFound no run with the given id
var ErrNotFound = errors.New("run not found")

// Params request parameters recorded with a run
type Params struct {
	Name          string             `json:"name,omitempty"`
	Country       string             `json:"country"`
	RiskFreeRate  float64            `json:"risk_free_rate"` // decimal
	Portfolios    int                `json:"portfolios"`
	Seed          uint64             `json:"seed"` // 실제 사용된 시드
	RiskTolerance contracts.RiskTier `json:"risk_tolerance"`
	Goal          contracts.GoalTier `json:"goal"`
	Horizon       string             `json:"horizon"`
	StartDate     time.Time          `json:"start_date"`
	EndDate       time.Time          `json:"end_date"`
}

// Run one stored simulation run
type Run struct {
	ID            string                        `json:"id"`
	CreatedAt     time.Time                     `json:"created_at"`
	Params        Params                        `json:"params"`
	Tickers       []string                      `json:"tickers"`
	Chosen        contracts.HorizonScaledRecord `json:"chosen"`
	MaxSharpe     contracts.PortfolioRecord     `json:"max_sharpe"`
	MinVolatility contracts.PortfolioRecord     `json:"min_volatility"`
}

// Store run persistence
type Store interface {
	Save(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context, limit int) ([]Run, error)
}

// Repository handles run persistence
// ⭐ SSOT: 시뮬레이션 run 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new run repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS pfopt;
	CREATE TABLE IF NOT EXISTS pfopt.simulation_runs (
		id         UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		params     JSONB NOT NULL,
		tickers    TEXT[] NOT NULL,
		chosen     JSONB NOT NULL,
		max_sharpe JSONB NOT NULL,
		min_vol    JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS simulation_runs_created_at_idx
		ON pfopt.simulation_runs (created_at DESC);
`

// EnsureSchema creates the schema and table if missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure run schema: %w", err)
	}
	return nil
}

// Save inserts or replaces a run
func (r *Repository) Save(ctx context.Context, run *Run) error {
	params, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	chosen, err := json.Marshal(run.Chosen)
	if err != nil {
		return fmt.Errorf("failed to marshal chosen: %w", err)
	}
	maxSharpe, err := json.Marshal(run.MaxSharpe)
	if err != nil {
		return fmt.Errorf("failed to marshal max sharpe: %w", err)
	}
	minVol, err := json.Marshal(run.MinVolatility)
	if err != nil {
		return fmt.Errorf("failed to marshal min volatility: %w", err)
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO pfopt.simulation_runs (
			id, created_at, params, tickers, chosen, max_sharpe, min_vol
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			params = EXCLUDED.params,
			tickers = EXCLUDED.tickers,
			chosen = EXCLUDED.chosen,
			max_sharpe = EXCLUDED.max_sharpe,
			min_vol = EXCLUDED.min_vol
	`

	_, err = r.pool.Exec(ctx, query,
		run.ID, run.CreatedAt, params, run.Tickers, chosen, maxSharpe, minVol,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

const selectRun = `
	SELECT id::text, created_at, params, tickers, chosen, max_sharpe, min_vol
	FROM pfopt.simulation_runs
`

// Get retrieves one run by id
func (r *Repository) Get(ctx context.Context, id string) (*Run, error) {
	run, err := scanRun(r.pool.QueryRow(ctx, selectRun+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first
func (r *Repository) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, selectRun+" ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	results := make([]Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		results = append(results, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	var params, chosen, maxSharpe, minVol []byte

	if err := row.Scan(&run.ID, &run.CreatedAt, &params, &run.Tickers, &chosen, &maxSharpe, &minVol); err != nil {
		return nil, err
	}

	if err := unmarshalColumns(&run, params, chosen, maxSharpe, minVol); err != nil {
		return nil, err
	}
	return &run, nil
}

func unmarshalColumns(run *Run, params, chosen, maxSharpe, minVol []byte) error {
	if err := json.Unmarshal(params, &run.Params); err != nil {
		return fmt.Errorf("failed to unmarshal params: %w", err)
	}
	if err := json.Unmarshal(chosen, &run.Chosen); err != nil {
		return fmt.Errorf("failed to unmarshal chosen: %w", err)
	}
	if err := json.Unmarshal(maxSharpe, &run.MaxSharpe); err != nil {
		return fmt.Errorf("failed to unmarshal max sharpe: %w", err)
	}
	if err := json.Unmarshal(minVol, &run.MinVolatility); err != nil {
		return fmt.Errorf("failed to unmarshal min volatility: %w", err)
	}
	return nil
}
