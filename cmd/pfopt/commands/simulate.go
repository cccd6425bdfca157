package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/pfopt/internal/advisor"
	"github.com/wonny/pfopt/internal/contracts"
	"github.com/wonny/pfopt/internal/ingest"
	"github.com/wonny/pfopt/internal/report"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "포트폴리오 시뮬레이션 및 추천",
	Long: `가격 파일(CSV/XLSX, 티커당 1개)을 읽어 몬테카를로 시뮬레이션을 실행하고
투자자 프로필에 맞는 포트폴리오를 추천합니다.

파일명에서 티커를 추출합니다 (RELIANCE_prices.csv → RELIANCE).
가격 컬럼은 Adj Close > Close > Price 순으로 선택됩니다.

Example:
  go run ./cmd/pfopt simulate \
    --files TCS_prices.csv,INFY_prices.csv,RELIANCE_prices.csv \
    --country India --portfolios 500 --seed 42 \
    --risk Low --goal "Capital Preservation" --horizon 5Y \
    --csv simulation.csv --xlsx report.xlsx --chart allocation.png \
    --frontier frontier.png`,
	RunE: runSimulate,
}

var (
	simFiles      []string
	simName       string
	simCountry    string
	simRF         float64
	simPortfolios int
	simSeed       uint64
	simRisk       string
	simGoal       string
	simHorizon    string
	simCSV        string
	simXLSX       string
	simChart      string
	simFrontier   string
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	// Flags
	simulateCmd.Flags().StringSliceVar(&simFiles, "files", nil, "가격 파일 목록 (3-10개, 쉼표 구분)")
	simulateCmd.Flags().StringVar(&simName, "name", "", "투자자 이름")
	simulateCmd.Flags().StringVar(&simCountry, "country", "", "국가 (기본: DEFAULT_COUNTRY)")
	simulateCmd.Flags().Float64Var(&simRF, "rf", 0, "무위험 수익률 % (기본: 국가 테이블)")
	simulateCmd.Flags().IntVar(&simPortfolios, "portfolios", 0, "시뮬레이션 포트폴리오 수 (100-5000, 기본: SIM_PORTFOLIOS)")
	simulateCmd.Flags().Uint64Var(&simSeed, "seed", 0, "난수 시드 (0 = SIM_SEED 또는 무작위)")
	simulateCmd.Flags().StringVar(&simRisk, "risk", string(contracts.RiskModerate), "위험 성향 (Low|Moderate|High)")
	simulateCmd.Flags().StringVar(&simGoal, "goal", string(contracts.GoalBalanced), "투자 목표")
	simulateCmd.Flags().StringVar(&simHorizon, "horizon", contracts.Horizon1Y, "투자 기간 (1Y|3Y|5Y|10+Y)")
	simulateCmd.Flags().StringVar(&simCSV, "csv", "", "시뮬레이션 테이블 CSV 출력 경로")
	simulateCmd.Flags().StringVar(&simXLSX, "xlsx", "", "XLSX 리포트 출력 경로")
	simulateCmd.Flags().StringVar(&simChart, "chart", "", "배분 파이 차트 PNG 출력 경로")
	simulateCmd.Flags().StringVar(&simFrontier, "frontier", "", "효율적 투자선 산점도 PNG 출력 경로")

	simulateCmd.MarkFlagRequired("files")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := newDeps(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	// 1. Load price files
	series, loadErr := ingest.LoadFiles(simFiles)
	if loadErr != nil {
		if len(series) < advisor.MinTickers {
			return fmt.Errorf("load price files: %w", loadErr)
		}
		PrintWarning(fmt.Sprintf("Some files were skipped:\n%v", loadErr))
	}

	prices, err := ingest.Align(series...)
	if err != nil {
		return err
	}

	// 2. Build request
	req := advisor.Request{
		Prices: prices,
		Profile: advisor.Profile{
			Name:          simName,
			Country:       simCountry,
			RiskTolerance: contracts.RiskTier(simRisk),
			Goal:          contracts.GoalTier(simGoal),
			Horizon:       simHorizon,
		},
		Portfolios: simPortfolios,
		Seed:       simSeed,
		Progress:   progressPrinter("Simulation"),
	}
	if req.Profile.Country == "" {
		req.Profile.Country = cfg.MarketData.DefaultCountry
	}
	if req.Seed == 0 {
		req.Seed = cfg.Simulation.Seed
	}
	if cmd.Flags().Changed("rf") {
		rf := simRF
		req.RiskFreeRate = &rf
	}

	PrintHeader("Portfolio Simulation")
	PrintKeyValue("Tickers", fmt.Sprintf("%v", prices.Tickers), 12)
	PrintKeyValue("Period", fmt.Sprintf("%s ~ %s (%d rows)",
		prices.Dates[0].Format("2006-01-02"), prices.Dates[prices.Len()-1].Format("2006-01-02"), prices.Len()), 12)
	PrintKeyValue("Country", req.Profile.Country, 12)
	PrintSeparator()

	// 3. Run
	start := time.Now()
	rec, err := d.advisor.Recommend(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			PrintWarning("Simulation interrupted")
		}
		return err
	}

	fmt.Println()
	fmt.Print(report.Summary(rec))
	PrintSeparator()

	// 4. Exports
	if err := writeExports(rec); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("Completed in %.2fs (run %s)", time.Since(start).Seconds(), rec.RunID))
	return nil
}

func writeExports(rec *advisor.Recommendation) error {
	if simCSV != "" {
		f, err := os.Create(simCSV)
		if err != nil {
			return err
		}
		result := &contracts.SimulationResult{Tickers: rec.Tickers, Records: rec.Records}
		if err := report.WriteCSV(f, result, rec.Scaled); err != nil {
			f.Close()
			return fmt.Errorf("write csv: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		PrintInfo("CSV written to " + simCSV)
	}

	if simXLSX != "" {
		f, err := os.Create(simXLSX)
		if err != nil {
			return err
		}
		if err := report.WriteXLSX(f, rec); err != nil {
			f.Close()
			return fmt.Errorf("write xlsx: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		PrintInfo("XLSX written to " + simXLSX)
	}

	if err := writeChart(simChart, "Allocation chart", report.AllocationChart, rec); err != nil {
		return err
	}
	return writeChart(simFrontier, "Frontier chart", report.FrontierChart, rec)
}

// writeChart renders a PNG to path; empty path skips it
func writeChart(path, what string, render func(*advisor.Recommendation) ([]byte, error), rec *advisor.Recommendation) error {
	if path == "" {
		return nil
	}

	png, err := render(rec)
	if err != nil {
		return fmt.Errorf("render %s: %w", strings.ToLower(what), err)
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return err
	}
	PrintInfo(what + " written to " + path)
	return nil
}
