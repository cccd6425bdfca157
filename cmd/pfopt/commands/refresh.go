package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "국가 위험 프리미엄 갱신 (Damodaran)",
	Long: `Damodaran 국가 위험 프리미엄 페이지에서 ERP/CRP를 가져와
국가 테이블에 병합하고 결과를 출력합니다.
무위험 수익률(RF)은 기존 값을 유지합니다.

Redis가 활성화되어 있으면 갱신된 테이블을 게시하여
API 서버가 재시작 시 복원할 수 있게 합니다.

Example:
  go run ./cmd/pfopt refresh
  go run ./cmd/pfopt refresh --write countries.yaml`,
	RunE: runRefresh,
}

var refreshWrite string

func init() {
	rootCmd.AddCommand(refreshCmd)

	refreshCmd.Flags().StringVar(&refreshWrite, "write", "", "갱신된 테이블을 YAML 파일로 저장")
}

func runRefresh(cmd *cobra.Command, args []string) error {
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

	if err := d.newRefreshJob().Run(ctx); err != nil {
		return err
	}

	printCountryTable(d.market)

	if refreshWrite != "" {
		data, err := d.market.Encode()
		if err != nil {
			return err
		}
		if err := os.WriteFile(refreshWrite, data, 0o644); err != nil {
			return err
		}
		PrintInfo("Table written to " + refreshWrite)
	}

	PrintSuccess("Country table refreshed")
	return nil
}
