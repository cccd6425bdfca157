package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/pfopt/internal/marketdata"
)

// countriesCmd represents the countries command
var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "국가별 시장 가정 조회",
	Long: `국가별 주식 위험 프리미엄(ERP), 국가 위험 프리미엄(CRP),
무위험 수익률(RF) 테이블을 출력합니다.

Example:
  go run ./cmd/pfopt countries
  go run ./cmd/pfopt countries --yaml > countries.yaml`,
	RunE: runCountries,
}

var countriesYAML bool

func init() {
	rootCmd.AddCommand(countriesCmd)

	countriesCmd.Flags().BoolVar(&countriesYAML, "yaml", false, "YAML 형식으로 출력 (COUNTRY_DATA_FILE 용)")
}

func runCountries(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	market, err := loadMarket(context.Background(), cfg, nil, log)
	if err != nil {
		return err
	}

	if countriesYAML {
		data, err := market.Encode()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	printCountryTable(market)
	return nil
}

func printCountryTable(market *marketdata.StaticProvider) {
	PrintHeader(fmt.Sprintf("Country Risk Table (as of %s)", market.AsOf()))

	widths := []int{22, 8, 8, 8, 10}
	PrintTableHeader([]string{"Country", "ERP %", "CRP %", "RF %", "Mature %"}, widths)
	for _, c := range market.Entries() {
		PrintTableRow([]string{
			c.Country,
			fmt.Sprintf("%.2f", c.ERP),
			fmt.Sprintf("%.2f", c.CRP),
			fmt.Sprintf("%.2f", c.RF),
			fmt.Sprintf("%.2f", c.MatureERP()),
		}, widths)
	}
	PrintSeparator()
}
