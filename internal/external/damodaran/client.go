// Package damodaran fetches the country risk premium table published on
// Aswath Damodaran's data page.
package damodaran

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/pfopt/internal/marketdata"
	"github.com/wonny/pfopt/pkg/httputil"
	"github.com/wonny/pfopt/pkg/logger"
)

// ErrTableNotFound page has no recognisable premium table
var ErrTableNotFound = errors.New("country premium table not found")

// Client handles communication with the Damodaran data page
// ⭐ SSOT: Damodaran 페이지 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	url        string
}

// NewClient creates a new client for the page at url
func NewClient(httpClient *httputil.Client, log *logger.Logger, url string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("damodaran"),
		url:        url,
	}
}

// Fetch downloads and parses the premium table
func (c *Client) Fetch(ctx context.Context) ([]marketdata.Premium, error) {
	body, err := c.httpClient.GetBytes(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("fetch country premiums: %w", err)
	}

	premiums, err := ParseTable(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"url":   c.url,
		"count": len(premiums),
	}).Info("Fetched country risk premiums")
	return premiums, nil
}

type columns struct {
	country, erp, crp int
}

// ParseTable extracts (country, total ERP, CRP) rows, values in percent.
// The header row is located by its "Country Risk Premium" cell.
func ParseTable(r io.Reader) ([]marketdata.Premium, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var (
		premiums []marketdata.Premium
		cols     *columns
	)

	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("th, td")
		texts := make([]string, cells.Length())
		cells.Each(func(j int, cell *goquery.Selection) {
			texts[j] = strings.Join(strings.Fields(cell.Text()), " ")
		})

		if cols == nil {
			cols = headerColumns(texts)
			return
		}

		// 새 헤더 행 (페이지 내 반복) 은 건너뜀
		if headerColumns(texts) != nil {
			return
		}

		maxIdx := max(cols.country, cols.erp, cols.crp)
		if len(texts) <= maxIdx {
			return
		}

		country := texts[cols.country]
		erp, okERP := parsePercent(texts[cols.erp])
		crp, okCRP := parsePercent(texts[cols.crp])
		if country == "" || !okERP || !okCRP {
			return
		}

		premiums = append(premiums, marketdata.Premium{
			Country: country,
			ERP:     erp,
			CRP:     crp,
		})
	})

	if cols == nil || len(premiums) == 0 {
		return nil, ErrTableNotFound
	}
	return premiums, nil
}

func headerColumns(texts []string) *columns {
	c := columns{country: -1, erp: -1, crp: -1}
	for i, t := range texts {
		l := strings.ToLower(t)
		switch {
		case l == "country":
			c.country = i
		case strings.Contains(l, "country risk premium"):
			if c.crp < 0 {
				c.crp = i
			}
		case strings.Contains(l, "equity risk premium"):
			if c.erp < 0 {
				c.erp = i
			}
		}
	}
	if c.country < 0 || c.erp < 0 || c.crp < 0 {
		return nil
	}
	return &c
}

// "7.26%" → 7.26
func parsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" || s == "NA" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
