package wikipedia

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/httputil"
	"github.com/wonny/schloss/pkg/logger"
)

// Page is a Wikipedia article carrying a #constituents table
type Page struct {
	Name string
	Path string
}

var (
	// SP500 lists the S&P 500 members
	SP500 = Page{Name: "sp500", Path: "/wiki/List_of_S%26P_500_companies"}

	// Dow lists the Dow Jones Industrial Average members
	Dow = Page{Name: "dow", Path: "/wiki/Dow_Jones_Industrial_Average"}
)

// symbolHeaders are the column titles that hold the ticker
var symbolHeaders = []string{"symbol", "ticker", "ticker symbol"}

// Client scrapes index constituents from Wikipedia
// ⭐ SSOT: Wikipedia 구성 종목 스크래핑은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	page       Page
}

var _ contracts.IndexProvider = (*Client)(nil)

// NewClient creates a provider for one constituents page
func NewClient(httpClient *httputil.Client, baseURL string, page Page, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		page:       page,
	}
}

// Name returns the index name
func (c *Client) Name() string {
	return c.page.Name
}

// Constituents fetches and parses the constituents table
func (c *Client) Constituents(ctx context.Context) ([]contracts.TickerSymbol, error) {
	body, err := c.httpClient.GetBody(ctx, c.baseURL+c.page.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s constituents: %w", c.page.Name, err)
	}

	symbols, err := parseConstituents(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s constituents: %w", c.page.Name, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"index": c.page.Name,
		"count": len(symbols),
	}).Info("Fetched index constituents")
	return symbols, nil
}

// parseConstituents reads the ticker column of table#constituents
func parseConstituents(html []byte) ([]contracts.TickerSymbol, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find("table#constituents").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("constituents table not found")
	}

	col := -1
	var symbols []contracts.TickerSymbol

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("th, td")

		// 헤더 행: td 없이 th만 존재
		if row.ChildrenFiltered("td").Length() == 0 {
			if col < 0 {
				col = symbolColumn(cells)
			}
			return
		}
		if col < 0 || col >= cells.Length() {
			return
		}

		raw := strings.TrimSpace(cells.Eq(col).Text())
		if raw == "" {
			return
		}
		symbols = append(symbols, contracts.NormalizeSymbol(raw))
	})

	if col < 0 {
		return nil, fmt.Errorf("symbol column not found")
	}
	return symbols, nil
}

func symbolColumn(headers *goquery.Selection) int {
	col := -1
	headers.EachWithBreak(func(i int, th *goquery.Selection) bool {
		title := strings.ToLower(strings.TrimSpace(th.Text()))
		for _, h := range symbolHeaders {
			if title == h {
				col = i
				return false
			}
		}
		return true
	})
	return col
}
