package nasdaqtrader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/httputil"
	"github.com/wonny/schloss/pkg/logger"
)

const footerPrefix = "File Creation Time"

// Client reads the NASDAQ Trader symbol directory
// ⭐ SSOT: NASDAQ 상장 종목 목록은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	listedURL  string
}

var _ contracts.IndexProvider = (*Client)(nil)

// NewClient creates a NASDAQ listed-symbols provider
func NewClient(httpClient *httputil.Client, listedURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		listedURL:  listedURL,
	}
}

// Name returns the listing name
func (c *Client) Name() string {
	return "nasdaq"
}

// Constituents downloads nasdaqlisted.txt and returns its symbols
func (c *Client) Constituents(ctx context.Context) ([]contracts.TickerSymbol, error) {
	body, err := c.httpClient.GetBody(ctx, c.listedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch nasdaq listed: %w", err)
	}

	symbols, err := parseListed(body)
	if err != nil {
		return nil, fmt.Errorf("parse nasdaq listed: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"index": c.Name(),
		"count": len(symbols),
	}).Info("Fetched index constituents")
	return symbols, nil
}

// parseListed parses the pipe-delimited directory.
// Test issues and the trailing "File Creation Time" row are dropped.
func parseListed(data []byte) ([]contracts.TickerSymbol, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = '|'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	symbolCol, testCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "Symbol":
			symbolCol = i
		case "Test Issue":
			testCol = i
		}
	}
	if symbolCol < 0 {
		return nil, fmt.Errorf("symbol column not found in header %v", header)
	}

	var symbols []contracts.TickerSymbol
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}

		if len(rec) == 0 || strings.HasPrefix(rec[0], footerPrefix) {
			continue
		}
		if symbolCol >= len(rec) {
			continue
		}
		if testCol >= 0 && testCol < len(rec) && strings.TrimSpace(rec[testCol]) == "Y" {
			continue
		}

		raw := strings.TrimSpace(rec[symbolCol])
		if raw == "" {
			continue
		}
		symbols = append(symbols, contracts.NormalizeSymbol(raw))
	}

	return symbols, nil
}
