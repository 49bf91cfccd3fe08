package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/schloss/internal/contracts"
)

// quoteSummaryModules are the modules the qualifier reads from
const quoteSummaryModules = "assetProfile,price,summaryDetail,defaultKeyStatistics,financialData"

// Fundamentals fetches the fundamentals snapshot for one symbol
// ⭐ SSOT: Yahoo quoteSummary 호출은 이 함수에서만
func (c *Client) Fundamentals(ctx context.Context, symbol contracts.TickerSymbol) (*contracts.FundamentalsSnapshot, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(symbol.String()), quoteSummaryModules)

	var resp yfQuoteSummaryResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if err := apiError(resp.QuoteSummary.Error); err != nil {
		return nil, err
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: empty quoteSummary for %s", contracts.ErrSymbolNotFound, symbol)
	}

	snap := buildSnapshot(symbol, &resp.QuoteSummary.Result[0])
	snap.FetchedAt = time.Now()

	c.logger.WithSymbol(symbol.String()).Debug("Fetched fundamentals")
	return snap, nil
}

// buildSnapshot maps quoteSummary modules onto the snapshot fields
func buildSnapshot(symbol contracts.TickerSymbol, r *yfQuoteSummaryResult) *contracts.FundamentalsSnapshot {
	snap := &contracts.FundamentalsSnapshot{Symbol: symbol}

	if r.AssetProfile != nil && strings.TrimSpace(r.AssetProfile.Industry) != "" {
		snap.Industry = contracts.String(r.AssetProfile.Industry)
	}

	if r.Price != nil {
		exchange := coalesce(r.Price.ExchangeName, r.Price.Exchange)
		if exchange != "" {
			snap.Exchange = contracts.String(exchange)
		}
		snap.CurrentPrice = r.Price.RegularMarketPrice.value()
		snap.MarketCap = r.Price.MarketCap.value()
	}

	if snap.MarketCap == nil && r.SummaryDetail != nil {
		snap.MarketCap = r.SummaryDetail.MarketCap.value()
	}

	if r.DefaultKeyStatistics != nil {
		snap.PriceToBook = r.DefaultKeyStatistics.PriceToBook.value()
		snap.ProfitMargins = r.DefaultKeyStatistics.ProfitMargins.value()
	}

	if r.FinancialData != nil {
		if de := r.FinancialData.DebtToEquity.value(); de != nil {
			// Yahoo reports D/E in percent (35.2 = 0.352)
			snap.DebtToEquity = contracts.Float(*de / 100)
		}
		if pm := r.FinancialData.ProfitMargins.value(); pm != nil {
			snap.ProfitMargins = pm
		}
	}

	return snap
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
