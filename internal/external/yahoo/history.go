package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/schloss/internal/contracts"
)

// History fetches daily bars covering the last `years` years
// ⭐ SSOT: Yahoo chart 호출은 이 함수에서만
func (c *Client) History(ctx context.Context, symbol contracts.TickerSymbol, years int) (contracts.PriceHistory, error) {
	if years < 1 {
		years = 1
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%dy&interval=1d&includePrePost=false",
		c.baseURL, url.PathEscape(symbol.String()), years)

	var resp yfChartResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if err := apiError(resp.Chart.Error); err != nil {
		return nil, err
	}
	if len(resp.Chart.Result) == 0 {
		return contracts.PriceHistory{}, nil
	}

	history := parseChart(&resp.Chart.Result[0])

	c.logger.WithSymbol(symbol.String()).
		WithField("bars", len(history)).
		Debug("Fetched price history")
	return history, nil
}

// parseChart zips the timestamp and OHLCV arrays into bars.
// Arrays shorter than the timestamps leave the missing values nil.
func parseChart(r *yfChartResult) contracts.PriceHistory {
	history := make(contracts.PriceHistory, 0, len(r.Timestamp))
	if len(r.Indicators.Quote) == 0 {
		return history
	}
	q := r.Indicators.Quote[0]

	for i, ts := range r.Timestamp {
		history = append(history, contracts.PriceBar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   floatAt(q.Open, i),
			High:   floatAt(q.High, i),
			Low:    floatAt(q.Low, i),
			Close:  floatAt(q.Close, i),
			Volume: intAt(q.Volume, i),
		})
	}
	return history
}

func floatAt(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func intAt(values []*int64, i int) *int64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}
