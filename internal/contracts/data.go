package contracts

import "time"

// FundamentalsSnapshot is the point-in-time view of one company that the
// qualifier reads. Every field is optional; nil means the provider did not
// report it and each rule applies its own default.
// ⭐ SSOT: Fetcher → Qualifier 재무 데이터 전달
type FundamentalsSnapshot struct {
	Symbol        TickerSymbol `json:"symbol"`
	Industry      *string      `json:"industry,omitempty"`
	Exchange      *string      `json:"exchange,omitempty"`
	MarketCap     *float64     `json:"market_cap,omitempty"`
	DebtToEquity  *float64     `json:"debt_to_equity,omitempty"` // ratio, not percent
	PriceToBook   *float64     `json:"price_to_book,omitempty"`
	ProfitMargins *float64     `json:"profit_margins,omitempty"` // 0.12 = 12%
	CurrentPrice  *float64     `json:"current_price,omitempty"`
	FetchedAt     time.Time    `json:"fetched_at"`
}

// PriceBar is one daily OHLC record. Providers may leave any value null.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   *float64  `json:"open,omitempty"`
	High   *float64  `json:"high,omitempty"`
	Low    *float64  `json:"low,omitempty"`
	Close  *float64  `json:"close,omitempty"`
	Volume *int64    `json:"volume,omitempty"`
}

// PriceHistory is an ordered daily series over the lookback window
type PriceHistory []PriceBar

// Empty reports whether the provider returned no bars
func (h PriceHistory) Empty() bool {
	return len(h) == 0
}

// MinLow returns the lowest reported low. ok is false when no bar has a low.
func (h PriceHistory) MinLow() (low float64, ok bool) {
	for _, bar := range h {
		if bar.Low == nil {
			continue
		}
		if !ok || *bar.Low < low {
			low = *bar.Low
			ok = true
		}
	}
	return low, ok
}

// FloatOr dereferences p, falling back to def when absent
func FloatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// StringOr dereferences p, falling back to def when absent
func StringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

// Float returns a pointer to v (fixtures, adapters)
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to v (fixtures, adapters)
func String(v string) *string {
	return &v
}
