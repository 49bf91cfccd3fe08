package yahoo

// --- Yahoo Finance API response types ---

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yfNum is Yahoo's {raw, fmt} number. Missing values arrive as {} so Raw stays nil.
type yfNum struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

// value returns nil when the field or its raw value is absent
func (n *yfNum) value() *float64 {
	if n == nil {
		return nil
	}
	return n.Raw
}

// yfQuoteSummaryResponse wraps the v10 quoteSummary API response.
type yfQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []yfQuoteSummaryResult `json:"result"`
		Error  *yfError               `json:"error"`
	} `json:"quoteSummary"`
}

type yfQuoteSummaryResult struct {
	AssetProfile         *yfAssetProfile         `json:"assetProfile"`
	Price                *yfPrice                `json:"price"`
	SummaryDetail        *yfSummaryDetail        `json:"summaryDetail"`
	DefaultKeyStatistics *yfDefaultKeyStatistics `json:"defaultKeyStatistics"`
	FinancialData        *yfFinancialData        `json:"financialData"`
}

type yfAssetProfile struct {
	Industry string `json:"industry"`
	Sector   string `json:"sector"`
}

type yfPrice struct {
	Symbol             string `json:"symbol"`
	Exchange           string `json:"exchange"`
	ExchangeName       string `json:"exchangeName"`
	QuoteType          string `json:"quoteType"`
	RegularMarketPrice *yfNum `json:"regularMarketPrice"`
	MarketCap          *yfNum `json:"marketCap"`
}

type yfSummaryDetail struct {
	MarketCap *yfNum `json:"marketCap"`
}

type yfDefaultKeyStatistics struct {
	PriceToBook   *yfNum `json:"priceToBook"`
	ProfitMargins *yfNum `json:"profitMargins"`
}

type yfFinancialData struct {
	CurrentPrice  *yfNum `json:"currentPrice"`
	DebtToEquity  *yfNum `json:"debtToEquity"` // percent
	ProfitMargins *yfNum `json:"profitMargins"`
}

// yfChartResponse wraps the v8 chart API response.
type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol       string `json:"symbol"`
	Currency     string `json:"currency"`
	ExchangeName string `json:"exchangeName"`
	Timezone     string `json:"exchangeTimezoneName"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}
