package screening

import (
	"strings"

	"github.com/wonny/schloss/internal/contracts"
)

// Screening thresholds
const (
	MinMarketCap      = 50e6
	MaxDebtToEquity   = 0.4
	MaxPriceToBook    = 1.2
	MinProfitMargin   = 0.0
	MinPrice          = 5.0
	MaxAboveLow       = 0.35 // price may sit at most 35% above the 3-year low
	defaultDebtEquity = 100.0
	defaultPriceBook  = 100.0
)

// excludedIndustries are matched case-insensitively as substrings
var excludedIndustries = []string{"financial", "real estate", "tobacco"}

// Rule names returned by Evaluate
const (
	RuleIndustry      = "industry"
	RuleExchange      = "exchange"
	RuleMarketCap     = "market_cap"
	RuleDebtToEquity  = "debt_to_equity"
	RulePriceToBook   = "price_to_book"
	RuleProfitMargins = "profit_margins"
	RuleHistory       = "history"
	RulePrice         = "price"
	RulePennyStock    = "penny_stock"
	RuleThreeYearLow  = "three_year_low"
	RuleNearLow       = "near_low"
)

// Qualifies reports whether the snapshot and history pass every rule
func Qualifies(snap *contracts.FundamentalsSnapshot, history contracts.PriceHistory) bool {
	return Evaluate(snap, history) == ""
}

// Evaluate checks the rules in order.
// Returns empty string if passed, otherwise returns the first failing rule.
// ⭐ SSOT: Walter Schloss 스크리닝 조건은 여기서만
func Evaluate(snap *contracts.FundamentalsSnapshot, history contracts.PriceHistory) string {
	if snap == nil {
		snap = &contracts.FundamentalsSnapshot{}
	}

	// 1. 업종 제외 (금융, 부동산, 담배)
	if industry := strings.ToLower(contracts.StringOr(snap.Industry, "")); industry != "" {
		for _, excluded := range excludedIndustries {
			if strings.Contains(industry, excluded) {
				return RuleIndustry
			}
		}
	}

	// 2. 장외(OTC) 제외
	if exchange := strings.ToLower(contracts.StringOr(snap.Exchange, "")); strings.Contains(exchange, "otc") {
		return RuleExchange
	}

	// 3. 시가총액 (없으면 0)
	if contracts.FloatOr(snap.MarketCap, 0) < MinMarketCap {
		return RuleMarketCap
	}

	// 4. 부채비율 (없으면 100); 0.4 itself passes
	// D/E is a ratio here (0.35); adapters convert percent values before this point
	if contracts.FloatOr(snap.DebtToEquity, defaultDebtEquity) > MaxDebtToEquity {
		return RuleDebtToEquity
	}

	// 5. PBR (없으면 100); 1.2 itself fails
	if contracts.FloatOr(snap.PriceToBook, defaultPriceBook) >= MaxPriceToBook {
		return RulePriceToBook
	}

	// 6. 순이익률 (없으면 0)
	if contracts.FloatOr(snap.ProfitMargins, 0) <= MinProfitMargin {
		return RuleProfitMargins
	}

	// 7. 가격 이력 필수
	if history.Empty() {
		return RuleHistory
	}

	// 8. 현재가 필수, 동전주 제외
	if snap.CurrentPrice == nil {
		return RulePrice
	}
	price := *snap.CurrentPrice
	if price < MinPrice {
		return RulePennyStock
	}

	// 9. 3년 저가 대비 35% 이내
	low, ok := history.MinLow()
	if !ok || low <= 0 {
		return RuleThreeYearLow
	}
	if (price-low)/low > MaxAboveLow {
		return RuleNearLow
	}

	return ""
}
