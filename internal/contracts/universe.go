package contracts

import (
	"fmt"
	"sort"
	"strings"
)

// TickerSymbol identifies one equity (e.g. "AAPL", "BRK-B")
// ⭐ SSOT: 종목 심볼 타입
type TickerSymbol string

// NewTickerSymbol trims raw and validates it
func NewTickerSymbol(raw string) (TickerSymbol, error) {
	s := TickerSymbol(strings.TrimSpace(raw))
	if !s.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, raw)
	}
	return s, nil
}

// NormalizeSymbol converts an index-provider symbol to the form the market
// data provider expects: upper case, class shares written with '-'
// (BRK.B → BRK-B).
func NormalizeSymbol(raw string) TickerSymbol {
	s := strings.ToUpper(strings.TrimSpace(raw))
	return TickerSymbol(strings.ReplaceAll(s, ".", "-"))
}

// IsValid reports whether the symbol contains at least one ASCII letter or digit
func (s TickerSymbol) IsValid() bool {
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return true
		}
	}
	return false
}

// String returns the symbol text
func (s TickerSymbol) String() string {
	return string(s)
}

// UnionSymbols merges symbol lists into a sorted set.
// Empty symbols are dropped.
func UnionSymbols(lists ...[]TickerSymbol) []TickerSymbol {
	seen := make(map[TickerSymbol]struct{})
	for _, list := range lists {
		for _, s := range list {
			if s == "" {
				continue
			}
			seen[s] = struct{}{}
		}
	}

	out := make([]TickerSymbol, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SymbolStrings converts symbols to plain strings (file output, mail body)
func SymbolStrings(symbols []TickerSymbol) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = string(s)
	}
	return out
}
