package contracts

import (
	"context"
	"time"
)

// MarketData supplies fundamentals and daily history per symbol.
// Rate-limit failures must wrap ErrRateLimited.
// ⭐ SSOT: 시세/재무 데이터 제공자 인터페이스
type MarketData interface {
	Fundamentals(ctx context.Context, symbol TickerSymbol) (*FundamentalsSnapshot, error)
	History(ctx context.Context, symbol TickerSymbol, years int) (PriceHistory, error)
}

// IndexProvider supplies the constituents of one index or listing
// ⭐ SSOT: 지수 구성 종목 제공자 인터페이스
type IndexProvider interface {
	Name() string
	Constituents(ctx context.Context) ([]TickerSymbol, error)
}

// Sleeper blocks for d or until ctx is done
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TokenProvider returns a current OAuth2 access token.
// Failures wrap ErrAuth.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// ScreeningObserver receives pipeline events (metrics)
type ScreeningObserver interface {
	ObserveVerdict(v Verdict)
	ObserveFetchAttempt(symbol TickerSymbol, attempt int, err error)
}
