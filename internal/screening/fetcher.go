package screening

import (
	"context"
	"time"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/logger"
)

// FetcherConfig controls retry and lookback
type FetcherConfig struct {
	MaxRetries     int           // total attempts per symbol
	InitialBackoff time.Duration // doubles after each rate-limited attempt
	LookbackYears  int
}

// DefaultFetcherConfig returns 3 attempts, 1s initial backoff, 3 years
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		MaxRetries:     3,
		InitialBackoff: time.Second,
		LookbackYears:  3,
	}
}

// Fetcher retrieves fundamentals and history for one symbol, retrying rate limits
// ⭐ SSOT: 종목 데이터 fetch + 재시도 정책은 여기서만
type Fetcher struct {
	market   contracts.MarketData
	sleeper  contracts.Sleeper
	observer contracts.ScreeningObserver
	config   FetcherConfig
	logger   *logger.Logger
}

// NewFetcher creates a new fetcher
func NewFetcher(market contracts.MarketData, sleeper contracts.Sleeper, config FetcherConfig, log *logger.Logger) *Fetcher {
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}
	return &Fetcher{
		market:  market,
		sleeper: sleeper,
		config:  config,
		logger:  log,
	}
}

// WithObserver reports every attempt to o
func (f *Fetcher) WithObserver(o contracts.ScreeningObserver) *Fetcher {
	f.observer = o
	return f
}

// Fetch returns the snapshot and history for symbol.
//
// Rate-limited attempts wait InitialBackoff, 2x, 4x... and are retried up
// to MaxRetries attempts in total; the wait also follows the last attempt.
// Exhaustion yields *contracts.FetchError. Any other failure is returned at
// once as *contracts.ProviderError.
func (f *Fetcher) Fetch(ctx context.Context, symbol contracts.TickerSymbol) (*contracts.FundamentalsSnapshot, contracts.PriceHistory, error) {
	delay := f.config.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= f.config.MaxRetries; attempt++ {
		snap, history, err := f.fetchOnce(ctx, symbol)
		if f.observer != nil {
			f.observer.ObserveFetchAttempt(symbol, attempt, err)
		}
		if err == nil {
			return snap, history, nil
		}
		if !contracts.IsRateLimited(err) {
			return nil, nil, err
		}

		lastErr = err
		f.logger.WithSymbol(symbol.String()).WithFields(map[string]interface{}{
			"attempt": attempt,
			"delay":   delay.String(),
		}).Warnf("Rate limit hit for %s. Retrying in %s...", symbol, delay)

		if err := f.sleeper.Sleep(ctx, delay); err != nil {
			return nil, nil, err
		}
		delay *= 2
	}

	return nil, nil, &contracts.FetchError{
		Symbol:   symbol,
		Attempts: f.config.MaxRetries,
		Err:      lastErr,
	}
}

// fetchOnce makes one attempt. Rate limits pass through unwrapped so the
// caller can retry; everything else becomes a ProviderError.
func (f *Fetcher) fetchOnce(ctx context.Context, symbol contracts.TickerSymbol) (*contracts.FundamentalsSnapshot, contracts.PriceHistory, error) {
	snap, err := f.market.Fundamentals(ctx, symbol)
	if err != nil {
		return nil, nil, providerError(symbol, "fundamentals", err)
	}

	history, err := f.market.History(ctx, symbol, f.config.LookbackYears)
	if err != nil {
		return nil, nil, providerError(symbol, "history", err)
	}

	return snap, history, nil
}

func providerError(symbol contracts.TickerSymbol, op string, err error) error {
	if contracts.IsRateLimited(err) {
		return err
	}
	return &contracts.ProviderError{Symbol: symbol, Op: op, Err: err}
}
