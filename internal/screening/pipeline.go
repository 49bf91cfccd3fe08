package screening

import (
	"context"
	"time"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/logger"
)

// Pipeline drives Fetcher and the qualifier across a universe, one symbol at a time
// ⭐ SSOT: 종목 순차 스크리닝은 여기서만
type Pipeline struct {
	fetcher  *Fetcher
	sleeper  contracts.Sleeper
	pause    time.Duration
	observer contracts.ScreeningObserver
	logger   *logger.Logger
	now      func() time.Time
}

// NewPipeline creates a pipeline pausing `pause` after each fetched symbol (0 disables)
func NewPipeline(fetcher *Fetcher, sleeper contracts.Sleeper, pause time.Duration, log *logger.Logger) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		sleeper: sleeper,
		pause:   pause,
		logger:  log,
		now:     time.Now,
	}
}

// WithObserver reports every verdict to o
func (p *Pipeline) WithObserver(o contracts.ScreeningObserver) *Pipeline {
	p.observer = o
	return p
}

// Run screens symbols in input order. Per-symbol failures are recorded as
// error verdicts; the run itself never fails.
func (p *Pipeline) Run(ctx context.Context, symbols []contracts.TickerSymbol) *contracts.RunResult {
	result := &contracts.RunResult{
		Audit:     make([]contracts.Verdict, 0, len(symbols)),
		StartedAt: p.now(),
	}

	for _, symbol := range symbols {
		if !symbol.IsValid() {
			p.logger.WithSymbol(symbol.String()).Infof("Skipping invalid ticker: %s", symbol)
			p.record(result, contracts.Verdict{Symbol: symbol, Status: contracts.VerdictSkipped})
			continue
		}

		// cancelled runs still account for every symbol
		if err := ctx.Err(); err != nil {
			p.record(result, contracts.Verdict{Symbol: symbol, Status: contracts.VerdictError, Reason: err.Error()})
			continue
		}

		p.record(result, p.screen(ctx, symbol))

		// 요청 간격 유지 (rate limit 완화)
		if p.pause > 0 {
			_ = p.sleeper.Sleep(ctx, p.pause)
		}
	}

	result.FinishedAt = p.now()

	p.logger.WithFields(map[string]interface{}{
		"total":      len(symbols),
		"qualifying": len(result.Qualifying),
		"rejected":   result.Count(contracts.VerdictRejected),
		"errors":     result.Count(contracts.VerdictError),
		"skipped":    result.Count(contracts.VerdictSkipped),
		"duration":   result.FinishedAt.Sub(result.StartedAt).String(),
	}).Info("Screening completed")

	return result
}

// screen fetches and evaluates one valid symbol
func (p *Pipeline) screen(ctx context.Context, symbol contracts.TickerSymbol) contracts.Verdict {
	log := p.logger.WithSymbol(symbol.String())
	log.Infof("Processing ticker: %s", symbol)

	snap, history, err := p.fetcher.Fetch(ctx, symbol)
	if err != nil {
		log.WithError(err).Errorf("%s - Error: %v", symbol, err)
		return contracts.Verdict{Symbol: symbol, Status: contracts.VerdictError, Reason: err.Error()}
	}

	fields := map[string]interface{}{
		"industry":       contracts.StringOr(snap.Industry, ""),
		"market_cap":     snap.MarketCap,
		"debt_to_equity": snap.DebtToEquity,
		"price_to_book":  snap.PriceToBook,
		"profit_margins": snap.ProfitMargins,
		"three_year_low": "N/A",
		"current_price":  "N/A",
	}
	if !history.Empty() {
		if low, ok := history.MinLow(); ok {
			fields["three_year_low"] = low
		}
		fields["current_price"] = snap.CurrentPrice
	}

	rule := Evaluate(snap, history)
	if rule == "" {
		log.WithFields(fields).Info("=> Qualifies")
		return contracts.Verdict{Symbol: symbol, Status: contracts.VerdictQualifies}
	}

	fields["failed_rule"] = rule
	log.WithFields(fields).Info("=> Does not qualify")
	return contracts.Verdict{Symbol: symbol, Status: contracts.VerdictRejected, Reason: rule}
}

func (p *Pipeline) record(result *contracts.RunResult, v contracts.Verdict) {
	result.Record(v)
	if p.observer != nil {
		p.observer.ObserveVerdict(v)
	}
}
