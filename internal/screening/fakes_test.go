package screening

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/schloss/internal/contracts"
)

// recordingSleeper records requested waits without blocking
type recordingSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func (s *recordingSleeper) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

var errRateLimited = fmt.Errorf("%w: HTTP 429", contracts.ErrRateLimited)

// fakeMarket serves fixtures per symbol. Errors in fundErrs are consumed
// one per Fundamentals call before the fixture is returned.
type fakeMarket struct {
	mu        sync.Mutex
	snapshots map[contracts.TickerSymbol]*contracts.FundamentalsSnapshot
	histories map[contracts.TickerSymbol]contracts.PriceHistory
	fundErrs  map[contracts.TickerSymbol][]error
	histErr   map[contracts.TickerSymbol]error
	always    map[contracts.TickerSymbol]error
	calls     map[contracts.TickerSymbol]int
	years     int
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		snapshots: make(map[contracts.TickerSymbol]*contracts.FundamentalsSnapshot),
		histories: make(map[contracts.TickerSymbol]contracts.PriceHistory),
		fundErrs:  make(map[contracts.TickerSymbol][]error),
		histErr:   make(map[contracts.TickerSymbol]error),
		always:    make(map[contracts.TickerSymbol]error),
		calls:     make(map[contracts.TickerSymbol]int),
	}
}

func (m *fakeMarket) set(symbol contracts.TickerSymbol, snap *contracts.FundamentalsSnapshot, history contracts.PriceHistory) {
	snap.Symbol = symbol
	m.snapshots[symbol] = snap
	m.histories[symbol] = history
}

func (m *fakeMarket) Fundamentals(ctx context.Context, symbol contracts.TickerSymbol) (*contracts.FundamentalsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[symbol]++

	if err := m.always[symbol]; err != nil {
		return nil, err
	}
	if errs := m.fundErrs[symbol]; len(errs) > 0 {
		m.fundErrs[symbol] = errs[1:]
		return nil, errs[0]
	}
	snap, ok := m.snapshots[symbol]
	if !ok {
		return nil, contracts.ErrSymbolNotFound
	}
	return snap, nil
}

func (m *fakeMarket) History(ctx context.Context, symbol contracts.TickerSymbol, years int) (contracts.PriceHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.years = years
	if err := m.histErr[symbol]; err != nil {
		return nil, err
	}
	return m.histories[symbol], nil
}

func (m *fakeMarket) Calls(symbol contracts.TickerSymbol) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

// goodSnapshot passes every fundamentals rule
func goodSnapshot() *contracts.FundamentalsSnapshot {
	return &contracts.FundamentalsSnapshot{
		Industry:      contracts.String("Auto Parts"),
		Exchange:      contracts.String("NYSE"),
		MarketCap:     contracts.Float(2.6e9),
		DebtToEquity:  contracts.Float(0.2),
		PriceToBook:   contracts.Float(0.8),
		ProfitMargins: contracts.Float(0.05),
		CurrentPrice:  contracts.Float(6),
	}
}

// historyWithLow builds a three-bar history whose minimum low is low
func historyWithLow(low float64) contracts.PriceHistory {
	start := time.Date(2023, 10, 2, 0, 0, 0, 0, time.UTC)
	return contracts.PriceHistory{
		{Date: start, Low: contracts.Float(low + 2)},
		{Date: start.AddDate(0, 6, 0), Low: contracts.Float(low)},
		{Date: start.AddDate(1, 0, 0), Low: contracts.Float(low + 1)},
	}
}

type observed struct {
	verdicts []contracts.Verdict
	attempts []error
}

func (o *observed) ObserveVerdict(v contracts.Verdict) {
	o.verdicts = append(o.verdicts, v)
}

func (o *observed) ObserveFetchAttempt(symbol contracts.TickerSymbol, attempt int, err error) {
	o.attempts = append(o.attempts, err)
}

var errBoom = errors.New("boom")
