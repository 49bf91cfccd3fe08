package universe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/logger"
)

type fakeProvider struct {
	name    string
	symbols []contracts.TickerSymbol
	err     error
	calls   int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Constituents(ctx context.Context) ([]contracts.TickerSymbol, error) {
	f.calls++
	return f.symbols, f.err
}

func TestLoadFromCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "us_stocks.txt")
	require.NoError(t, os.WriteFile(path, []byte("AAPL\n\n  MSFT  \n$$\nGT\n   \n"), 0o644))

	p := &fakeProvider{name: "sp500"}
	src := NewSource(path, []contracts.IndexProvider{p}, logger.Nop())

	got, err := src.Load(context.Background())
	require.NoError(t, err)

	// verbatim: order kept, invalid symbol kept
	assert.Equal(t, []contracts.TickerSymbol{"AAPL", "MSFT", "$$", "GT"}, got)
	assert.Equal(t, 0, p.calls, "cache hit must not call providers")
}

func TestLoadGeneratesCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "us_stocks.txt")

	sp500 := &fakeProvider{name: "sp500", symbols: []contracts.TickerSymbol{"MSFT", "AAPL"}}
	nasdaq := &fakeProvider{name: "nasdaq", symbols: []contracts.TickerSymbol{"AAPL", "ZION"}}
	dow := &fakeProvider{name: "dow", symbols: []contracts.TickerSymbol{"BA", "MSFT"}}

	src := NewSource(path, []contracts.IndexProvider{sp500, nasdaq, dow}, logger.Nop())

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	want := []contracts.TickerSymbol{"AAPL", "BA", "MSFT", "ZION"}
	assert.Equal(t, want, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "AAPL\nBA\nMSFT\nZION\n", string(data))

	// second load reads the cache
	again, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, again)
	assert.Equal(t, 1, sp500.calls)
}

func TestLoadProviderFailureDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "us_stocks.txt")

	ok := &fakeProvider{name: "sp500", symbols: []contracts.TickerSymbol{"AAPL"}}
	bad := &fakeProvider{name: "nasdaq", err: errors.New("connection reset")}

	src := NewSource(path, []contracts.IndexProvider{ok, bad}, logger.Nop())

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "no cache on failure")
}

func TestLoadUnreadableCacheDegradesToEmpty(t *testing.T) {
	// a directory where the cache file should be
	path := t.TempDir()

	p := &fakeProvider{name: "sp500", symbols: []contracts.TickerSymbol{"AAPL"}}
	got, err := NewSource(path, []contracts.IndexProvider{p}, logger.Nop()).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, p.calls)
}

func TestRefreshOverwritesCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "us_stocks.txt")
	require.NoError(t, os.WriteFile(path, []byte("OLD\n"), 0o644))

	p := &fakeProvider{name: "dow", symbols: []contracts.TickerSymbol{"V", "MMM"}}
	got, err := NewSource(path, []contracts.IndexProvider{p}, logger.Nop()).Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []contracts.TickerSymbol{"MMM", "V"}, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "MMM\nV\n", string(data))
}
