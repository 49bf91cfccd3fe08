package jobs

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/internal/runner"
	"github.com/wonny/schloss/pkg/logger"
)

type staticUniverse []contracts.TickerSymbol

func (u staticUniverse) Load(ctx context.Context) ([]contracts.TickerSymbol, error) {
	return u, nil
}

type passAll struct{}

func (passAll) Run(ctx context.Context, symbols []contracts.TickerSymbol) *contracts.RunResult {
	result := &contracts.RunResult{}
	for _, s := range symbols {
		result.Record(contracts.Verdict{Symbol: s, Status: contracts.VerdictQualifies})
	}
	return result
}

type memStore struct {
	err       error
	snapshots int
}

func (m *memStore) AppendAudit(result *contracts.RunResult) error { return m.err }

func (m *memStore) SaveSnapshot(qualifying []contracts.TickerSymbol) (string, error) {
	m.snapshots++
	return "results/results_x.txt", nil
}

func TestScreeningJob(t *testing.T) {
	store := &memStore{}
	var out bytes.Buffer
	r := runner.New(staticUniverse{"GT", "KSS"}, passAll{}, store, &out, runner.Options{}, logger.Nop())

	job := NewScreeningJob(r, "0 0 18 * * MON-FRI", logger.Nop())
	assert.Equal(t, "screening", job.Name())
	assert.Equal(t, "0 0 18 * * MON-FRI", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, store.snapshots)
	assert.Contains(t, out.String(), "GT\nKSS\n")
}

func TestScreeningJobPropagatesFailure(t *testing.T) {
	store := &memStore{err: &contracts.PersistenceError{Op: "open audit log", Path: "x", Err: errors.New("read-only")}}
	var out bytes.Buffer
	r := runner.New(staticUniverse{"GT"}, passAll{}, store, &out, runner.Options{}, logger.Nop())

	err := NewScreeningJob(r, "@daily", logger.Nop()).Run(context.Background())

	var pe *contracts.PersistenceError
	assert.ErrorAs(t, err, &pe)
}

type fakeRefresher struct {
	symbols []contracts.TickerSymbol
	err     error
}

func (f *fakeRefresher) Refresh(ctx context.Context) ([]contracts.TickerSymbol, error) {
	return f.symbols, f.err
}

func TestUniverseJob(t *testing.T) {
	tests := []struct {
		name    string
		source  *fakeRefresher
		wantErr bool
	}{
		{"refreshed", &fakeRefresher{symbols: []contracts.TickerSymbol{"AAPL", "MSFT"}}, false},
		{"providers failed", &fakeRefresher{}, true},
		{"error", &fakeRefresher{err: errors.New("boom")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewUniverseJob(tt.source, "0 0 6 * * SUN", logger.Nop())
			assert.Equal(t, "universe_refresh", job.Name())

			err := job.Run(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
