package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/logger"
)

func TestObserveVerdict(t *testing.T) {
	r := NewRegistry(logger.Nop())

	verdicts := []contracts.Verdict{
		{Symbol: "GT", Status: contracts.VerdictQualifies},
		{Symbol: "KSS", Status: contracts.VerdictQualifies},
		{Symbol: "AAPL", Status: contracts.VerdictRejected, Reason: "price_to_book"},
		{Symbol: "MSFT", Status: contracts.VerdictRejected, Reason: "price_to_book"},
		{Symbol: "F", Status: contracts.VerdictRejected, Reason: "debt_to_equity"},
		{Symbol: "$$", Status: contracts.VerdictSkipped},
		{Symbol: "XYZ", Status: contracts.VerdictError, Reason: "boom"},
	}
	for _, v := range verdicts {
		r.ObserveVerdict(v)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Verdicts.WithLabelValues("qualifies")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.Verdicts.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Verdicts.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Verdicts.WithLabelValues("error")))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Rejections.WithLabelValues("price_to_book")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Rejections.WithLabelValues("debt_to_equity")))
	// error text never becomes a label
	assert.Equal(t, 2, testutil.CollectAndCount(r.Rejections))
}

func TestObserveFetchAttempt(t *testing.T) {
	r := NewRegistry(logger.Nop())

	r.ObserveFetchAttempt("GT", 1, fmt.Errorf("quoteSummary: %w", contracts.ErrRateLimited))
	r.ObserveFetchAttempt("GT", 2, fmt.Errorf("quoteSummary: %w", contracts.ErrRateLimited))
	r.ObserveFetchAttempt("GT", 3, nil)
	r.ObserveFetchAttempt("XYZ", 1, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.FetchAttempts.WithLabelValues(AttemptOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.FetchAttempts.WithLabelValues(AttemptRateLimited)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.FetchAttempts.WithLabelValues(AttemptError)))
}

func TestObserveRun(t *testing.T) {
	r := NewRegistry(logger.Nop())

	result := &contracts.RunResult{Qualifying: []contracts.TickerSymbol{"GT", "KSS"}}
	r.ObserveRun(result, 500, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Qualifying))
	assert.Equal(t, 500.0, testutil.ToFloat64(r.UniverseSize))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Runs.WithLabelValues("success")))
	assert.Greater(t, testutil.ToFloat64(r.LastRunSuccess), 0.0)

	r.ObserveRun(result, 500, errors.New("audit log unwritable"))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Runs.WithLabelValues("failure")))
}

func TestHandler(t *testing.T) {
	r := NewRegistry(logger.Nop())
	r.ObserveVerdict(contracts.Verdict{Symbol: "GT", Status: contracts.VerdictQualifies})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `schloss_verdicts_total{status="qualifies"} 1`)
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry(logger.Nop())
	r.Qualifying.Set(3)

	path := filepath.Join(t.TempDir(), "schloss.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "schloss_qualifying_symbols 3")
}

func TestWriteTextfileBadPath(t *testing.T) {
	r := NewRegistry(logger.Nop())
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "schloss.prom"))
	assert.Error(t, err)
}
