package jobs

import (
	"context"
	"errors"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/pkg/logger"
)

// UniverseRefresher rebuilds the ticker cache
type UniverseRefresher interface {
	Refresh(ctx context.Context) ([]contracts.TickerSymbol, error)
}

// UniverseJob rebuilds the ticker cache from the index providers
// ⭐ SSOT: 티커 캐시 갱신 스케줄은 이 Job에서만
type UniverseJob struct {
	source   UniverseRefresher
	schedule string
	logger   *logger.Logger
}

// NewUniverseJob creates a new universe refresh job
func NewUniverseJob(source UniverseRefresher, schedule string, log *logger.Logger) *UniverseJob {
	return &UniverseJob{
		source:   source,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *UniverseJob) Name() string {
	return "universe_refresh"
}

// Schedule returns the cron schedule
func (j *UniverseJob) Schedule() string {
	return j.schedule
}

// Run rebuilds the cache. An empty result means every provider failed and
// the previous cache was left as it was.
func (j *UniverseJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled universe refresh")

	symbols, err := j.source.Refresh(ctx)
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		return errors.New("universe refresh produced no symbols")
	}

	j.logger.WithField("count", len(symbols)).Info("Universe refreshed")
	return nil
}
