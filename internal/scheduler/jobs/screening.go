package jobs

import (
	"context"

	"github.com/wonny/schloss/internal/runner"
	"github.com/wonny/schloss/pkg/logger"
)

// ScreeningJob runs the full screening pipeline on a cron schedule
// ⭐ SSOT: 스크리닝 스케줄은 이 Job에서만
type ScreeningJob struct {
	runner   *runner.Runner
	schedule string
	logger   *logger.Logger
}

// NewScreeningJob creates a new screening job
func NewScreeningJob(r *runner.Runner, schedule string, log *logger.Logger) *ScreeningJob {
	return &ScreeningJob{
		runner:   r,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScreeningJob) Name() string {
	return "screening"
}

// Schedule returns the cron schedule (weekdays after the US close by default)
func (j *ScreeningJob) Schedule() string {
	return j.schedule
}

// Run executes one screening run
func (j *ScreeningJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled screening run")

	report, err := j.runner.Run(ctx)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{
		"run_id":   report.RunID,
		"universe": report.Universe,
		"snapshot": report.SnapshotPath,
		"notified": report.Notified,
	}
	if report.Result != nil {
		fields["qualifying"] = len(report.Result.Qualifying)
	}
	j.logger.WithFields(fields).Info("Scheduled screening run finished")

	return nil
}
