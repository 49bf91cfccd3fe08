package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/schloss/internal/api"
	"github.com/wonny/schloss/internal/api/handlers"
	"github.com/wonny/schloss/internal/scheduler"
	"github.com/wonny/schloss/internal/scheduler/jobs"
)

var runNow bool

// scheduleCmd runs the screener as a daemon
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the screener on a cron schedule",
	Long: `Starts the scheduler daemon.

Registered jobs:
- screening: full run on SCHEDULE_CRON (default weekdays 18:00)
- universe_refresh: ticker cache rebuild on UNIVERSE_REFRESH_CRON (off by default)

An HTTP endpoint on METRICS_PORT serves /health, /metrics and /api/jobs.
Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().BoolVar(&runNow, "run-now", false, "run the screening job once at startup")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	sched, err := initScheduler(a)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	PrintHeader("Schloss Scheduler")
	sched.Start()

	stats := sched.GetJobStats()
	for _, name := range sched.GetAllJobs() {
		next := "-"
		if st := stats[name]; st.NextRun != nil {
			next = st.NextRun.Format("2006-01-02 15:04:05")
		}
		PrintKeyValue(name, fmt.Sprintf("%s (next %s)", stats[name].Schedule, next), 18)
	}

	var srv *api.Server
	if a.cfg.MetricsEnabled {
		router := api.NewRouter(
			handlers.NewJobsHandler(sched, a.log),
			handlers.NewResultsHandler(a.store, a.log),
			a.metrics.Handler(),
			a.log,
		)
		srv = api.New(a.cfg.MetricsPort, a.log, router)
		go func() {
			if err := srv.Start(); err != nil {
				a.log.WithError(err).Error("API server failed")
				cancel()
			}
		}()
		PrintInfo(fmt.Sprintf("HTTP endpoint on :%s", a.cfg.MetricsPort))
	}

	if runNow {
		go func() {
			if err := sched.RunJob("screening"); err != nil {
				a.log.WithError(err).Warn("Startup run not started")
			}
		}()
	}

	PrintSuccess("Scheduler started. Press Ctrl+C to stop")
	<-ctx.Done()

	fmt.Println("\nShutting down scheduler...")
	if srv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.WithError(err).Warn("API server shutdown")
		}
	}
	sched.Stop()
	PrintSuccess("Scheduler stopped")
	return nil
}

func initScheduler(a *app) (*scheduler.Scheduler, error) {
	r, err := a.newRunner(os.Stdout)
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(a.log)

	if err := sched.AddJob(jobs.NewScreeningJob(r, a.cfg.ScheduleCron, a.log)); err != nil {
		return nil, err
	}

	if a.cfg.UniverseRefreshCron != "" {
		if err := sched.AddJob(jobs.NewUniverseJob(a.source, a.cfg.UniverseRefreshCron, a.log)); err != nil {
			return nil, err
		}
	}

	return sched, nil
}
