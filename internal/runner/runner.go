package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/internal/metrics"
	"github.com/wonny/schloss/pkg/logger"
)

// UniverseLoader yields the symbols for one run
type UniverseLoader interface {
	Load(ctx context.Context) ([]contracts.TickerSymbol, error)
}

// Screener screens a symbol list
type Screener interface {
	Run(ctx context.Context, symbols []contracts.TickerSymbol) *contracts.RunResult
}

// ResultStore persists a finished run
type ResultStore interface {
	AppendAudit(result *contracts.RunResult) error
	SaveSnapshot(qualifying []contracts.TickerSymbol) (string, error)
}

// Notifier sends the qualifying list
type Notifier interface {
	Notify(ctx context.Context, qualifying []contracts.TickerSymbol, recipient string) error
}

// Locker keeps two runs off the same output directory
type Locker interface {
	Acquire(ctx context.Context, owner string) error
	Release(ctx context.Context, owner string) error
}

// Options control the optional stages
type Options struct {
	Notify          bool
	Recipient       string
	MetricsTextfile string
}

// Report summarizes one run
type Report struct {
	RunID           string
	StartedAt       time.Time
	Success         bool
	CompletedStages []contracts.Stage
	StageDurations  map[contracts.Stage]time.Duration
	Universe        int
	Result          *contracts.RunResult
	SnapshotPath    string
	Notified        bool
	Duration        time.Duration
}

// Runner coordinates a single load → screen → persist → notify run
// ⭐ SSOT: 실행 조율은 여기서만
type Runner struct {
	universe UniverseLoader
	screener Screener
	store    ResultStore
	notifier Notifier
	lock     Locker
	metrics  *metrics.Registry
	opts     Options
	out      io.Writer
	logger   *logger.Logger
}

// New creates a runner. Console output (the qualifying list) goes to out.
func New(universe UniverseLoader, screener Screener, store ResultStore, out io.Writer, opts Options, log *logger.Logger) *Runner {
	return &Runner{
		universe: universe,
		screener: screener,
		store:    store,
		opts:     opts,
		out:      out,
		logger:   log,
	}
}

// WithNotifier enables the notify stage when opts.Notify is set
func (r *Runner) WithNotifier(n Notifier) *Runner {
	r.notifier = n
	return r
}

// WithLock guards each run with l
func (r *Runner) WithLock(l Locker) *Runner {
	r.lock = l
	return r
}

// WithMetrics records stage durations and run outcome in m
func (r *Runner) WithMetrics(m *metrics.Registry) *Runner {
	r.metrics = m
	return r
}

// Run executes one run. Per-symbol failures never fail the run; persistence
// and notification failures are returned. Notification runs only after
// persistence succeeded.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:          uuid.NewString(),
		StartedAt:      time.Now(),
		StageDurations: make(map[contracts.Stage]time.Duration),
	}
	log := r.logger.WithField("run_id", report.RunID)

	if r.lock != nil {
		if err := r.lock.Acquire(ctx, report.RunID); err != nil {
			log.WithError(err).Warn("Run skipped: lock not acquired")
			return report, err
		}
		defer func() {
			// release even when ctx was cancelled mid-run
			if err := r.lock.Release(context.Background(), report.RunID); err != nil {
				log.WithError(err).Warn("Failed to release run lock")
			}
		}()
	}

	log.Info("Starting screening run")

	err := r.run(ctx, report, log)
	report.Duration = time.Since(report.StartedAt)
	report.Success = err == nil

	if r.metrics != nil {
		r.metrics.ObserveRun(report.Result, report.Universe, err)
		if r.opts.MetricsTextfile != "" {
			if werr := r.metrics.WriteTextfile(r.opts.MetricsTextfile); werr != nil {
				log.WithError(werr).Warn("Failed to write metrics textfile")
			}
		}
	}

	fields := map[string]interface{}{
		"success":  report.Success,
		"universe": report.Universe,
		"duration": report.Duration.String(),
		"stages":   len(report.CompletedStages),
	}
	if report.Result != nil {
		fields["qualifying"] = len(report.Result.Qualifying)
	}
	if err != nil {
		log.WithFields(fields).WithError(err).Error("Screening run failed")
	} else {
		log.WithFields(fields).Info("Screening run completed")
	}

	return report, err
}

func (r *Runner) run(ctx context.Context, report *Report, log *logger.Logger) error {
	// UNIVERSE
	var symbols []contracts.TickerSymbol
	r.stage(report, contracts.StageUniverse, func() error {
		var err error
		symbols, err = r.universe.Load(ctx)
		if err != nil {
			// an unreadable universe degrades to an empty one
			log.WithError(err).Error("Error loading tickers")
			symbols = nil
		}
		return nil
	})
	report.Universe = len(symbols)

	if len(symbols) == 0 {
		fmt.Fprintln(r.out, "No tickers loaded. Exiting.")
		log.Warn("No tickers loaded. Exiting.")
		return nil
	}

	// SCREENING
	r.stage(report, contracts.StageScreening, func() error {
		report.Result = r.screener.Run(ctx, symbols)
		return nil
	})
	printQualifying(r.out, report.Result.Qualifying)

	// PERSIST
	err := r.stage(report, contracts.StagePersist, func() error {
		if err := r.store.AppendAudit(report.Result); err != nil {
			return err
		}
		path, err := r.store.SaveSnapshot(report.Result.Qualifying)
		report.SnapshotPath = path
		return err
	})
	if err != nil {
		return fmt.Errorf("%s failed: %w", contracts.StagePersist, err)
	}

	// NOTIFY
	if !r.opts.Notify || r.notifier == nil {
		return nil
	}
	if r.opts.Recipient == "" {
		log.Warn("Notification enabled without a recipient, skipping")
		return nil
	}
	err = r.stage(report, contracts.StageNotify, func() error {
		return r.notifier.Notify(ctx, report.Result.Qualifying, r.opts.Recipient)
	})
	if err != nil {
		return fmt.Errorf("%s failed: %w", contracts.StageNotify, err)
	}
	report.Notified = true

	return nil
}

// stage times fn and records it as completed when it returns nil
func (r *Runner) stage(report *Report, stage contracts.Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)

	report.StageDurations[stage] = d
	if r.metrics != nil {
		r.metrics.StageDuration.WithLabelValues(stage.String()).Observe(d.Seconds())
	}
	if err == nil {
		report.CompletedStages = append(report.CompletedStages, stage)
	}

	r.logger.WithFields(map[string]interface{}{
		"stage":    stage.String(),
		"duration": d.String(),
		"ok":       err == nil,
	}).Debug("Stage finished")
	return err
}

// printQualifying writes the console summary
func printQualifying(w io.Writer, qualifying []contracts.TickerSymbol) {
	if len(qualifying) == 0 {
		fmt.Fprintln(w, "\nNo stocks met the criteria.")
		return
	}
	fmt.Fprintln(w, "\nStocks meeting Walter Schloss criteria:")
	for _, s := range qualifying {
		fmt.Fprintln(w, s)
	}
}
