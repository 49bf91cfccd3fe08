package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/wonny/schloss/internal/contracts"
	"github.com/wonny/schloss/internal/external/nasdaqtrader"
	"github.com/wonny/schloss/internal/external/wikipedia"
	"github.com/wonny/schloss/internal/external/yahoo"
	"github.com/wonny/schloss/internal/metrics"
	"github.com/wonny/schloss/internal/notify"
	"github.com/wonny/schloss/internal/results"
	"github.com/wonny/schloss/internal/runner"
	"github.com/wonny/schloss/internal/screening"
	"github.com/wonny/schloss/internal/universe"
	"github.com/wonny/schloss/pkg/config"
	"github.com/wonny/schloss/pkg/httputil"
	"github.com/wonny/schloss/pkg/logger"
	"github.com/wonny/schloss/pkg/redis"
)

const (
	redisPrefix = "schloss"
	lockTTL     = 6 * time.Hour
)

// app holds the dependencies shared by every command
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	redis   *redis.Client
	metrics *metrics.Registry
	store   *results.Store
	source  *universe.Source
}

// loadApp reads configuration and wires the shared dependencies
func loadApp() (*app, error) {
	// 1. Load config
	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to Redis (disabled client is a no-op)
	rc, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	a := &app{
		cfg:   cfg,
		log:   log,
		redis: rc,
		store: results.NewStore(cfg.Storage, log),
	}
	if cfg.MetricsEnabled {
		a.metrics = metrics.NewRegistry(log)
	}

	// 4. Index providers → ticker source
	indexHTTP := httputil.New(log)
	providers := []contracts.IndexProvider{
		wikipedia.NewClient(indexHTTP, cfg.Wikipedia.BaseURL, wikipedia.SP500, log),
		nasdaqtrader.NewClient(indexHTTP, cfg.Nasdaq.ListedURL, log),
		wikipedia.NewClient(indexHTTP, cfg.Wikipedia.BaseURL, wikipedia.Dow, log),
	}
	a.source = universe.NewSource(cfg.Storage.TickerCachePath, providers, log)

	return a, nil
}

// Close releases external connections
func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
}

// newMarketData builds the Yahoo adapter. Retries belong to the fetcher, so
// the HTTP client never retries on its own.
func (a *app) newMarketData() *yahoo.Client {
	hc := httputil.New(a.log).DisableRetry().WithCookieJar()
	if a.redis.Enabled() {
		hc.WithRateLimiter(redis.NewRateLimiter(a.redis, redisPrefix), redis.YahooRateLimit)
	}
	return yahoo.NewClient(hc, a.cfg.Yahoo, a.log)
}

// newPipeline wires fetcher and pipeline with the configured pacing
func (a *app) newPipeline() *screening.Pipeline {
	sc := a.cfg.Screening
	fetcher := screening.NewFetcher(a.newMarketData(), screening.WallSleeper{}, screening.FetcherConfig{
		MaxRetries:     sc.MaxRetries,
		InitialBackoff: sc.InitialBackoff,
		LookbackYears:  sc.LookbackYears,
	}, a.log)
	pipeline := screening.NewPipeline(fetcher, screening.WallSleeper{}, sc.SymbolPause, a.log)

	if a.metrics != nil {
		fetcher.WithObserver(a.metrics)
		pipeline.WithObserver(a.metrics)
	}
	return pipeline
}

// newNotifier wires the OAuth2 token provider and SMTP transport
func (a *app) newNotifier() (*notify.Notifier, error) {
	conf, err := notify.LoadOAuthConfig(a.cfg.OAuth.ClientSecretPath)
	if err != nil {
		return nil, err
	}
	tokens := notify.NewFileTokenProvider(conf, a.cfg.OAuth.TokenPath, a.log)
	transport := notify.NewSMTPTransport(a.cfg.Mail, a.log)
	return notify.NewNotifier(tokens, transport, a.cfg.Mail.Subject, a.log), nil
}

// newRunner wires a full run writing console output to out
func (a *app) newRunner(out io.Writer) (*runner.Runner, error) {
	opts := runner.Options{
		Notify:          a.cfg.Mail.NotifyOnRun,
		Recipient:       a.cfg.Mail.User,
		MetricsTextfile: a.cfg.MetricsTextfile,
	}

	r := runner.New(a.source, a.newPipeline(), a.store, out, opts, a.log).
		WithLock(redis.NewRunLock(a.redis, redisPrefix, "run", lockTTL))

	if a.metrics != nil {
		r.WithMetrics(a.metrics)
	}

	if opts.Notify {
		n, err := a.newNotifier()
		if err != nil {
			return nil, err
		}
		r.WithNotifier(n)
	}

	return r, nil
}
