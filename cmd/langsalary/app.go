package main

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/fr4nk3nst1ner/langsalary/internal/aggregator"
	"github.com/fr4nk3nst1ner/langsalary/internal/cache"
	"github.com/fr4nk3nst1ner/langsalary/internal/cache/memory"
	"github.com/fr4nk3nst1ner/langsalary/internal/cache/redis"
	"github.com/fr4nk3nst1ner/langsalary/internal/client"
	"github.com/fr4nk3nst1ner/langsalary/internal/config"
	"github.com/fr4nk3nst1ner/langsalary/internal/messaging"
	"github.com/fr4nk3nst1ner/langsalary/internal/metrics"
	"github.com/fr4nk3nst1ner/langsalary/internal/models"
	"github.com/fr4nk3nst1ner/langsalary/internal/scraper"
	"github.com/fr4nk3nst1ner/langsalary/internal/store"
	"github.com/fr4nk3nst1ner/langsalary/internal/store/sqlite"
	"github.com/fr4nk3nst1ner/langsalary/internal/telemetry"
	"github.com/fr4nk3nst1ner/langsalary/internal/ui"
)

const deliverTimeout = 10 * time.Second

// app owns everything built from the configuration for one run
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	cache     cache.Cache
	metrics   *metrics.Metrics
	store     store.Store
	publisher messaging.Publisher
	fetchers  []scraper.Fetcher
	closers   []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:       cfg,
		logger:    logger,
		cache:     cache.Nop{},
		metrics:   metrics.New(),
		store:     &store.NopStore{},
		publisher: messaging.NopPublisher{},
	}

	if cfg.OTel.CollectorURL != "" {
		shutdown, err := telemetry.InitTracer(ctx, "langsalary", version, cfg.OTel.CollectorURL)
		if err != nil {
			logger.Warn("tracing disabled", zap.Error(err))
		} else {
			a.closers = append(a.closers, shutdown)
		}
	}

	if err := a.setupCache(ctx); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.HistoryPath != "" {
		s, err := sqlite.New(cfg.HistoryPath)
		if err != nil {
			logger.Warn("history disabled", zap.String("path", cfg.HistoryPath), zap.Error(err))
		} else {
			a.store = s
		}
	}

	if cfg.NATS.URL != "" {
		p, err := messaging.NewPublisher(cfg.NATS.URL, cfg.NATS.Subject, logger)
		if err != nil {
			logger.Warn("report publishing disabled", zap.String("url", cfg.NATS.URL), zap.Error(err))
		} else {
			a.publisher = p
		}
	}

	if err := a.setupFetchers(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) setupCache(ctx context.Context) error {
	opts := cache.DefaultOptions()
	if a.cfg.Cache.TTL > 0 {
		opts.DefaultTTL = a.cfg.Cache.TTL
	}

	switch a.cfg.Cache.Backend {
	case config.CacheMemory:
		a.cache = memory.New(opts)
	case config.CacheRedis:
		opts.RedisURL = a.cfg.Cache.RedisAddr
		opts.RedisPassword = a.cfg.Cache.RedisPassword
		opts.RedisDB = a.cfg.Cache.RedisDB
		c := redis.New(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := c.Ping(pingCtx); err != nil {
			_ = c.Close()
			a.logger.Warn("redis cache unreachable, continuing without cache",
				zap.String("addr", opts.RedisURL), zap.Error(err))
			return nil
		}
		a.cache = c
	}
	return nil
}

func (a *app) setupFetchers() error {
	httpClient := client.CreateProxyHTTPClient(a.cfg.Proxy, a.cfg.RequestTimeout)
	base := scraper.Options{
		PageDelay:       a.cfg.PageDelay,
		RateLimitPerSec: a.cfg.RateLimitPerSec,
		HTTPClient:      httpClient,
		Cache:           a.cache,
		CacheTTL:        a.cfg.Cache.TTL,
		Logger:          a.logger,
		Metrics:         a.metrics,
	}

	if a.cfg.HeadHunter.Enabled {
		opts := base
		opts.BaseURL = a.cfg.HeadHunter.BaseURL
		a.fetchers = append(a.fetchers, scraper.NewHeadHunter(opts))
	}
	if a.cfg.SuperJob.Enabled {
		opts := base
		opts.BaseURL = a.cfg.SuperJob.BaseURL
		sj, err := scraper.NewSuperJob(a.cfg.SuperJob.APIKey, opts)
		if err != nil {
			return err
		}
		a.fetchers = append(a.fetchers, sj)
	}
	return nil
}

func (a *app) areaFor(source models.Source) int {
	if source == models.SourceSuperJob {
		return a.cfg.SuperJob.Town
	}
	return a.cfg.HeadHunter.Area
}

// collect runs every enabled source one after another
func (a *app) collect(ctx context.Context, progressOut io.Writer, showProgress bool) []*models.StatsReport {
	terms := aggregator.UniqueTerms(a.cfg.Terms)
	reports := make([]*models.StatsReport, 0, len(a.fetchers))
	for _, fetcher := range a.fetchers {
		if ctx.Err() != nil {
			break
		}
		progress := ui.NewProgress(progressOut, fetcher.Source(), len(terms), showProgress)
		agg := aggregator.New(fetcher, a.logger,
			aggregator.WithWorkers(a.cfg.Workers),
			aggregator.WithAreaCode(a.areaFor(fetcher.Source())),
			aggregator.WithPageCap(a.cfg.PageCap),
			aggregator.WithMetrics(a.metrics),
			aggregator.WithProgress(progress.Done),
		)
		report := agg.Collect(ctx, terms)
		progress.Finish()
		reports = append(reports, report)
	}
	return reports
}

// deliver hands finished reports to the optional sinks. Failures are only logged.
// An interrupted run still delivers what it collected.
func (a *app) deliver(ctx context.Context, runID string, reports []*models.StatsReport, at time.Time) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliverTimeout)
	defer cancel()

	for _, report := range reports {
		if err := a.store.SaveReport(ctx, runID, report, at); err != nil {
			a.logger.Error("failed to save report",
				zap.String("run_id", runID), zap.String("source", string(report.Source)), zap.Error(err))
		}
		if err := a.publisher.PublishReport(ctx, runID, report); err != nil {
			a.logger.Error("failed to publish report",
				zap.String("run_id", runID), zap.String("source", string(report.Source)), zap.Error(err))
		}
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
		a.logger.Error("failed to write metrics", zap.String("path", a.cfg.MetricsTextfile), zap.Error(err))
	}
}

func (a *app) Close() {
	a.publisher.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close history store", zap.Error(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close cache", zap.Error(err))
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
