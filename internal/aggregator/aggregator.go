// Package aggregator turns fetched vacancies into per-term salary statistics.
package aggregator

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fr4nk3nst1ner/langsalary/internal/metrics"
	"github.com/fr4nk3nst1ner/langsalary/internal/models"
	"github.com/fr4nk3nst1ner/langsalary/internal/salary"
	"github.com/fr4nk3nst1ner/langsalary/internal/scraper"
	"github.com/fr4nk3nst1ner/langsalary/internal/telemetry"
)

type Aggregator struct {
	fetcher  scraper.Fetcher
	logger   *zap.Logger
	workers  int
	area     int
	pageCap  int
	progress func(term string)
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(*Aggregator)

// WithWorkers bounds how many terms are fetched at once. 1 means sequential.
func WithWorkers(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithAreaCode sets the source-specific region id (HH area, SuperJob town)
func WithAreaCode(area int) Option {
	return func(a *Aggregator) { a.area = area }
}

func WithPageCap(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.pageCap = n
		}
	}
}

// WithProgress registers a callback invoked once per finished term
func WithProgress(fn func(term string)) Option {
	return func(a *Aggregator) { a.progress = fn }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(a *Aggregator) {
		if t != nil {
			a.tracer = t
		}
	}
}

func New(fetcher scraper.Fetcher, logger *zap.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aggregator{
		fetcher: fetcher,
		logger:  logger.With(zap.String("source", string(fetcher.Source()))),
		workers: 1,
		pageCap: scraper.DefaultPageCap,
		tracer:  telemetry.GetTracer("langsalary/aggregator"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Collect builds the report for terms in input order. Blank and repeated terms are skipped.
// A term whose fetch fails is reported as 0/0 with no average; the other terms are unaffected.
func (a *Aggregator) Collect(ctx context.Context, terms []string) *models.StatsReport {
	ctx, span := a.tracer.Start(ctx, "aggregator.Collect")
	defer span.End()

	terms = UniqueTerms(terms)
	span.SetAttributes(
		telemetry.String("source", string(a.fetcher.Source())),
		telemetry.Int("terms", len(terms)),
		telemetry.Int("workers", a.workers))

	results := make([]models.TermStats, len(terms))
	jobs := make(chan int)

	workers := a.workers
	if workers > len(terms) {
		workers = len(terms)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = a.collectTerm(ctx, terms[idx])
				if a.progress != nil {
					a.progress(terms[idx])
				}
			}
		}()
	}
	for idx := range terms {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	report := models.NewStatsReport(a.fetcher.Source(), a.area)
	for _, stats := range results {
		report.Set(stats)
	}
	return report
}

func (a *Aggregator) collectTerm(ctx context.Context, term string) models.TermStats {
	ctx, span := a.tracer.Start(ctx, "aggregator.collectTerm")
	defer span.End()
	span.SetAttributes(telemetry.String("term", term))

	res, err := a.fetcher.Fetch(ctx, term, a.area, a.pageCap)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.Error("failed to fetch vacancies", zap.String("term", term), zap.Error(err))
		stats := models.TermStats{Term: term, Err: err.Error()}
		a.metrics.ObserveTerm(a.fetcher.Source(), stats)
		return stats
	}

	stats := Summarize(term, res)
	a.metrics.ObserveTerm(a.fetcher.Source(), stats)
	a.logger.Info("term collected",
		zap.String("term", term),
		zap.Int("found", stats.VacanciesFound),
		zap.Int("processed", stats.VacanciesProcessed),
		zap.Int("pages", res.Pages))
	return stats
}

// Summarize computes the statistics for one term's fetch result.
// Found never drops below the number of records actually read.
func Summarize(term string, res scraper.Result) models.TermStats {
	estimates := make([]float64, 0, len(res.Vacancies))
	for _, v := range res.Vacancies {
		estimate, ok := salary.Predict(v)
		if !ok {
			continue
		}
		estimates = append(estimates, estimate)
	}

	found := res.Total
	if len(res.Vacancies) > found {
		found = len(res.Vacancies)
	}

	return models.TermStats{
		Term:               term,
		VacanciesFound:     found,
		VacanciesProcessed: len(estimates),
		AverageSalary:      salary.Average(estimates),
	}
}

// UniqueTerms trims terms and drops blanks and repeats, keeping first-seen order
func UniqueTerms(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}
	return out
}
