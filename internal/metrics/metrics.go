package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fr4nk3nst1ner/langsalary/internal/models"
)

// Page request outcomes
const (
	OutcomeOK        = "ok"
	OutcomeCached    = "cached"
	OutcomeNetwork   = "network_error"
	OutcomeAPI       = "api_error"
	OutcomeMalformed = "malformed"
)

// Metrics collects counters for one run. A nil *Metrics discards everything.
type Metrics struct {
	registry     *prometheus.Registry
	pageRequests *prometheus.CounterVec
	termFailures *prometheus.CounterVec
	found        *prometheus.GaugeVec
	processed    *prometheus.GaugeVec
	average      *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pageRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "langsalary_page_requests_total",
			Help: "Vacancy page requests by source and outcome",
		}, []string{"source", "outcome"}),
		termFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "langsalary_term_failures_total",
			Help: "Search terms whose fetch failed",
		}, []string{"source"}),
		found: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "langsalary_vacancies_found",
			Help: "Vacancies reported by the source for a term",
		}, []string{"source", "term"}),
		processed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "langsalary_vacancies_processed",
			Help: "Vacancies with an estimable salary for a term",
		}, []string{"source", "term"}),
		average: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "langsalary_average_salary",
			Help: "Average predicted monthly salary for a term",
		}, []string{"source", "term"}),
	}
	m.registry.MustRegister(m.pageRequests, m.termFailures, m.found, m.processed, m.average)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObservePage(source models.Source, outcome string) {
	if m == nil {
		return
	}
	m.pageRequests.WithLabelValues(string(source), outcome).Inc()
}

func (m *Metrics) ObserveTerm(source models.Source, stats models.TermStats) {
	if m == nil {
		return
	}
	if stats.Err != "" {
		m.termFailures.WithLabelValues(string(source)).Inc()
	}
	m.found.WithLabelValues(string(source), stats.Term).Set(float64(stats.VacanciesFound))
	m.processed.WithLabelValues(string(source), stats.Term).Set(float64(stats.VacanciesProcessed))
	if stats.AverageSalary != nil {
		m.average.WithLabelValues(string(source), stats.Term).Set(float64(*stats.AverageSalary))
	}
}

// WriteTextfile dumps the registry in the node_exporter textfile format
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
