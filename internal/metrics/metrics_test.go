package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fr4nk3nst1ner/langsalary/internal/models"
)

func TestObserve(t *testing.T) {
	m := New()
	m.ObservePage(models.SourceHeadHunter, OutcomeOK)
	m.ObservePage(models.SourceHeadHunter, OutcomeOK)
	m.ObservePage(models.SourceSuperJob, OutcomeAPI)

	avg := 125000
	m.ObserveTerm(models.SourceHeadHunter, models.TermStats{Term: "Go", VacanciesFound: 10, VacanciesProcessed: 4, AverageSalary: &avg})
	m.ObserveTerm(models.SourceSuperJob, models.TermStats{Term: "Go", Err: "API: boom"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.pageRequests.WithLabelValues("hh", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pageRequests.WithLabelValues("superjob", OutcomeAPI)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.termFailures.WithLabelValues("superjob")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.found.WithLabelValues("hh", "Go")))
	assert.Equal(t, 125000.0, testutil.ToFloat64(m.average.WithLabelValues("hh", "Go")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObservePage(models.SourceHeadHunter, OutcomeOK)
	m.ObserveTerm(models.SourceHeadHunter, models.TermStats{Term: "Go"})
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile("/nonexistent/file.prom"))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObservePage(models.SourceSuperJob, OutcomeCached)

	path := filepath.Join(t.TempDir(), "langsalary.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `langsalary_page_requests_total{outcome="cached",source="superjob"} 1`)
}
