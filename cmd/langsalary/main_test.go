package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fr4nk3nst1ner/langsalary/internal/models"
	"github.com/fr4nk3nst1ner/langsalary/internal/store/sqlite"
)

func headHunterStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("text") {
		case "Go":
			fmt.Fprint(w, `{"found": 250, "pages": 1, "items": [
				{"id": "1", "salary": {"from": 100000, "to": 150000, "currency": "RUR"}},
				{"id": "2", "salary": {"from": 80000, "to": null, "currency": "RUR"}},
				{"id": "3", "salary": {"from": 3000, "to": null, "currency": "USD"}},
				{"id": "4", "salary": null}
			]}`)
		default:
			fmt.Fprint(w, `{"error": "bad_argument"}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func superJobStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-App-Id") != "test-key" {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error": {"code": 403, "message": "Invalid app_key"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"total": 2, "more": false, "objects": [
			{"id": 1, "payment_from": 0, "payment_to": 80000, "currency": "rub"},
			{"id": 2, "payment_from": 120000, "payment_to": 0, "currency": "rub"}
		]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, dir, hhURL, sjURL string) string {
	t.Helper()
	path := filepath.Join(dir, "langsalary.yaml")
	content := fmt.Sprintf(`
terms: [Go, Cobol]
headhunter:
  base_url: %s
superjob:
  base_url: %s
rate_limit_per_sec: 0
`, hhURL, sjURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunJSONReport(t *testing.T) {
	t.Setenv("SUPERJOB_API_KEY", "test-key")
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, headHunterStub(t).URL, superJobStub(t).URL)
	historyPath := filepath.Join(dir, "history.db")
	metricsPath := filepath.Join(dir, "langsalary.prom")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-config", cfgPath,
		"-format", "json",
		"-no-banner",
		"-history", historyPath,
		"-metrics-file", metricsPath,
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var reports []struct {
		Source string                      `json:"source"`
		Stats  map[string]models.TermStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &reports), stdout.String())
	require.Len(t, reports, 2)

	hh := reports[0]
	assert.Equal(t, "hh", hh.Source)
	assert.Equal(t, 250, hh.Stats["Go"].VacanciesFound)
	assert.Equal(t, 2, hh.Stats["Go"].VacanciesProcessed)
	// (125000 + 96000) / 2
	assert.Equal(t, 110500, *hh.Stats["Go"].AverageSalary)
	assert.Zero(t, hh.Stats["Cobol"].VacanciesFound)
	assert.Nil(t, hh.Stats["Cobol"].AverageSalary)
	assert.Contains(t, hh.Stats["Cobol"].Err, "bad_argument")

	sj := reports[1]
	assert.Equal(t, "superjob", sj.Source)
	assert.Equal(t, 2, sj.Stats["Go"].VacanciesProcessed)
	// (64000 + 144000) / 2
	assert.Equal(t, 104000, *sj.Stats["Go"].AverageSalary)

	s, err := sqlite.New(historyPath)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.ListRuns(context.Background(), models.SourceSuperJob, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{"Go", "Cobol"}, runs[0].Report.Terms())

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `langsalary_term_failures_total{source="hh"} 1`)
}

func TestRunTableToFile(t *testing.T) {
	t.Setenv("SUPERJOB_API_KEY", "test-key")
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, headHunterStub(t).URL, superJobStub(t).URL)
	outPath := filepath.Join(dir, "report.txt")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", cfgPath, "-no-banner", "-sj=false", "-out", outPath}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stdout.String())

	report, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "HeadHunter Moscow")
	assert.Contains(t, string(report), "110,500")
	assert.Contains(t, string(report), "No data")
	assert.NotContains(t, string(report), "SuperJob")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	t.Setenv("SUPERJOB_API_KEY", "")
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "http://127.0.0.1:1", "http://127.0.0.1:1")

	tests := []struct {
		name string
		args []string
	}{
		{"missing superjob key", []string{"-config", cfgPath}},
		{"short delay", []string{"-config", cfgPath, "-sj=false", "-delay", "10ms"}},
		{"unknown format", []string{"-config", cfgPath, "-sj=false", "-format", "xml"}},
		{"bad flag", []string{"-no-such-flag"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, 2, run(context.Background(), tt.args, &stdout, &stderr))
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRunVersionAndExamples(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "langsalary dev")

	stdout.Reset()
	assert.Equal(t, 0, run(context.Background(), []string{"-examples"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "-list-runs")
}

func TestRunListRuns(t *testing.T) {
	t.Setenv("SUPERJOB_API_KEY", "test-key")
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, headHunterStub(t).URL, superJobStub(t).URL)
	historyPath := filepath.Join(dir, "history.db")

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run(context.Background(), []string{"-config", cfgPath, "-no-banner", "-history", historyPath, "-format", "json"}, &stdout, &stderr), stderr.String())

	stdout.Reset()
	require.Equal(t, 0, run(context.Background(), []string{"-config", cfgPath, "-history", historyPath, "-list-runs", "1"}, &stdout, &stderr), stderr.String())
	assert.Contains(t, stdout.String(), "HeadHunter Moscow")
	assert.Contains(t, stdout.String(), "SuperJob Moscow")

	stdout.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"-config", cfgPath, "-list-runs", "1"}, &stdout, &stderr))
}
