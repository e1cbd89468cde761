package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lserrors "github.com/fr4nk3nst1ner/langsalary/internal/errors"
	"github.com/fr4nk3nst1ner/langsalary/internal/models"
)

type recorder struct {
	subject string
	data    []byte
	err     error
}

func (r *recorder) publish(subject string, data []byte) error {
	r.subject, r.data = subject, data
	return r.err
}

func testReport() *models.StatsReport {
	avg := 150000
	r := models.NewStatsReport(models.SourceSuperJob, 4)
	r.Set(models.TermStats{Term: "Go", VacanciesFound: 40, VacanciesProcessed: 30, AverageSalary: &avg})
	r.Set(models.TermStats{Term: "Ruby"})
	return r
}

func TestPublishReport(t *testing.T) {
	rec := &recorder{}
	p := newPublisher(rec.publish, "", nil)
	p.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, p.PublishReport(context.Background(), "run-1", testReport()))
	assert.Equal(t, DefaultSubject, rec.subject)

	var event struct {
		RunID       string `json:"run_id"`
		PublishedAt string `json:"published_at"`
		Report      struct {
			Source string                     `json:"source"`
			Area   int                        `json:"area"`
			Stats  map[string]json.RawMessage `json:"stats"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.data, &event))
	assert.Equal(t, "run-1", event.RunID)
	assert.Equal(t, "2024-05-01T12:00:00Z", event.PublishedAt)
	assert.Equal(t, "superjob", event.Report.Source)
	assert.Equal(t, 4, event.Report.Area)
	assert.JSONEq(t, `{"term":"Go","vacancies_found":40,"vacancies_processed":30,"average_salary":150000}`, string(event.Report.Stats["Go"]))
	assert.JSONEq(t, `{"term":"Ruby","vacancies_found":0,"vacancies_processed":0,"average_salary":null}`, string(event.Report.Stats["Ruby"]))
}

func TestPublishReportFailure(t *testing.T) {
	rec := &recorder{err: errors.New("nats: connection closed")}
	p := newPublisher(rec.publish, "custom.subject", nil)

	err := p.PublishReport(context.Background(), "run-1", testReport())
	require.Error(t, err)
	assert.True(t, lserrors.IsType(err, lserrors.ErrTypeUnavailable))
	assert.Equal(t, "custom.subject", rec.subject)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishReport(context.Background(), "run", testReport()))
	p.Close()
}

func TestNewPublisherUnreachable(t *testing.T) {
	_, err := NewPublisher("nats://127.0.0.1:1", "", nil)
	require.Error(t, err)
	assert.True(t, lserrors.IsType(err, lserrors.ErrTypeUnavailable))
}
