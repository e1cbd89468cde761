package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	lserrors "github.com/fr4nk3nst1ner/langsalary/internal/errors"
	"github.com/fr4nk3nst1ner/langsalary/internal/models"
	"github.com/fr4nk3nst1ner/langsalary/internal/telemetry"
)

var tracer = telemetry.GetTracer("langsalary/messaging")

const (
	DefaultSubject = "langsalary.reports"
	connectTimeout = 10 * time.Second
	flushTimeout   = 5 * time.Second
)

// ReportEvent is the message published for every finished report
type ReportEvent struct {
	RunID       string              `json:"run_id"`
	PublishedAt time.Time           `json:"published_at"`
	Report      *models.StatsReport `json:"report"`
}

type Publisher interface {
	PublishReport(ctx context.Context, runID string, report *models.StatsReport) error
	Close()
}

type natsPublisher struct {
	conn    *nats.Conn
	publish func(subject string, data []byte) error
	subject string
	logger  *zap.Logger
	now     func() time.Time
}

func NewPublisher(natsURL, subject string, logger *zap.Logger) (Publisher, error) {
	opts := []nats.Option{
		nats.Name("langsalary"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(3),
	}

	conn, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, lserrors.Unavailable("connecting to NATS", err)
	}

	p := newPublisher(conn.Publish, subject, logger)
	p.conn = conn
	return p, nil
}

func newPublisher(publish func(string, []byte) error, subject string, logger *zap.Logger) *natsPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &natsPublisher{
		publish: publish,
		subject: subject,
		logger:  logger,
		now:     time.Now,
	}
}

func (p *natsPublisher) PublishReport(ctx context.Context, runID string, report *models.StatsReport) error {
	_, span := tracer.Start(ctx, "PublishReport")
	defer span.End()

	data, err := json.Marshal(ReportEvent{
		RunID:       runID,
		PublishedAt: p.now().UTC(),
		Report:      report,
	})
	if err != nil {
		span.RecordError(err)
		return lserrors.InvalidInput("marshaling report", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", p.subject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.publish(p.subject, data); err != nil {
		span.RecordError(err)
		p.logger.Error("failed to publish report",
			zap.String("run_id", runID),
			zap.String("source", string(report.Source)),
			zap.Error(err))
		return lserrors.Unavailable("publishing to NATS", err)
	}

	p.logger.Debug("published report",
		zap.String("run_id", runID),
		zap.String("source", string(report.Source)),
		zap.String("subject", p.subject))
	return nil
}

// Close flushes pending messages before closing the connection
func (p *natsPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.FlushTimeout(flushTimeout); err != nil {
		p.logger.Warn("failed to flush NATS connection", zap.Error(err))
	}
	p.conn.Close()
}

type NopPublisher struct{}

func (NopPublisher) PublishReport(ctx context.Context, runID string, report *models.StatsReport) error {
	return nil
}

func (NopPublisher) Close() {}
