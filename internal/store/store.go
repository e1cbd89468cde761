package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fr4nk3nst1ner/langsalary/internal/models"
)

// Store keeps the history of finished reports
type Store interface {
	SaveReport(ctx context.Context, runID string, report *models.StatsReport, at time.Time) error
	// ListRuns returns the newest runs first. limit <= 0 returns all of them.
	ListRuns(ctx context.Context, source models.Source, limit int) ([]Run, error)
	Close() error
}

// Run is one stored report
type Run struct {
	ID          string
	CollectedAt time.Time
	Report      *models.StatsReport
}

// NewRunID returns the id shared by every report of one invocation
func NewRunID() string {
	return uuid.NewString()
}

type NopStore struct{}

func (s *NopStore) SaveReport(ctx context.Context, runID string, report *models.StatsReport, at time.Time) error {
	return nil
}

func (s *NopStore) ListRuns(ctx context.Context, source models.Source, limit int) ([]Run, error) {
	return nil, nil
}

func (s *NopStore) Close() error {
	return nil
}

var _ Store = (*NopStore)(nil)
