package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fr4nk3nst1ner/langsalary/internal/models"
	"github.com/fr4nk3nst1ner/langsalary/internal/store"
)

// fixed width so collected_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveReport writes one row per term. Saving the same run and source again replaces its rows.
func (s *Store) SaveReport(ctx context.Context, runID string, report *models.StatsReport, at time.Time) (err error) {
	if report == nil || report.Len() == 0 {
		return nil
	}
	if at.IsZero() {
		at = time.Now()
	}
	collectedAt := at.UTC().Format(timeLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM term_stats WHERE run_id = ? AND source = ?`, runID, string(report.Source)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO term_stats (
			run_id, source, area, position, term, found, processed, average, error, collected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for position, term := range report.Terms() {
		stats, _ := report.Get(term)
		var average any
		if stats.AverageSalary != nil {
			average = *stats.AverageSalary
		}
		_, err = stmt.ExecContext(ctx,
			runID,
			string(report.Source),
			report.Area,
			position,
			stats.Term,
			stats.VacanciesFound,
			stats.VacanciesProcessed,
			average,
			stats.Err,
			collectedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) ListRuns(ctx context.Context, source models.Source, limit int) ([]store.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, area, term, found, processed, average, error, collected_at
		FROM term_stats
		WHERE source = ?
		ORDER BY collected_at DESC, run_id, position
	`, string(source))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var (
			runID, term, errText, collectedAt string
			area, found, processed            int
			average                           sql.NullInt64
		)
		if err := rows.Scan(&runID, &area, &term, &found, &processed, &average, &errText, &collectedAt); err != nil {
			return nil, err
		}

		if len(runs) == 0 || runs[len(runs)-1].ID != runID {
			if limit > 0 && len(runs) == limit {
				break
			}
			at, err := time.Parse(timeLayout, collectedAt)
			if err != nil {
				return nil, fmt.Errorf("sqlite: parsing collected_at %q: %w", collectedAt, err)
			}
			runs = append(runs, store.Run{
				ID:          runID,
				CollectedAt: at,
				Report:      models.NewStatsReport(source, area),
			})
		}

		stats := models.TermStats{
			Term:               term,
			VacanciesFound:     found,
			VacanciesProcessed: processed,
			Err:                errText,
		}
		if average.Valid {
			v := int(average.Int64)
			stats.AverageSalary = &v
		}
		runs[len(runs)-1].Report.Set(stats)
	}

	return runs, rows.Err()
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS term_stats (
			run_id TEXT NOT NULL,
			source TEXT NOT NULL,
			area INTEGER NOT NULL,
			position INTEGER NOT NULL,
			term TEXT NOT NULL,
			found INTEGER NOT NULL,
			processed INTEGER NOT NULL,
			average INTEGER,
			error TEXT NOT NULL DEFAULT '',
			collected_at TEXT NOT NULL,
			PRIMARY KEY (run_id, source, term)
		);`,
		`CREATE INDEX IF NOT EXISTS term_stats_source_collected
			ON term_stats (source, collected_at);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}

var _ store.Store = (*Store)(nil)
