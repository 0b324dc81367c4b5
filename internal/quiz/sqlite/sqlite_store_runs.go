package sqlite

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"memory-quiz/internal/quiz"
)

const defaultRunLimit = 10

func (s *SQLiteStore) RecordRun(ctx context.Context, run quiz.RunRecord) error {
	if run.RunID == "" {
		return errors.New("run id is required")
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (run_id, deck_id, score, total, time_limit_sec, finished_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.DeckID,
		run.Score,
		run.Total,
		run.TimeLimitSeconds,
		run.FinishedAt.UnixNano(),
	)
	return err
}

// ListRuns returns the most recent runs first.
func (s *SQLiteStore) ListRuns(ctx context.Context, deckID string, limit int) ([]quiz.RunRecord, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, deck_id, score, total, time_limit_sec, finished_at_unix
		 FROM runs
		 WHERE deck_id = ?
		 ORDER BY finished_at_unix DESC, run_id ASC
		 LIMIT ?`,
		deckID,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]quiz.RunRecord, 0)
	for rows.Next() {
		var (
			run          quiz.RunRecord
			finishedUnix int64
		)
		if err := rows.Scan(&run.RunID, &run.DeckID, &run.Score, &run.Total, &run.TimeLimitSeconds, &finishedUnix); err != nil {
			return nil, err
		}
		run.FinishedAt = time.Unix(0, finishedUnix).UTC()
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
