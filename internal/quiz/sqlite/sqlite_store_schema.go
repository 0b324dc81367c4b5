package sqlite

import (
	"context"
)

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	// Item rows are rewritten wholesale on every save, so no FK constraints are needed.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS decks (
			deck_id TEXT PRIMARY KEY,
			item_count INTEGER NOT NULL,
			updated_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			deck_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			item_id TEXT NOT NULL,
			quiz_type TEXT NOT NULL,
			image TEXT NOT NULL,
			question TEXT NOT NULL,
			question_image TEXT NOT NULL,
			answers_json TEXT NOT NULL,
			options_json TEXT NOT NULL,
			wrong_options_json TEXT NOT NULL,
			shuffle_options INTEGER NOT NULL,
			PRIMARY KEY (deck_id, position),
			UNIQUE (deck_id, item_id)
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			deck_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			total INTEGER NOT NULL,
			time_limit_sec INTEGER NOT NULL,
			finished_at_unix INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_deck_finished ON runs(deck_id, finished_at_unix DESC);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
