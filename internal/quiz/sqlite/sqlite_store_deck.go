package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"memory-quiz/internal/quiz"
)

// SaveDeck replaces the stored deck in one transaction, so a failed save leaves the
// previous rows intact.
func (s *SQLiteStore) SaveDeck(ctx context.Context, deckID string, items []quiz.Item) error {
	if deckID == "" {
		return errors.New("deck id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE deck_id = ?`, deckID); err != nil {
		return err
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO decks (deck_id, item_count, updated_at_unix) VALUES (?, ?, ?)`,
		deckID,
		len(items),
		time.Now().UTC().UnixNano(),
	)
	if err != nil {
		return err
	}

	for idx, item := range items {
		answersJSON, err := json.Marshal(item.CorrectAnswers)
		if err != nil {
			return err
		}
		options := item.Options
		if options == nil {
			options = []quiz.Option{}
		}
		optionsJSON, err := json.Marshal(options)
		if err != nil {
			return err
		}
		wrong := item.WrongOptions
		if wrong == nil {
			wrong = []string{}
		}
		wrongJSON, err := json.Marshal(wrong)
		if err != nil {
			return err
		}

		shuffle := 0
		if item.Shuffle {
			shuffle = 1
		}

		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO items (deck_id, position, item_id, quiz_type, image, question, question_image,
				answers_json, options_json, wrong_options_json, shuffle_options)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			deckID,
			idx,
			item.ID,
			string(item.Type),
			item.Image,
			item.Prompt,
			item.QuestionImage,
			string(answersJSON),
			string(optionsJSON),
			string(wrongJSON),
			shuffle,
		)
		if err != nil {
			return errors.Wrapf(err, "insert item %d", idx)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) DeckExists(ctx context.Context, deckID string) (bool, error) {
	var found int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT 1 FROM decks WHERE deck_id = ? LIMIT 1`,
		deckID,
	).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) LoadDeck(ctx context.Context, deckID string) ([]quiz.Item, error) {
	exists, err := s.DeckExists(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, quiz.ErrDeckNotFound
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT item_id, quiz_type, image, question, question_image,
			answers_json, options_json, wrong_options_json, shuffle_options
		 FROM items
		 WHERE deck_id = ?
		 ORDER BY position ASC`,
		deckID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]quiz.Item, 0)
	for rows.Next() {
		var (
			item        quiz.Item
			quizType    string
			answersJSON string
			optionsJSON string
			wrongJSON   string
			shuffle     int
		)
		if err := rows.Scan(
			&item.ID,
			&quizType,
			&item.Image,
			&item.Prompt,
			&item.QuestionImage,
			&answersJSON,
			&optionsJSON,
			&wrongJSON,
			&shuffle,
		); err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(answersJSON), &item.CorrectAnswers); err != nil {
			return nil, errors.Wrapf(err, "decode answers of %s", item.ID)
		}
		if err := json.Unmarshal([]byte(optionsJSON), &item.Options); err != nil {
			return nil, errors.Wrapf(err, "decode options of %s", item.ID)
		}
		if err := json.Unmarshal([]byte(wrongJSON), &item.WrongOptions); err != nil {
			return nil, errors.Wrapf(err, "decode wrong options of %s", item.ID)
		}
		item.Type = quiz.QuizType(quizType)
		item.Shuffle = shuffle != 0
		items = append(items, item)
	}

	return items, rows.Err()
}
