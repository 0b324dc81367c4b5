package quiz

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmptyAnswerSet    = errors.New("at least one correct answer is required")
	ErrEmptyDeck         = errors.New("deck has no items")
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrInvalidChoice     = errors.New("answer does not match a presented option")
	ErrInvalidQuizType   = errors.New("unknown quiz type")
	ErrItemNotFound      = errors.New("item not found")
	ErrDeckNotFound      = errors.New("deck not found")
	ErrTooManyOptions    = errors.New("too many options")
)

type RunRecord struct {
	RunID            string
	DeckID           string
	Score            int
	Total            int
	TimeLimitSeconds int
	FinishedAt       time.Time
}

func (r RunRecord) Percent() int {
	return Result{Score: r.Score, Total: r.Total}.Percent()
}

type DeckRepository interface {
	SaveDeck(ctx context.Context, deckID string, items []Item) error
	LoadDeck(ctx context.Context, deckID string) ([]Item, error)
}

type RunRepository interface {
	RecordRun(ctx context.Context, run RunRecord) error
	ListRuns(ctx context.Context, deckID string, limit int) ([]RunRecord, error)
}
