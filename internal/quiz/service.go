package quiz

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const DefaultDeckID = "default"

// ImportBatch is a fully normalized import, ready to be applied to the deck.
type ImportBatch struct {
	Format       string
	Items        []Item
	Replace      bool
	Placeholders int
}

// Codec reads and writes deck files.
type Codec interface {
	Import(ctx context.Context, data []byte) (ImportBatch, error)
	ImportTierlist(ctx context.Context, data []byte) (ImportBatch, error)
	Export(items []Item) ([]byte, error)
}

// Service owns the authoring deck and starts sessions from snapshots of it.
type Service struct {
	mu        sync.Mutex
	deckID    string
	deck      Deck
	timeLimit int

	decks DeckRepository
	runs  RunRepository
	codec Codec
}

func NewService(decks DeckRepository, runs RunRepository, codec Codec) *Service {
	return &Service{
		deckID:    DefaultDeckID,
		deck:      Deck{},
		timeLimit: DefaultTimeLimitSeconds,
		decks:     decks,
		runs:      runs,
		codec:     codec,
	}
}

// Load restores the workspace deck. A missing deck leaves the workspace empty.
func (s *Service) Load(ctx context.Context) error {
	if s.decks == nil {
		return nil
	}
	items, err := s.decks.LoadDeck(ctx, s.deckID)
	if errors.Is(err, ErrDeckNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "load deck")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.deck = Deck(items)
	glog.Infof("loaded deck %s with %d items", s.deckID, len(items))
	return nil
}

func (s *Service) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.Clone()
}

func (s *Service) Item(index int) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.At(index)
}

func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.deck)
}

func (s *Service) AddItem(ctx context.Context, input FormInput) (Item, error) {
	item, err := BuildFromForm(input)
	if err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.deck.Append(item)
	if err != nil {
		return Item{}, err
	}
	if err := s.commit(ctx, next); err != nil {
		return Item{}, err
	}
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, index int, input FormInput) (Item, error) {
	item, err := BuildFromForm(input)
	if err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.deck.Replace(index, item)
	if err != nil {
		return Item{}, err
	}
	if err := s.commit(ctx, next); err != nil {
		return Item{}, err
	}
	return next[index].Clone(), nil
}

func (s *Service) DeleteItem(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.deck.Remove(index)
	if err != nil {
		return err
	}
	return s.commit(ctx, next)
}

// Import applies a deck file. Native files replace the deck; tierlists append to it.
// Nothing changes unless the whole payload normalized.
func (s *Service) Import(ctx context.Context, data []byte) (ImportBatch, error) {
	if s.codec == nil {
		return ImportBatch{}, errors.New("deck codec is not configured")
	}
	batch, err := s.codec.Import(ctx, data)
	if err != nil {
		return ImportBatch{}, err
	}
	return batch, s.apply(ctx, batch)
}

func (s *Service) ImportTierlist(ctx context.Context, data []byte) (ImportBatch, error) {
	if s.codec == nil {
		return ImportBatch{}, errors.New("deck codec is not configured")
	}
	batch, err := s.codec.ImportTierlist(ctx, data)
	if err != nil {
		return ImportBatch{}, err
	}
	return batch, s.apply(ctx, batch)
}

func (s *Service) Export() ([]byte, error) {
	if s.codec == nil {
		return nil, errors.New("deck codec is not configured")
	}
	items := s.Items()
	if len(items) == 0 {
		return nil, ErrEmptyDeck
	}
	return s.codec.Export(items)
}

func (s *Service) TimeLimit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeLimit
}

func (s *Service) SetTimeLimit(seconds int) {
	if seconds <= 0 {
		seconds = DefaultTimeLimitSeconds
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeLimit = seconds
}

// StartSession snapshots the deck into a brand-new session.
func (s *Service) StartSession(opts ...SessionOption) (*Session, error) {
	s.mu.Lock()
	snapshot := s.deck.Clone()
	timeLimit := s.timeLimit
	s.mu.Unlock()

	return Start(snapshot, timeLimit, opts...)
}

func (s *Service) RecordRun(ctx context.Context, session *Session) (RunRecord, error) {
	result := session.Result()
	run := RunRecord{
		RunID:            uuid.NewString(),
		DeckID:           s.deckID,
		Score:            result.Score,
		Total:            result.Total,
		TimeLimitSeconds: session.TimeLimit(),
		FinishedAt:       time.Now().UTC(),
	}
	if s.runs == nil {
		return run, nil
	}
	if err := s.runs.RecordRun(ctx, run); err != nil {
		return RunRecord{}, errors.Wrap(err, "record run")
	}
	return run, nil
}

func (s *Service) History(ctx context.Context, limit int) ([]RunRecord, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.ListRuns(ctx, s.deckID, limit)
}

func (s *Service) apply(ctx context.Context, batch ImportBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.deck
	if batch.Replace {
		base = Deck{}
	}
	next, err := base.Append(batch.Items...)
	if err != nil {
		return err
	}
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	glog.Infof("imported %d items (%s, replace=%t, placeholders=%d)",
		len(batch.Items), batch.Format, batch.Replace, batch.Placeholders)
	return nil
}

// commit persists next and only then makes it the live deck. Callers hold s.mu.
func (s *Service) commit(ctx context.Context, next Deck) error {
	if s.decks != nil {
		if err := s.decks.SaveDeck(ctx, s.deckID, next); err != nil {
			return errors.Wrap(err, "save deck")
		}
	}
	s.deck = next
	return nil
}
