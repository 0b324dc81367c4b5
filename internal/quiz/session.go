package quiz

import (
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

type State int

const (
	StateRunning State = iota + 1
	StateAwaitingReveal
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateAwaitingReveal:
		return "awaiting_reveal"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

const DefaultTimeLimitSeconds = 10

// Question is the read-only view of the question currently on screen.
type Question struct {
	Number        int
	Total         int
	ItemID        string
	Type          QuizType
	Prompt        string
	Image         string
	QuestionImage string
	Options       []PresentedOption
}

type question struct {
	item    Item
	options []PresentedOption
	legacy  bool
}

type Result struct {
	Score int
	Total int
}

func (r Result) Fraction() float64 {
	if r.Total <= 0 {
		return 0
	}
	return float64(r.Score) / float64(r.Total)
}

// Percent is the score rounded to a whole percentage of the deck.
func (r Result) Percent() int {
	if r.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(r.Score) * 100 / float64(r.Total)))
}

// Session is one play-through of a snapshotted deck. It is not safe for concurrent use;
// a single owner (normally Runner) feeds it submissions, ticks and advances.
//
// Invariants:
//   - the deck is a permutation of the deck passed to Start and never changes;
//   - cursor and score only grow;
//   - every exit from StateRunning goes through leaveRunning, which bumps the
//     generation so timer ticks issued for an earlier question are ignored.
type Session struct {
	deck       []Item
	cursor     int
	score      int
	timeLimit  int
	remaining  int
	state      State
	generation uint64
	current    question
	last       Evaluation
	rng        *rand.Rand
}

type SessionOption func(*Session)

// WithRand fixes the random source used for deck order and option shuffling.
func WithRand(rng *rand.Rand) SessionOption {
	return func(s *Session) { s.rng = rng }
}

func Start(deck []Item, timeLimitSeconds int, opts ...SessionOption) (*Session, error) {
	if len(deck) == 0 {
		return nil, ErrEmptyDeck
	}
	if timeLimitSeconds <= 0 {
		timeLimitSeconds = DefaultTimeLimitSeconds
	}

	s := &Session{
		deck:      make([]Item, len(deck)),
		timeLimit: timeLimitSeconds,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for idx, item := range deck {
		s.deck[idx] = item.Clone()
	}
	s.rng.Shuffle(len(s.deck), func(i, j int) {
		s.deck[i], s.deck[j] = s.deck[j], s.deck[i]
	})

	s.enterRunning()
	return s, nil
}

func (s *Session) State() State       { return s.state }
func (s *Session) Score() int         { return s.score }
func (s *Session) Cursor() int        { return s.cursor }
func (s *Session) Len() int           { return len(s.deck) }
func (s *Session) TimeLimit() int     { return s.timeLimit }
func (s *Session) Remaining() int     { return s.remaining }
func (s *Session) Generation() uint64 { return s.generation }
func (s *Session) Last() Evaluation   { return s.last }

// Deck returns a copy of the session's question order.
func (s *Session) Deck() []Item {
	out := make([]Item, len(s.deck))
	for idx, item := range s.deck {
		out[idx] = item.Clone()
	}
	return out
}

func (s *Session) Result() Result {
	return Result{Score: s.score, Total: len(s.deck)}
}

// Current returns the question at the cursor. It is false once the session finished.
func (s *Session) Current() (Question, bool) {
	if s.state == StateFinished {
		return Question{}, false
	}
	item := s.current.item
	return Question{
		Number:        s.cursor + 1,
		Total:         len(s.deck),
		ItemID:        item.ID,
		Type:          item.Type,
		Prompt:        item.DisplayPrompt(),
		Image:         item.Image,
		QuestionImage: item.QuestionImage,
		Options:       append([]PresentedOption(nil), s.current.options...),
	}, true
}

// Submit evaluates a response to the current question. ErrInvalidChoice leaves the
// session untouched so the player can answer again before the timer runs out.
func (s *Session) Submit(resp Response) (Evaluation, error) {
	if s.state != StateRunning {
		return Evaluation{}, errors.Wrapf(ErrInvalidTransition, "submit while %s", s.state)
	}

	ev, err := evaluate(&s.current, resp)
	if err != nil {
		return Evaluation{}, err
	}

	s.leaveRunning(StateAwaitingReveal)
	if ev.Correct {
		s.score++
	}
	s.last = ev
	return ev, nil
}

// Tick counts the current question's timer down by one second. Ticks carrying another
// generation, or arriving outside StateRunning, are stale and ignored. The bool result
// reports whether this tick expired the timer and forced a timeout submission.
func (s *Session) Tick(generation uint64) (Evaluation, bool, error) {
	if s.state != StateRunning || generation != s.generation {
		return Evaluation{}, false, nil
	}

	s.remaining--
	if s.remaining > 0 {
		return Evaluation{}, false, nil
	}

	ev, err := s.Submit(Response{Timeout: true})
	if err != nil {
		return Evaluation{}, false, err
	}
	return ev, true, nil
}

func (s *Session) Advance() error {
	if s.state != StateAwaitingReveal {
		return errors.Wrapf(ErrInvalidTransition, "advance while %s", s.state)
	}

	s.cursor++
	if s.cursor >= len(s.deck) {
		s.state = StateFinished
		return nil
	}
	s.enterRunning()
	return nil
}

// Abort ends the session from any state, invalidating a pending timer.
func (s *Session) Abort() {
	if s.state == StateRunning {
		s.leaveRunning(StateFinished)
		return
	}
	s.state = StateFinished
}

func (s *Session) enterRunning() {
	item := s.deck[s.cursor]
	options, legacy := presentOptions(item, s.rng)
	s.current = question{item: item, options: options, legacy: legacy}
	s.remaining = s.timeLimit
	s.generation++
	s.state = StateRunning
}

func (s *Session) leaveRunning(next State) {
	s.generation++
	s.state = next
}
