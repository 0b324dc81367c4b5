package quiz

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const (
	DefaultTickInterval = time.Second
	DefaultRevealDelay  = 1500 * time.Millisecond
)

var ErrInputClosed = errors.New("answer input closed")

// Presenter renders session events. Implementations must not call back into the session.
type Presenter interface {
	Question(q Question, progress Result)
	Tick(remaining int)
	Rejected(q Question, input string, err error)
	Evaluated(q Question, ev Evaluation)
	Finished(result Result)
}

type RunnerConfig struct {
	TickInterval time.Duration
	RevealDelay  time.Duration
}

// Runner drives a Session in real time: a per-second countdown, a reveal pause after
// each answer and automatic advance.
type Runner struct {
	presenter Presenter
	cfg       RunnerConfig
}

func NewRunner(presenter Presenter, cfg RunnerConfig) *Runner {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.RevealDelay <= 0 {
		cfg.RevealDelay = DefaultRevealDelay
	}
	return &Runner{presenter: presenter, cfg: cfg}
}

// Run plays s to the end. Lines received on answers are submitted for the current
// question; input arriving during the reveal pause is discarded. Cancelling ctx or
// closing answers mid-question aborts the session.
func (r *Runner) Run(ctx context.Context, s *Session, answers <-chan string) (Result, error) {
	var current Question
	for {
		switch s.State() {
		case StateFinished:
			result := s.Result()
			glog.V(2).Infof("session finished score=%d total=%d", result.Score, result.Total)
			r.presenter.Finished(result)
			return result, nil

		case StateRunning:
			current, _ = s.Current()
			r.presenter.Question(current, s.Result())
			ev, err := r.runQuestion(ctx, s, current, answers)
			if err != nil {
				s.Abort()
				return s.Result(), err
			}
			glog.V(2).Infof("question %d/%d item=%s correct=%t timeout=%t",
				current.Number, current.Total, ev.ItemID, ev.Correct, ev.Timeout)
			r.presenter.Evaluated(current, ev)

		case StateAwaitingReveal:
			if err := r.reveal(ctx, answers); err != nil {
				s.Abort()
				return s.Result(), err
			}
			if err := s.Advance(); err != nil {
				return s.Result(), err
			}

		default:
			return s.Result(), errors.Wrapf(ErrInvalidTransition, "unexpected state %d", s.State())
		}
	}
}

func (r *Runner) runQuestion(ctx context.Context, s *Session, current Question, answers <-chan string) (Evaluation, error) {
	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	generation := s.Generation()
	for {
		select {
		case <-ctx.Done():
			return Evaluation{}, ctx.Err()

		case <-ticker.C:
			ev, expired, err := s.Tick(generation)
			if err != nil {
				return Evaluation{}, err
			}
			if expired {
				return ev, nil
			}
			r.presenter.Tick(s.Remaining())

		case input, ok := <-answers:
			if !ok {
				return Evaluation{}, ErrInputClosed
			}
			ev, err := s.Submit(Response{Input: input})
			if errors.Is(err, ErrInvalidChoice) {
				r.presenter.Rejected(current, input, err)
				continue
			}
			if err != nil {
				return Evaluation{}, err
			}
			return ev, nil
		}
	}
}

func (r *Runner) reveal(ctx context.Context, answers <-chan string) error {
	timer := time.NewTimer(r.cfg.RevealDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case _, ok := <-answers:
			if !ok {
				answers = nil
			}
		}
	}
}
