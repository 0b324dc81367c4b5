package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang/glog"

	"memory-quiz/internal/quiz"
)

const defaultHistoryLimit = 10

// terminalPresenter renders a running quiz as plain text.
type terminalPresenter struct {
	out io.Writer
}

func (p terminalPresenter) Question(q quiz.Question, progress quiz.Result) {
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "Question %d/%d  Score: %d%%\n", q.Number, q.Total, progress.Percent())
	if q.Image != "" {
		fmt.Fprintf(p.out, "Image: %s\n", imageRef(q.Image))
	}
	if q.QuestionImage != "" {
		fmt.Fprintf(p.out, "Question image: %s\n", imageRef(q.QuestionImage))
	}
	if q.Prompt != "" {
		fmt.Fprintln(p.out, q.Prompt)
	}
	for _, option := range q.Options {
		fmt.Fprintf(p.out, "%s. %s\n", option.Label, option.Text)
	}
	fmt.Fprintln(p.out)
	fmt.Fprint(p.out, "Your answer: ")
}

func (p terminalPresenter) Tick(remaining int) {
	if remaining <= 3 || remaining%5 == 0 {
		fmt.Fprintf(p.out, "[%ds left] ", remaining)
	}
}

func (p terminalPresenter) Rejected(q quiz.Question, input string, err error) {
	if len(q.Options) == 0 {
		fmt.Fprintf(p.out, "\n%v\nYour answer: ", err)
		return
	}
	last := q.Options[len(q.Options)-1].Label
	fmt.Fprintf(p.out, "\nInvalid input %q. Please enter a letter A-%s or the option text.\nYour answer: ", input, last)
}

func (p terminalPresenter) Evaluated(q quiz.Question, ev quiz.Evaluation) {
	fmt.Fprintln(p.out)
	switch {
	case ev.Correct:
		fmt.Fprintln(p.out, "Correct!")
		return
	case ev.Timeout:
		fmt.Fprint(p.out, "Time's up! ")
	default:
		fmt.Fprint(p.out, "Wrong. ")
	}
	fmt.Fprintf(p.out, "Correct answer: %s\n", correctAnswerDisplay(q, ev))
}

func (p terminalPresenter) Finished(result quiz.Result) {
	fmt.Fprintf(p.out, "\nQuiz complete! Final score: %d/%d (%d%%)\n", result.Score, result.Total, result.Percent())
}

func correctAnswerDisplay(q quiz.Question, ev quiz.Evaluation) string {
	if len(ev.CorrectLabels) == 0 {
		return strings.Join(ev.CorrectAnswers, " / ")
	}
	parts := make([]string, 0, len(ev.CorrectLabels))
	for _, label := range ev.CorrectLabels {
		for _, option := range q.Options {
			if option.Label == label {
				parts = append(parts, fmt.Sprintf("%s. %s", option.Label, option.Text))
			}
		}
	}
	return strings.Join(parts, ", ")
}

func runPlay(ctx context.Context, lines *lineReader, out io.Writer, svc *quiz.Service, cfg Config) error {
	session, err := svc.StartSession()
	if errors.Is(err, quiz.ErrEmptyDeck) {
		fmt.Fprintln(out, "Please add some items first!")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Starting quiz: %d questions, %d seconds each.\n", session.Len(), session.TimeLimit())
	runner := quiz.NewRunner(terminalPresenter{out: out}, quiz.RunnerConfig{
		TickInterval: cfg.TickInterval,
		RevealDelay:  cfg.RevealDelay,
	})
	result, err := runner.Run(ctx, session, lines.lines)
	if err != nil {
		return err
	}

	run, err := svc.RecordRun(ctx, session)
	if err != nil {
		glog.Errorf("record run: %v", err)
		return nil
	}
	glog.Infof("run %s finished score=%d/%d", run.RunID, result.Score, result.Total)
	return nil
}

func runHistory(ctx context.Context, out io.Writer, svc *quiz.Service, limit int) error {
	runs, err := svc.History(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No finished quizzes yet.")
		return nil
	}

	fmt.Fprintln(out, "Recent quizzes:")
	for idx, run := range runs {
		fmt.Fprintf(out, "%d. %d/%d (%d%%) %ds per question, finished %s\n",
			idx+1,
			run.Score,
			run.Total,
			run.Percent(),
			run.TimeLimitSeconds,
			run.FinishedAt.Local().Format(time.RFC3339),
		)
	}
	return nil
}
