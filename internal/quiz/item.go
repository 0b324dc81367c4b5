package quiz

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

type QuizType string

const (
	TypeGuessImage     QuizType = "guess-image"
	TypeMultipleChoice QuizType = "multiple-choice"
	TypeTextQuestion   QuizType = "text-question"
	TypeTrueFalse      QuizType = "true-false"
	TypeFillBlank      QuizType = "fill-blank"
)

const (
	DefaultPrompt = "What is this?"
	BlankMarker   = "[blank]"
	MaxOptions    = 26
	blankDisplay  = "_____"
)

var blankPattern = regexp.MustCompile(`(?i)\[blank\]`)

var quizTypes = []QuizType{
	TypeGuessImage,
	TypeMultipleChoice,
	TypeTextQuestion,
	TypeTrueFalse,
	TypeFillBlank,
}

func QuizTypes() []QuizType {
	out := make([]QuizType, len(quizTypes))
	copy(out, quizTypes)
	return out
}

func ParseQuizType(value string) (QuizType, error) {
	candidate := QuizType(strings.ToLower(strings.TrimSpace(value)))
	if !candidate.Valid() {
		return "", ErrInvalidQuizType
	}
	return candidate, nil
}

func (t QuizType) Valid() bool {
	for _, known := range quizTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label is the short type name used in deck listings.
func (t QuizType) Label() string {
	switch t {
	case TypeGuessImage:
		return "Image"
	case TypeMultipleChoice:
		return "Multiple Choice"
	case TypeTextQuestion:
		return "Text"
	case TypeTrueFalse:
		return "True/False"
	case TypeFillBlank:
		return "Fill Blank"
	default:
		return "Question"
	}
}

// IsChoice reports whether answers are given by picking a presented option.
func (t QuizType) IsChoice() bool {
	return t == TypeMultipleChoice || t == TypeTrueFalse
}

type Option struct {
	Text      string `json:"text"`
	Image     string `json:"image,omitempty"`
	IsCorrect bool   `json:"isCorrect"`
}

// Item is the canonical deck entry every import path and the authoring form produce.
type Item struct {
	ID             string
	Image          string
	CorrectAnswers []string
	Type           QuizType
	Prompt         string
	QuestionImage  string
	Options        []Option
	WrongOptions   []string
	Shuffle        bool
}

func (it Item) Validate() error {
	if !it.Type.Valid() {
		return ErrInvalidQuizType
	}
	if len(it.CorrectAnswers) == 0 {
		return ErrEmptyAnswerSet
	}
	if it.Type == TypeMultipleChoice && it.choiceCount() > MaxOptions {
		return errors.Wrapf(ErrTooManyOptions, "%d options", it.choiceCount())
	}
	return nil
}

// choiceCount is the number of options a multiple-choice question presents. Items
// without authored options present their wrong options plus the answer set.
func (it Item) choiceCount() int {
	if len(it.Options) > 0 {
		return len(it.Options)
	}
	return len(it.WrongOptions) + len(it.CorrectAnswers)
}

// Clone returns a deep copy so sessions never share slices with the authoring deck.
func (it Item) Clone() Item {
	out := it
	out.CorrectAnswers = append([]string(nil), it.CorrectAnswers...)
	out.WrongOptions = append([]string(nil), it.WrongOptions...)
	if it.Options != nil {
		out.Options = append([]Option(nil), it.Options...)
	}
	return out
}

func (it Item) Accepts(answer string) bool {
	normalized := NormalizeAnswer(answer)
	if normalized == "" {
		return false
	}
	for _, candidate := range it.CorrectAnswers {
		if candidate == normalized {
			return true
		}
	}
	return false
}

// DisplayPrompt is the prompt as shown while playing.
func (it Item) DisplayPrompt() string {
	switch it.Type {
	case TypeGuessImage:
		if strings.TrimSpace(it.Prompt) == "" {
			return DefaultPrompt
		}
		return it.Prompt
	case TypeFillBlank:
		return blankPattern.ReplaceAllString(it.Prompt, blankDisplay)
	default:
		return it.Prompt
	}
}

// OptionMismatches lists options whose correctness flag disagrees with the answer set.
// Authors own this consistency; callers surface it as a warning only.
func (it Item) OptionMismatches() []Option {
	var mismatched []Option
	for _, option := range it.Options {
		if option.IsCorrect != it.Accepts(option.Text) {
			mismatched = append(mismatched, option)
		}
	}
	return mismatched
}

func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// NormalizeAnswers lowercases and trims answers, dropping blanks and keeping input order.
func NormalizeAnswers(answers []string) []string {
	out := make([]string, 0, len(answers))
	for _, answer := range answers {
		if normalized := NormalizeAnswer(answer); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}

func wrongOptionTexts(options []Option) []string {
	out := make([]string, 0, len(options))
	for _, option := range options {
		if !option.IsCorrect {
			out = append(out, option.Text)
		}
	}
	return out
}
