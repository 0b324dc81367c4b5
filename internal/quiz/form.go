package quiz

import (
	"strings"

	"github.com/google/uuid"
)

// FormInput is the raw authoring input for one item, before normalization.
type FormInput struct {
	Type          QuizType
	Image         string
	Answers       string // one answer per line
	Prompt        string
	QuestionImage string
	Options       []Option
	Shuffle       bool
}

// BuildFromForm normalizes authoring input into an Item with a fresh ID.
func BuildFromForm(input FormInput) (Item, error) {
	answers := NormalizeAnswers(strings.Split(input.Answers, "\n"))
	if len(answers) == 0 {
		return Item{}, ErrEmptyAnswerSet
	}

	quizType := input.Type
	if quizType == "" {
		quizType = TypeGuessImage
	}
	if !quizType.Valid() {
		return Item{}, ErrInvalidQuizType
	}

	item := Item{
		ID:             uuid.NewString(),
		Image:          strings.TrimSpace(input.Image),
		CorrectAnswers: answers,
		Type:           quizType,
		Prompt:         strings.TrimSpace(input.Prompt),
		QuestionImage:  strings.TrimSpace(input.QuestionImage),
		Shuffle:        input.Shuffle,
		Options:        []Option{},
		WrongOptions:   []string{},
	}

	if quizType == TypeMultipleChoice {
		for _, option := range input.Options {
			text := strings.TrimSpace(option.Text)
			if text == "" {
				continue
			}
			item.Options = append(item.Options, Option{
				Text:      text,
				Image:     strings.TrimSpace(option.Image),
				IsCorrect: option.IsCorrect,
			})
		}
		item.WrongOptions = wrongOptionTexts(item.Options)
	}

	if err := item.Validate(); err != nil {
		return Item{}, err
	}
	return item, nil
}

// FormFromItem turns an item back into editable form input.
func FormFromItem(item Item) FormInput {
	return FormInput{
		Type:          item.Type,
		Image:         item.Image,
		Answers:       strings.Join(item.CorrectAnswers, "\n"),
		Prompt:        item.Prompt,
		QuestionImage: item.QuestionImage,
		Options:       append([]Option(nil), item.Options...),
		Shuffle:       item.Shuffle,
	}
}
