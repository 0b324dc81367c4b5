package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"memory-quiz/internal/quiz"
)

const correctMarker = "*"

// promptForm collects authoring input for one item. With an existing item, blank
// answers keep the current values.
func promptForm(ctx context.Context, lines *lineReader, out io.Writer, existing *quiz.Item) (quiz.FormInput, error) {
	input := quiz.FormInput{Type: quiz.TypeMultipleChoice, Shuffle: true}
	if existing != nil {
		input = quiz.FormFromItem(*existing)
	}

	quizType, err := promptQuizType(ctx, lines, out, input.Type)
	if err != nil {
		return quiz.FormInput{}, err
	}
	if quizType != input.Type {
		input.Options = nil
	}
	input.Type = quizType

	if quizType == quiz.TypeGuessImage {
		if input.Image, err = promptKeep(ctx, lines, out, "Image URL or data URL", input.Image); err != nil {
			return quiz.FormInput{}, err
		}
	} else {
		if input.QuestionImage, err = promptKeep(ctx, lines, out, "Question image URL (optional, '-' to clear)", input.QuestionImage); err != nil {
			return quiz.FormInput{}, err
		}
	}

	questionLabel := "Question"
	switch quizType {
	case quiz.TypeGuessImage:
		questionLabel = fmt.Sprintf("Question (blank for %q)", quiz.DefaultPrompt)
	case quiz.TypeFillBlank:
		questionLabel = fmt.Sprintf("Question (mark the gap with %s)", quiz.BlankMarker)
	}
	if input.Prompt, err = promptKeep(ctx, lines, out, questionLabel, input.Prompt); err != nil {
		return quiz.FormInput{}, err
	}
	if quizType == quiz.TypeFillBlank && !strings.Contains(strings.ToLower(input.Prompt), quiz.BlankMarker) {
		fmt.Fprintf(out, "warning: question has no %s marker\n", quiz.BlankMarker)
	}

	if quizType == quiz.TypeTrueFalse {
		current := input.Answers
		if current != "true" && current != "false" {
			current = ""
		}
		answer, err := promptTrueFalse(ctx, lines, out, current)
		if err != nil {
			return quiz.FormInput{}, err
		}
		input.Answers = answer
		return input, nil
	}

	answers, err := promptList(ctx, lines, out, "Correct answers (one per line, empty line to finish):", input.Answers != "")
	if err != nil {
		return quiz.FormInput{}, err
	}
	if len(answers) > 0 {
		input.Answers = strings.Join(answers, "\n")
	}

	if quizType == quiz.TypeMultipleChoice {
		header := fmt.Sprintf("Options (one per line, prefix correct ones with %s, empty line to finish):", correctMarker)
		raw, err := promptList(ctx, lines, out, header, len(input.Options) > 0)
		if err != nil {
			return quiz.FormInput{}, err
		}
		if len(raw) > 0 {
			input.Options = parseOptions(raw)
		}
		if input.Shuffle, err = promptYesNo(ctx, lines, out, "Shuffle options? (yes/no): "); err != nil {
			return quiz.FormInput{}, err
		}
	}

	return input, nil
}

func promptQuizType(ctx context.Context, lines *lineReader, out io.Writer, current quiz.QuizType) (quiz.QuizType, error) {
	types := quiz.QuizTypes()
	for idx, t := range types {
		fmt.Fprintf(out, "  %d. %s (%s)\n", idx+1, t.Label(), t)
	}
	for {
		answer, err := promptLine(ctx, lines, out, fmt.Sprintf("Quiz type [%s]: ", current))
		if err != nil {
			return "", err
		}
		if answer == "" {
			return current, nil
		}
		if number, parseErr := parsePositiveLimit([]string{answer}, 0, 0); parseErr == nil && number <= len(types) {
			return types[number-1], nil
		}
		if parsed, parseErr := quiz.ParseQuizType(answer); parseErr == nil {
			return parsed, nil
		}
		fmt.Fprintln(out, "Unknown quiz type.")
	}
}

func promptKeep(ctx context.Context, lines *lineReader, out io.Writer, label, current string) (string, error) {
	prompt := label + ": "
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]: ", label, imageRef(current))
	}
	answer, err := promptLine(ctx, lines, out, prompt)
	if err != nil {
		return "", err
	}
	switch answer {
	case "":
		return current, nil
	case "-":
		return "", nil
	default:
		return answer, nil
	}
}

func promptTrueFalse(ctx context.Context, lines *lineReader, out io.Writer, current string) (string, error) {
	prompt := "Correct answer (true/false): "
	if current != "" {
		prompt = fmt.Sprintf("Correct answer (true/false) [%s]: ", current)
	}
	for {
		answer, err := promptLine(ctx, lines, out, prompt)
		if err != nil {
			return "", err
		}
		switch strings.ToLower(answer) {
		case "":
			if current != "" {
				return current, nil
			}
		case "true", "t":
			return "true", nil
		case "false", "f":
			return "false", nil
		}
		fmt.Fprintln(out, "Please answer true or false.")
	}
}

// promptList reads lines until an empty one. When keep is set the prompt notes that
// an immediately empty list keeps the current values.
func promptList(ctx context.Context, lines *lineReader, out io.Writer, header string, keep bool) ([]string, error) {
	fmt.Fprintln(out, header)
	if keep {
		fmt.Fprintln(out, "(empty line keeps the current values)")
	}

	var values []string
	for {
		line, err := promptLine(ctx, lines, out, "  ")
		if err != nil {
			return nil, err
		}
		if line == "" {
			return values, nil
		}
		values = append(values, line)
	}
}

func parseOptions(raw []string) []quiz.Option {
	options := make([]quiz.Option, 0, len(raw))
	for _, line := range raw {
		option := quiz.Option{Text: line}
		if strings.HasPrefix(line, correctMarker) {
			option.Text = strings.TrimSpace(strings.TrimPrefix(line, correctMarker))
			option.IsCorrect = true
		}
		options = append(options, option)
	}
	return options
}

func printMismatches(out io.Writer, item quiz.Item) {
	for _, option := range item.OptionMismatches() {
		if option.IsCorrect {
			fmt.Fprintf(out, "warning: option %q is marked correct but is not a correct answer\n", option.Text)
		} else {
			fmt.Fprintf(out, "warning: option %q is a correct answer but not marked correct\n", option.Text)
		}
	}
}
