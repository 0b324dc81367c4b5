package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"memory-quiz/internal/quiz"
)

const (
	previewLength  = 60
	previewAnswers = 2
	imagePreview   = 48
)

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  help")
	fmt.Fprintln(out, "  list")
	fmt.Fprintln(out, "  show <n>")
	fmt.Fprintln(out, "  add")
	fmt.Fprintln(out, "  edit <n>")
	fmt.Fprintln(out, "  delete <n>")
	fmt.Fprintln(out, "  import <file>")
	fmt.Fprintln(out, "  tierlist <file>")
	fmt.Fprintln(out, "  export [file]")
	fmt.Fprintln(out, "  time [seconds]")
	fmt.Fprintln(out, "  play")
	fmt.Fprintln(out, "  history [limit]")
	fmt.Fprintln(out, "  exit")
}

// commandArg returns the rest of line after its command word, so file paths may
// contain spaces.
func commandArg(line, command string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, command))
}

func parsePositiveLimit(args []string, index int, defaultValue int) (int, error) {
	if len(args) <= index {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(args[index])
	if err != nil || value <= 0 {
		return 0, errors.New("must be a positive integer")
	}
	return value, nil
}

// parseItemNumber reads the 1-based item number at args[1] and returns its index.
func parseItemNumber(args []string, usage string) (int, error) {
	if len(args) != 2 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	number, err := parsePositiveLimit(args, 1, 0)
	if err != nil {
		return 0, fmt.Errorf("item number %w", err)
	}
	return number - 1, nil
}

func promptLine(ctx context.Context, lines *lineReader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := lines.next(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptYesNo(ctx context.Context, lines *lineReader, out io.Writer, prompt string) (bool, error) {
	for {
		answer, err := promptLine(ctx, lines, out, prompt)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Fprintln(out, "Please answer yes or no.")
		}
	}
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func answersPreview(answers []string) string {
	if len(answers) > previewAnswers {
		return strings.Join(answers[:previewAnswers], ", ") + "..."
	}
	return strings.Join(answers, ", ")
}

// imageRef shortens embedded images so they fit on one line.
func imageRef(src string) string {
	if src == "" {
		return ""
	}
	if strings.HasPrefix(src, "data:") {
		header, _, _ := strings.Cut(src, ",")
		return fmt.Sprintf("<embedded %s, %d bytes>", strings.TrimPrefix(header, "data:"), len(src))
	}
	return truncate(src, imagePreview)
}

func printItemSummary(out io.Writer, number int, item quiz.Item) {
	fmt.Fprintf(out, "%d. [%s]", number, item.Type.Label())
	if item.Prompt != "" {
		fmt.Fprintf(out, " %s", truncate(item.Prompt, previewLength))
	}
	fmt.Fprintf(out, "\n   Answers: %s\n", answersPreview(item.CorrectAnswers))
}

func printItemDetail(out io.Writer, number int, item quiz.Item) {
	fmt.Fprintf(out, "Item %d (%s)\n", number, item.ID)
	fmt.Fprintf(out, "  Type:     %s\n", item.Type.Label())
	if item.Image != "" {
		fmt.Fprintf(out, "  Image:    %s\n", imageRef(item.Image))
	}
	if item.Prompt != "" {
		fmt.Fprintf(out, "  Question: %s\n", item.Prompt)
	}
	if item.QuestionImage != "" {
		fmt.Fprintf(out, "  Question image: %s\n", imageRef(item.QuestionImage))
	}
	fmt.Fprintf(out, "  Answers:  %s\n", strings.Join(item.CorrectAnswers, ", "))
	if item.Type == quiz.TypeMultipleChoice {
		for _, option := range quiz.Label(item.Options) {
			marker := " "
			if option.IsCorrect {
				marker = "*"
			}
			fmt.Fprintf(out, "  %s %s. %s\n", marker, option.Label, option.Text)
		}
		fmt.Fprintf(out, "  Shuffle options: %t\n", item.Shuffle)
	}
}
