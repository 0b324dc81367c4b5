package quiz

import (
	"math/rand"
	"strings"
)

// PresentedOption is an option in the position it is shown to the player.
type PresentedOption struct {
	Option
	Label string `json:"label"`
}

// Present returns the options in display order. With shuffle off the input order is kept;
// otherwise a copy is permuted. Option payloads are never modified.
func Present(options []Option, shuffle bool, rng *rand.Rand) []Option {
	out := make([]Option, len(options))
	copy(out, options)
	if !shuffle || len(out) < 2 {
		return out
	}

	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if rng != nil {
		rng.Shuffle(len(out), swap)
	} else {
		rand.Shuffle(len(out), swap)
	}
	return out
}

// Label assigns display letters by position: 0 -> "A", 1 -> "B", and so on.
func Label(options []Option) []PresentedOption {
	labeled := make([]PresentedOption, len(options))
	for idx, option := range options {
		labeled[idx] = PresentedOption{
			Option: option,
			Label:  string(rune('A' + idx)),
		}
	}
	return labeled
}

func NormalizeLetter(answer string) string {
	letter := strings.ToUpper(strings.TrimSpace(answer))
	if len(letter) != 1 {
		return ""
	}
	return letter
}

// presentOptions builds the choice list for the item's current question.
// The second return value marks the legacy multiple-choice path that has no authored
// options and derives correctness from the answer set.
func presentOptions(item Item, rng *rand.Rand) ([]PresentedOption, bool) {
	switch item.Type {
	case TypeTrueFalse:
		return Label([]Option{
			{Text: "true", IsCorrect: item.Accepts("true")},
			{Text: "false", IsCorrect: item.Accepts("false")},
		}), false
	case TypeMultipleChoice:
		if len(item.Options) > 0 {
			return Label(Present(item.Options, item.Shuffle, rng)), false
		}
		legacy := make([]Option, 0, len(item.WrongOptions)+len(item.CorrectAnswers))
		for _, text := range item.WrongOptions {
			legacy = append(legacy, Option{Text: text})
		}
		for _, text := range item.CorrectAnswers {
			legacy = append(legacy, Option{Text: text, IsCorrect: true})
		}
		return Label(Present(legacy, item.Shuffle, rng)), true
	default:
		return nil, false
	}
}

// findPresented resolves input to a presented option. Option text wins over labels, so
// an option whose text is a single letter is never shadowed by another option's label.
func findPresented(options []PresentedOption, input string) (PresentedOption, bool) {
	normalized := NormalizeAnswer(input)
	if normalized == "" {
		return PresentedOption{}, false
	}
	for _, option := range options {
		if NormalizeAnswer(option.Text) == normalized {
			return option, true
		}
	}

	if letter := NormalizeLetter(input); letter != "" {
		for _, option := range options {
			if option.Label == letter {
				return option, true
			}
		}
	}
	return PresentedOption{}, false
}
