package fqz

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"memory-quiz/internal/quiz"
)

type nativeFile struct {
	Images []nativeEntry `json:"images"`
}

// nativeEntry is one item of a .fqz file. Older files only carry src and names; every
// other field is optional on import.
type nativeEntry struct {
	Src            string          `json:"src"`
	Names          []string        `json:"names"`
	QuizType       string          `json:"quizType"`
	Question       string          `json:"question"`
	QuestionImage  *string         `json:"questionImage"`
	AllOptions     []quiz.Option   `json:"allOptions"`
	ShuffleOptions *bool           `json:"shuffleOptions"`
	WrongOptions   []string        `json:"wrongOptions"`
	ID             json.RawMessage `json:"id,omitempty"`
}

func buildNative(_ context.Context, _ *Codec, data []byte) (quiz.ImportBatch, error) {
	var file nativeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return quiz.ImportBatch{}, errors.Wrapf(ErrMalformed, "images: %v", err)
	}

	batch := quiz.ImportBatch{
		Format:  FormatLegacy,
		Items:   make([]quiz.Item, 0, len(file.Images)),
		Replace: true,
	}
	seen := make(map[string]struct{}, len(file.Images))
	for idx, entry := range file.Images {
		if entry.QuizType != "" {
			batch.Format = FormatNative
		}
		item, err := entry.item()
		if err != nil {
			return quiz.ImportBatch{}, errors.Wrapf(err, "entry %d", idx)
		}
		if _, dup := seen[item.ID]; dup {
			item.ID = uuid.NewString()
		}
		seen[item.ID] = struct{}{}
		batch.Items = append(batch.Items, item)
	}
	return batch, nil
}

func (e nativeEntry) item() (quiz.Item, error) {
	quizType := quiz.TypeGuessImage
	if e.QuizType != "" {
		parsed, err := quiz.ParseQuizType(e.QuizType)
		if err != nil {
			return quiz.Item{}, errors.Wrapf(err, "%q", e.QuizType)
		}
		quizType = parsed
	}

	item := quiz.Item{
		ID:             entryID(e.ID),
		Image:          e.Src,
		CorrectAnswers: quiz.NormalizeAnswers(e.Names),
		Type:           quizType,
		Prompt:         e.Question,
		Options:        []quiz.Option{},
		WrongOptions:   []string{},
		Shuffle:        e.ShuffleOptions == nil || *e.ShuffleOptions,
	}
	if e.QuestionImage != nil {
		item.QuestionImage = *e.QuestionImage
	}
	if e.AllOptions != nil {
		item.Options = append(item.Options, e.AllOptions...)
	}
	if e.WrongOptions != nil {
		item.WrongOptions = append(item.WrongOptions, e.WrongOptions...)
	}

	if err := item.Validate(); err != nil {
		return quiz.Item{}, err
	}
	return item, nil
}

// entryID keeps a stored id, string or numeric, and mints one otherwise.
func entryID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return uuid.NewString()
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		if id = strings.TrimSpace(id); id != "" {
			return id
		}
		return uuid.NewString()
	}
	return string(raw)
}

func exportEntry(item quiz.Item) nativeEntry {
	shuffle := item.Shuffle
	questionImage := item.QuestionImage
	entry := nativeEntry{
		Src:            item.Image,
		Names:          append([]string{}, item.CorrectAnswers...),
		QuizType:       string(item.Type),
		Question:       item.Prompt,
		QuestionImage:  &questionImage,
		AllOptions:     append([]quiz.Option{}, item.Options...),
		ShuffleOptions: &shuffle,
		WrongOptions:   append([]string{}, item.WrongOptions...),
	}
	return entry
}
