// Package fqz reads and writes .fqz deck files and the tierlist exports that can be
// imported alongside them.
package fqz

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"memory-quiz/internal/imagenorm"
	"memory-quiz/internal/quiz"
)

const (
	FormatNative   = "native"
	FormatLegacy   = "legacy"
	FormatTierlist = "tierlist"

	DefaultWorkers = 4
)

var (
	ErrInvalidFormat = errors.New("invalid file format")
	ErrMalformed     = errors.New("error importing file")
)

// Codec implements quiz.Codec. Tierlist images are normalized through Images with at
// most Workers fetches in flight.
type Codec struct {
	images  imagenorm.Normalizer
	workers int
}

func NewCodec(images imagenorm.Normalizer, workers int) *Codec {
	if images == nil {
		images = imagenorm.NewClient(nil)
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Codec{images: images, workers: workers}
}

// Import accepts any known file shape: tierlists first, then native and legacy
// .fqz files.
func (c *Codec) Import(ctx context.Context, data []byte) (quiz.ImportBatch, error) {
	return c.parse(ctx, data, importParsers)
}

// ImportTierlist accepts only the tierlist shapes.
func (c *Codec) ImportTierlist(ctx context.Context, data []byte) (quiz.ImportBatch, error) {
	return c.parse(ctx, data, tierlistParsers)
}

func (c *Codec) parse(ctx context.Context, data []byte, parsers []shapeParser) (quiz.ImportBatch, error) {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return quiz.ImportBatch{}, errors.Wrapf(ErrMalformed, "%v", err)
	}

	for _, p := range parsers {
		ok, err := p.matches(data)
		if err != nil {
			return quiz.ImportBatch{}, errors.Wrapf(ErrMalformed, "%s: %v", p.format, err)
		}
		if !ok {
			continue
		}
		return p.build(ctx, c, data)
	}
	return quiz.ImportBatch{}, ErrInvalidFormat
}

// Export writes items in the native file format.
func (c *Codec) Export(items []quiz.Item) ([]byte, error) {
	if len(items) == 0 {
		return nil, quiz.ErrEmptyDeck
	}
	file := nativeFile{Images: make([]nativeEntry, 0, len(items))}
	for _, item := range items {
		file.Images = append(file.Images, exportEntry(item))
	}
	return json.Marshal(file)
}
