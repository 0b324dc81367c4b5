package fqz

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"memory-quiz/internal/imagenorm"
	"memory-quiz/internal/quiz"
)

const untitled = "Untitled"

type tierlistEntry struct {
	Image string `json:"image"`
	Name  string `json:"name"`
}

type poolItemsFile struct {
	PoolItems []tierlistEntry `json:"poolItems"`
}

func buildPoolItems(ctx context.Context, c *Codec, data []byte) (quiz.ImportBatch, error) {
	var file poolItemsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return quiz.ImportBatch{}, errors.Wrapf(ErrMalformed, "poolItems: %v", err)
	}

	// Pool items only carry embedded images or web URLs; anything else is skipped.
	entries := make([]tierlistEntry, 0, len(file.PoolItems))
	for _, entry := range file.PoolItems {
		if imagenorm.IsEmbedded(entry.Image) || strings.HasPrefix(entry.Image, "http") {
			entries = append(entries, entry)
		}
	}
	return c.tierlistBatch(ctx, entries)
}

// buildTiers accepts files that only carry tier rows. Those rows hold no images, so
// the batch is empty.
func buildTiers(ctx context.Context, c *Codec, data []byte) (quiz.ImportBatch, error) {
	glog.Warningf("tierlist file has tiers but no poolItems, nothing to import")
	return c.tierlistBatch(ctx, nil)
}

func buildBareTierlist(ctx context.Context, c *Codec, data []byte) (quiz.ImportBatch, error) {
	var raw []tierlistEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return quiz.ImportBatch{}, errors.Wrapf(ErrMalformed, "tierlist: %v", err)
	}

	entries := make([]tierlistEntry, 0, len(raw))
	for _, entry := range raw {
		if entry.Image != "" {
			entries = append(entries, entry)
		}
	}
	return c.tierlistBatch(ctx, entries)
}

// tierlistBatch turns entries into guess-image items. Images are normalized
// concurrently; an image that cannot be fetched becomes the placeholder without
// affecting the other entries. Items keep the input order.
func (c *Codec) tierlistBatch(ctx context.Context, entries []tierlistEntry) (quiz.ImportBatch, error) {
	items := make([]quiz.Item, len(entries))
	failed := make([]bool, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for idx, entry := range entries {
		idx, entry := idx, entry
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			src, err := c.images.Normalize(gctx, entry.Image)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				glog.Warningf("tierlist entry %d: %v, using placeholder", idx, err)
				src = imagenorm.Placeholder
				failed[idx] = true
			}
			items[idx] = tierlistItem(entry, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return quiz.ImportBatch{}, errors.Wrap(err, "normalize tierlist images")
	}

	batch := quiz.ImportBatch{Format: FormatTierlist, Items: items}
	for _, f := range failed {
		if f {
			batch.Placeholders++
		}
	}
	return batch, nil
}

func tierlistItem(entry tierlistEntry, src string) quiz.Item {
	name := quiz.NormalizeAnswer(entry.Name)
	if name == "" {
		name = strings.ToLower(untitled)
	}
	return quiz.Item{
		ID:             uuid.NewString(),
		Image:          src,
		CorrectAnswers: []string{name},
		Type:           quiz.TypeGuessImage,
		Prompt:         quiz.DefaultPrompt,
		Options:        []quiz.Option{},
		WrongOptions:   []string{},
		Shuffle:        true,
	}
}
