package fqz

import (
	"context"

	"github.com/xeipuuv/gojsonschema"

	"memory-quiz/internal/quiz"
)

const poolItemsSchema = `{
	"type": "object",
	"required": ["poolItems"],
	"properties": {
		"poolItems": {"type": "array"}
	}
}`

// tiers only counts when truthy; null, false, 0 and "" fall through to later shapes.
const tiersSchema = `{
	"type": "object",
	"required": ["tiers"],
	"properties": {
		"tiers": {"not": {"enum": [null, false, 0, ""]}}
	}
}`

const bareTierlistSchema = `{
	"type": "array",
	"items": {"type": "object"}
}`

const nativeSchema = `{
	"type": "object",
	"required": ["images"],
	"properties": {
		"images": {
			"type": "array",
			"items": {"type": "object"}
		}
	}
}`

// shapeParser recognizes one file shape. Parsers are tried in order and the first
// match builds the batch.
type shapeParser struct {
	format string
	schema *gojsonschema.Schema
	build  func(ctx context.Context, c *Codec, data []byte) (quiz.ImportBatch, error)
}

func (p shapeParser) matches(data []byte) (bool, error) {
	result, err := p.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return false, err
	}
	return result.Valid(), nil
}

var (
	tierlistParsers = []shapeParser{
		{format: FormatTierlist, schema: mustSchema(poolItemsSchema), build: buildPoolItems},
		{format: FormatTierlist, schema: mustSchema(tiersSchema), build: buildTiers},
		{format: FormatTierlist, schema: mustSchema(bareTierlistSchema), build: buildBareTierlist},
	}

	importParsers = append(append([]shapeParser{}, tierlistParsers...),
		shapeParser{format: FormatNative, schema: mustSchema(nativeSchema), build: buildNative},
	)
)

func mustSchema(doc string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(err)
	}
	return schema
}
