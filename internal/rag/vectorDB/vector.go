package vectorDB

import (
	"context"

	"github.com/docuchat/api/internal/domain/docModel"
)

// Filter restricts a search to specific documents and/or a confidentiality
// ceiling. A nil DocumentIDs slice means "no document restriction"; an empty
// non-nil slice matches nothing.
type Filter struct {
	DocumentIDs        []string
	MaxConfidentiality docModel.Confidentiality
}

// Index stores chunk vectors with their metadata and answers
// nearest-neighbour queries. Mutations are safe to call while searches from
// unrelated chat turns are in flight.
type Index interface {
	Upsert(ctx context.Context, records []docModel.ChunkRecord) error
	DeleteByDocument(ctx context.Context, documentId string) error
	DeleteAll(ctx context.Context) error
	Search(ctx context.Context, vector []float32, k int, filter Filter) ([]docModel.ScoredChunk, error)
}

// AnswerCache short-circuits generation for semantically identical queries.
type AnswerCache interface {
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error
}
