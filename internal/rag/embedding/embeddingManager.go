package embedding

import "context"

// Embedder turns text into fixed-dimension vectors. Queries and chunks use
// the same dimension so their vectors are comparable. A batch either fully
// succeeds or fully fails; callers retry the whole batch.
type Embedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	EmbedBatch(ctx context.Context, chunks []string) ([][]float32, error)
}
