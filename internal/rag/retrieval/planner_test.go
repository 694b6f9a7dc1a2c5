package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/docuchat/api/internal/domain/chatModel"
	"github.com/docuchat/api/internal/domain/docModel"
	"github.com/docuchat/api/internal/rag/vectorDB"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockIndex struct {
	onSearch func(ctx context.Context, vector []float32, k int, filter vectorDB.Filter) ([]docModel.ScoredChunk, error)
}

func (m *mockIndex) Upsert(ctx context.Context, records []docModel.ChunkRecord) error { return nil }
func (m *mockIndex) DeleteByDocument(ctx context.Context, documentId string) error   { return nil }
func (m *mockIndex) DeleteAll(ctx context.Context) error                             { return nil }
func (m *mockIndex) Search(ctx context.Context, vector []float32, k int, filter vectorDB.Filter) ([]docModel.ScoredChunk, error) {
	return m.onSearch(ctx, vector, k, filter)
}

type mockEmbedder struct {
	onEmbedQuery func(ctx context.Context, query string) ([]float32, error)
}

func (m *mockEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if m.onEmbedQuery != nil {
		return m.onEmbedQuery(ctx, query)
	}
	return []float32{0.1, 0.2}, nil
}
func (m *mockEmbedder) EmbedBatch(ctx context.Context, chunks []string) ([][]float32, error) {
	return make([][]float32, len(chunks)), nil
}

func chunk(id, docId string, score float64) docModel.ScoredChunk {
	return docModel.ScoredChunk{
		Id:    id,
		Text:  "text-" + id,
		Score: score,
		Meta:  docModel.ChunkMeta{DocumentId: docId, Filename: docId + ".pdf"},
	}
}

func TestRetrieve_SelectedModeEmptySetReturnsNothing(t *testing.T) {
	searched := false
	p := NewPlanner(&mockIndex{
		onSearch: func(ctx context.Context, v []float32, k int, f vectorDB.Filter) ([]docModel.ScoredChunk, error) {
			searched = true
			return []docModel.ScoredChunk{chunk("c1", "d1", 0.9)}, nil
		},
	}, &mockEmbedder{})

	got, err := p.Retrieve(context.Background(), Request{
		Query: "anything",
		Mode:  chatModel.SearchSelected,
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, searched, "selected mode with empty set must not touch the index")
}

func TestRetrieve_SelectedModeRestrictsToSet(t *testing.T) {
	var gotFilter vectorDB.Filter
	p := NewPlanner(&mockIndex{
		onSearch: func(ctx context.Context, v []float32, k int, f vectorDB.Filter) ([]docModel.ScoredChunk, error) {
			gotFilter = f
			return []docModel.ScoredChunk{chunk("c1", "d1", 0.8)}, nil
		},
	}, &mockEmbedder{})

	got, err := p.Retrieve(context.Background(), Request{
		Query:       "pricing details",
		Mode:        chatModel.SearchSelected,
		DocumentIDs: []string{"d1", "d2"},
		Ceiling:     docModel.Public,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"d1", "d2"}, gotFilter.DocumentIDs)
	assert.Equal(t, docModel.Public, gotFilter.MaxConfidentiality)
}

func TestRetrieve_HybridRanksSelectedAheadOfFallback(t *testing.T) {
	p := NewPlanner(&mockIndex{
		onSearch: func(ctx context.Context, v []float32, k int, f vectorDB.Filter) ([]docModel.ScoredChunk, error) {
			if len(f.DocumentIDs) > 0 {
				// selected hits score LOWER than the fallback hit
				return []docModel.ScoredChunk{chunk("sel1", "d1", 0.40), chunk("sel2", "d1", 0.35)}, nil
			}
			return []docModel.ScoredChunk{chunk("fall1", "d9", 0.99), chunk("sel1", "d1", 0.40)}, nil
		},
	}, &mockEmbedder{})

	got, err := p.Retrieve(context.Background(), Request{
		Query:       "contract",
		Mode:        chatModel.SearchHybrid,
		DocumentIDs: []string{"d1"},
		Limit:       5,
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "sel1", got[0].Id)
	assert.Equal(t, "sel2", got[1].Id)
	assert.Equal(t, "fall1", got[2].Id, "fallback ranks last despite higher raw score")
}

func TestRetrieve_HybridSkipsFallbackWhenEnoughSelected(t *testing.T) {
	fallbackCalls := 0
	p := NewPlanner(&mockIndex{
		onSearch: func(ctx context.Context, v []float32, k int, f vectorDB.Filter) ([]docModel.ScoredChunk, error) {
			if len(f.DocumentIDs) > 0 {
				return []docModel.ScoredChunk{
					chunk("s1", "d1", 0.9), chunk("s2", "d1", 0.8), chunk("s3", "d1", 0.7),
				}, nil
			}
			fallbackCalls++
			return nil, nil
		},
	}, &mockEmbedder{})

	got, err := p.Retrieve(context.Background(), Request{
		Query:       "contract",
		Mode:        chatModel.SearchHybrid,
		DocumentIDs: []string{"d1"},
		Limit:       10,
	})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Zero(t, fallbackCalls)
}

func TestRetrieve_AllModeAppliesCeilingOnly(t *testing.T) {
	var gotFilter vectorDB.Filter
	p := NewPlanner(&mockIndex{
		onSearch: func(ctx context.Context, v []float32, k int, f vectorDB.Filter) ([]docModel.ScoredChunk, error) {
			gotFilter = f
			return nil, nil
		},
	}, &mockEmbedder{})

	_, err := p.Retrieve(context.Background(), Request{
		Query:   "overview of everything",
		Mode:    chatModel.SearchAll,
		Ceiling: docModel.Public,
	})
	require.NoError(t, err)
	assert.Nil(t, gotFilter.DocumentIDs)
	assert.Equal(t, docModel.Public, gotFilter.MaxConfidentiality)
}

func TestRetrieve_EmbeddingFailureSurfaces(t *testing.T) {
	p := NewPlanner(&mockIndex{
		onSearch: func(ctx context.Context, v []float32, k int, f vectorDB.Filter) ([]docModel.ScoredChunk, error) {
			t.Fatal("index must not be reached when embedding fails")
			return nil, nil
		},
	}, &mockEmbedder{
		onEmbedQuery: func(ctx context.Context, q string) ([]float32, error) {
			return nil, errors.New("api limit")
		},
	})

	_, err := p.Retrieve(context.Background(), Request{Query: "q", Mode: chatModel.SearchAll})
	assert.Error(t, err)
}
