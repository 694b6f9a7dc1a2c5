package retrieval

import (
	"context"
	"fmt"

	"github.com/docuchat/api/internal/config"
	"github.com/docuchat/api/internal/domain/chatModel"
	"github.com/docuchat/api/internal/domain/docModel"
	"github.com/docuchat/api/internal/rag/embedding"
	"github.com/docuchat/api/internal/rag/vectorDB"
	"github.com/docuchat/api/pkg/logger_i"
)

// Planner decides which chunks to retrieve for a query given the search
// mode, the explicitly attached documents and the confidentiality ceiling
// implied by the chosen model.
type Planner interface {
	Retrieve(ctx context.Context, req Request) ([]docModel.ScoredChunk, error)
}

type Request struct {
	Query       string
	Mode        chatModel.SearchMode
	DocumentIDs []string
	Ceiling     docModel.Confidentiality
	// Limit caps the number of chunks; 0 lets the query analyzer pick.
	Limit int
}

type planner struct {
	index    vectorDB.Index
	embedder embedding.Embedder
	logger   *logger_i.Logger
}

func NewPlanner(index vectorDB.Index, embedder embedding.Embedder) Planner {
	return &planner{
		index:    index,
		embedder: embedder,
		logger:   logger_i.NewLogger("RetrievalPlanner"),
	}
}

func (p *planner) Retrieve(ctx context.Context, req Request) ([]docModel.ScoredChunk, error) {
	log := p.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "mode", req.Mode)

	// selected mode with nothing selected returns nothing - never a silent
	// fallback to the whole index.
	if req.Mode == chatModel.SearchSelected && len(req.DocumentIDs) == 0 {
		return []docModel.ScoredChunk{}, nil
	}

	k := req.Limit
	if k <= 0 {
		analysis := AnalyzeQuery(req.Query)
		k = analysis.RecommendedChunks
		log.Debug("Query analyzed", "complexity", analysis.Complexity, "type", analysis.QueryType, "k", k)
	}

	vector, err := p.embedder.EmbedQuery(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	switch req.Mode {
	case chatModel.SearchSelected:
		return p.index.Search(ctx, vector, k, vectorDB.Filter{
			DocumentIDs:        req.DocumentIDs,
			MaxConfidentiality: req.Ceiling,
		})

	case chatModel.SearchAll:
		return p.index.Search(ctx, vector, k, vectorDB.Filter{
			MaxConfidentiality: req.Ceiling,
		})

	case chatModel.SearchHybrid:
		return p.hybridSearch(ctx, vector, k, req)

	default:
		return nil, fmt.Errorf("unknown search mode: %q", req.Mode)
	}
}

// hybridSearch tries the attached documents first. When they yield fewer
// than config.HybridMinSelected chunks, the rest of the k budget is filled
// from the full index. Selected hits always rank ahead of fallback hits,
// whatever their raw scores.
func (p *planner) hybridSearch(ctx context.Context, vector []float32, k int, req Request) ([]docModel.ScoredChunk, error) {
	var selected []docModel.ScoredChunk
	if len(req.DocumentIDs) > 0 {
		var err error
		selected, err = p.index.Search(ctx, vector, k, vectorDB.Filter{
			DocumentIDs:        req.DocumentIDs,
			MaxConfidentiality: req.Ceiling,
		})
		if err != nil {
			return nil, err
		}
	}

	if len(selected) >= config.HybridMinSelected || len(selected) >= k {
		return selected, nil
	}

	fallback, err := p.index.Search(ctx, vector, k, vectorDB.Filter{
		MaxConfidentiality: req.Ceiling,
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(selected))
	for _, c := range selected {
		seen[c.Id] = struct{}{}
	}

	merged := selected
	for _, c := range fallback {
		if len(merged) >= k {
			break
		}
		if _, dup := seen[c.Id]; dup {
			continue
		}
		merged = append(merged, c)
	}
	return merged, nil
}
