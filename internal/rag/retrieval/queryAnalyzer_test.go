package retrieval

import (
	"testing"

	"github.com/docuchat/api/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestAnalyzeQuery_Classification(t *testing.T) {
	tests := []struct {
		query    string
		wantType QueryType
	}{
		{"summarize the entire contract", TypeSummary},
		{"analyze the strengths and weaknesses of this offer", TypeAnalysis},
		{"how do I configure the deployment", TypeProcess},
		{"which is better, option A or option B", TypeComparison},
		{"office opening hours", TypeFact},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := AnalyzeQuery(tt.query)
			assert.Equal(t, tt.wantType, got.QueryType)
		})
	}
}

func TestAnalyzeQuery_ChunkBudgetBounds(t *testing.T) {
	queries := []string{
		"price",
		"who is the project manager",
		"give me a comprehensive overview of all services, team members, offerings and requirements across every document",
	}

	for _, q := range queries {
		got := AnalyzeQuery(q)
		assert.GreaterOrEqual(t, got.RecommendedChunks, config.MinChunks, "query %q", q)
		assert.LessOrEqual(t, got.RecommendedChunks, config.MaxChunks, "query %q", q)
	}
}

func TestAnalyzeQuery_SummariesWantMoreThanFacts(t *testing.T) {
	fact := AnalyzeQuery("what is the price")
	summary := AnalyzeQuery("summarize the complete document set with an overall assessment")
	assert.Greater(t, summary.RecommendedChunks, fact.RecommendedChunks)
}
