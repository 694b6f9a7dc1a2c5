package retrieval

import (
	"regexp"
	"strings"

	"github.com/docuchat/api/internal/config"
)

// Query analysis sizes the retrieval budget: a short fact lookup needs a
// handful of chunks, a summary across documents needs many more.

type QueryType string
type QueryScope string
type Complexity string

const (
	TypeFact       QueryType = "fact"
	TypeAnalysis   QueryType = "analysis"
	TypeSummary    QueryType = "summary"
	TypeComparison QueryType = "comparison"
	TypeProcess    QueryType = "process"

	ScopeSpecific QueryScope = "specific"
	ScopeBroad    QueryScope = "broad"
	ScopeOverview QueryScope = "overview"

	Simple        Complexity = "simple"
	Medium        Complexity = "medium"
	Complex       Complexity = "complex"
	Comprehensive Complexity = "comprehensive"
)

type QueryAnalysis struct {
	Complexity        Complexity
	QueryType         QueryType
	Scope             QueryScope
	WordCount         int
	RecommendedChunks int
}

var (
	summaryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(summarize|summary|overview|all|complete|entire|main)\b`),
		regexp.MustCompile(`\bwhat (is|are) (all|the main|the key)\b`),
		regexp.MustCompile(`\bgive me (an overview|a summary)\b`),
	}
	analysisPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(analyze|analysis|evaluate|assessment)\b`),
		regexp.MustCompile(`\b(strengths?|weaknesses?|pros?|cons?|advantages?|disadvantages?)\b`),
		regexp.MustCompile(`\b(why|how does|what makes|what are the benefits)\b`),
	}
	processPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(how (do|does)|process|procedure|methodology|steps?|approach)\b`),
		regexp.MustCompile(`\b(implement|setup|configure|install|deploy)\b`),
	}
	comparisonPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(compare|comparison|versus|vs|difference|differences)\b`),
		regexp.MustCompile(`\b(better|best|worse|worst|prefer|choice)\b`),
		regexp.MustCompile(`\bwhich (is|are|should)\b`),
	}
	specificPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(what is the|who is|when|where|which)\b`),
		regexp.MustCompile(`\b(price|cost|email|phone|address|contact)\b`),
		regexp.MustCompile(`\b\d+\b`),
	}
)

var overviewKeywords = []string{
	"overview", "summary", "all", "complete", "entire", "main", "key",
	"overall", "general", "total", "comprehensive",
}

var broadKeywords = []string{
	"services", "features", "capabilities", "offerings", "products",
	"team", "members", "staff", "requirements", "specifications",
}

func AnalyzeQuery(query string) QueryAnalysis {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	wordCount := len(strings.Fields(query))

	queryType := classifyQueryType(queryLower)
	scope := determineQueryScope(queryLower)
	complexity := calculateComplexity(wordCount, queryType, scope)

	return QueryAnalysis{
		Complexity:        complexity,
		QueryType:         queryType,
		Scope:             scope,
		WordCount:         wordCount,
		RecommendedChunks: recommendedChunkCount(complexity, queryType, scope),
	}
}

func classifyQueryType(query string) QueryType {
	for _, p := range summaryPatterns {
		if p.MatchString(query) {
			return TypeSummary
		}
	}
	for _, p := range analysisPatterns {
		if p.MatchString(query) {
			return TypeAnalysis
		}
	}
	for _, p := range processPatterns {
		if p.MatchString(query) {
			return TypeProcess
		}
	}
	for _, p := range comparisonPatterns {
		if p.MatchString(query) {
			return TypeComparison
		}
	}
	return TypeFact
}

func determineQueryScope(query string) QueryScope {
	for _, kw := range overviewKeywords {
		if strings.Contains(query, kw) {
			return ScopeOverview
		}
	}
	for _, p := range specificPatterns {
		if p.MatchString(query) {
			return ScopeSpecific
		}
	}
	for _, kw := range broadKeywords {
		if strings.Contains(query, kw) {
			return ScopeBroad
		}
	}
	return ScopeBroad
}

func calculateComplexity(wordCount int, queryType QueryType, scope QueryScope) Complexity {
	score := 0

	switch queryType {
	case TypeFact:
		score += 1
	case TypeProcess:
		score += 2
	case TypeComparison:
		score += 3
	case TypeAnalysis, TypeSummary:
		score += 4
	}

	switch scope {
	case ScopeSpecific:
		score += 1
	case ScopeBroad:
		score += 2
	case ScopeOverview:
		score += 3
	}

	switch {
	case wordCount <= 5:
		score += 1
	case wordCount <= 10:
		score += 2
	case wordCount <= 20:
		score += 3
	default:
		score += 4
	}

	switch {
	case score <= 3:
		return Simple
	case score <= 5:
		return Medium
	case score <= 7:
		return Complex
	default:
		return Comprehensive
	}
}

func recommendedChunkCount(complexity Complexity, queryType QueryType, scope QueryScope) int {
	var count int
	switch complexity {
	case Simple:
		count = 5
	case Medium:
		count = 10
	case Complex:
		count = 15
	case Comprehensive:
		count = 25
	default:
		count = 10
	}

	switch {
	case queryType == TypeSummary:
		count += 5
	case queryType == TypeFact && scope == ScopeSpecific:
		count -= 2
	case queryType == TypeAnalysis:
		count += 3
	}

	if count < config.MinChunks {
		count = config.MinChunks
	}
	if count > config.MaxChunks {
		count = config.MaxChunks
	}
	return count
}
