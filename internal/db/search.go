package db

import "github.com/kailas-cloud/furnidex/internal/domain/search/filter"

// KNNQuery is a vector similarity search over one vector field.
type KNNQuery struct {
	IndexName    string
	Field        string // vector field to search, e.g. vec_text
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// ScoreAlias is the result field carrying the distance for Field.
func (q *KNNQuery) ScoreAlias() string { return "__" + q.Field + "_score" }

// SearchResult is the output of a search.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is one hit. Score is cosine similarity clamped to [0,1].
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
