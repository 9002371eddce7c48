package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/furnidex/internal/db"
	"github.com/kailas-cloud/furnidex/internal/domain/search/filter"
	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

// SearchKNN runs a filtered KNN query over one vector field, nearest first.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	switch {
	case q.IndexName == "":
		return nil, fmt.Errorf("index name is required")
	case q.Field == "":
		return nil, fmt.Errorf("vector field is required")
	case len(q.Vector) == 0:
		return nil, fmt.Errorf("vector is required")
	case q.K <= 0:
		return nil, fmt.Errorf("k must be positive")
	}

	alias := q.ScoreAlias()
	args := []string{q.IndexName, knnQuery(q, alias)}
	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)+1))
		args = append(args, q.ReturnFields...)
		args = append(args, alias)
	}
	args = append(args,
		"SORTBY", alias,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", string(vector.Encode(q.Vector)),
		"DIALECT", "2",
	)

	raw, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	if err != nil {
		return nil, opError(db.OpSearch, err)
	}
	return parseKNNResult(raw, alias)
}

func knnQuery(q *db.KNNQuery, alias string) string {
	knn := fmt.Sprintf("[KNN %d @%s $BLOB AS %s]", q.K, q.Field, alias)
	if f := buildFilter(q.Filters); f != "" {
		return "(" + f + ")=>" + knn
	}
	return "*=>" + knn
}

// SearchCount returns the number of documents matching query.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	raw, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(index, query, "LIMIT", "0", "0").Build()).ToArray()
	if err != nil {
		return 0, opError(db.OpSearch, err)
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// parseKNNResult reads [total, key1, fields1, key2, fields2, ...] and turns the
// cosine distance under alias into a similarity in [0,1].
func parseKNNResult(raw []rueidis.RedisMessage, alias string) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		pairs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		entry := db.SearchEntry{Key: key, Fields: parseFieldPairs(pairs)}
		if d, ok := entry.Fields[alias]; ok {
			if dist, err := strconv.ParseFloat(d, 64); err == nil {
				entry.Score = min(1, max(0, 1-dist))
			}
			delete(entry.Fields, alias)
		}
		entries = append(entries, entry)
	}
	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// buildFilter renders an expression as an FT.SEARCH pre-filter.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, len(expr.Must())+len(expr.MustNot()))
	for _, c := range expr.Must() {
		parts = append(parts, condition(c))
	}
	for _, c := range expr.MustNot() {
		parts = append(parts, "-"+condition(c))
	}
	return strings.Join(parts, " ")
}

func condition(c filter.Condition) string {
	if c.IsMatch() {
		return fmt.Sprintf("@%s:{%s}", c.Key(), tagEscaper.Replace(c.Match()))
	}
	if c.IsRange() {
		return numericRange(c.Key(), *c.Range())
	}
	return ""
}

func numericRange(key string, r filter.Range) string {
	lo, hi := "-inf", "+inf"
	switch {
	case r.GT() != nil:
		lo = "(" + formatNum(*r.GT())
	case r.GTE() != nil:
		lo = formatNum(*r.GTE())
	}
	switch {
	case r.LT() != nil:
		hi = "(" + formatNum(*r.LT())
	case r.LTE() != nil:
		hi = formatNum(*r.LTE())
	}
	return fmt.Sprintf("@%s:[%s %s]", key, lo, hi)
}

func formatNum(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

var tagEscaper = strings.NewReplacer(
	",", `\,`, ".", `\.`, "<", `\<`, ">", `\>`, "{", `\{`, "}", `\}`,
	`"`, `\"`, "'", `\'`, ":", `\:`, ";", `\;`, "!", `\!`, "@", `\@`,
	"#", `\#`, "$", `\$`, "%", `\%`, "^", `\^`, "&", `\&`, "*", `\*`,
	"(", `\(`, ")", `\)`, "-", `\-`, "+", `\+`, "=", `\=`, "~", `\~`,
	" ", `\ `,
)
