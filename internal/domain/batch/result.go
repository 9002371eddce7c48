// Package batch records what happened to each item of an indexing run.
package batch

import (
	"slices"

	"github.com/kailas-cloud/furnidex/internal/domain/vector"
)

// ItemStatus is the indexing outcome of a single item.
type ItemStatus string

// Item status values.
const (
	StatusOK       ItemStatus = "ok"
	StatusDegraded ItemStatus = "degraded"
)

// Result is the outcome of indexing one item. A degraded item was written with
// zero vectors in the listed spaces.
type Result struct {
	id        string
	status    ItemStatus
	fallbacks []vector.Space
	err       error
}

// NewOK creates a result for an item indexed with every vector.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewDegraded creates a result for an item indexed with zero vectors in spaces.
// cause is the first failure that forced the fallback.
func NewDegraded(id string, spaces []vector.Space, cause error) Result {
	return Result{id: id, status: StatusDegraded, fallbacks: slices.Clone(spaces), err: cause}
}

// ID returns the item identifier.
func (r Result) ID() string { return r.id }

// Status returns the indexing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Fallbacks lists spaces written as zero vectors.
func (r Result) Fallbacks() []vector.Space { return r.fallbacks }

// Err returns the cause of a degraded result, if any.
func (r Result) Err() error { return r.err }

// Report summarizes an indexing run.
type Report struct {
	Results []Result
	Batches int
	Retries int
	Created bool // the search index did not exist before the run
}

// Add records the outcome of an item whose batch was written.
func (r *Report) Add(res Result) { r.Results = append(r.Results, res) }

// Indexed returns the number of items written. After an aborted run it
// excludes the batch that failed and any items not yet uploaded.
func (r *Report) Indexed() int { return len(r.Results) }

// Fallbacks counts zero-vector fallbacks per space.
func (r *Report) Fallbacks() map[vector.Space]int {
	out := map[vector.Space]int{}
	for _, res := range r.Results {
		for _, s := range res.fallbacks {
			out[s]++
		}
	}
	return out
}

// Degraded returns the results that needed a fallback.
func (r *Report) Degraded() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.status == StatusDegraded {
			out = append(out, res)
		}
	}
	return out
}
